package validators

import (
	"testing"

	"creme-store/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() ShippingForm {
	return ShippingForm{
		FirstName:    "Ayesha",
		LastName:     "Khan",
		AddressLine1: "12 Canal Road",
		City:         "Lahore",
		PostalCode:   "54000",
		Phone:        "03001234567",
	}
}

func TestValidateShippingAddress_Valid(t *testing.T) {
	res := ValidateShippingAddress(validForm())

	require.True(t, res.OK())
	assert.NoError(t, res.Err())
	assert.Equal(t, "Ayesha", res.Value.FirstName)
	assert.Equal(t, "54000", res.Value.PostalCode)
	assert.Empty(t, res.Value.AddressLine2)
}

func TestValidateShippingAddress_FirstNameBoundary(t *testing.T) {
	form := validForm()
	form.FirstName = "A"
	res := ValidateShippingAddress(form)
	require.False(t, res.OK())
	assert.Equal(t, "First name must be at least 2 characters.", res.Violations["firstName"])

	form.FirstName = "Al"
	assert.True(t, ValidateShippingAddress(form).OK())
}

func TestValidateShippingAddress_AllFieldsReported(t *testing.T) {
	res := ValidateShippingAddress(ShippingForm{})

	require.False(t, res.OK())
	assert.Len(t, res.Violations, 6)
	for _, field := range []string{"firstName", "lastName", "addressLine1", "city", "postalCode", "phone"} {
		assert.Contains(t, res.Violations, field)
	}
	assert.NotContains(t, res.Violations, "addressLine2")

	err := res.Err()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, res.Violations, apperrors.Fields(err))
}

func TestValidateShippingAddress_TrimsWhitespace(t *testing.T) {
	form := validForm()
	form.City = "  L "
	form.Phone = " 0300123456 "

	res := ValidateShippingAddress(form)
	require.False(t, res.OK())
	assert.Contains(t, res.Violations, "city")
	assert.NotContains(t, res.Violations, "phone")
}

func TestValidateShippingAddress_CountsRunes(t *testing.T) {
	form := validForm()
	form.FirstName = "Zé"
	assert.True(t, ValidateShippingAddress(form).OK())
}

func TestValidateShippingAddress_PhoneAndPostalBoundaries(t *testing.T) {
	form := validForm()
	form.Phone = "123456789"
	form.PostalCode = "12"

	res := ValidateShippingAddress(form)
	assert.Contains(t, res.Violations, "phone")
	assert.Contains(t, res.Violations, "postalCode")

	form.Phone = "1234567890"
	form.PostalCode = "123"
	assert.True(t, ValidateShippingAddress(form).OK())
}
