package validators

import (
	"strings"

	"creme-store/models"
)

// ShippingForm is the raw checkout form as posted by the storefront.
type ShippingForm struct {
	FirstName    string `json:"firstName" validate:"min=2"`
	LastName     string `json:"lastName" validate:"min=2"`
	AddressLine1 string `json:"addressLine1" validate:"min=5"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"min=2"`
	PostalCode   string `json:"postalCode" validate:"min=3"`
	Phone        string `json:"phone" validate:"min=10"`
}

var shippingMessages = map[string]string{
	"firstName":    "First name must be at least 2 characters.",
	"lastName":     "Last name must be at least 2 characters.",
	"addressLine1": "Address must be at least 5 characters.",
	"city":         "City must be at least 2 characters.",
	"postalCode":   "Postal code must be at least 3 characters.",
	"phone":        "Phone number must be at least 10 characters.",
}

// ValidateShippingAddress trims the form and checks minimum lengths. There is no
// cross-field or per-country validation.
func ValidateShippingAddress(form ShippingForm) Result[models.ShippingAddress] {
	form = ShippingForm{
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		AddressLine1: strings.TrimSpace(form.AddressLine1),
		AddressLine2: strings.TrimSpace(form.AddressLine2),
		City:         strings.TrimSpace(form.City),
		PostalCode:   strings.TrimSpace(form.PostalCode),
		Phone:        strings.TrimSpace(form.Phone),
	}

	if violations := Struct(form); violations != nil {
		for field := range violations {
			if msg, ok := shippingMessages[field]; ok {
				violations[field] = msg
			}
		}
		return Fail[models.ShippingAddress](violations)
	}

	return Ok(models.ShippingAddress{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		AddressLine1: form.AddressLine1,
		AddressLine2: form.AddressLine2,
		City:         form.City,
		PostalCode:   form.PostalCode,
		Phone:        form.Phone,
	})
}

// FormFromAddress is the inverse of ValidateShippingAddress, used when an already
// stored address is revalidated.
func FormFromAddress(a models.ShippingAddress) ShippingForm {
	return ShippingForm(a)
}
