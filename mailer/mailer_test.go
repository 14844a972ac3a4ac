package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"creme-store/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func newTestMailer(s sender) *Mailer {
	return &Mailer{from: "Creme Collections <no-reply@cremecollections.com>", client: s}
}

func TestSendBrandedEmail(t *testing.T) {
	fake := &fakeSender{}
	m := newTestMailer(fake)

	err := m.SendBrandedEmail(context.Background(), Email{
		To:      " ayesha@example.com ",
		Subject: "Your order CR123456789",
		HTML:    "<p>Thank you for shopping with us.</p>",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)

	var buf bytes.Buffer
	_, err = fake.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "ayesha@example.com")
	assert.Contains(t, raw, "Your order CR123456789")
	assert.Contains(t, raw, "text/html")
}

func TestSendBrandedEmail_Validation(t *testing.T) {
	fake := &fakeSender{}
	m := newTestMailer(fake)

	err := m.SendBrandedEmail(context.Background(), Email{To: "not-an-email", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	fields := apperrors.Fields(err)
	assert.Contains(t, fields, "to")
	assert.Contains(t, fields, "subject")
	assert.Empty(t, fake.sent)
}

func TestSendBrandedEmail_NotConfigured(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", From: "shop@example.com"})
	require.NoError(t, err)
	assert.False(t, m.Configured())

	err = m.SendBrandedEmail(context.Background(), Email{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, apperrors.ErrFailedPrecondition)
}

func TestSendBrandedEmail_SendFailure(t *testing.T) {
	m := newTestMailer(&fakeSender{err: errors.New("connection reset")})

	err := m.SendBrandedEmail(context.Background(), Email{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.Error(t, err)
	assert.Equal(t, "internal", apperrors.Code(err))
}

func TestRenderBranded(t *testing.T) {
	out, err := renderBranded(Email{Subject: "Tom & Jerry", HTML: "<p>Body</p>"})
	require.NoError(t, err)
	assert.Contains(t, out, "CREME COLLECTIONS")
	assert.Contains(t, out, "<p>Body</p>")
	assert.Contains(t, out, "Tom &amp; Jerry")
}

func TestNew_Configured(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "shop@example.com"})
	require.NoError(t, err)
	assert.True(t, m.Configured())
}
