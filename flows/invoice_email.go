package flows

import (
	"context"
	"text/template"

	"creme-store/models"
	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
)

type InvoiceEmailInput struct {
	Order *models.Order `json:"order" validate:"required"`
}

func (in InvoiceEmailInput) Validate() validators.Result[InvoiceEmailInput] {
	res := check(in)
	if res.OK() && len(in.Order.Items) == 0 {
		return validators.Fail[InvoiceEmailInput](map[string]string{"order.items": "must contain at least 1 entries"})
	}
	return res
}

type InvoiceEmailOutput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	HTML    string `json:"html" validate:"required"`
}

func (out InvoiceEmailOutput) Validate() validators.Result[InvoiceEmailOutput] { return check(out) }

var invoiceEmailFlow = flowDef{
	name: "invoice-email",
	system: `You draft the body of an order confirmation and invoice email. Return an HTML
fragment (no <html> or <body> tags) with a greeting, an itemised table and the total.
Use only the figures given.`,
	prompt: template.Must(template.New("invoice-email").Parse(`Order {{.Order.OrderID}} placed on {{.Order.OrderDate.Format "2 January 2006"}}.
Customer: {{.Order.ShippingAddress.FirstName}} {{.Order.ShippingAddress.LastName}}
Ship to: {{.Order.ShippingAddress.AddressLine1}}{{with .Order.ShippingAddress.AddressLine2}}, {{.}}{{end}}, {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}
Items:
{{range .Order.Items}}- {{.Name}} x{{.Quantity}} @ PKR {{printf "%.2f" .PriceAtPurchase}}
{{end}}Total charged: PKR {{printf "%.2f" .Order.TotalAmount}}
Status: {{.Order.Status}}`)),
	schema: objectSchema(map[string]*genai.Schema{
		"subject": stringSchema("The email subject line, including the order code."),
		"html":    stringSchema("The HTML body fragment."),
	}, "subject", "html"),
}

func (r *Runner) InvoiceEmail(ctx context.Context, in InvoiceEmailInput) (InvoiceEmailOutput, error) {
	return run[InvoiceEmailInput, InvoiceEmailOutput](ctx, r, invoiceEmailFlow, in)
}
