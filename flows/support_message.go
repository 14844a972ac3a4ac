package flows

import (
	"context"
	"text/template"

	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
)

type SupportMessageInput struct {
	CustomerName string `json:"customerName" validate:"required,max=100"`
	Topic        string `json:"topic" validate:"required,max=200"`
	Details      string `json:"details" validate:"required,max=4000"`
}

func (in SupportMessageInput) Validate() validators.Result[SupportMessageInput] { return check(in) }

type SupportMessageOutput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

func (out SupportMessageOutput) Validate() validators.Result[SupportMessageOutput] { return check(out) }

var supportMessageFlow = flowDef{
	name:   "support-message",
	system: `You draft a reply from the support team to a customer. Be specific and apologise only when something went wrong.`,
	prompt: template.Must(template.New("support-message").Parse(`Customer: {{.CustomerName}}
Topic: {{.Topic}}
Details:
{{.Details}}`)),
	schema: objectSchema(map[string]*genai.Schema{
		"subject": stringSchema("The email subject line."),
		"body":    stringSchema("The plain text reply."),
	}, "subject", "body"),
}

func (r *Runner) SupportMessage(ctx context.Context, in SupportMessageInput) (SupportMessageOutput, error) {
	return run[SupportMessageInput, SupportMessageOutput](ctx, r, supportMessageFlow, in)
}
