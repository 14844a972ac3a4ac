package flows

import (
	"context"
	"text/template"

	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
)

type ChatTurn struct {
	Role    string `json:"role" validate:"oneof=user model"`
	Content string `json:"content" validate:"required,max=2000"`
}

type ChatSupportInput struct {
	Message string     `json:"message" validate:"required,max=2000"`
	History []ChatTurn `json:"history" validate:"max=20,dive"`
}

func (in ChatSupportInput) Validate() validators.Result[ChatSupportInput] { return check(in) }

type ChatSupportOutput struct {
	Reply            string   `json:"reply" validate:"required"`
	SuggestedActions []string `json:"suggestedActions" validate:"max=5"`
}

func (out ChatSupportOutput) Validate() validators.Result[ChatSupportOutput] { return check(out) }

var chatSupportFlow = flowDef{
	name: "chat-support",
	system: `You are the store's customer support assistant. Answer questions about products,
orders, shipping and returns. Shipping is free above PKR 10,000. If you cannot help,
suggest contacting support by email.`,
	prompt: template.Must(template.New("chat-support").Parse(`{{range .History}}{{.Role}}: {{.Content}}
{{end}}user: {{.Message}}`)),
	schema: objectSchema(map[string]*genai.Schema{
		"reply": stringSchema("The reply shown to the customer."),
		"suggestedActions": {
			Type:        genai.TypeArray,
			Description: "Up to three short follow-up actions.",
			Items:       stringSchema("A short action label."),
		},
	}, "reply"),
}

func (r *Runner) ChatSupport(ctx context.Context, in ChatSupportInput) (ChatSupportOutput, error) {
	return run[ChatSupportInput, ChatSupportOutput](ctx, r, chatSupportFlow, in)
}
