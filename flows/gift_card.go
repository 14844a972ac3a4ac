package flows

import (
	"context"
	"strings"
	"text/template"

	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

type GiftCardInput struct {
	RecipientName string  `json:"recipientName" validate:"required,max=100"`
	SenderName    string  `json:"senderName" validate:"required,max=100"`
	Occasion      string  `json:"occasion" validate:"required,max=100"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Tone          string  `json:"tone" validate:"omitempty,oneof=warm playful elegant formal"`
}

func (in GiftCardInput) Validate() validators.Result[GiftCardInput] { return check(in) }

type GiftCardOutput struct {
	Headline string `json:"headline" validate:"required,max=120"`
	Message  string `json:"message" validate:"required"`
	Code     string `json:"code"`
}

func (out GiftCardOutput) Validate() validators.Result[GiftCardOutput] { return check(out) }

var giftCardFlow = flowDef{
	name:   "gift-card",
	system: `You write the headline and message printed on a store gift card.`,
	prompt: template.Must(template.New("gift-card").Parse(`Write a gift card from {{.SenderName}} to {{.RecipientName}} for {{.Occasion}}.
The card is worth PKR {{printf "%.0f" .Amount}}.
Tone: {{if .Tone}}{{.Tone}}{{else}}warm{{end}}.`)),
	schema: objectSchema(map[string]*genai.Schema{
		"headline": stringSchema("A short headline for the card."),
		"message":  stringSchema("Two or three sentences for the card body."),
	}, "headline", "message"),
}

// GiftCard drafts the card text; the redeemable code is generated here, never by the model.
func (r *Runner) GiftCard(ctx context.Context, in GiftCardInput) (GiftCardOutput, error) {
	out, err := run[GiftCardInput, GiftCardOutput](ctx, r, giftCardFlow, in)
	if err != nil {
		return out, err
	}
	out.Code = giftCardCode()
	return out, nil
}

func giftCardCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "CRGC-" + id[:4] + "-" + id[4:8] + "-" + id[8:12]
}
