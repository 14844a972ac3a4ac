package flows

import (
	"context"
	"text/template"
	"time"

	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
)

type LoyaltyPointsInput struct {
	OrderTotal  float64   `json:"orderTotal" validate:"gte=0"`
	OrderCount  int       `json:"orderCount" validate:"gte=0"`
	MemberSince time.Time `json:"memberSince" validate:"required"`
}

func (in LoyaltyPointsInput) Validate() validators.Result[LoyaltyPointsInput] { return check(in) }

type LoyaltyPointsOutput struct {
	Points int    `json:"points" validate:"gte=0"`
	Tier   string `json:"tier" validate:"oneof=Bronze Silver Gold Platinum"`
	Reason string `json:"reason" validate:"required"`
}

func (out LoyaltyPointsOutput) Validate() validators.Result[LoyaltyPointsOutput] { return check(out) }

var loyaltyPointsFlow = flowDef{
	name: "loyalty-points",
	system: `You award loyalty points for a purchase. Roughly one point per PKR 100 spent, with
a bonus for long standing and frequent customers. Tiers are Bronze, Silver, Gold and Platinum.`,
	prompt: template.Must(template.New("loyalty-points").Parse(`Order total: PKR {{printf "%.2f" .OrderTotal}}
Previous orders: {{.OrderCount}}
Member since: {{.MemberSince.Format "January 2006"}}`)),
	schema: objectSchema(map[string]*genai.Schema{
		"points": {Type: genai.TypeInteger, Description: "Points awarded for this order."},
		"tier": {
			Type:        genai.TypeString,
			Format:      "enum",
			Enum:        []string{"Bronze", "Silver", "Gold", "Platinum"},
			Description: "The customer's tier after this order.",
		},
		"reason": stringSchema("One sentence explaining the award."),
	}, "points", "tier", "reason"),
}

func (r *Runner) LoyaltyPoints(ctx context.Context, in LoyaltyPointsInput) (LoyaltyPointsOutput, error) {
	return run[LoyaltyPointsInput, LoyaltyPointsOutput](ctx, r, loyaltyPointsFlow, in)
}
