package pricing

import (
	"creme-store/models"

	"github.com/shopspring/decimal"
)

type ShippingPolicy struct {
	Fee                   float64
	FreeShippingThreshold float64
}

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
	FreeShip bool    `json:"freeShipping"`
}

// Quote prices a snapshot. Shipping is waived only when the subtotal is strictly above
// the threshold.
func (p ShippingPolicy) Quote(items []models.OrderItem) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.PriceAtPurchase).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	shipping := decimal.NewFromFloat(p.Fee)
	free := subtotal.GreaterThan(decimal.NewFromFloat(p.FreeShippingThreshold))
	if free {
		shipping = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    subtotal.Add(shipping).InexactFloat64(),
		FreeShip: free,
	}
}

// Matches compares a caller-computed total against the quote to the cent.
func (q Quote) Matches(total float64) bool {
	return decimal.NewFromFloat(total).Round(2).Equal(decimal.NewFromFloat(q.Total).Round(2))
}
