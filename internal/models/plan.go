package models

import "github.com/shopspring/decimal"

// PlanDonate is the nominal donation plan. Its settlement amount is a tiny
// flat constant regardless of asset or catalog price.
const PlanDonate = "donate"

// Plan is a catalog entry the storefront sells. Prices are fixed in USD.
type Plan struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Audience   string          `json:"audience"`
	PriceUSD   decimal.Decimal `json:"price_usd"`
	PriceLabel string          `json:"price_label"`
	Period     string          `json:"period"`
}

var planCatalog = []Plan{
	{
		ID:         PlanDonate,
		Name:       "Donation",
		Audience:   "Supporters",
		PriceUSD:   decimal.NewFromFloat(0.001),
		PriceLabel: "$0.001",
		Period:     "once",
	},
	{
		ID:         "explore",
		Name:       "Explore",
		Audience:   "First-timers who want to poke around",
		PriceUSD:   decimal.NewFromInt(10),
		PriceLabel: "$10",
		Period:     "month",
	},
	{
		ID:         "savings",
		Name:       "Savings",
		Audience:   "Regulars optimizing their spend",
		PriceUSD:   decimal.NewFromInt(20),
		PriceLabel: "$20",
		Period:     "month",
	},
	{
		ID:         "standard",
		Name:       "Standard",
		Audience:   "Teams that want the full toolkit",
		PriceUSD:   decimal.NewFromInt(30),
		PriceLabel: "$30",
		Period:     "month",
	},
}

// Plans returns the full plan catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

// PlanByID looks up a catalog plan.
func PlanByID(id string) (Plan, bool) {
	for _, p := range planCatalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
