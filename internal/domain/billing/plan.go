// Package billing holds the subscription plan table and the limits each plan grants.
package billing

import (
	"fmt"
	"strings"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Plan identifiers
const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanTeam = "team"
)

// Interval is a billing period
type Interval string

const (
	Monthly Interval = "monthly"
	Yearly  Interval = "yearly"
)

// Unlimited marks a limit with no cap
const Unlimited = -1

var (
	ErrUnknownPlan        = shared.NewDomainError("UNKNOWN_PLAN", "Unknown plan")
	ErrInvalidInterval    = shared.NewDomainError("INVALID_INTERVAL", "Interval must be monthly or yearly")
	ErrFreePlanHasNoPrice = shared.NewDomainError("FREE_PLAN", "The free plan cannot be purchased")
	ErrPriceNotConfigured = shared.NewDomainError("PRICE_NOT_CONFIGURED", "No price is configured for this plan")
)

// Limits caps usage per plan
type Limits struct {
	MessagesPerDay      int `json:"messages_per_day"`
	Projects            int `json:"projects"`
	DeploymentsPerMonth int `json:"deployments_per_month"`
	Personas            int `json:"personas"`
}

// Plan is one row of the plan table
type Plan struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	MonthlyPrice   decimal.Decimal `json:"monthly_price"`
	YearlyPrice    decimal.Decimal `json:"yearly_price"`
	MonthlyPriceID string          `json:"-"`
	YearlyPriceID  string          `json:"-"`
	Limits         Limits          `json:"limits"`
	Features       []string        `json:"features"`
}

// PriceIDs maps "<plan>_<interval>" (e.g. "pro_monthly") to a Stripe price id
type PriceIDs map[string]string

// Catalogue is the plan lookup table
type Catalogue struct {
	plans []Plan
}

// NewCatalogue builds the plan table with the configured Stripe price ids
func NewCatalogue(priceIDs PriceIDs) *Catalogue {
	plans := []Plan{
		{
			ID:       PlanFree,
			Name:     "Free",
			Limits:   Limits{MessagesPerDay: 50, Projects: 3, DeploymentsPerMonth: 10, Personas: 1},
			Features: []string{"Chat with builder, mentor and reviewer modes", "3 projects", "Community support"},
		},
		{
			ID:           PlanPro,
			Name:         "Pro",
			MonthlyPrice: decimal.NewFromInt(20),
			YearlyPrice:  decimal.NewFromInt(200),
			Limits:       Limits{MessagesPerDay: 1000, Projects: 50, DeploymentsPerMonth: 200, Personas: 10},
			Features:     []string{"Auto-fix deployments", "Custom domains", "SEO tooling", "Personas"},
		},
		{
			ID:           PlanTeam,
			Name:         "Team",
			MonthlyPrice: decimal.NewFromInt(50),
			YearlyPrice:  decimal.NewFromInt(500),
			Limits:       Limits{MessagesPerDay: Unlimited, Projects: Unlimited, DeploymentsPerMonth: 1000, Personas: 50},
			Features:     []string{"Everything in Pro", "Unlimited projects", "Priority support"},
		},
	}
	for i := range plans {
		plans[i].MonthlyPriceID = priceIDs[plans[i].ID+"_"+string(Monthly)]
		plans[i].YearlyPriceID = priceIDs[plans[i].ID+"_"+string(Yearly)]
	}
	return &Catalogue{plans: plans}
}

// Plans returns the table in display order
func (c *Catalogue) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// PlanByID looks up a plan
func (c *Catalogue) PlanByID(id string) (Plan, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanForPriceID maps a Stripe price back to its plan. Unknown prices map to free.
func (c *Catalogue) PlanForPriceID(priceID string) Plan {
	if priceID != "" {
		for _, p := range c.plans {
			if p.MonthlyPriceID == priceID || p.YearlyPriceID == priceID {
				return p
			}
		}
	}
	free, _ := c.PlanByID(PlanFree)
	return free
}

// PriceID returns the Stripe price for a plan and interval
func (c *Catalogue) PriceID(planID string, interval Interval) (string, error) {
	p, ok := c.PlanByID(planID)
	if !ok {
		return "", ErrUnknownPlan
	}
	if p.ID == PlanFree {
		return "", ErrFreePlanHasNoPrice
	}
	var id string
	switch interval {
	case Monthly:
		id = p.MonthlyPriceID
	case Yearly:
		id = p.YearlyPriceID
	default:
		return "", ErrInvalidInterval
	}
	if id == "" {
		return "", ErrPriceNotConfigured
	}
	return id, nil
}

// LimitsFor returns the limits of a plan, falling back to free
func (c *Catalogue) LimitsFor(planID string) Limits {
	if p, ok := c.PlanByID(planID); ok {
		return p.Limits
	}
	free, _ := c.PlanByID(PlanFree)
	return free.Limits
}

// CheckQuota fails with ErrQuotaExceeded once used reaches limit
func CheckQuota(what string, limit int, used int64) error {
	if limit == Unlimited || used < int64(limit) {
		return nil
	}
	return shared.NewDomainError(shared.ErrQuotaExceeded.Code,
		fmt.Sprintf("Your plan allows %d %s; upgrade to continue", limit, what))
}
