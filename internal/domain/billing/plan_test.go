package billing

import (
	"testing"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogue() *Catalogue {
	return NewCatalogue(PriceIDs{
		"pro_monthly":  "price_pro_m",
		"pro_yearly":   "price_pro_y",
		"team_monthly": "price_team_m",
	})
}

func TestCatalogue_PlanForPriceID(t *testing.T) {
	c := testCatalogue()

	tests := []struct {
		priceID string
		want    string
	}{
		{"price_pro_m", PlanPro},
		{"price_pro_y", PlanPro},
		{"price_team_m", PlanTeam},
		{"price_unknown", PlanFree},
		{"", PlanFree},
	}
	for _, tt := range tests {
		t.Run(tt.priceID, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PlanForPriceID(tt.priceID).ID)
		})
	}
}

func TestCatalogue_PriceID(t *testing.T) {
	c := testCatalogue()

	tests := []struct {
		name     string
		plan     string
		interval Interval
		want     string
		wantErr  error
	}{
		{"pro monthly", PlanPro, Monthly, "price_pro_m", nil},
		{"pro yearly", "PRO", Yearly, "price_pro_y", nil},
		{"team monthly", PlanTeam, Monthly, "price_team_m", nil},
		{"team yearly not configured", PlanTeam, Yearly, "", ErrPriceNotConfigured},
		{"free", PlanFree, Monthly, "", ErrFreePlanHasNoPrice},
		{"unknown plan", "enterprise", Monthly, "", ErrUnknownPlan},
		{"bad interval", PlanPro, Interval("weekly"), "", ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.PriceID(tt.plan, tt.interval)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogue_Plans(t *testing.T) {
	c := testCatalogue()
	plans := c.Plans()

	require.Len(t, plans, 3)
	assert.Equal(t, []string{PlanFree, PlanPro, PlanTeam}, []string{plans[0].ID, plans[1].ID, plans[2].ID})
	assert.True(t, plans[0].MonthlyPrice.IsZero())
	assert.Equal(t, "20", plans[1].MonthlyPrice.String())

	assert.Equal(t, c.LimitsFor(PlanFree), c.LimitsFor("bogus"))
	assert.Equal(t, Unlimited, c.LimitsFor(PlanTeam).Projects)
}

func TestCheckQuota(t *testing.T) {
	assert.NoError(t, CheckQuota("projects", 3, 2))
	assert.NoError(t, CheckQuota("projects", Unlimited, 1_000_000))

	err := CheckQuota("projects", 3, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "3 projects")
}
