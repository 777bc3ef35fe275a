package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/startup-analyst/internal/model"
)

func TestRiskEmptyRecordScoresBaseline(t *testing.T) {
	u := NewRiskUnit(nil)
	res := u.Process(context.Background(), model.CompanyRecord{})

	assert.Equal(t, 50.0, res.Metrics["financial_risk"])
	assert.Equal(t, 50.0, res.Metrics["market_risk"])
	assert.Equal(t, 50.0, res.Metrics["team_risk"])
	assert.Equal(t, 50.0, res.Metrics["overall_risk"])
	assert.Contains(t, res.Flags, "HIGH: Risk assessment relies entirely on default baselines - no underlying data")
	assert.InDelta(t, 0.2, res.Confidence, 0.001)
}

func TestRiskRunwayBuckets(t *testing.T) {
	tests := []struct {
		name string
		cash float64
		want float64
	}{
		{"two months", 200_000, 90},
		{"five months", 500_000, 80},
		{"ten months", 1_000_000, 60},
		{"fifteen months", 1_500_000, 45},
		{"two years", 2_400_000, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewRiskUnit(nil)
			rec := model.CompanyRecord{
				CashBalance: fptr(tt.cash),
				BurnRate:    fptr(100_000),
			}
			res := u.Process(context.Background(), rec)
			assert.Equal(t, tt.want, res.Metrics["financial_risk"])
		})
	}
}

func TestRiskShortRunwayFlags(t *testing.T) {
	u := NewRiskUnit(nil)
	rec := model.CompanyRecord{
		CashBalance: fptr(400_000),
		BurnRate:    fptr(100_000),
	}
	res := u.Process(context.Background(), rec)

	assert.Contains(t, res.Flags, "CRITICAL: Less than 6 months runway")
}

func TestRiskSectorScoring(t *testing.T) {
	u := NewRiskUnit(nil)

	high := u.Process(context.Background(), model.CompanyRecord{Sector: "Crypto Lending"})
	low := u.Process(context.Background(), model.CompanyRecord{Sector: "B2B SaaS"})

	assert.Equal(t, 75.0, high.Metrics["market_risk"])
	assert.Equal(t, 45.0, low.Metrics["market_risk"])
}

func TestRiskMarketMeansSectorAndCustomers(t *testing.T) {
	u := NewRiskUnit(nil)
	rec := model.CompanyRecord{
		Sector:        "developer tools",
		CustomerCount: fptr(250),
	}
	res := u.Process(context.Background(), rec)

	// sector 45, customers 40
	assert.InDelta(t, 42.5, res.Metrics["market_risk"], 0.01)
}

func TestRiskTeamScoring(t *testing.T) {
	tests := []struct {
		name string
		rec  model.CompanyRecord
		want float64
	}{
		{"solo at series b", model.CompanyRecord{Founders: []string{"A"}, Stage: "Series B"}, 75},
		{"solo pre-seed", model.CompanyRecord{Founders: []string{"A"}, Stage: "Pre-seed"}, 60},
		{"small team", model.CompanyRecord{Founders: []string{"A", "B"}, KeyTeam: []string{"C"}}, 45},
		{"large team", model.CompanyRecord{Founders: []string{"A", "B"}, KeyTeam: []string{"C", "D", "E"}}, 35},
		{"no team data", model.CompanyRecord{}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewRiskUnit(nil)
			res := u.Process(context.Background(), tt.rec)
			assert.Equal(t, tt.want, res.Metrics["team_risk"])
		})
	}
}

func TestRiskSevereExposureFlag(t *testing.T) {
	u := NewRiskUnit(nil)
	rec := model.CompanyRecord{
		CashBalance: fptr(150_000),
		BurnRate:    fptr(100_000),
		Sector:      "crypto",
		Founders:    []string{"A"},
		Stage:       "Series A",
	}
	res := u.Process(context.Background(), rec)

	// financial 90, market 75, team 75 -> overall 80
	require.Equal(t, 80.0, res.Metrics["overall_risk"])
	assert.Contains(t, res.Flags, "CRITICAL: Overall risk score 80 indicates severe risk exposure")
}

func TestRiskFindingsAlwaysPresent(t *testing.T) {
	u := NewRiskUnit(nil)
	res := u.Process(context.Background(), model.CompanyRecord{})

	require.NotEmpty(t, res.Findings)
	assert.Contains(t, res.Findings[0], "Overall risk level")
}
