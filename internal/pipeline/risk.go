package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/numeric"
	"github.com/sells-group/startup-analyst/pkg/llm"
)

// RiskUnit scores financial, market, and team risk on a 0-100 scale
// (higher is riskier) using the embedded rule tables. Categories with
// no underlying data score the configured baseline.
type RiskUnit struct {
	llm   llm.Client
	rules RuleSet
}

// NewRiskUnit creates a RiskUnit using the embedded rule tables.
func NewRiskUnit(client llm.Client) *RiskUnit {
	return &RiskUnit{llm: client, rules: defaultRules}
}

func (u *RiskUnit) Name() string { return "risk" }

var riskProbes = []fieldProbe{
	func(r model.CompanyRecord) bool { return hasNum(r.BurnRate) },
	func(r model.CompanyRecord) bool { return hasNum(r.CashBalance) },
	func(r model.CompanyRecord) bool { return hasNum(r.MonthlyRevenue) || hasNum(r.AnnualRevenue) },
	func(r model.CompanyRecord) bool { return r.Sector != "" },
	func(r model.CompanyRecord) bool { return r.Stage != "" },
	func(r model.CompanyRecord) bool { return hasNum(r.CustomerCount) },
	func(r model.CompanyRecord) bool { return len(r.Founders) > 0 },
	func(r model.CompanyRecord) bool { return len(r.KeyTeam) > 0 },
}

func (u *RiskUnit) Process(ctx context.Context, rec model.CompanyRecord) (res model.UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("risk unit panic", zap.Any("cause", r))
			res = degradedResult(u.Name(), r)
		}
	}()

	financial := u.financialRisk(rec)
	market := u.marketRisk(rec)
	team := u.teamRisk(rec)
	overall := numeric.Round1((financial + market + team) / 3)

	metrics := map[string]float64{
		"financial_risk": financial,
		"market_risk":    market,
		"team_risk":      team,
		"overall_risk":   overall,
	}

	comp := completeness(rec, riskProbes)
	flags := u.flags(rec, overall, comp)

	findings := generateFindings(ctx, u.llm, u.Name(), u.prompt(rec, metrics))
	llmFailed := u.llm != nil && findings == nil
	if len(findings) == 0 {
		findings = u.ruleFindings(metrics)
	}

	return model.UnitResult{
		UnitName:        u.Name(),
		Confidence:      u.confidence(rec, llmFailed || u.llm == nil),
		Completeness:    numeric.Round2(comp),
		Findings:        findings,
		Metrics:         metrics,
		Recommendations: u.recommendations(metrics),
		Flags:           flags,
		GeneratedAt:     time.Now().UTC(),
	}
}

func (u *RiskUnit) financialRisk(rec model.CompanyRecord) float64 {
	if rec.CashBalance == nil || rec.BurnRate == nil || *rec.BurnRate <= 0 {
		return u.rules.BaselineScore
	}
	runway := *rec.CashBalance / *rec.BurnRate
	return bucketScore(u.rules.RunwayRisk, runway, u.rules.RunwayDefault)
}

func (u *RiskUnit) marketRisk(rec model.CompanyRecord) float64 {
	var scores []float64
	if rec.Sector != "" {
		scores = append(scores, sectorScore(u.rules.SectorRisk, rec.Sector, u.rules.SectorDefault))
	}
	if rec.CustomerCount != nil {
		scores = append(scores, bucketScore(u.rules.CustomerRisk, *rec.CustomerCount, u.rules.CustomerDefault))
	}
	if len(scores) == 0 {
		return u.rules.BaselineScore
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return numeric.Round1(sum / float64(len(scores)))
}

func (u *RiskUnit) teamRisk(rec model.CompanyRecord) float64 {
	size := len(rec.Founders) + len(rec.KeyTeam)
	switch {
	case size == 0:
		return u.rules.BaselineScore
	case size == 1 && isAdvancedStage(rec.Stage):
		return u.rules.TeamRisk.SoloAdvanced
	case size == 1:
		return u.rules.TeamRisk.SoloEarly
	case size < 5:
		return u.rules.TeamRisk.Small
	default:
		return u.rules.TeamRisk.Large
	}
}

func (u *RiskUnit) flags(rec model.CompanyRecord, overall, comp float64) []string {
	flags := []string{}

	if rec.CashBalance != nil && rec.BurnRate != nil && *rec.BurnRate > 0 {
		runway := *rec.CashBalance / *rec.BurnRate
		if runway < 6 {
			flags = append(flags, "CRITICAL: Less than 6 months runway")
		} else if runway < 12 {
			flags = append(flags, "HIGH: Limited runway increases execution risk")
		}
	}

	switch {
	case overall >= 75:
		flags = append(flags, fmt.Sprintf("CRITICAL: Overall risk score %.0f indicates severe risk exposure", overall))
	case overall >= 60:
		flags = append(flags, fmt.Sprintf("HIGH: Elevated overall risk score of %.0f", overall))
	}

	if comp == 0 {
		flags = append(flags, "HIGH: Risk assessment relies entirely on default baselines - no underlying data")
	}

	return flags
}

func (u *RiskUnit) confidence(rec model.CompanyRecord, llmFailed bool) float64 {
	conf := 0.3
	if rec.BurnRate != nil && rec.CashBalance != nil {
		conf += 0.15
	}
	if rec.Sector != "" {
		conf += 0.1
	}
	if len(rec.Founders)+len(rec.KeyTeam) > 0 {
		conf += 0.1
	}
	if rec.CustomerCount != nil {
		conf += 0.08
	}
	if rec.Stage != "" {
		conf += 0.05
	}
	if llmFailed {
		conf -= 0.1
	}
	return numeric.Round2(numeric.Clamp(conf, 0.15, 0.88))
}

func (u *RiskUnit) prompt(rec model.CompanyRecord, metrics map[string]float64) string {
	data := describe(
		[2]string{"Company", rec.Name},
		[2]string{"Sector", rec.Sector},
		[2]string{"Stage", rec.Stage},
		[2]string{"Burn rate", fmtNum(rec.BurnRate)},
		[2]string{"Cash balance", fmtNum(rec.CashBalance)},
		[2]string{"Customers", fmtNum(rec.CustomerCount)},
	)
	scores := fmt.Sprintf("Computed risk scores (0-100, higher is riskier): financial %.0f, market %.0f, team %.0f, overall %.0f\n",
		metrics["financial_risk"], metrics["market_risk"], metrics["team_risk"], metrics["overall_risk"])
	return "You are a venture risk analyst. Based only on the data below, list 3-5 concise risk findings as markdown bullets (\"- \"). Do not invent facts.\n\n" + data + scores
}

func (u *RiskUnit) ruleFindings(metrics map[string]float64) []string {
	overall := metrics["overall_risk"]
	level := "Low"
	switch {
	case overall >= 75:
		level = "Very High"
	case overall >= 50:
		level = "High"
	case overall >= 25:
		level = "Medium"
	}

	findings := []string{
		fmt.Sprintf("Overall risk level assessed as %s (score %.0f of 100)", level, overall),
	}
	if metrics["financial_risk"] >= 60 {
		findings = append(findings, "Financial position is the dominant risk driver")
	}
	if metrics["market_risk"] >= 60 {
		findings = append(findings, "Market positioning carries elevated risk")
	}
	if metrics["team_risk"] >= 60 {
		findings = append(findings, "Team composition is thin for the company's stage")
	}
	return findings
}

func (u *RiskUnit) recommendations(metrics map[string]float64) []string {
	recs := []string{}
	if metrics["financial_risk"] >= 60 {
		recs = append(recs, "Stress test the financial plan against a delayed fundraise")
	}
	if metrics["market_risk"] >= 60 {
		recs = append(recs, "Commission independent validation of market assumptions")
	}
	if metrics["team_risk"] >= 60 {
		recs = append(recs, "Assess key-person dependency and hiring plan")
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain standard diligence on identified risk areas")
	}
	return recs
}
