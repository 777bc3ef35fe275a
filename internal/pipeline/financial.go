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

// FinancialUnit evaluates revenue quality, burn, runway, and unit
// economics.
type FinancialUnit struct {
	llm llm.Client
}

// NewFinancialUnit creates a FinancialUnit. A nil client disables
// generated findings; rule-derived findings are used instead.
func NewFinancialUnit(client llm.Client) *FinancialUnit {
	return &FinancialUnit{llm: client}
}

func (u *FinancialUnit) Name() string { return "financial" }

var financialProbes = []fieldProbe{
	func(r model.CompanyRecord) bool { return hasNum(r.MonthlyRevenue) },
	func(r model.CompanyRecord) bool { return hasNum(r.AnnualRevenue) },
	func(r model.CompanyRecord) bool { return hasNum(r.BurnRate) },
	func(r model.CompanyRecord) bool { return hasNum(r.CashBalance) },
	func(r model.CompanyRecord) bool { return hasNum(r.GrossMargin) },
	func(r model.CompanyRecord) bool { return hasNum(r.CAC) },
	func(r model.CompanyRecord) bool { return hasNum(r.LTV) },
	func(r model.CompanyRecord) bool { return hasNum(r.GrowthRate) },
	func(r model.CompanyRecord) bool { return hasNum(r.RetentionRate) },
}

func (u *FinancialUnit) Process(ctx context.Context, rec model.CompanyRecord) (res model.UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("financial unit panic", zap.Any("cause", r))
			res = degradedResult(u.Name(), r)
		}
	}()

	metrics := u.metrics(rec)
	comp := completeness(rec, financialProbes)
	flags := u.flags(rec, metrics, comp)

	findings := generateFindings(ctx, u.llm, u.Name(), u.prompt(rec, metrics))
	llmFailed := u.llm != nil && findings == nil
	if len(findings) == 0 {
		findings = u.ruleFindings(rec, metrics)
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

// metrics derives the quantitative financial picture. Only metrics
// whose inputs are present appear in the map; a zero divisor means the
// ratio is absent, not zero.
func (u *FinancialUnit) metrics(rec model.CompanyRecord) map[string]float64 {
	m := map[string]float64{}

	if rec.MonthlyRevenue != nil {
		m["monthly_revenue"] = *rec.MonthlyRevenue
		m["annual_run_rate"] = *rec.MonthlyRevenue * 12
	}
	if rec.AnnualRevenue != nil {
		m["annual_revenue"] = *rec.AnnualRevenue
	}
	if rec.BurnRate != nil {
		m["burn_rate"] = *rec.BurnRate
	}
	if rec.CashBalance != nil && rec.BurnRate != nil && *rec.BurnRate > 0 {
		m["runway_months"] = numeric.Round1(*rec.CashBalance / *rec.BurnRate)
	}
	if rec.LTV != nil && rec.CAC != nil && *rec.CAC > 0 {
		m["ltv_cac_ratio"] = numeric.Round2(*rec.LTV / *rec.CAC)
	}
	if rec.GrossMargin != nil {
		m["gross_margin"] = *rec.GrossMargin
	}
	if rec.GrowthRate != nil {
		m["growth_rate"] = *rec.GrowthRate
	}
	if rec.RetentionRate != nil {
		m["retention_rate"] = *rec.RetentionRate
	}
	return m
}

func (u *FinancialUnit) flags(rec model.CompanyRecord, metrics map[string]float64, comp float64) []string {
	flags := []string{}

	if comp == 0 {
		flags = append(flags, "CRITICAL: No financial data available in the provided documents")
		return flags
	}

	if runway, ok := metrics["runway_months"]; ok {
		switch {
		case runway <= 3:
			flags = append(flags, "CRITICAL: Less than 3 months runway")
		case runway < 6:
			flags = append(flags, "CRITICAL: Less than 6 months runway")
		case runway < 12:
			flags = append(flags, "HIGH: Limited runway - less than 12 months")
		}
	}

	if ratio, ok := metrics["ltv_cac_ratio"]; ok && ratio < 1 {
		flags = append(flags, "CRITICAL: LTV/CAC ratio below 1 - unsustainable unit economics")
	}

	if margin, ok := metrics["gross_margin"]; ok && margin < 20 {
		flags = append(flags, "HIGH: Gross margin below 20% - weak unit profitability")
	}

	if rec.BurnRate != nil && *rec.BurnRate > 0 && rec.MonthlyRevenue == nil && rec.AnnualRevenue == nil {
		flags = append(flags, "MEDIUM: Burning cash with no reported revenue")
	}

	return flags
}

func (u *FinancialUnit) confidence(rec model.CompanyRecord, llmFailed bool) float64 {
	conf := 0.35
	if rec.MonthlyRevenue != nil || rec.AnnualRevenue != nil {
		conf += 0.15
	}
	if rec.BurnRate != nil && rec.CashBalance != nil {
		conf += 0.15
	}
	if rec.CAC != nil && rec.LTV != nil {
		conf += 0.12
	}
	if rec.GrossMargin != nil {
		conf += 0.05
	}
	if rec.GrowthRate != nil {
		conf += 0.05
	}
	if llmFailed {
		conf -= 0.1
	}
	return numeric.Round2(numeric.Clamp(conf, 0.15, 0.92))
}

func (u *FinancialUnit) prompt(rec model.CompanyRecord, metrics map[string]float64) string {
	data := describe(
		[2]string{"Company", rec.Name},
		[2]string{"Stage", rec.Stage},
		[2]string{"Monthly revenue", fmtNum(rec.MonthlyRevenue)},
		[2]string{"Annual revenue", fmtNum(rec.AnnualRevenue)},
		[2]string{"Burn rate", fmtNum(rec.BurnRate)},
		[2]string{"Cash balance", fmtNum(rec.CashBalance)},
		[2]string{"Gross margin %", fmtNum(rec.GrossMargin)},
		[2]string{"CAC", fmtNum(rec.CAC)},
		[2]string{"LTV", fmtNum(rec.LTV)},
		[2]string{"Growth rate %", fmtNum(rec.GrowthRate)},
	)
	derived := ""
	if runway, ok := metrics["runway_months"]; ok {
		derived += fmt.Sprintf("Computed runway: %.1f months\n", runway)
	}
	if ratio, ok := metrics["ltv_cac_ratio"]; ok {
		derived += fmt.Sprintf("Computed LTV/CAC: %.2f\n", ratio)
	}
	return "You are a startup financial analyst. Based only on the data below, list 3-5 concise findings about financial health as markdown bullets (\"- \"). Do not invent numbers.\n\n" + data + derived
}

// ruleFindings produces deterministic findings when generated ones are
// unavailable. Always returns at least one finding.
func (u *FinancialUnit) ruleFindings(rec model.CompanyRecord, metrics map[string]float64) []string {
	var out []string

	if arr, ok := metrics["annual_run_rate"]; ok {
		out = append(out, fmt.Sprintf("Annualized run rate of $%.0f based on reported monthly revenue", arr))
	} else if rec.AnnualRevenue == nil {
		out = append(out, "Company appears pre-revenue; no recurring revenue reported in the provided documents")
	}
	if runway, ok := metrics["runway_months"]; ok {
		out = append(out, fmt.Sprintf("Current cash position covers %.1f months at the reported burn rate", runway))
	}
	if ratio, ok := metrics["ltv_cac_ratio"]; ok {
		out = append(out, fmt.Sprintf("Unit economics show an LTV/CAC ratio of %.2f", ratio))
	}
	if margin, ok := metrics["gross_margin"]; ok {
		out = append(out, fmt.Sprintf("Reported gross margin of %.0f%%", margin))
	}

	if len(out) == 0 {
		out = append(out, "Financial data in the provided documents is too sparse for quantitative analysis")
	}
	return out
}

func (u *FinancialUnit) recommendations(metrics map[string]float64) []string {
	recs := []string{}

	if runway, ok := metrics["runway_months"]; ok && runway < 12 {
		recs = append(recs, "Develop a financing plan before the current runway is exhausted")
	}
	if ratio, ok := metrics["ltv_cac_ratio"]; ok && ratio < 3 {
		recs = append(recs, "Improve unit economics toward an LTV/CAC ratio of 3 or better")
	}
	if margin, ok := metrics["gross_margin"]; ok && margin < 50 {
		recs = append(recs, "Identify cost levers to lift gross margin")
	}
	if len(recs) == 0 {
		recs = append(recs, "Request a detailed financial model to validate reported figures")
	}
	return recs
}
