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

// Market maturity buckets derived from customer count.
const (
	maturityEarly  = 0
	maturityGrowth = 1
	maturityScale  = 2
)

// MarketUnit evaluates market positioning, traction, and competitive
// standing.
type MarketUnit struct {
	llm llm.Client
}

// NewMarketUnit creates a MarketUnit. A nil client disables generated
// findings; rule-derived findings are used instead.
func NewMarketUnit(client llm.Client) *MarketUnit {
	return &MarketUnit{llm: client}
}

func (u *MarketUnit) Name() string { return "market" }

var marketProbes = []fieldProbe{
	func(r model.CompanyRecord) bool { return r.Sector != "" },
	func(r model.CompanyRecord) bool { return r.TargetMarket != "" },
	func(r model.CompanyRecord) bool { return r.Product != "" },
	func(r model.CompanyRecord) bool { return len(r.Advantages) > 0 },
	func(r model.CompanyRecord) bool { return hasNum(r.CustomerCount) },
	func(r model.CompanyRecord) bool { return hasNum(r.GrowthRate) },
}

func (u *MarketUnit) Process(ctx context.Context, rec model.CompanyRecord) (res model.UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("market unit panic", zap.Any("cause", r))
			res = degradedResult(u.Name(), r)
		}
	}()

	metrics := u.metrics(rec)
	comp := completeness(rec, marketProbes)
	flags := u.flags(rec)

	findings := generateFindings(ctx, u.llm, u.Name(), u.prompt(rec))
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
		Recommendations: u.recommendations(rec),
		Flags:           flags,
		GeneratedAt:     time.Now().UTC(),
	}
}

func (u *MarketUnit) metrics(rec model.CompanyRecord) map[string]float64 {
	m := map[string]float64{}

	if rec.CustomerCount != nil {
		m["customer_count"] = *rec.CustomerCount
		switch {
		case *rec.CustomerCount < 10:
			m["market_maturity"] = maturityEarly
		case *rec.CustomerCount < 100:
			m["market_maturity"] = maturityGrowth
		default:
			m["market_maturity"] = maturityScale
		}
	}
	if rec.GrowthRate != nil {
		m["growth_rate"] = *rec.GrowthRate
	}
	if rec.RetentionRate != nil {
		m["retention_rate"] = *rec.RetentionRate
	}
	m["advantage_count"] = float64(len(rec.Advantages))
	return m
}

func (u *MarketUnit) flags(rec model.CompanyRecord) []string {
	flags := []string{}

	if rec.CustomerCount != nil && *rec.CustomerCount < 10 && isAdvancedStage(rec.Stage) {
		flags = append(flags, fmt.Sprintf("HIGH: Very small customer base for a %s company", rec.Stage))
	}
	if rec.Sector == "" && rec.TargetMarket == "" {
		flags = append(flags, "MEDIUM: No sector or target market identified")
	}
	if len(rec.Advantages) == 0 && rec.Product != "" {
		flags = append(flags, "MEDIUM: No competitive advantages articulated")
	}

	return flags
}

func (u *MarketUnit) confidence(rec model.CompanyRecord, llmFailed bool) float64 {
	conf := 0.3
	if rec.Sector != "" {
		conf += 0.12
	}
	if rec.TargetMarket != "" {
		conf += 0.12
	}
	if rec.CustomerCount != nil {
		conf += 0.1
	}
	if len(rec.Advantages) > 0 {
		conf += 0.08
	}
	if rec.Product != "" {
		conf += 0.05
	}
	if llmFailed {
		conf -= 0.1
	}
	return numeric.Round2(numeric.Clamp(conf, 0.15, 0.82))
}

func (u *MarketUnit) prompt(rec model.CompanyRecord) string {
	advantages := ""
	if len(rec.Advantages) > 0 {
		for _, a := range rec.Advantages {
			advantages += "  - " + a + "\n"
		}
	}
	data := describe(
		[2]string{"Company", rec.Name},
		[2]string{"Sector", rec.Sector},
		[2]string{"Stage", rec.Stage},
		[2]string{"Target market", rec.TargetMarket},
		[2]string{"Product", rec.Product},
		[2]string{"Customers", fmtNum(rec.CustomerCount)},
		[2]string{"Growth rate %", fmtNum(rec.GrowthRate)},
	)
	if advantages != "" {
		data += "Stated advantages:\n" + advantages
	}
	return "You are a startup market analyst. Based only on the data below, list 3-5 concise findings about market position and traction as markdown bullets (\"- \"). Do not invent facts.\n\n" + data
}

func (u *MarketUnit) ruleFindings(rec model.CompanyRecord, metrics map[string]float64) []string {
	var out []string

	if maturity, ok := metrics["market_maturity"]; ok {
		switch maturity {
		case maturityEarly:
			out = append(out, "Customer base is at an early validation stage with fewer than 10 customers")
		case maturityGrowth:
			out = append(out, "Customer traction is in a growth phase with double-digit customers")
		default:
			out = append(out, "Customer base has reached scale with 100 or more customers")
		}
	}
	if rec.TargetMarket != "" {
		out = append(out, "Target market identified as: "+rec.TargetMarket)
	}
	if n := len(rec.Advantages); n > 0 {
		out = append(out, fmt.Sprintf("Company articulates %d competitive advantages", n))
	}

	if len(out) == 0 {
		out = append(out, "Market positioning cannot be assessed from the provided documents")
	}
	return out
}

func (u *MarketUnit) recommendations(rec model.CompanyRecord) []string {
	recs := []string{}

	if rec.CustomerCount != nil && *rec.CustomerCount < 100 {
		recs = append(recs, "Validate repeatability of the sales motion beyond early adopters")
	}
	if rec.TargetMarket == "" {
		recs = append(recs, "Request a bottoms-up market sizing from the founding team")
	}
	if len(rec.Advantages) == 0 {
		recs = append(recs, "Probe for defensible differentiation versus incumbents")
	}
	if len(recs) == 0 {
		recs = append(recs, "Benchmark growth against sector comparables")
	}
	return recs
}
