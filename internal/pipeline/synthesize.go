package pipeline

import (
	"strings"
	"time"

	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/numeric"
)

// Recommendation tiers, from the scoring ladder in recommendation().
const (
	RecommendationStrong  = "STRONGLY RECOMMEND - High potential with manageable risks"
	RecommendationGood    = "RECOMMEND - Good opportunity with some considerations"
	RecommendationCaution = "PROCEED WITH CAUTION - Mixed signals, thorough due diligence required"
	RecommendationNo      = "DO NOT RECOMMEND - Significant risks outweigh potential"
	RecommendationFailed  = "INSUFFICIENT DATA - ANALYSIS FAILED"
)

const (
	placeholderNoFindings = "No analysis available"
	maxHighlights         = 10
	maxNextSteps          = 5
)

// sectionOrder fixes the order units contribute to highlights and
// merged metrics.
var sectionOrder = []string{"financial", "risk", "market"}

// Synthesize combines unit results into the final report. The report
// is structurally complete even when every unit degraded.
func Synthesize(req model.AnalysisRequest, rec model.CompanyRecord, results []model.UnitResult, runID string) *model.Report {
	score := overallScore(results)
	crit := totalFlags(results, model.SeverityCritical)
	high := totalFlags(results, model.SeverityHigh)
	verdict := recommendation(score, crit, high)

	name := rec.Name
	if name == "" {
		name = req.CompanyName
	}

	report := &model.Report{
		Metadata: model.ReportMetadata{
			CompanyName:       name,
			RunID:             runID,
			AnalysisDate:      time.Now().UTC(),
			DocumentsAnalyzed: len(req.Documents),
		},
		ExecutiveSummary: model.ExecutiveSummary{
			OverallScore:     score,
			Recommendation:   verdict,
			KeyHighlights:    highlights(results),
			CriticalConcerns: criticalConcerns(results),
		},
		CompanyOverview: model.CompanyOverview{
			Name:        name,
			Sector:      rec.Sector,
			Stage:       rec.Stage,
			Location:    rec.Location,
			Website:     rec.Website,
			Description: rec.Description,
		},
		Financial:     section(findUnit(results, "financial")),
		Market:        section(findUnit(results, "market")),
		Risk:          section(findUnit(results, "risk")),
		Metrics:       mergedMetrics(rec, results),
		NextSteps:     nextSteps(verdict, results),
		UnitSummaries: unitSummaries(results),
	}
	return report
}

// FailureReport builds the terminal report for a run that could not
// execute at all. Same shape as a normal report, zeroed scores.
func FailureReport(req model.AnalysisRequest, runID, cause string) *model.Report {
	return &model.Report{
		Metadata: model.ReportMetadata{
			CompanyName:       req.CompanyName,
			RunID:             runID,
			AnalysisDate:      time.Now().UTC(),
			DocumentsAnalyzed: len(req.Documents),
		},
		ExecutiveSummary: model.ExecutiveSummary{
			OverallScore:     0,
			Recommendation:   RecommendationFailed,
			KeyHighlights:    []string{},
			CriticalConcerns: []string{"CRITICAL: " + cause},
		},
		CompanyOverview: model.CompanyOverview{Name: req.CompanyName},
		Financial:       section(nil),
		Market:          section(nil),
		Risk:            section(nil),
		Metrics:         map[string]float64{},
		NextSteps:       []string{"Resolve the analysis failure and rerun", "Verify document formats and service configuration"},
		UnitSummaries:   []model.UnitSummary{},
	}
}

// overallScore computes the weighted composite. Each unit contributes
// confidence scaled to 0-100 minus flag penalties, floored at zero,
// then weighted by unit name. The sum is normalized by the weight
// actually applied so missing units don't drag the score down.
func overallScore(results []model.UnitResult) float64 {
	var weightedSum, appliedWeight float64

	for _, r := range results {
		contrib := r.Confidence*100 -
			25*float64(model.CountFlags(r.Flags, model.SeverityCritical)) -
			10*float64(model.CountFlags(r.Flags, model.SeverityHigh))
		if contrib < 0 {
			contrib = 0
		}

		w := unitWeight(r.UnitName)
		weightedSum += contrib * w
		appliedWeight += w
	}

	if appliedWeight == 0 {
		return 0
	}
	return numeric.Round1(numeric.Clamp(weightedSum/appliedWeight, 0, 100))
}

func unitWeight(name string) float64 {
	lower := strings.ToLower(name)
	for key, w := range defaultRules.UnitWeights {
		if strings.Contains(lower, key) {
			return w
		}
	}
	return defaultRules.DefaultUnitWeight
}

// recommendation maps the composite score and flag counts to a verdict.
func recommendation(score float64, critical, high int) string {
	switch {
	case score >= 80 && critical == 0 && high <= 1:
		return RecommendationStrong
	case score >= 65 && critical == 0:
		return RecommendationGood
	case score >= 50 && critical <= 1:
		return RecommendationCaution
	default:
		return RecommendationNo
	}
}

func totalFlags(results []model.UnitResult, sev model.FlagSeverity) int {
	n := 0
	for _, r := range results {
		n += model.CountFlags(r.Flags, sev)
	}
	return n
}

func findUnit(results []model.UnitResult, key string) *model.UnitResult {
	for i := range results {
		if strings.Contains(strings.ToLower(results[i].UnitName), key) {
			return &results[i]
		}
	}
	return nil
}

// section renders one unit into its report section. A missing unit
// yields a placeholder section, never missing keys.
func section(r *model.UnitResult) model.SectionAnalysis {
	if r == nil {
		return model.SectionAnalysis{
			Findings:        []string{placeholderNoFindings},
			Recommendations: []string{},
			Flags:           []string{},
		}
	}
	s := model.SectionAnalysis{
		Findings:        append([]string{}, r.Findings...),
		Recommendations: append([]string{}, r.Recommendations...),
		Flags:           append([]string{}, r.Flags...),
		Confidence:      r.Confidence,
		Completeness:    r.Completeness,
	}
	if len(s.Findings) == 0 {
		s.Findings = []string{placeholderNoFindings}
	}
	return s
}

func highlights(results []model.UnitResult) []string {
	out := []string{}
	for _, key := range sectionOrder {
		r := findUnit(results, key)
		if r == nil {
			continue
		}
		for _, f := range r.Findings {
			if len(out) >= maxHighlights {
				return out
			}
			out = append(out, f)
		}
	}
	return out
}

func criticalConcerns(results []model.UnitResult) []string {
	out := []string{}
	for _, key := range sectionOrder {
		if r := findUnit(results, key); r != nil {
			out = append(out, r.CriticalFlags()...)
		}
	}
	return out
}

// mergedMetrics flattens unit metrics into one map, in section order
// so a later unit wins a name collision deterministically. Extraction
// confidence rides along under its own keys.
func mergedMetrics(rec model.CompanyRecord, results []model.UnitResult) map[string]float64 {
	out := map[string]float64{}
	for _, key := range sectionOrder {
		if r := findUnit(results, key); r != nil {
			for k, v := range r.Metrics {
				out[k] = v
			}
		}
	}
	for k, v := range rec.ExtractionConfidence {
		out["extraction_"+k] = v
	}
	return out
}

func nextSteps(verdict string, results []model.UnitResult) []string {
	steps := []string{
		"Schedule management presentation and deep-dive Q&A",
		"Conduct customer reference calls",
		"Verify financial statements with supporting documentation",
	}

	var flagText strings.Builder
	for _, r := range results {
		for _, f := range r.Flags {
			flagText.WriteString(strings.ToLower(f))
			flagText.WriteString("\n")
		}
	}
	all := flagText.String()

	if strings.Contains(all, "runway") {
		steps = append(steps, "Develop a financing plan addressing the limited runway")
	}
	if strings.Contains(all, "unit economics") || strings.Contains(all, "ltv") {
		steps = append(steps, "Audit CAC and LTV calculations with raw cohort data")
	}
	if strings.Contains(all, "customer") {
		steps = append(steps, "Deep dive into customer contracts and retention metrics")
	}

	if verdict == RecommendationNo {
		steps = append([]string{"Document pass rationale for the investment committee"}, steps...)
	}

	if len(steps) > maxNextSteps {
		steps = steps[:maxNextSteps]
	}
	return steps
}

func unitSummaries(results []model.UnitResult) []model.UnitSummary {
	out := make([]model.UnitSummary, 0, len(results))
	for _, r := range results {
		key := "No findings"
		if len(r.Findings) > 0 {
			key = r.Findings[0]
		}
		out = append(out, model.UnitSummary{
			Unit:       r.UnitName,
			Confidence: r.Confidence,
			KeyFinding: key,
		})
	}
	return out
}
