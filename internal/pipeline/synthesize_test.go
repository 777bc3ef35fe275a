package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/startup-analyst/internal/model"
)

func unitRes(name string, conf float64, flags ...string) model.UnitResult {
	if flags == nil {
		flags = []string{}
	}
	return model.UnitResult{
		UnitName:        name,
		Confidence:      conf,
		Completeness:    0.8,
		Findings:        []string{name + " finding one", name + " finding two"},
		Metrics:         map[string]float64{name + "_metric": 1},
		Recommendations: []string{name + " recommendation"},
		Flags:           flags,
	}
}

func TestOverallScoreWeighting(t *testing.T) {
	// 80*.30 + 60*.25 + 40*.20 over .75 applied weight.
	results := []model.UnitResult{
		unitRes("financial", 0.8),
		unitRes("risk", 0.6),
		unitRes("market", 0.4),
	}
	assert.InDelta(t, 62.7, overallScore(results), 0.05)
}

func TestOverallScoreFlagPenalties(t *testing.T) {
	results := []model.UnitResult{
		unitRes("financial", 0.8, "CRITICAL: bad", "HIGH: shaky"),
	}
	// 80 - 25 - 10 = 45, sole unit so weighting cancels.
	assert.InDelta(t, 45.0, overallScore(results), 0.001)
}

func TestOverallScoreContributionFloor(t *testing.T) {
	results := []model.UnitResult{
		unitRes("financial", 0.2, "CRITICAL: a", "CRITICAL: b"),
	}
	assert.Equal(t, 0.0, overallScore(results))
}

func TestOverallScoreUnknownUnitGetsDefaultWeight(t *testing.T) {
	results := []model.UnitResult{
		unitRes("financial", 0.8),
		unitRes("team", 0.4),
	}
	// (80*.30 + 40*.10) / .40 = 70
	assert.InDelta(t, 70.0, overallScore(results), 0.001)
}

func TestOverallScoreNoUnits(t *testing.T) {
	assert.Equal(t, 0.0, overallScore(nil))
}

func TestRecommendationLadder(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		critical int
		high     int
		want     string
	}{
		{"strong", 85, 0, 1, RecommendationStrong},
		{"strong blocked by highs", 85, 0, 2, RecommendationGood},
		{"good", 70, 0, 3, RecommendationGood},
		{"good blocked by critical", 70, 1, 0, RecommendationCaution},
		{"caution", 55, 1, 2, RecommendationCaution},
		{"too many criticals", 55, 2, 0, RecommendationNo},
		{"low score", 40, 0, 0, RecommendationNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recommendation(tt.score, tt.critical, tt.high))
		})
	}
}

func TestSynthesizeAssemblesReport(t *testing.T) {
	req := model.AnalysisRequest{
		CompanyName: "Acme Robotics",
		Documents:   []string{"deck.pdf", "model.xlsx"},
	}
	rec := richRecord()
	rec.ExtractionConfidence = map[string]float64{"overall": 0.95}
	results := []model.UnitResult{
		unitRes("financial", 0.9),
		unitRes("risk", 0.9),
		unitRes("market", 0.9),
	}

	report := Synthesize(req, rec, results, "run-123")

	assert.Equal(t, "run-123", report.Metadata.RunID)
	assert.Equal(t, "Acme Robotics", report.Metadata.CompanyName)
	assert.Equal(t, 2, report.Metadata.DocumentsAnalyzed)
	assert.Equal(t, 90.0, report.ExecutiveSummary.OverallScore)
	assert.Equal(t, RecommendationStrong, report.ExecutiveSummary.Recommendation)
	assert.Equal(t, "Industrial Automation", report.CompanyOverview.Sector)

	assert.Equal(t, []string{"financial finding one", "financial finding two"}, report.Financial.Findings)
	assert.Equal(t, 0.9, report.Financial.Confidence)
	assert.Equal(t, 1.0, report.Metrics["financial_metric"])
	assert.Equal(t, 0.95, report.Metrics["extraction_overall"])

	require.Len(t, report.UnitSummaries, 3)
	assert.Equal(t, "financial finding one", report.UnitSummaries[0].KeyFinding)
	assert.NotEmpty(t, report.NextSteps)
	assert.Empty(t, report.ExecutiveSummary.CriticalConcerns)
	assert.NotNil(t, report.ExecutiveSummary.CriticalConcerns)
}

func TestSynthesizeMissingUnitGetsPlaceholder(t *testing.T) {
	req := model.AnalysisRequest{CompanyName: "Solo"}
	results := []model.UnitResult{unitRes("financial", 0.7)}

	report := Synthesize(req, model.CompanyRecord{}, results, "run-1")

	assert.Equal(t, []string{placeholderNoFindings}, report.Market.Findings)
	assert.NotNil(t, report.Market.Recommendations)
	assert.NotNil(t, report.Market.Flags)
	assert.Equal(t, 0.0, report.Market.Confidence)
}

func TestSynthesizeCollectsCriticalConcerns(t *testing.T) {
	results := []model.UnitResult{
		unitRes("financial", 0.8, "CRITICAL: Less than 3 months runway", "HIGH: thin margins"),
		unitRes("risk", 0.8, "CRITICAL: Overall risk score 80 indicates severe risk exposure"),
		unitRes("market", 0.8),
	}

	report := Synthesize(model.AnalysisRequest{}, model.CompanyRecord{}, results, "r")

	assert.Equal(t, []string{
		"CRITICAL: Less than 3 months runway",
		"CRITICAL: Overall risk score 80 indicates severe risk exposure",
	}, report.ExecutiveSummary.CriticalConcerns)
}

func TestSynthesizeHighlightCap(t *testing.T) {
	many := unitRes("financial", 0.8)
	many.Findings = make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		many.Findings = append(many.Findings, "finding")
	}
	report := Synthesize(model.AnalysisRequest{}, model.CompanyRecord{}, []model.UnitResult{many}, "r")

	assert.Len(t, report.ExecutiveSummary.KeyHighlights, maxHighlights)
}

func TestNextStepsFlagDriven(t *testing.T) {
	results := []model.UnitResult{
		unitRes("financial", 0.9, "HIGH: Limited runway - less than 12 months"),
	}
	steps := nextSteps(RecommendationGood, results)

	assert.Contains(t, steps, "Develop a financing plan addressing the limited runway")
	assert.LessOrEqual(t, len(steps), maxNextSteps)
}

func TestFailureReportShape(t *testing.T) {
	req := model.AnalysisRequest{CompanyName: "Ghost Inc", Documents: []string{"a.pdf"}}
	report := FailureReport(req, "run-9", "generative service credentials not configured")

	assert.Equal(t, RecommendationFailed, report.ExecutiveSummary.Recommendation)
	assert.Equal(t, 0.0, report.ExecutiveSummary.OverallScore)
	assert.Equal(t, "Ghost Inc", report.Metadata.CompanyName)
	require.Len(t, report.ExecutiveSummary.CriticalConcerns, 1)
	assert.Contains(t, report.ExecutiveSummary.CriticalConcerns[0], "credentials not configured")

	assert.NotNil(t, report.ExecutiveSummary.KeyHighlights)
	assert.NotNil(t, report.Financial.Findings)
	assert.NotNil(t, report.Metrics)
	assert.NotNil(t, report.NextSteps)
	assert.NotNil(t, report.UnitSummaries)
}
