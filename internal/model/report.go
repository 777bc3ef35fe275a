package model

import "time"

// Report is the final investment evaluation. It is structurally
// complete regardless of how much of the run succeeded: absent data is
// represented by placeholder text and zero scores, never missing keys.
type Report struct {
	Metadata         ReportMetadata  `json:"report_metadata"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	CompanyOverview  CompanyOverview `json:"company_overview"`
	Financial        SectionAnalysis `json:"financial_analysis"`
	Market           SectionAnalysis `json:"market_analysis"`
	Risk             SectionAnalysis `json:"risk_assessment"`
	Metrics          map[string]float64 `json:"metrics"`
	NextSteps        []string        `json:"next_steps"`
	UnitSummaries    []UnitSummary   `json:"unit_summaries"`
}

// ReportMetadata identifies the run that produced a report.
type ReportMetadata struct {
	CompanyName       string    `json:"company_name"`
	RunID             string    `json:"run_id"`
	AnalysisDate      time.Time `json:"analysis_date"`
	DocumentsAnalyzed int       `json:"documents_analyzed"`
}

// ExecutiveSummary is the headline verdict.
type ExecutiveSummary struct {
	OverallScore     float64  `json:"overall_score"`
	Recommendation   string   `json:"recommendation"`
	KeyHighlights    []string `json:"key_highlights"`
	CriticalConcerns []string `json:"critical_concerns"`
}

// CompanyOverview echoes the extracted identity fields.
type CompanyOverview struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Stage       string `json:"stage"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

// SectionAnalysis is one unit's contribution rendered into the report.
type SectionAnalysis struct {
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	Flags           []string `json:"flags"`
	Confidence      float64  `json:"confidence"`
	Completeness    float64  `json:"completeness"`
}

// UnitSummary is the per-unit digest in the report appendix.
type UnitSummary struct {
	Unit       string  `json:"unit"`
	Confidence float64 `json:"confidence"`
	KeyFinding string  `json:"key_finding"`
}
