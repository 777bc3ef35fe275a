package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusPending      RunStatus = "pending"
	RunStatusExtracting   RunStatus = "extracting"
	RunStatusAnalyzing    RunStatus = "analyzing"
	RunStatusSynthesizing RunStatus = "synthesizing"
	RunStatusCompleted    RunStatus = "completed"
	RunStatusFailed       RunStatus = "failed"
)

// AnalysisRequest describes one evaluation job: a set of local document
// paths plus optional operator hints.
type AnalysisRequest struct {
	CompanyName string   `json:"company_name,omitempty"`
	Documents   []string `json:"documents"`
	Writeup     string   `json:"writeup,omitempty"`
}

// CompanyRecord is the typed company profile produced by document
// extraction. String fields use "" for absent; numeric fields use nil.
// Numeric values are normalized (no currency symbols, thousands
// separators, or percent signs) before they land here.
type CompanyRecord struct {
	Name        string `json:"name,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Location    string `json:"location,omitempty"`
	Founded     string `json:"founded,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`

	TotalFunding  *float64 `json:"total_funding,omitempty"`
	FundingTarget *float64 `json:"funding_target,omitempty"`

	MonthlyRevenue *float64 `json:"monthly_revenue,omitempty"`
	AnnualRevenue  *float64 `json:"annual_revenue,omitempty"`
	BurnRate       *float64 `json:"burn_rate,omitempty"`
	CashBalance    *float64 `json:"cash_balance,omitempty"`
	GrossMargin    *float64 `json:"gross_margin,omitempty"`

	CAC           *float64 `json:"cac,omitempty"`
	LTV           *float64 `json:"ltv,omitempty"`
	RetentionRate *float64 `json:"retention_rate,omitempty"`
	GrowthRate    *float64 `json:"growth_rate,omitempty"`
	CustomerCount *float64 `json:"customer_count,omitempty"`

	Founders []string `json:"founders,omitempty"`
	KeyTeam  []string `json:"key_team,omitempty"`

	TargetMarket string   `json:"target_market,omitempty"`
	Product      string   `json:"product,omitempty"`
	Advantages   []string `json:"advantages,omitempty"`

	// ExtractionConfidence carries the extractor's estimate of how much
	// of the tracked profile it recovered, keyed by metric name.
	ExtractionConfidence map[string]float64 `json:"extraction_confidence,omitempty"`
}

// Run represents a single persisted analysis job.
type Run struct {
	ID        string          `json:"id"`
	Request   AnalysisRequest `json:"request"`
	Status    RunStatus       `json:"status"`
	Report    *Report         `json:"report,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
