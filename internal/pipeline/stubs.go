package pipeline

import (
	"context"
	"strings"

	"github.com/sells-group/startup-analyst/pkg/llm"
)

// Compile-time interface checks.
var (
	_ llm.Client = (*StubLLMClient)(nil)
	_ llm.Client = (*FailingLLMClient)(nil)
)

// StubLLMClient implements llm.Client with canned responses keyed on
// prompt content. Extraction prompts get a complete company JSON
// wrapped in prose, analysis prompts get bullet findings.
type StubLLMClient struct {
	// ExtractionJSON overrides the canned extraction payload when set.
	ExtractionJSON string
	// FailOn makes Generate error when the prompt contains the
	// substring, leaving other prompts working.
	FailOn string
	// Err is returned from every call when set.
	Err error

	Calls int
}

const stubExtractionJSON = `{
  "name": "Acme Robotics",
  "sector": "Industrial Automation",
  "stage": "Series A",
  "location": "Austin, TX",
  "founded": "2021",
  "website": "https://acme-robotics.example",
  "description": "Robotic arms for small-batch manufacturing",
  "founders": ["Dana Wu", "Felix Obi"],
  "key_team": ["VP Eng (ex-Fanuc)"],
  "total_funding": 8000000,
  "monthly_revenue": 150000,
  "annual_revenue": 1800000,
  "burn_rate": 250000,
  "cash_balance": 4200000,
  "gross_margin": 62,
  "cac": 9000,
  "ltv": 54000,
  "retention_rate": 91,
  "growth_rate": 14,
  "customer_count": 42,
  "target_market": "Mid-size contract manufacturers",
  "advantages": ["Proprietary gripper design", "14-day deployment"]
}`

func (s *StubLLMClient) Generate(_ context.Context, prompt string) (string, error) {
	s.Calls++
	if s.Err != nil {
		return "", s.Err
	}
	if s.FailOn != "" && strings.Contains(strings.ToLower(prompt), strings.ToLower(s.FailOn)) {
		return "", context.DeadlineExceeded
	}

	if strings.Contains(prompt, "JSON object") {
		payload := s.ExtractionJSON
		if payload == "" {
			payload = stubExtractionJSON
		}
		return "Here is the extracted profile:\n```json\n" + payload + "\n```\nLet me know if you need more.", nil
	}

	return "- Revenue trajectory looks consistent with the reported growth rate\n" +
		"- Burn is covered by the current cash position for over a year\n" +
		"- Customer concentration could not be assessed from the documents", nil
}

// FailingLLMClient errors on every call. Useful for degraded-path
// tests where the service is configured but unreachable.
type FailingLLMClient struct {
	Err error
}

func (f *FailingLLMClient) Generate(context.Context, string) (string, error) {
	err := f.Err
	if err == nil {
		err = context.DeadlineExceeded
	}
	return "", err
}
