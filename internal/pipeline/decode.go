package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/internal/numeric"
	"github.com/sells-group/startup-analyst/pkg/llm"
)

// maxCorpusChars bounds the document text sent to the extraction
// prompt. Keeps requests inside the provider's context budget.
const maxCorpusChars = 12000

// fallbackExtractionConfidence is reported when extraction could not
// produce a usable profile and only the operator's name hint survives.
const fallbackExtractionConfidence = 0.1

const extractionPrompt = `You are a startup analyst. Extract structured company data from the documents below.

Respond with a single JSON object using exactly these keys (omit or use null for anything not stated in the documents, never guess):
{
  "name": "", "sector": "", "stage": "", "location": "", "founded": "", "website": "", "description": "",
  "total_funding": 0, "funding_target": 0,
  "monthly_revenue": 0, "annual_revenue": 0, "burn_rate": 0, "cash_balance": 0, "gross_margin": 0,
  "cac": 0, "ltv": 0, "retention_rate": 0, "growth_rate": 0, "customer_count": 0,
  "founders": [], "key_team": [],
  "target_market": "", "product": "", "advantages": []
}

Monetary values must be plain numbers in USD. Percentages must be plain numbers (75 not "75%").

DOCUMENTS:
`

// trackedFields enumerates the profile fields that count toward
// extraction confidence, paired with a presence probe.
var trackedFields = []struct {
	name    string
	present func(model.CompanyRecord) bool
}{
	{"name", func(r model.CompanyRecord) bool { return r.Name != "" }},
	{"sector", func(r model.CompanyRecord) bool { return r.Sector != "" }},
	{"stage", func(r model.CompanyRecord) bool { return r.Stage != "" }},
	{"location", func(r model.CompanyRecord) bool { return r.Location != "" }},
	{"founded", func(r model.CompanyRecord) bool { return r.Founded != "" }},
	{"website", func(r model.CompanyRecord) bool { return r.Website != "" }},
	{"description", func(r model.CompanyRecord) bool { return r.Description != "" }},
	{"total_funding", func(r model.CompanyRecord) bool { return r.TotalFunding != nil }},
	{"funding_target", func(r model.CompanyRecord) bool { return r.FundingTarget != nil }},
	{"monthly_revenue", func(r model.CompanyRecord) bool { return r.MonthlyRevenue != nil }},
	{"annual_revenue", func(r model.CompanyRecord) bool { return r.AnnualRevenue != nil }},
	{"burn_rate", func(r model.CompanyRecord) bool { return r.BurnRate != nil }},
	{"cash_balance", func(r model.CompanyRecord) bool { return r.CashBalance != nil }},
	{"gross_margin", func(r model.CompanyRecord) bool { return r.GrossMargin != nil }},
	{"cac", func(r model.CompanyRecord) bool { return r.CAC != nil }},
	{"ltv", func(r model.CompanyRecord) bool { return r.LTV != nil }},
	{"retention_rate", func(r model.CompanyRecord) bool { return r.RetentionRate != nil }},
	{"growth_rate", func(r model.CompanyRecord) bool { return r.GrowthRate != nil }},
	{"customer_count", func(r model.CompanyRecord) bool { return r.CustomerCount != nil }},
	{"founders", func(r model.CompanyRecord) bool { return len(r.Founders) > 0 }},
}

// BuildCorpus concatenates document texts and the operator writeup,
// truncated to the extraction budget. A non-positive limit falls back
// to the default budget.
func BuildCorpus(texts []string, writeup string, limit int) string {
	if limit <= 0 {
		limit = maxCorpusChars
	}
	parts := make([]string, 0, len(texts)+1)
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if w := strings.TrimSpace(writeup); w != "" {
		parts = append(parts, "ANALYST NOTE:\n"+w)
	}

	corpus := strings.Join(parts, "\n\n---\n\n")
	if len(corpus) > limit {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		for limit > 0 && !utf8.RuneStart(corpus[limit]) {
			limit--
		}
		corpus = corpus[:limit]
	}
	return corpus
}

// DecodeCompanyRecord runs structured extraction over the corpus. Any
// failure along the way (no client, service error, unparseable output)
// degrades to a fallback record carrying only the operator's name hint
// and a fixed low extraction confidence.
func DecodeCompanyRecord(ctx context.Context, client llm.Client, corpus, nameHint string) model.CompanyRecord {
	if client == nil || strings.TrimSpace(corpus) == "" {
		return fallbackRecord(nameHint)
	}

	text, err := client.Generate(ctx, extractionPrompt+corpus)
	if err != nil {
		zap.L().Warn("extraction call failed", zap.Error(err))
		return fallbackRecord(nameHint)
	}

	obj := firstJSONObject(text)
	if obj == "" {
		zap.L().Warn("extraction response contained no JSON object")
		return fallbackRecord(nameHint)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		zap.L().Warn("extraction JSON unparseable", zap.Error(err))
		return fallbackRecord(nameHint)
	}

	rec := recordFromRaw(raw)
	if rec.Name == "" {
		rec.Name = strings.TrimSpace(nameHint)
	}
	rec.ExtractionConfidence = extractionConfidence(rec)
	return rec
}

func fallbackRecord(nameHint string) model.CompanyRecord {
	return model.CompanyRecord{
		Name: strings.TrimSpace(nameHint),
		ExtractionConfidence: map[string]float64{
			"overall":      fallbackExtractionConfidence,
			"completeness": fallbackExtractionConfidence,
		},
	}
}

// recordFromRaw maps loosely typed JSON into the typed record. Wrong
// field types are tolerated: a value that cannot be coerced is absent.
func recordFromRaw(raw map[string]any) model.CompanyRecord {
	return model.CompanyRecord{
		Name:        asString(raw["name"]),
		Sector:      asString(raw["sector"]),
		Stage:       asString(raw["stage"]),
		Location:    asString(raw["location"]),
		Founded:     asString(raw["founded"]),
		Website:     asString(raw["website"]),
		Description: asString(raw["description"]),

		TotalFunding:  numeric.Parse(raw["total_funding"]),
		FundingTarget: numeric.Parse(raw["funding_target"]),

		MonthlyRevenue: numeric.Parse(raw["monthly_revenue"]),
		AnnualRevenue:  numeric.Parse(raw["annual_revenue"]),
		BurnRate:       numeric.Parse(raw["burn_rate"]),
		CashBalance:    numeric.Parse(raw["cash_balance"]),
		GrossMargin:    numeric.Parse(raw["gross_margin"]),

		CAC:           numeric.Parse(raw["cac"]),
		LTV:           numeric.Parse(raw["ltv"]),
		RetentionRate: numeric.Parse(raw["retention_rate"]),
		GrowthRate:    numeric.Parse(raw["growth_rate"]),
		CustomerCount: numeric.Parse(raw["customer_count"]),

		Founders: asStringList(raw["founders"]),
		KeyTeam:  asStringList(raw["key_team"]),

		TargetMarket: asString(raw["target_market"]),
		Product:      asString(raw["product"]),
		Advantages:   asStringList(raw["advantages"]),
	}
}

func extractionConfidence(rec model.CompanyRecord) map[string]float64 {
	present := 0
	for _, f := range trackedFields {
		if f.present(rec) {
			present++
		}
	}
	frac := numeric.Round2(float64(present) / float64(len(trackedFields)))
	return map[string]float64{
		"overall":      frac,
		"completeness": frac,
	}
}

// firstJSONObject returns the first brace-balanced JSON object in
// text, tolerating markdown fences and surrounding prose. Returns ""
// when no balanced object exists.
func firstJSONObject(text string) string {
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
