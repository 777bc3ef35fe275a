package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/startup-analyst/internal/model"
	"github.com/sells-group/startup-analyst/pkg/llm"
)

// Unit is one independent analysis pass over an extracted company
// record. Process never returns an error and never panics outward: a
// unit that cannot complete reports a degraded result instead.
type Unit interface {
	Name() string
	Process(ctx context.Context, rec model.CompanyRecord) model.UnitResult
}

// degradedConfidence is the confidence assigned to a unit result that
// stands in for an internal failure.
const degradedConfidence = 0.2

// degradedResult converts an internal unit failure into the uniform
// result shape: low confidence, one CRITICAL flag, nothing else.
func degradedResult(name string, cause any) model.UnitResult {
	return model.UnitResult{
		UnitName:        name,
		Confidence:      degradedConfidence,
		Completeness:    0,
		Findings:        []string{fmt.Sprintf("%s analysis could not be completed", name)},
		Metrics:         map[string]float64{},
		Recommendations: []string{},
		Flags:           []string{fmt.Sprintf("CRITICAL: %s analysis failed: %v", name, cause)},
		Degraded:        true,
		GeneratedAt:     time.Now().UTC(),
	}
}

// fieldProbe reports whether one relevant record field is present.
type fieldProbe func(model.CompanyRecord) bool

// completeness is the fraction of a unit's relevant fields present in
// the record.
func completeness(rec model.CompanyRecord, probes []fieldProbe) float64 {
	if len(probes) == 0 {
		return 0
	}
	present := 0
	for _, p := range probes {
		if p(rec) {
			present++
		}
	}
	return float64(present) / float64(len(probes))
}

func hasNum(p *float64) bool { return p != nil }

// generateFindings asks the text service for findings and parses them
// into bullet lines. Returns nil when the service is unavailable or
// its output yields nothing usable; callers fall back to rule-derived
// findings.
func generateFindings(ctx context.Context, client llm.Client, unit, prompt string) []string {
	if client == nil {
		return nil
	}
	text, err := client.Generate(ctx, prompt)
	if err != nil {
		zap.L().Warn("findings call failed",
			zap.String("unit", unit),
			zap.Error(err),
		)
		return nil
	}
	return parseBulletLines(text)
}

// parseBulletLines extracts substantive bullet points from free-form
// model output. Short fragments and non-bullet prose are dropped.
func parseBulletLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		var body string
		switch {
		case strings.HasPrefix(line, "- "):
			body = line[2:]
		case strings.HasPrefix(line, "* "):
			body = line[2:]
		case strings.HasPrefix(line, "• "):
			body = strings.TrimPrefix(line, "• ")
		default:
			continue
		}
		body = strings.TrimSpace(body)
		if len(body) > 15 {
			out = append(out, body)
		}
	}
	return out
}

// describe renders the record fields a prompt needs, skipping absent
// values so the model is not tempted to invent them.
func describe(pairs ...[2]string) string {
	var sb strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		sb.WriteString(p[0])
		sb.WriteString(": ")
		sb.WriteString(p[1])
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "No data available.\n"
	}
	return sb.String()
}

func fmtNum(p *float64) string {
	if p == nil {
		return ""
	}
	return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", *p), "0"), ".0")
}
