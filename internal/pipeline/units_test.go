package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/startup-analyst/internal/model"
)

func TestDegradedResultShape(t *testing.T) {
	res := degradedResult("financial", errors.New("template exploded"))

	assert.True(t, res.Degraded)
	assert.Equal(t, degradedConfidence, res.Confidence)
	assert.Equal(t, 0.0, res.Completeness)
	require.Len(t, res.Flags, 1)
	assert.Equal(t, "CRITICAL: financial analysis failed: template exploded", res.Flags[0])
	assert.Equal(t, []string{"CRITICAL: financial analysis failed: template exploded"}, res.CriticalFlags())
	assert.NotNil(t, res.Metrics)
	assert.NotNil(t, res.Recommendations)
}

func TestParseBulletLines(t *testing.T) {
	text := "Here are my findings:\n" +
		"- Revenue growth is strong quarter over quarter\n" +
		"* Burn rate exceeds typical benchmarks for the stage\n" +
		"• Retention metrics suggest a sticky product offering\n" +
		"- short\n" +
		"Random prose that is not a bullet at all.\n"

	got := parseBulletLines(text)
	require.Len(t, got, 3)
	assert.Equal(t, "Revenue growth is strong quarter over quarter", got[0])
}

func TestCompleteness(t *testing.T) {
	probes := []fieldProbe{
		func(r model.CompanyRecord) bool { return r.Name != "" },
		func(r model.CompanyRecord) bool { return r.Sector != "" },
	}

	assert.Equal(t, 0.5, completeness(model.CompanyRecord{Name: "X"}, probes))
	assert.Equal(t, 0.0, completeness(model.CompanyRecord{}, probes))
	assert.Equal(t, 0.0, completeness(model.CompanyRecord{}, nil))
}

func TestGenerateFindings(t *testing.T) {
	assert.Nil(t, generateFindings(context.Background(), nil, "x", "p"))
	assert.Nil(t, generateFindings(context.Background(), &FailingLLMClient{}, "x", "p"))

	got := generateFindings(context.Background(), &StubLLMClient{}, "financial", "analyze this")
	assert.NotEmpty(t, got)
}

func TestDescribeSkipsAbsent(t *testing.T) {
	out := describe([2]string{"Name", "Acme"}, [2]string{"Sector", ""})
	assert.Equal(t, "Name: Acme\n", out)

	assert.Equal(t, "No data available.\n", describe([2]string{"Name", ""}))
}
