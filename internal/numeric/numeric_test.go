package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringCurrency(t *testing.T) {
	v := ParseString("$1,500,000")
	require.NotNil(t, v)
	assert.Equal(t, 1500000.0, *v)
}

func TestParseStringMagnitudeSuffix(t *testing.T) {
	v := ParseString("$2.5M")
	require.NotNil(t, v)
	assert.Equal(t, 2500000.0, *v)

	v = ParseString("150k")
	require.NotNil(t, v)
	assert.Equal(t, 150000.0, *v)

	v = ParseString("1.2B")
	require.NotNil(t, v)
	assert.Equal(t, 1.2e9, *v)
}

func TestParseStringPercent(t *testing.T) {
	v := ParseString("75%")
	require.NotNil(t, v)
	assert.Equal(t, 75.0, *v)
}

func TestParseStringAbsent(t *testing.T) {
	assert.Nil(t, ParseString(""))
	assert.Nil(t, ParseString("  "))
	assert.Nil(t, ParseString("N/A"))
	assert.Nil(t, ParseString("unknown"))
	assert.Nil(t, ParseString("null"))
	assert.Nil(t, ParseString("-"))
}

func TestParseStringGarbage(t *testing.T) {
	assert.Nil(t, ParseString("a lot"))
	assert.Nil(t, ParseString("twelve"))
	assert.Nil(t, ParseString("$?"))
}

func TestParseTypes(t *testing.T) {
	v := Parse(float64(42))
	require.NotNil(t, v)
	assert.Equal(t, 42.0, *v)

	v = Parse("$300,000")
	require.NotNil(t, v)
	assert.Equal(t, 300000.0, *v)

	assert.Nil(t, Parse(nil))
	assert.Nil(t, Parse(true))
	assert.Nil(t, Parse([]any{1.0}))
	assert.Nil(t, Parse(map[string]any{"value": 1.0}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 100))
	assert.Equal(t, 100.0, Clamp(250, 0, 100))
	assert.Equal(t, 42.5, Clamp(42.5, 0, 100))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.0, Round1(3.0))
	assert.Equal(t, 2.7, Round1(2.65))
	assert.Equal(t, 0.67, Round2(2.0/3.0))
	assert.Equal(t, -1.5, Round1(-1.45))
}

func TestRoundLargeMagnitudes(t *testing.T) {
	// Values past int64 range must survive rounding unchanged.
	assert.Equal(t, 1e18, Round1(1e18))
	assert.Equal(t, 1e18, Round2(1e18))
	assert.Equal(t, -1e18, Round1(-1e18))
}
