package render

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/profit"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{31.32, "$31.32"},
		{999.999, "$1,000.00"},
		{1350000, "$1,350,000.00"},
		{-1702.1952, "-$1,702.20"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "Money(%v)", tt.in)
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1,200", number(1200))
	assert.Equal(t, "-12,000", number(-12000))
	assert.Equal(t, "48", number(48))
	assert.Equal(t, "2.5", number(2.5))
}

func TestLLMHighlightsTopRows(t *testing.T) {
	rk := profit.RankLLM(catalog.Default(), 80, 3)
	var buf bytes.Buffer
	LLM(&buf, rk.Configurations, 5)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 21) // header plus 20 pairs
	for i, line := range lines[1:] {
		marked := strings.HasPrefix(strings.TrimSpace(line), HighlightMark)
		assert.Equal(t, i < 5, marked, "row %d: %q", i+1, line)
	}
	assert.Contains(t, lines[1], "Qwen 3 Coder 480B")
}

func TestMediaAndVoice(t *testing.T) {
	cat := catalog.Default()

	var buf bytes.Buffer
	Media(&buf, profit.RankMedia(cat, catalog.MediaVideo, 70, 1.5).Top(2), 1)
	assert.Contains(t, strings.ToUpper(buf.String()), "VIDEOS/HR")
	assert.Contains(t, buf.String(), HighlightMark+"1")

	buf.Reset()
	Voice(&buf, profit.RankVoice(cat, 70, 2.5).Top(3), 0)
	assert.NotContains(t, buf.String(), HighlightMark)
}

func TestEstimate(t *testing.T) {
	res, err := sizing.EstimateByName(catalog.Default(), "Llama 3.3 70B", "H200 141GB", sizing.DefaultInput())
	require.NoError(t, err)

	var buf bytes.Buffer
	Estimate(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "$1,350,000.00")
	assert.Contains(t, out, "Throughput")

	buf.Reset()
	Estimates(&buf, []sizing.Result{res, res})
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestCurveSampling(t *testing.T) {
	res, ok := profit.CalculateLLM(catalog.Default(), profit.LLMInput{GPU: "L40S", Model: "Mistral Large", UtilizationPct: 100, Markup: 3})
	require.True(t, ok)

	var buf bytes.Buffer
	Curve(&buf, profit.Curve(res), 10)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[1], "10%")
	assert.Contains(t, lines[10], "100%")
}

func TestCatalog(t *testing.T) {
	tables := catalog.Default().Tables()
	for _, name := range TableNames {
		var buf bytes.Buffer
		require.NoError(t, Catalog(&buf, tables, name), name)
		assert.NotEmpty(t, buf.String(), name)
	}

	var buf bytes.Buffer
	assert.Error(t, Catalog(&buf, tables, "gpus"))
}
