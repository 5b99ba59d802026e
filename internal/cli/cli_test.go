package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/cost"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCLI()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLLMCommand(t *testing.T) {
	out, err := execute(t, "llm", "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Qwen 3 Coder 480B")
	assert.Contains(t, out, "*1")

	out, err = execute(t, "llm", "--gpu", "H100 NVL", "--model", "DeepSeek V3.2-Exp", "-u", "80", "-m", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "-$1,702.20")
	assert.Contains(t, out, "Never profitable")

	_, err = execute(t, "llm", "--gpu", "L40S")
	assert.ErrorContains(t, err, "--gpu and --model")

	_, err = execute(t, "llm", "--gpu", "TPU", "--model", "Mistral Large")
	assert.Error(t, err)
}

func TestMediaCommand(t *testing.T) {
	out, err := execute(t, "media", "--kind", "video", "-o", "json")
	require.NoError(t, err)
	var rk struct {
		Configurations []json.RawMessage `json:"configurations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rk))
	assert.Len(t, rk.Configurations, 26)

	out, err = execute(t, "media", "--gpu", "L40S", "--model", "SDXL", "--provider", "cudo", "-u", "70", "-m", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "$31.32")
	assert.Contains(t, out, "Fal.ai")

	out, err = execute(t, "media", "--gpu", "RTX 4090", "--model", "SDXL", "--provider", "cudo")
	require.NoError(t, err)
	assert.Contains(t, out, "Billed at runpod rates")

	_, err = execute(t, "media", "--kind", "audio")
	assert.Error(t, err)
}

func TestVoiceCommand(t *testing.T) {
	out, err := execute(t, "voice")
	require.NoError(t, err)
	assert.Contains(t, out, "3 combinations skipped")
}

func TestEstimateCommand(t *testing.T) {
	out, err := execute(t, "estimate")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,350,000.00")
	assert.Contains(t, out, "Throughput")
	assert.NotContains(t, out, "capped")

	out, err = execute(t, "estimate", "--daily-tokens", "1e15")
	require.NoError(t, err)
	assert.Contains(t, out, "Throughput search capped at 1024 GPUs")

	out, err = execute(t, "estimate", "--model", "Llama 3 8B", "--all-gpus", "--precision", "FP16", "-o", "json")
	require.NoError(t, err)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Len(t, results, 7)

	tests := [][]string{
		{"estimate", "--precision", "FP32"},
		{"estimate", "--scaling-policy", "linear"},
		{"estimate", "--users", "-1"},
		{"estimate", "--model", "GPT-9"},
	}
	for _, args := range tests {
		_, err := execute(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestCurveCommand(t *testing.T) {
	out, err := execute(t, "curve", "--gpu", "L40S", "--model", "Mistral Large", "--step", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "25%")
	assert.Contains(t, out, "100%")
	assert.NotContains(t, out, "10%")

	_, err = execute(t, "curve", "--calculator", "video", "--gpu", "L40S", "--model", "SDXL")
	assert.Error(t, err)

	_, err = execute(t, "curve")
	assert.Error(t, err)
}

func TestCatalogCommand(t *testing.T) {
	out, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "estimator-models")
	assert.Contains(t, out, "H100 NVL")

	_, err = execute(t, "catalog", "nope")
	assert.Error(t, err)

	out, err = execute(t, "catalog", "--export")
	require.NoError(t, err)
	c, err := catalog.Parse([]byte(out), cost.DefaultAmortization)
	require.NoError(t, err)
	assert.Len(t, c.LLMGPUs(), 5)
}

func TestCatalogFlag(t *testing.T) {
	exported, err := execute(t, "catalog", "--export")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exported), 0o600))

	out, err := execute(t, "--catalog", path, "llm", "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Qwen 3 Coder 480B")

	_, err = execute(t, "--catalog", filepath.Join(t.TempDir(), "missing.yaml"), "llm")
	assert.Error(t, err)
}

func TestGlobalFlags(t *testing.T) {
	_, err := execute(t, "--output", "xml", "llm")
	assert.ErrorContains(t, err, "unknown output format")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  markup: 0.5\n"), 0o600))
	_, err = execute(t, "--config", path, "llm")
	assert.ErrorContains(t, err, "invalid config")
}
