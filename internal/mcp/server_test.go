package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koptimizer/inferprofit/internal/apiserver"
	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/catalog"
)

type rawResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	api := httptest.NewServer(apiserver.NewRouter(config.DefaultConfig(), catalog.Default(), logr.Discard()))
	t.Cleanup(api.Close)
	return NewMCPServer(api.URL, logr.Discard())
}

func run(t *testing.T, s *MCPServer, lines ...string) []rawResponse {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")), &out))

	var resps []rawResponse
	sc := bufio.NewScanner(&out)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<22)
	for sc.Scan() {
		var r rawResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		resps = append(resps, r)
	}
	require.NoError(t, sc.Err())
	return resps
}

func toolCall(t *testing.T, s *MCPServer, name string, args map[string]interface{}) ToolCallResult {
	t.Helper()
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: args})
	require.NoError(t, err)
	line := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":` + string(params) + `}`

	resps := run(t, s, line)
	require.Len(t, resps, 1)
	require.Nil(t, resps[0].Error)

	var res ToolCallResult
	require.NoError(t, json.Unmarshal(resps[0].Result, &res))
	require.Len(t, res.Content, 1)
	return res
}

func TestHandshake(t *testing.T) {
	s := newTestServer(t)
	resps := run(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":4,"method":"resources/list"}`,
		`not json`,
	)
	require.Len(t, resps, 5)

	var init InitializeResult
	require.NoError(t, json.Unmarshal(resps[0].Result, &init))
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, protocolVersion, init.ProtocolVersion)
	assert.NotNil(t, init.Capabilities.Tools)

	var list ToolsListResult
	require.NoError(t, json.Unmarshal(resps[1].Result, &list))
	assert.Len(t, list.Tools, len(AllTools()))

	assert.Nil(t, resps[2].Error)
	require.NotNil(t, resps[3].Error)
	assert.Equal(t, ErrCodeMethodNotFound, resps[3].Error.Code)
	require.NotNil(t, resps[4].Error)
	assert.Equal(t, ErrCodeParseError, resps[4].Error.Code)
}

func TestToolNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range AllTools() {
		assert.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
		assert.Equal(t, "object", tool.InputSchema.Type)
		for _, req := range tool.InputSchema.Required {
			assert.Contains(t, tool.InputSchema.Properties, req, "tool %s", tool.Name)
		}
	}
}

func TestRankTool(t *testing.T) {
	s := newTestServer(t)
	res := toolCall(t, s, "rank_llm_configurations", map[string]interface{}{"utilization": 80.0, "markup": 3.0, "top": 3.0})
	require.False(t, res.IsError, res.Content[0].Text)

	var body struct {
		Configurations []struct {
			GPU   string `json:"gpu"`
			Model string `json:"model"`
		} `json:"configurations"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &body))
	require.Len(t, body.Configurations, 3)
	assert.Equal(t, "Qwen 3 Coder 480B", body.Configurations[0].Model)
}

func TestCalculateTools(t *testing.T) {
	s := newTestServer(t)

	res := toolCall(t, s, "calculate_media_profit", map[string]interface{}{
		"gpu": "L40S", "model": "SDXL", "provider": "cudo", "utilization": 70.0, "markup": 1.5,
	})
	require.False(t, res.IsError, res.Content[0].Text)
	var media struct {
		Result struct {
			ProfitPerMonth float64 `json:"profitPerMonth"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &media))
	assert.InDelta(t, 31.32, media.Result.ProfitPerMonth, 1e-9)

	res = toolCall(t, s, "estimate_cluster", map[string]interface{}{})
	require.False(t, res.IsError, res.Content[0].Text)
	assert.Contains(t, res.Content[0].Text, `"finalGpus":30`)

	res = toolCall(t, s, "get_profit_curve", map[string]interface{}{"gpu": "L40S", "model": "Mistral Large"})
	require.False(t, res.IsError, res.Content[0].Text)
	assert.Contains(t, res.Content[0].Text, `"points"`)
}

func TestToolErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		wantErr string
	}{
		{"missing argument", "calculate_llm_profit", map[string]interface{}{"gpu": "L40S"}, "missing required argument: model"},
		{"wrong type", "calculate_voice_profit", map[string]interface{}{"gpu": 4.0, "model": "x"}, "argument gpu must be a string"},
		{"api not found", "calculate_llm_profit", map[string]interface{}{"gpu": "TPU", "model": "x"}, "HTTP 404"},
		{"api bad request", "rank_media_configurations", map[string]interface{}{"kind": "audio"}, "HTTP 400"},
		{"unknown tool", "delete_everything", nil, "unknown tool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := toolCall(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Content[0].Text, tt.wantErr)
		})
	}
}

func TestQueryArgs(t *testing.T) {
	q, err := queryArgs(map[string]interface{}{"markup": 1.5, "top": 3.0, "kind": "video", "skip": nil}, "markup", "top", "kind", "skip")
	require.NoError(t, err)
	assert.Equal(t, "kind=video&markup=1.5&top=3", q.Encode())

	_, err = queryArgs(map[string]interface{}{"top": []interface{}{1}}, "top")
	assert.Error(t, err)
}

func TestRunStopsOnCancelWhileBlocked(t *testing.T) {
	s := NewMCPServer("http://127.0.0.1:0", logr.Discard())
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel while blocked on read")
	}
}
