package apiserver

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/catalog"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(config.DefaultConfig(), catalog.Default(), logr.Discard())
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decoding response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealthz(t *testing.T) {
	rec, body := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v, want 200 ok", rec.Code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodGet, "/api/v1/llm/configurations", "")
	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inferprofit_ranked_configurations") {
		t.Error("metrics output missing inferprofit_ranked_configurations")
	}
}

func TestMetricsEndpoint_UnmatchedPathsShareOneLabel(t *testing.T) {
	h := newTestRouter(t)
	for i := 0; i < 20; i++ {
		rec, _ := do(t, h, http.MethodGet, fmt.Sprintf("/scan/%d", i), "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET /scan/%d = %d, want 404", i, rec.Code)
		}
	}
	rec, _ := do(t, h, http.MethodGet, "/metrics", "")
	body := rec.Body.String()
	if !strings.Contains(body, `route="unmatched"`) {
		t.Error(`metrics output missing route="unmatched"`)
	}
	if strings.Contains(body, "/scan/") {
		t.Error("metrics output has a series labelled with a raw request path")
	}
}

func TestLLMConfigurations(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantCount int
	}{
		{"defaults", "/api/v1/llm/configurations", http.StatusOK, 20},
		{"top three", "/api/v1/llm/configurations?top=3", http.StatusOK, 3},
		{"explicit params", "/api/v1/llm/configurations?utilization=50&markup=2", http.StatusOK, 20},
		{"bad utilization", "/api/v1/llm/configurations?utilization=lots", http.StatusBadRequest, 0},
		{"bad top", "/api/v1/llm/configurations?top=-1", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				if body["error"] == nil {
					t.Error("error body missing")
				}
				return
			}
			configs, _ := body["configurations"].([]interface{})
			if len(configs) != tt.wantCount {
				t.Errorf("len(configurations) = %d, want %d", len(configs), tt.wantCount)
			}
			if body["highlightTop"].(float64) != 5 {
				t.Errorf("highlightTop = %v, want 5", body["highlightTop"])
			}
		})
	}
}

func TestLLMCalculate(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodPost, "/api/v1/llm/calculate",
		`{"gpu":"H100 NVL","model":"DeepSeek V3.2-Exp","utilization":80,"markup":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	res := body["result"].(map[string]interface{})
	if got := res["profitPerMonth"].(float64); math.Abs(got-(-1702.1952)) > 1e-6 {
		t.Errorf("profitPerMonth = %v, want -1702.1952", got)
	}
	if _, ok := body["breakEvenUtilization"]; ok {
		t.Error("breakEvenUtilization should be absent for an unprofitable pair")
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown gpu", `{"gpu":"TPU","model":"DeepSeek V3.2-Exp"}`, http.StatusNotFound},
		{"missing model", `{"gpu":"L40S"}`, http.StatusBadRequest},
		{"invalid json", `{"gpu":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodPost, "/api/v1/llm/calculate", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestMediaEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodPost, "/api/v1/media/calculate",
		`{"gpu":"L40S","model":"SDXL","provider":"cudo","kind":"image","utilization":70,"markup":1.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	res := body["result"].(map[string]interface{})
	if got := res["profitPerMonth"].(float64); math.Abs(got-31.32) > 1e-9 {
		t.Errorf("profitPerMonth = %v, want 31.32", got)
	}
	if quotes, _ := body["competitors"].([]interface{}); len(quotes) != 3 {
		t.Errorf("len(competitors) = %d, want 3", len(quotes))
	}

	rec, body = do(t, h, http.MethodGet, "/api/v1/media/configurations?kind=video", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["kind"] != "video" {
		t.Errorf("kind = %v, want video", body["kind"])
	}
	if configs, _ := body["configurations"].([]interface{}); len(configs) != 26 {
		t.Errorf("len(configurations) = %d, want 26", len(configs))
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/media/configurations?kind=audio", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/media/calculate", `{"gpu":"L40S","model":"SDXL","provider":"lambda"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown provider status = %d, want 400", rec.Code)
	}
}

func TestVoiceEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/v1/voice/configurations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["excluded"].(float64) != 3 {
		t.Errorf("excluded = %v, want 3", body["excluded"])
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/voice/calculate", `{"gpu":"RTX 6000 Pro","model":"Whisper-v3 (OpenAI)"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing jobs/hour status = %d, want 404", rec.Code)
	}
}

func TestEstimator(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodPost, "/api/v1/estimator", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if body["finalGpus"].(float64) != 30 || body["constraint"] != "Throughput" {
		t.Errorf("finalGpus = %v constraint = %v, want 30 Throughput", body["finalGpus"], body["constraint"])
	}

	rec, body = do(t, h, http.MethodPost, "/api/v1/estimator", `{"model":"Llama 3 8B","allGpus":true,"precision":"FP16"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if results, _ := body["results"].([]interface{}); len(results) != 7 {
		t.Errorf("len(results) = %d, want 7", len(results))
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown model", `{"model":"GPT-9"}`, http.StatusNotFound},
		{"unknown policy", `{"scalingPolicy":"linear"}`, http.StatusBadRequest},
		{"bad precision", `{"precision":"FP32"}`, http.StatusBadRequest},
		{"negative users", `{"users":-5}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodPost, "/api/v1/estimator", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestCurve(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/v1/curve?calculator=media&gpu=L40S&model=SDXL&provider=runpod_serverless&markup=1.5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if points, _ := body["points"].([]interface{}); len(points) != 100 {
		t.Errorf("len(points) = %d, want 100", len(points))
	}
	if basis := body["basis"].(map[string]interface{}); basis["serverless"] != true {
		t.Errorf("basis.serverless = %v, want true", basis["serverless"])
	}

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"llm default", "/api/v1/curve?gpu=L40S&model=Mistral%20Large", http.StatusOK},
		{"voice", "/api/v1/curve?calculator=voice&gpu=A100&model=XTTS-v2%20(Coqui%20AI)", http.StatusOK},
		{"unknown calculator", "/api/v1/curve?calculator=video&gpu=L40S&model=SDXL", http.StatusBadRequest},
		{"missing gpu", "/api/v1/curve?model=SDXL", http.StatusBadRequest},
		{"unknown pair", "/api/v1/curve?gpu=TPU&model=SDXL", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestCatalogAndConfig(t *testing.T) {
	h := newTestRouter(t)

	rec, body := do(t, h, http.MethodGet, "/api/v1/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gpus, _ := body["llmGpus"].([]interface{}); len(gpus) != 5 {
		t.Errorf("len(llmGpus) = %d, want 5", len(gpus))
	}

	tables := []struct {
		table string
		want  int
	}{
		{"imageModels", len(catalog.Default().ImageModels())},
		{"videoModels", len(catalog.Default().VideoModels())},
		{"competitors", 3},
	}
	for _, tt := range tables {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog?table="+tt.table, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var rows []map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Fatalf("table=%s: decoding response: %v", tt.table, err)
		}
		if rec.Code != http.StatusOK || len(rows) != tt.want {
			t.Errorf("table=%s = %d with %d rows, want 200 with %d", tt.table, rec.Code, len(rows), tt.want)
		}
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/catalog?table=nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}

	rec, body = do(t, h, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["catalog"] != "built-in" {
		t.Errorf("catalog = %v, want built-in", body["catalog"])
	}
}
