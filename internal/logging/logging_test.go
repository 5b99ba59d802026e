package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/koptimizer/inferprofit/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{"json info", config.LoggingConfig{Level: "info", Encoding: "json"}, false},
		{"console debug", config.LoggingConfig{Level: "DEBUG", Encoding: "console", Development: true}, false},
		{"bad level", config.LoggingConfig{Level: "loud", Encoding: "json"}, true},
		{"bad encoding", config.LoggingConfig{Level: "info", Encoding: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMiddleware_InjectsLogger(t *testing.T) {
	var lines []string
	base := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})

	var found bool
	h := middleware.RequestID(Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := logr.FromContext(r.Context())
		found = err == nil
		logr.FromContextOrDiscard(r.Context()).Info("handled")
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))

	if !found {
		t.Fatal("logger not found in request context")
	}
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	for _, want := range []string{`"path"="/api/v1/catalog"`, `"requestID"=`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("log line %q missing %s", lines[0], want)
		}
	}
}
