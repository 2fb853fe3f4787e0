package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AccelByte/extend-doorbell/pkg/metrics"
)

func TestMetricsServer_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		health     HealthCheck
		path       string
		expectCode int
		expectBody string
	}{
		{"metrics", nil, "/metrics", http.StatusOK, "doorbell_ticks_total"},
		{"healthy without check", nil, "/healthz", http.StatusOK, "ok"},
		{"healthy journal", func(context.Context) error { return nil }, "/healthz", http.StatusOK, "ok"},
		{"journal down", func(context.Context) error { return errors.New("redis unreachable") }, "/healthz", http.StatusServiceUnavailable, "redis unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMetricsServer(0, tt.health)
			if err != nil {
				t.Fatalf("NewMetricsServer() error = %v", err)
			}
			metrics.TicksTotal.Inc()

			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.expectCode {
				t.Errorf("status = %d, expected %d", rec.Code, tt.expectCode)
			}
			if !strings.Contains(rec.Body.String(), tt.expectBody) {
				t.Errorf("body does not contain %q:\n%s", tt.expectBody, rec.Body.String())
			}
		})
	}
}

func TestMetricsServer_ShutdownNil(t *testing.T) {
	var m *MetricsServer
	if err := m.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on nil server error = %v", err)
	}
}
