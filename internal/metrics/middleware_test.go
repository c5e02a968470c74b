package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/search?q=goa", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/search", "200")); got < 1 {
		t.Errorf("expected http_requests_total{path=/search} >= 1, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	tests := []struct {
		target string
		status string
	}{
		{"/search", "400"},
		{"/search?fail=1", "500"},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, strings.NewReader("{}"))
			r.ServeHTTP(httptest.NewRecorder(), req)

			if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/search", tc.status)); got < 1 {
				t.Errorf("expected requests_total with status %s >= 1, got %f", tc.status, got)
			}
		})
	}
}

func TestMiddleware_ImplicitOKAndInFlight(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(_ http.ResponseWriter, _ *http.Request) {
		if got := testutil.ToFloat64(httpRequestsInFlight); got < 1 {
			t.Errorf("expected in-flight >= 1 while serving, got %f", got)
		}
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")); got < 1 {
		t.Errorf("expected implicit 200 to be recorded, got %f", got)
	}
	if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
		t.Errorf("expected in-flight back to 0, got %f", got)
	}
}

func TestRouteLabel_WithoutRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", http.NoBody)
	if got := routeLabel(req); got != unmatchedRoute {
		t.Errorf("routeLabel = %q, want %q", got, unmatchedRoute)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	NarrativeFallbacksTotal.WithLabelValues("error").Inc()
	if got := testutil.ToFloat64(NarrativeFallbacksTotal.WithLabelValues("error")); got < 1 {
		t.Errorf("expected fallback counter >= 1, got %f", got)
	}
}
