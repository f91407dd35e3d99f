package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/support-agent-router/internal/agent"
	"github.com/wolfman30/support-agent-router/internal/http/handlers"
	"github.com/wolfman30/support-agent-router/internal/observability/metrics"
	"github.com/wolfman30/support-agent-router/internal/ticket"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

type echoGate struct{}

func (echoGate) Process(_ context.Context, text, sessionID string) agent.Response {
	return agent.Response{Reply: agent.String("echo: " + text), SessionID: sessionID}
}

func newTestRouter(t *testing.T, rate float64, burst int) http.Handler {
	t.Helper()

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	metrics.NewRouterMetrics(reg).ObserveRoute("faq")

	return New(&Config{
		Logger:             logger,
		Requests:           handlers.NewRequestHandler(echoGate{}, nil, logger),
		Tickets:            handlers.NewTicketHandler(ticket.NewService(ticket.NewMemoryStore(), logger), logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimitPerSecond: rate,
		RateLimitBurst:     burst,
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `support_router_routed_total{agent="faq"} 1`) {
		t.Fatalf("expected routed counter in metrics output:\n%s", rr.Body.String())
	}
}

func TestRouterRequestsEndpoint(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	req := httptest.NewRequest(http.MethodPost, "/v1/requests", strings.NewReader(`{"input":"hi","session_id":"s-9"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var resp agent.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply == nil || *resp.Reply != "echo: hi" || resp.SessionID != "s-9" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRouterUnknownTicket(t *testing.T) {
	router := newTestRouter(t, 0, 0)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tickets/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRouterRateLimitsV1Only(t *testing.T) {
	router := newTestRouter(t, 0.001, 1)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tickets/missing", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusNotFound || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health to bypass the limiter, got %d", rr.Code)
	}
}
