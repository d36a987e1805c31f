package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() (*Simulator, http.Handler) {
	sim := NewSimulator(0, 1.0)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), sim)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return sim, r
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/gateway/simulate-failures", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetSimulateFailuresTogglesSimulator(t *testing.T) {
	sim, router := newTestRouter()

	rec := post(t, router, `{"enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !sim.SimulateFailures() {
		t.Fatal("toggle should be on after enabling")
	}

	rec = post(t, router, `{"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if sim.SimulateFailures() {
		t.Fatal("toggle should be off after disabling")
	}
}

func TestSetSimulateFailuresRequiresEnabledField(t *testing.T) {
	sim, router := newTestRouter()
	sim.SetSimulateFailures(true)

	rec := post(t, router, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if !sim.SimulateFailures() {
		t.Fatal("rejected request must not change the toggle")
	}

	rec = post(t, router, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body got %d", rec.Code)
	}
}

func TestGatewayStatusReportsToggle(t *testing.T) {
	sim, router := newTestRouter()
	sim.SetSimulateFailures(true)

	req := httptest.NewRequest(http.MethodGet, "/gateway", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"simulate_failures":true`) {
		t.Fatalf("status body missing toggle state: %s", rec.Body.String())
	}
}
