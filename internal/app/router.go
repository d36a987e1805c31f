package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rentledger/rentledger/internal/automation"
	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/gateway"
	"github.com/rentledger/rentledger/internal/ledger"
	"github.com/rentledger/rentledger/internal/observability"
	"github.com/rentledger/rentledger/internal/recurring"
	"github.com/rentledger/rentledger/internal/shared"
	"github.com/rentledger/rentledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	LedgerHandler     *ledger.Handler
	BillingHandler    *billing.Handler
	RecurringHandler  *recurring.Handler
	AutomationHandler *automation.Handler
	GatewayHandler    *gateway.Handler
	JobHandler        *jobs.Handler
	AuditTrail        *shared.AuditTrail
	ActivityFeed      *shared.ActivityFeed
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Rentledger defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(api)
		}
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(api)
		}
		if params.RecurringHandler != nil {
			params.RecurringHandler.MountRoutes(api)
		}
		if params.AutomationHandler != nil {
			params.AutomationHandler.MountRoutes(api)
		}
		if params.GatewayHandler != nil {
			params.GatewayHandler.MountRoutes(api)
		}

		api.Get("/audit-logs", func(w http.ResponseWriter, r *http.Request) {
			logs, err := params.AuditTrail.List(r.Context())
			if err != nil {
				shared.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			shared.WriteJSON(w, http.StatusOK, logs)
		})
		api.Get("/activity", func(w http.ResponseWriter, r *http.Request) {
			entries, err := params.ActivityFeed.List(r.Context())
			if err != nil {
				shared.WriteError(w, http.StatusInternalServerError, err)
				return
			}
			shared.WriteJSON(w, http.StatusOK, entries)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			params.JobHandler.MountRoutes(jr)
		})
	}

	return r
}
