package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/centsible/centsible-go/internal/finance"
	"github.com/centsible/centsible-go/internal/gateway"
	"github.com/centsible/centsible-go/internal/infra/observability"
	"github.com/centsible/centsible-go/internal/port"
	"github.com/centsible/centsible-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(gw *gateway.Client, overview *service.Overview, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Dashboard
		r.Get("/overview", overviewHandler(overview, logger))

		// Bills
		r.Get("/bills", listBillsHandler(gw, logger))

		// Loans
		r.Get("/loans", listLoansHandler(gw, logger))
		r.Get("/loans/{loanId}/schedule", loanScheduleHandler(gw, logger))
		r.Post("/loans/estimate", loanEstimateHandler(logger))

		// Session
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", loginHandler(gw, logger))
			r.Post("/logout", logoutHandler(gw, logger))
			r.Post("/refresh", refreshHandler(gw, logger))
			r.Get("/me", currentUserHandler(gw, logger))
		})

		// Gateway stats
		r.Get("/gateway/stats", gatewayStatsHandler(metrics))
	})

	return r
}

// ============================================================
// Dashboard
// ============================================================

func overviewHandler(svc *service.Overview, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/overview")
		defer span.End()

		ov, err := svc.Get(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ov)
	}
}

// ============================================================
// Bills
// ============================================================

func listBillsHandler(gw *gateway.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bills")
		defer span.End()

		// ?page=N switches to the paginated listing.
		if r.URL.Query().Get("page") != "" {
			page, limit := parsePagination(r)
			bills, meta, err := gw.BillsPage(ctx, page, limit)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"bills": bills, "page": meta})
			return
		}

		bills, err := gw.Bills(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
	}
}

// ============================================================
// Loans
// ============================================================

func listLoansHandler(loans port.LoanReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loans")
		defer span.End()

		list, err := loans.Loans(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"loans": list})
	}
}

func loanScheduleHandler(loans port.LoanReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/loans/{loanId}/schedule")
		defer span.End()

		loanID := chi.URLParam(r, "loanId")
		if loanID == "" {
			writeError(w, http.StatusBadRequest, "loanId is required")
			return
		}

		schedule, err := loans.LoanSchedule(ctx, loanID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"schedule": schedule})
	}
}

// loanEstimateHandler computes an amortization estimate locally, without a
// backend round trip.
func loanEstimateHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/loans/estimate")
		defer span.End()

		var req struct {
			Principal       float64 `json:"principal"`
			AnnualRate      float64 `json:"annualRate"` // percent, e.g. 6 for 6%
			TermMonths      int     `json:"termMonths"`
			StartDate       string  `json:"startDate,omitempty"` // YYYY-MM-DD
			IncludeSchedule bool    `json:"includeSchedule,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Principal <= 0 {
			writeError(w, http.StatusBadRequest, "principal must be positive")
			return
		}
		if req.TermMonths <= 0 {
			writeError(w, http.StatusBadRequest, "termMonths must be positive")
			return
		}
		if req.AnnualRate < 0 {
			writeError(w, http.StatusBadRequest, "annualRate must not be negative")
			return
		}

		payment := finance.MonthlyPayment(req.Principal, req.AnnualRate, req.TermMonths)
		interest := finance.TotalInterest(req.Principal, req.AnnualRate, req.TermMonths)

		resp := map[string]any{
			"monthlyPayment": payment,
			"totalInterest":  interest,
			"totalPaid":      req.Principal + interest,
		}

		if req.IncludeSchedule {
			start := time.Now()
			if req.StartDate != "" {
				parsed, err := time.Parse("2006-01-02", req.StartDate)
				if err != nil {
					writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
					return
				}
				start = parsed
			}
			resp["schedule"] = finance.Schedule(req.Principal, req.AnnualRate, req.TermMonths, start)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Session
// ============================================================

func loginHandler(gw *gateway.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		user, err := gw.Login(ctx, req.Email, req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

func logoutHandler(gw *gateway.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := gw.Logout(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func refreshHandler(gw *gateway.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/refresh")
		defer span.End()

		if err := gw.Refresh(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func currentUserHandler(gw *gateway.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/me")
		defer span.End()

		user, err := gw.CurrentUser(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// ============================================================
// Stats & probes
// ============================================================

func gatewayStatsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
