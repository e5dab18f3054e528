package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centsible/centsible-go/internal/credstore"
	"github.com/centsible/centsible-go/internal/gateway"
	"github.com/centsible/centsible-go/internal/handler"
	"github.com/centsible/centsible-go/internal/infra/observability"
	"github.com/centsible/centsible-go/internal/service"

	"go.uber.org/zap"
)

// newTestRouter wires a full router against a fake backend.
func newTestRouter(t *testing.T, backend http.HandlerFunc) http.Handler {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetrics()
	session := gateway.NewSession(credstore.NewMemory())
	gw := gateway.NewClient(srv.Client(), gateway.Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, session, nil, metrics, zap.NewNop())

	overview := service.NewOverview(gw, gw, gw, metrics, zap.NewNop())
	return handler.NewRouter(gw, overview, metrics, zap.NewNop())
}

func noBackend(t *testing.T) http.Handler {
	return newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unexpected backend call", http.StatusInternalServerError)
	})
}

func TestHealthz(t *testing.T) {
	router := noBackend(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := noBackend(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := noBackend(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestListBills(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bills" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"b-1","name":"Rent","amount":1200}]}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/bills", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Bills []struct {
			ID string `json:"id"`
		} `json:"bills"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Bills) != 1 || body.Bills[0].ID != "b-1" {
		t.Errorf("expected bills [b-1], got %+v", body.Bills)
	}
}

func TestOverview(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bills":
			w.Write([]byte(`{"success":true,"data":[{"id":"b-1","name":"Rent","amount":1200,"dueDate":"2020-01-01"}]}`))
		case "/receivables":
			w.Write([]byte(`{"success":true,"data":[]}`))
		case "/income-sources":
			w.Write([]byte(`{"success":true,"data":[{"id":"i-1","name":"Salary","amount":5000,"frequency":"monthly"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/overview", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		TotalMonthlyIncome float64 `json:"totalMonthlyIncome"`
		OverdueBills       []struct {
			ID string `json:"id"`
		} `json:"overdueBills"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TotalMonthlyIncome != 5000 {
		t.Errorf("expected income 5000, got %f", body.TotalMonthlyIncome)
	}
	if len(body.OverdueBills) != 1 {
		t.Errorf("expected one overdue bill, got %+v", body.OverdueBills)
	}
}

func TestLoanEstimate(t *testing.T) {
	router := noBackend(t)

	payload := []byte(`{"principal":100000,"annualRate":6,"termMonths":360}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/loans/estimate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		MonthlyPayment float64 `json:"monthlyPayment"`
		TotalInterest  float64 `json:"totalInterest"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.MonthlyPayment < 599.50 || body.MonthlyPayment > 599.60 {
		t.Errorf("expected payment ~599.55, got %f", body.MonthlyPayment)
	}
	if body.TotalInterest <= 0 {
		t.Errorf("expected positive total interest, got %f", body.TotalInterest)
	}
}

func TestLoanEstimate_RejectsBadInput(t *testing.T) {
	router := noBackend(t)

	cases := []string{
		`{"principal":0,"annualRate":6,"termMonths":360}`,
		`{"principal":100000,"annualRate":6,"termMonths":0}`,
		`{"principal":100000,"annualRate":-1,"termMonths":360}`,
		`not json`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/estimate", bytes.NewReader([]byte(payload)))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestGatewayStats(t *testing.T) {
	router := noBackend(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/gateway/stats", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var snap observability.GatewaySnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestUpstreamTimeoutMapsTo504(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics()
	session := gateway.NewSession(credstore.NewMemory())
	gw := gateway.NewClient(srv.Client(), gateway.Config{
		BaseURL: srv.URL,
		Timeout: 20 * time.Millisecond,
	}, session, nil, metrics, zap.NewNop())
	overview := service.NewOverview(gw, gw, gw, metrics, zap.NewNop())
	router := handler.NewRouter(gw, overview, metrics, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/bills", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListLoansAndSchedule(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/Loans":
			w.Write([]byte(`{"success":true,"data":[{"id":"l-1","name":"Car"}]}`))
		case "/Loans/l-1/schedule":
			w.Write([]byte(`{"success":true,"data":[{"period":1,"payment":450.10}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/loans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("loans: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loansBody struct {
		Loans []struct {
			ID string `json:"id"`
		} `json:"loans"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loansBody); err != nil {
		t.Fatalf("decode loans: %v", err)
	}
	if len(loansBody.Loans) != 1 || loansBody.Loans[0].ID != "l-1" {
		t.Errorf("expected loans [l-1], got %+v", loansBody.Loans)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/loans/l-1/schedule", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var schedBody struct {
		Schedule []struct {
			Period int `json:"period"`
		} `json:"schedule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &schedBody); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if len(schedBody.Schedule) != 1 || schedBody.Schedule[0].Period != 1 {
		t.Errorf("expected schedule period 1, got %+v", schedBody.Schedule)
	}
}
