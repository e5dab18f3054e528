// Package service composes gateway calls into the aggregates the BFF serves.
package service

import (
	"context"
	"time"

	"github.com/centsible/centsible-go/internal/domain"
	"github.com/centsible/centsible-go/internal/finance"
	"github.com/centsible/centsible-go/internal/infra/observability"
	"github.com/centsible/centsible-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/overview")

// Overview assembles the dashboard: total monthly income, upcoming and
// overdue bills, overdue receivables.
type Overview struct {
	bills       port.BillsFetcher
	receivables port.ReceivablesFetcher
	incomes     port.IncomeFetcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewOverview creates the overview service with all dependencies injected.
func NewOverview(
	bills port.BillsFetcher,
	receivables port.ReceivablesFetcher,
	incomes port.IncomeFetcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Overview {
	return &Overview{
		bills:       bills,
		receivables: receivables,
		incomes:     incomes,
		metrics:     metrics,
		logger:      logger,
	}
}

// Get fetches bills, receivables and income sources concurrently and reduces
// them into one Overview. The three calls race independently; the first
// failure cancels the others.
func (s *Overview) Get(ctx context.Context) (*domain.Overview, error) {
	ctx, span := tracer.Start(ctx, "Overview.Get")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("overview", time.Since(start)) }()

	var (
		bills       []domain.Bill
		receivables []domain.Receivable
		incomes     []domain.IncomeSource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bills, err = s.bills.Bills(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		receivables, err = s.receivables.Receivables(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.incomes.IncomeSources(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("overview: aggregate fetch failed", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	ov := &domain.Overview{
		TotalMonthlyIncome: finance.TotalMonthlyIncome(incomes),
		UpcomingBills:      []domain.Bill{},
		OverdueBills:       []domain.Bill{},
		OverdueReceivables: []domain.Receivable{},
	}

	for _, b := range bills {
		if b.Paid {
			continue
		}
		switch {
		case finance.IsOverdueAt(b.DueDate, now):
			ov.OverdueBills = append(ov.OverdueBills, b)
		case finance.IsDueTodayAt(b.DueDate, now),
			finance.IsDueSoonAt(b.DueDate, finance.DefaultDueSoonWindow, now):
			ov.UpcomingBills = append(ov.UpcomingBills, b)
		}
	}

	for _, r := range receivables {
		if r.Status == "paid" {
			continue
		}
		ov.TotalReceivable += r.Amount
		if finance.IsOverdueAt(r.DueDate, now) {
			ov.OverdueReceivables = append(ov.OverdueReceivables, r)
		}
	}

	return ov, nil
}
