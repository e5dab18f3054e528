// Package port defines the interfaces (ports) the BFF layer depends on.
// They decouple handlers and services from the concrete gateway client so
// tests can substitute mocks.
package port

import (
	"context"

	"github.com/centsible/centsible-go/internal/domain"
)

// BillsFetcher lists the user's bills.
type BillsFetcher interface {
	Bills(ctx context.Context) ([]domain.Bill, error)
}

// ReceivablesFetcher lists money owed to the user.
type ReceivablesFetcher interface {
	Receivables(ctx context.Context) ([]domain.Receivable, error)
}

// IncomeFetcher lists the user's income sources.
type IncomeFetcher interface {
	IncomeSources(ctx context.Context) ([]domain.IncomeSource, error)
}

// LoanReader reads loans and their payment schedules.
type LoanReader interface {
	Loans(ctx context.Context) ([]domain.Loan, error)
	LoanSchedule(ctx context.Context, id string) ([]domain.ScheduleEntry, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
