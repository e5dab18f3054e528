package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// Loans lists every loan (tolerant unwrap).
func (c *Client) Loans(ctx context.Context) ([]domain.Loan, error) {
	raw, err := c.Request(ctx, "/Loans", RequestOptions{Operation: "loans.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.Loan](raw, c.logger, "loans.list"), nil
}

// Loan fetches a single loan (strict unwrap).
func (c *Client) Loan(ctx context.Context, id string) (*domain.Loan, error) {
	raw, err := c.Request(ctx, "/Loans/"+id, RequestOptions{Operation: "loans.get"})
	if err != nil {
		return nil, err
	}
	loan, err := UnwrapObject[domain.Loan](raw, "loans.get")
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateLoan registers a loan.
func (c *Client) CreateLoan(ctx context.Context, loan domain.Loan) (*domain.Loan, error) {
	raw, err := c.Request(ctx, "/Loans", RequestOptions{
		Method:    http.MethodPost,
		Operation: "loans.create",
		JSON:      loan,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.Loan](raw, "loans.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// LoanSchedule fetches the payment schedule for a loan. The schedule is a
// collection, so it degrades to empty rather than failing the loan view.
func (c *Client) LoanSchedule(ctx context.Context, id string) ([]domain.ScheduleEntry, error) {
	raw, err := c.Request(ctx, "/Loans/"+id+"/schedule", RequestOptions{Operation: "loans.schedule"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.ScheduleEntry](raw, c.logger, "loans.schedule"), nil
}

// DeleteLoan removes a loan.
func (c *Client) DeleteLoan(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/Loans/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "loans.delete",
	})
	return err
}
