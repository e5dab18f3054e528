package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// Receivables lists money owed to the user (tolerant unwrap).
func (c *Client) Receivables(ctx context.Context) ([]domain.Receivable, error) {
	raw, err := c.Request(ctx, "/receivables", RequestOptions{Operation: "receivables.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.Receivable](raw, c.logger, "receivables.list"), nil
}

// CreateReceivable registers a receivable.
func (c *Client) CreateReceivable(ctx context.Context, r domain.Receivable) (*domain.Receivable, error) {
	raw, err := c.Request(ctx, "/receivables", RequestOptions{
		Method:    http.MethodPost,
		Operation: "receivables.create",
		JSON:      r,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.Receivable](raw, "receivables.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RecordReceivablePayment marks a full or partial payment against a
// receivable and returns its updated state.
func (c *Client) RecordReceivablePayment(ctx context.Context, id string, amount float64) (*domain.Receivable, error) {
	raw, err := c.Request(ctx, "/receivables/"+id+"/payments", RequestOptions{
		Method:    http.MethodPost,
		Operation: "receivables.pay",
		JSON:      map[string]float64{"amount": amount},
	})
	if err != nil {
		return nil, err
	}
	updated, err := UnwrapObject[domain.Receivable](raw, "receivables.pay")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteReceivable removes a receivable.
func (c *Client) DeleteReceivable(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/receivables/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "receivables.delete",
	})
	return err
}
