package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// IncomeSources lists the user's income sources (tolerant unwrap). The
// frequency→monthly aggregation over these lives in internal/finance.
func (c *Client) IncomeSources(ctx context.Context) ([]domain.IncomeSource, error) {
	raw, err := c.Request(ctx, "/income-sources", RequestOptions{Operation: "incomes.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.IncomeSource](raw, c.logger, "incomes.list"), nil
}

// CreateIncomeSource registers an income source.
func (c *Client) CreateIncomeSource(ctx context.Context, src domain.IncomeSource) (*domain.IncomeSource, error) {
	raw, err := c.Request(ctx, "/income-sources", RequestOptions{
		Method:    http.MethodPost,
		Operation: "incomes.create",
		JSON:      src,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.IncomeSource](raw, "incomes.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteIncomeSource removes an income source.
func (c *Client) DeleteIncomeSource(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/income-sources/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "incomes.delete",
	})
	return err
}
