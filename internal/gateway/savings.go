package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// SavingsGoals lists every savings goal (tolerant unwrap).
func (c *Client) SavingsGoals(ctx context.Context) ([]domain.SavingsGoal, error) {
	raw, err := c.Request(ctx, "/savings", RequestOptions{Operation: "savings.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.SavingsGoal](raw, c.logger, "savings.list"), nil
}

// CreateSavingsGoal registers a savings goal.
func (c *Client) CreateSavingsGoal(ctx context.Context, goal domain.SavingsGoal) (*domain.SavingsGoal, error) {
	raw, err := c.Request(ctx, "/savings", RequestOptions{
		Method:    http.MethodPost,
		Operation: "savings.create",
		JSON:      goal,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.SavingsGoal](raw, "savings.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Contribute adds to a goal's current amount and returns the updated goal.
func (c *Client) Contribute(ctx context.Context, goalID string, amount float64) (*domain.SavingsGoal, error) {
	raw, err := c.Request(ctx, "/savings/"+goalID+"/contributions", RequestOptions{
		Method:    http.MethodPost,
		Operation: "savings.contribute",
		JSON:      map[string]float64{"amount": amount},
	})
	if err != nil {
		return nil, err
	}
	updated, err := UnwrapObject[domain.SavingsGoal](raw, "savings.contribute")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
