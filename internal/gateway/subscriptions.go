package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// Subscriptions lists recurring service charges (tolerant unwrap).
func (c *Client) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	raw, err := c.Request(ctx, "/subscriptions", RequestOptions{Operation: "subscriptions.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.Subscription](raw, c.logger, "subscriptions.list"), nil
}

// CreateSubscription registers a subscription.
func (c *Client) CreateSubscription(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error) {
	raw, err := c.Request(ctx, "/subscriptions", RequestOptions{
		Method:    http.MethodPost,
		Operation: "subscriptions.create",
		JSON:      sub,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.Subscription](raw, "subscriptions.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelSubscription deactivates a subscription.
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/subscriptions/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "subscriptions.cancel",
	})
	return err
}
