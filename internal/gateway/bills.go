package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

// Bills lists every bill. Tolerant unwrap: an unexpected shape degrades to an
// empty list so the bills view never hard-fails.
func (c *Client) Bills(ctx context.Context) ([]domain.Bill, error) {
	raw, err := c.Request(ctx, "/bills", RequestOptions{Operation: "bills.list"})
	if err != nil {
		return nil, err
	}
	return UnwrapCollection[domain.Bill](raw, c.logger, "bills.list"), nil
}

// BillsPage lists bills one page at a time.
func (c *Client) BillsPage(ctx context.Context, page, limit int) ([]domain.Bill, *domain.Page, error) {
	path := pathWithPage("/bills", page, limit)
	raw, err := c.Request(ctx, path, RequestOptions{Operation: "bills.page"})
	if err != nil {
		return nil, nil, err
	}
	items, meta := UnwrapPaginated[domain.Bill](raw, c.logger, "bills.page")
	return items, meta, nil
}

// Bill fetches a single bill. Strict unwrap: missing data throws.
func (c *Client) Bill(ctx context.Context, id string) (*domain.Bill, error) {
	raw, err := c.Request(ctx, "/bills/"+id, RequestOptions{Operation: "bills.get"})
	if err != nil {
		return nil, err
	}
	bill, err := UnwrapObject[domain.Bill](raw, "bills.get")
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// CreateBill creates a bill and returns the stored record.
func (c *Client) CreateBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error) {
	raw, err := c.Request(ctx, "/bills", RequestOptions{
		Method:    http.MethodPost,
		Operation: "bills.create",
		JSON:      bill,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.Bill](raw, "bills.create")
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBill replaces a bill.
func (c *Client) UpdateBill(ctx context.Context, id string, bill domain.Bill) (*domain.Bill, error) {
	raw, err := c.Request(ctx, "/bills/"+id, RequestOptions{
		Method:    http.MethodPut,
		Operation: "bills.update",
		JSON:      bill,
	})
	if err != nil {
		return nil, err
	}
	updated, err := UnwrapObject[domain.Bill](raw, "bills.update")
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBill removes a bill.
func (c *Client) DeleteBill(ctx context.Context, id string) error {
	_, err := c.Request(ctx, "/bills/"+id, RequestOptions{
		Method:    http.MethodDelete,
		Operation: "bills.delete",
	})
	return err
}

// MarkBillPaid flags a bill as paid.
func (c *Client) MarkBillPaid(ctx context.Context, id string) (*domain.Bill, error) {
	raw, err := c.Request(ctx, "/bills/"+id+"/pay", RequestOptions{
		Method:    http.MethodPost,
		Operation: "bills.pay",
	})
	if err != nil {
		return nil, err
	}
	bill, err := UnwrapObject[domain.Bill](raw, "bills.pay")
	if err != nil {
		return nil, err
	}
	return &bill, nil
}
