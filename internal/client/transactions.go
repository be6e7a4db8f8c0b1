package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/resell/internal/model"
)

// PurchaseItem buys item id as the logged-in user.
func (c *Client) PurchaseItem(ctx context.Context, id int64) error {
	cl := &call{
		op:       "purchase_item",
		sentinel: ErrPurchase,
		method:   http.MethodPost,
		path:     fmt.Sprintf("/transactions/purchase/%d", id),
	}
	if err := c.authorize(cl); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: %w", ErrPurchase, errInvalidID)
	}
	return c.do(ctx, cl)
}

// Transactions lists the logged-in user's purchases and sales, newest first.
func (c *Client) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var transactions []model.Transaction
	cl := &call{
		op:       "transactions",
		sentinel: ErrFetch,
		method:   http.MethodGet,
		path:     "/transactions",
		out:      &transactions,
	}
	if err := c.authorize(cl); err != nil {
		return nil, err
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return transactions, nil
}
