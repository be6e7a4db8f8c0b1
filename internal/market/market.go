// Package market combines the API client with the session to run guarded
// marketplace actions.
package market

import (
	"context"
	"io"
	"log/slog"

	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/session"
)

// Service runs marketplace actions on behalf of the session's identity.
// Guards are checked before any request is made. The server enforces the
// same rules.
type Service struct {
	client  *client.Client
	session *session.Store
}

// New creates a service. c should use s as its token source.
func New(c *client.Client, s *session.Store) *Service {
	return &Service{client: c, session: s}
}

// Lookup fetches a single item.
func (s *Service) Lookup(ctx context.Context, id int64) (*model.Item, error) {
	return s.client.Item(ctx, id)
}

// Sell lists a new item.
func (s *Service) Sell(ctx context.Context, req model.ItemRequest) (*model.Item, error) {
	if !s.session.LoggedIn() {
		return nil, model.ErrNotLoggedIn
	}
	item, err := s.client.CreateItem(ctx, req)
	if err != nil {
		return nil, err
	}
	slog.Info("item listed", "item", item.ID, "price", item.Price)
	return item, nil
}

// Edit replaces the editable fields of item.
func (s *Service) Edit(ctx context.Context, item *model.Item, req model.ItemRequest) (*model.Item, error) {
	if err := model.CanEdit(s.session.Identity(), item); err != nil {
		return nil, err
	}
	return s.client.UpdateItem(ctx, item.ID, req)
}

// Delete removes item.
func (s *Service) Delete(ctx context.Context, item *model.Item) error {
	if err := model.CanDelete(s.session.Identity(), item); err != nil {
		return err
	}
	if err := s.client.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	slog.Info("item deleted", "item", item.ID)
	return nil
}

// Purchase buys item.
func (s *Service) Purchase(ctx context.Context, item *model.Item) error {
	if err := model.CanPurchase(s.session.Identity(), item); err != nil {
		return err
	}
	if err := s.client.PurchaseItem(ctx, item.ID); err != nil {
		return err
	}
	slog.Info("item purchased", "item", item.ID, "price", item.Price, "seller", item.Username)
	return nil
}

// Photo uploads a picture for item.
func (s *Service) Photo(ctx context.Context, item *model.Item, image io.Reader) error {
	if err := model.CanEdit(s.session.Identity(), item); err != nil {
		return err
	}
	return s.client.UploadItemImage(ctx, item.ID, image)
}

// Pager returns a pager starting at page over the feed narrowed by filter,
// or over search results when query is non-empty. Search ignores filter.
func (s *Service) Pager(query string, filter model.FeedFilter, page, pageSize int) *Pager {
	return &Pager{
		client:   s.client,
		query:    query,
		filter:   filter,
		page:     max(page, 0),
		pageSize: pageSize,
	}
}
