package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/resell/internal/model"
)

func pageQuery(page, pageSize int) (url.Values, error) {
	if page < 0 || pageSize < 1 {
		return nil, errInvalidPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q, nil
}

// Feed returns one page of available items, newest first.
func (c *Client) Feed(ctx context.Context, page, pageSize int) (*model.Page, error) {
	return c.FeedFiltered(ctx, model.FeedFilter{}, page, pageSize)
}

// FeedFiltered returns one page of available items matching filter, newest
// first.
func (c *Client) FeedFiltered(ctx context.Context, filter model.FeedFilter, page, pageSize int) (*model.Page, error) {
	q, err := pageQuery(page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	filter.Encode(q)

	var p model.Page
	err = c.do(ctx, &call{
		op:       "feed",
		sentinel: ErrFetch,
		method:   http.MethodGet,
		path:     "/feed",
		query:    q,
		out:      &p,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Search returns one page of available items whose name contains query.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (*model.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: %w", ErrSearch, errEmptyQuery)
	}
	q, err := pageQuery(page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearch, err)
	}
	q.Set("query", query)

	var p model.Page
	err = c.do(ctx, &call{
		op:       "search",
		sentinel: ErrSearch,
		method:   http.MethodGet,
		path:     "/items/search",
		query:    q,
		out:      &p,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Item fetches a single item by id.
func (c *Client) Item(ctx context.Context, id int64) (*model.Item, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrFetch, errInvalidID)
	}

	var item model.Item
	err := c.do(ctx, &call{
		op:       "item",
		sentinel: ErrFetch,
		method:   http.MethodGet,
		path:     itemPath(id),
		out:      &item,
		notFound: ErrNotFound,
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem lists a new item for the logged-in seller.
func (c *Client) CreateItem(ctx context.Context, req model.ItemRequest) (*model.Item, error) {
	var item model.Item
	cl := &call{
		op:       "create_item",
		sentinel: ErrCreate,
		method:   http.MethodPost,
		path:     "/items",
		body:     req,
		out:      &item,
	}
	if err := c.authorize(cl); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem replaces the editable fields of item id.
func (c *Client) UpdateItem(ctx context.Context, id int64, req model.ItemRequest) (*model.Item, error) {
	var item model.Item
	cl := &call{
		op:       "update_item",
		sentinel: ErrUpdate,
		method:   http.MethodPut,
		path:     itemPath(id),
		body:     req,
		out:      &item,
	}
	if err := c.authorize(cl); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrUpdate, errInvalidID)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes item id.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	cl := &call{
		op:       "delete_item",
		sentinel: ErrDelete,
		method:   http.MethodDelete,
		path:     itemPath(id),
	}
	if err := c.authorize(cl); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: %w", ErrDelete, errInvalidID)
	}
	return c.do(ctx, cl)
}

// UploadItemImage attaches a photo to item id. The server re-encodes it.
func (c *Client) UploadItemImage(ctx context.Context, id int64, image io.Reader) error {
	cl := &call{
		op:       "upload_item_image",
		sentinel: ErrUpdate,
		method:   http.MethodPut,
		path:     itemPath(id) + "/image",
	}
	if err := c.authorize(cl); err != nil {
		return err
	}
	if id <= 0 {
		return fmt.Errorf("%w: %w", ErrUpdate, errInvalidID)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "image")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdate, err)
	}
	if _, err := io.Copy(fw, image); err != nil {
		return fmt.Errorf("%w: reading image: %w", ErrUpdate, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	cl.raw = &buf
	cl.contentType = mw.FormDataContentType()
	return c.do(ctx, cl)
}
