package market

import (
	"context"
	"errors"
	"sync"

	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/model"
)

// ErrNoPage is returned when paging past either end of a listing.
var ErrNoPage = errors.New("no such page")

// Pager walks a paginated listing. It remembers the last page it loaded so
// Next and Prev stay within bounds.
type Pager struct {
	client *client.Client

	query    string
	filter   model.FeedFilter
	pageSize int

	mu   sync.Mutex
	page int
	seq  uint64
	last *model.Page
}

// Query returns the search text, empty for the feed.
func (p *Pager) Query() string {
	return p.query
}

// Page returns the index of the page the pager points at.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Current returns the most recently loaded page, or nil.
func (p *Pager) Current() *model.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Load fetches the page the pager points at. Only the newest of overlapping
// loads is remembered; an older response is still returned to its caller.
func (p *Pager) Load(ctx context.Context) (*model.Page, error) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	page := p.page
	p.mu.Unlock()

	var (
		result *model.Page
		err    error
	)
	if p.query == "" {
		result, err = p.client.FeedFiltered(ctx, p.filter, page, p.pageSize)
	} else {
		result, err = p.client.Search(ctx, p.query, page, p.pageSize)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if seq == p.seq {
		p.last = result
	}
	p.mu.Unlock()
	return result, nil
}

// Next loads the following page.
func (p *Pager) Next(ctx context.Context) (*model.Page, error) {
	p.mu.Lock()
	if p.last == nil || !p.last.HasNext() {
		p.mu.Unlock()
		return nil, ErrNoPage
	}
	p.page++
	p.mu.Unlock()

	result, err := p.Load(ctx)
	if err != nil {
		p.mu.Lock()
		p.page--
		p.mu.Unlock()
	}
	return result, err
}

// Prev loads the preceding page.
func (p *Pager) Prev(ctx context.Context) (*model.Page, error) {
	p.mu.Lock()
	if p.page == 0 {
		p.mu.Unlock()
		return nil, ErrNoPage
	}
	p.page--
	p.mu.Unlock()

	result, err := p.Load(ctx)
	if err != nil {
		p.mu.Lock()
		p.page++
		p.mu.Unlock()
	}
	return result, err
}

// Refresh reloads the current page. If the listing shrank so that the page
// no longer exists, it moves to the last page that does.
func (p *Pager) Refresh(ctx context.Context) (*model.Page, error) {
	result, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if result.TotalPages == 0 || p.page < result.TotalPages {
		p.mu.Unlock()
		return result, nil
	}
	p.page = result.TotalPages - 1
	p.mu.Unlock()

	return p.Load(ctx)
}
