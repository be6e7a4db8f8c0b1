package model

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// FeedFilter narrows the feed. Zero fields do not filter.
type FeedFilter struct {
	Brand     string    `json:"brand,omitempty"`
	Condition Condition `json:"condition,omitempty"`
	Lowest    float64   `json:"lowest,omitempty"`
	Highest   float64   `json:"highest,omitempty"`
	Size      string    `json:"size,omitempty"`
}

// Filter query parameter names.
const (
	FilterBrand     = "brand"
	FilterCondition = "condition"
	FilterLowest    = "lowest"
	FilterHighest   = "highest"
	FilterSize      = "size"
)

// Validate checks the condition and the price range.
func (f FeedFilter) Validate() error {
	if f.Condition != "" && !f.Condition.Valid() {
		return errors.New("invalid condition")
	}
	if f.Lowest < 0 || f.Highest < 0 {
		return errors.New("price bounds must not be negative")
	}
	if f.Highest > 0 && f.Lowest > f.Highest {
		return errors.New("lowest price above highest price")
	}
	return nil
}

// Encode adds the set fields of f to v.
func (f FeedFilter) Encode(v url.Values) {
	if b := strings.TrimSpace(f.Brand); b != "" {
		v.Set(FilterBrand, b)
	}
	if f.Condition != "" {
		v.Set(FilterCondition, string(f.Condition))
	}
	if f.Lowest > 0 {
		v.Set(FilterLowest, strconv.FormatFloat(f.Lowest, 'f', -1, 64))
	}
	if f.Highest > 0 {
		v.Set(FilterHighest, strconv.FormatFloat(f.Highest, 'f', -1, 64))
	}
	if s := strings.TrimSpace(f.Size); s != "" {
		v.Set(FilterSize, s)
	}
}

// ParseFeedFilter reads a filter from query parameters and validates it.
func ParseFeedFilter(v url.Values) (FeedFilter, error) {
	f := FeedFilter{
		Brand:     strings.TrimSpace(v.Get(FilterBrand)),
		Condition: Condition(strings.ToUpper(strings.TrimSpace(v.Get(FilterCondition)))),
		Size:      strings.TrimSpace(v.Get(FilterSize)),
	}
	var err error
	if f.Lowest, err = parsePrice(v.Get(FilterLowest)); err != nil {
		return FeedFilter{}, errors.New("invalid lowest price")
	}
	if f.Highest, err = parsePrice(v.Get(FilterHighest)); err != nil {
		return FeedFilter{}, errors.New("invalid highest price")
	}
	if err := f.Validate(); err != nil {
		return FeedFilter{}, err
	}
	return f, nil
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
