package model

import (
	"errors"
	"strings"
)

// Item is a single resale listing.
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Brand     string     `json:"brand"`
	Condition Condition  `json:"condition"`
	Price     float64    `json:"price"`
	Size      string     `json:"size"`
	Status    ItemStatus `json:"status"`
	ListedAt  Timestamp  `json:"listedAt"`
	Username  string     `json:"username"`
}

// ItemRequest holds the seller-editable fields of an item.
type ItemRequest struct {
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Condition Condition `json:"condition"`
	Price     float64   `json:"price"`
	Size      string    `json:"size"`
}

// ItemStatus is the availability of a listing.
type ItemStatus string

// Item statuses.
const (
	ItemStatusAvailable ItemStatus = "AVAILABLE"
	ItemStatusSold      ItemStatus = "SOLD"
	ItemStatusReserved  ItemStatus = "RESERVED"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusSold, ItemStatusReserved:
		return true
	}
	return false
}

// Condition describes the wear of a listed item.
type Condition string

// Conditions.
const (
	ConditionNew     Condition = "NEW"
	ConditionLikeNew Condition = "LIKE_NEW"
	ConditionGood    Condition = "GOOD"
	ConditionFair    Condition = "FAIR"
	ConditionPoor    Condition = "POOR"
	ConditionUsed    Condition = "USED"
)

// Conditions lists every condition in order from best to worst.
var Conditions = []Condition{
	ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor, ConditionUsed,
}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Validate checks that every field is present and the price is positive.
func (r ItemRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name required")
	}
	if strings.TrimSpace(r.Brand) == "" {
		return errors.New("brand required")
	}
	if !r.Condition.Valid() {
		return errors.New("invalid condition")
	}
	if !(r.Price > 0) {
		return errors.New("price must be above 0")
	}
	if strings.TrimSpace(r.Size) == "" {
		return errors.New("size required")
	}
	return nil
}
