package model

import "errors"

// Guard errors. They are returned before any request is made, the backend
// still enforces the same rules on its own.
var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNotOwner     = errors.New("item belongs to another seller")
	ErrOwnItem      = errors.New("cannot buy your own item")
	ErrNotAvailable = errors.New("item is not available")
)

// CanEdit reports whether id may change item.
func CanEdit(id *Identity, item *Item) error {
	return ownerAction(id, item)
}

// CanDelete reports whether id may delete item.
func CanDelete(id *Identity, item *Item) error {
	return ownerAction(id, item)
}

// CanPurchase reports whether id may buy item.
func CanPurchase(id *Identity, item *Item) error {
	if id == nil || id.Username == "" {
		return ErrNotLoggedIn
	}
	if item.Username == id.Username {
		return ErrOwnItem
	}
	if item.Status != ItemStatusAvailable {
		return ErrNotAvailable
	}
	return nil
}

func ownerAction(id *Identity, item *Item) error {
	if id == nil || id.Username == "" {
		return ErrNotLoggedIn
	}
	if item.Username != id.Username {
		return ErrNotOwner
	}
	if item.Status != ItemStatusAvailable {
		return ErrNotAvailable
	}
	return nil
}
