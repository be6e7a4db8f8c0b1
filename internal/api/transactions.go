package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
)

// TransactionsHandler handles purchase endpoints.
type TransactionsHandler struct {
	DB *sql.DB
}

// Purchase handles POST /transactions/purchase/{itemId}.
func (h *TransactionsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	itemID, ok := pathID(r, "itemId")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	tx, err := store.PurchaseItem(r.Context(), h.DB, itemID, claims.UserID)
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
		return
	case errors.Is(err, store.ErrOwnItem):
		jsonError(w, http.StatusForbidden, "cannot buy own item")
		return
	case errors.Is(err, store.ErrItemNotAvailable):
		jsonError(w, http.StatusConflict, "item not available")
		return
	case err != nil:
		slog.Error("purchase failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "purchase failed")
		return
	}

	slog.Info("item purchased", "buyer", claims.Username, "seller", tx.Seller,
		"item", tx.ItemID, "amount", tx.Amount, "commission", tx.Commission)
	noContent(w)
}

// List handles GET /transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	transactions, err := store.ListTransactions(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, transactions)
}
