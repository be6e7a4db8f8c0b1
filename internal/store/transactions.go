package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/resell/internal/model"
)

// Purchase failures.
var (
	ErrItemNotFound = errors.New("item not found")
	ErrOwnItem      = errors.New("cannot buy own item")
)

// PurchaseItem sells an AVAILABLE item to buyerID in a single transaction: it
// records the sale, marks the item SOLD and credits the seller with the price
// minus the marketplace commission.
func PurchaseItem(ctx context.Context, db *sql.DB, itemID, buyerID int64) (*model.Transaction, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var sellerID int64
	var price float64
	var status model.ItemStatus
	err = tx.QueryRowContext(ctx,
		`SELECT seller_id, price, status FROM items WHERE id = ?`, itemID,
	).Scan(&sellerID, &price, &status)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}

	if sellerID == buyerID {
		return nil, ErrOwnItem
	}
	if status != model.ItemStatusAvailable {
		return nil, ErrItemNotAvailable
	}

	commission := model.Commission(price)

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = 'SOLD' WHERE id = ? AND status = 'AVAILABLE'`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking item sold: %w", err)
	}
	if err := requireChanged(result, ErrItemNotAvailable); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE id = ?`, price-commission, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("crediting seller: %w", err)
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (item_id, seller_id, buyer_id, amount, commission)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, sellerID, buyerID, price, commission,
	)
	if err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing purchase: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetTransaction(ctx, db, id)
}

const transactionColumns = `t.id, t.item_id, t.seller_id, t.buyer_id, t.amount, t.commission, t.created_at,
	i.name AS item_name, s.username AS seller, b.username AS buyer`

const transactionJoins = `FROM transactions t
	JOIN items i ON i.id = t.item_id
	JOIN users s ON s.id = t.seller_id
	JOIN users b ON b.id = t.buyer_id`

// GetTransaction returns a transaction by ID.
func GetTransaction(ctx context.Context, db *sql.DB, id int64) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` `+transactionJoins+` WHERE t.id = ?`, id,
	).Scan(&t.ID, &t.ItemID, &t.SellerID, &t.BuyerID, &t.Amount, &t.Commission, &t.CreatedAt,
		&t.ItemName, &t.Seller, &t.Buyer)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the purchases and sales of userID, newest first.
func ListTransactions(ctx context.Context, db *sql.DB, userID int64) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+transactionColumns+` `+transactionJoins+`
		 WHERE t.seller_id = ? OR t.buyer_id = ?
		 ORDER BY t.created_at DESC, t.id DESC`, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.ItemID, &t.SellerID, &t.BuyerID, &t.Amount, &t.Commission, &t.CreatedAt,
			&t.ItemName, &t.Seller, &t.Buyer); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
