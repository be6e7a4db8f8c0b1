package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/resell/internal/model"
)

// ErrItemNotAvailable is returned when a change targets an item that is no longer AVAILABLE.
var ErrItemNotAvailable = errors.New("item not available")

const itemColumns = `i.id, i.name, i.brand, i.condition, i.price, i.size, i.status, i.listed_at, u.username`

// CreateItem lists a new AVAILABLE item for sellerID.
func CreateItem(ctx context.Context, db *sql.DB, sellerID int64, req model.ItemRequest) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, brand, condition, price, size, seller_id) VALUES (?, ?, ?, ?, ?, ?)`,
		req.Name, req.Brand, string(req.Condition), req.Price, req.Size, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN users u ON u.id = i.seller_id
		 WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Brand, &item.Condition, &item.Price, &item.Size, &item.Status, &item.ListedAt.Time, &item.Username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListAvailableItems returns one page of AVAILABLE items, newest first, and the
// total number of matching items. A non-empty query restricts the result to
// items whose name contains it, ignoring case. The filter further narrows by
// brand substring, exact condition, size and an inclusive price range.
func ListAvailableItems(ctx context.Context, db *sql.DB, query string, filter model.FeedFilter, page, pageSize int) ([]model.Item, int64, error) {
	where, args := availableWhere(query, filter)

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items i `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN users u ON u.id = i.seller_id
		 `+where+`
		 ORDER BY i.listed_at DESC, i.id DESC
		 LIMIT ? OFFSET ?`,
		append(args, pageSize, page*pageSize)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Brand, &item.Condition, &item.Price, &item.Size, &item.Status, &item.ListedAt.Time, &item.Username); err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func availableWhere(query string, f model.FeedFilter) (string, []any) {
	where := `WHERE i.status = 'AVAILABLE'`
	var args []any
	if query != "" {
		where += ` AND instr(lower(i.name), lower(?)) > 0`
		args = append(args, query)
	}
	if f.Brand != "" {
		where += ` AND instr(lower(i.brand), lower(?)) > 0`
		args = append(args, f.Brand)
	}
	if f.Condition != "" {
		where += ` AND i.condition = ?`
		args = append(args, string(f.Condition))
	}
	if f.Size != "" {
		where += ` AND lower(i.size) = lower(?)`
		args = append(args, f.Size)
	}
	if f.Lowest > 0 {
		where += ` AND i.price >= ?`
		args = append(args, f.Lowest)
	}
	if f.Highest > 0 {
		where += ` AND i.price <= ?`
		args = append(args, f.Highest)
	}
	return where, args
}

// UpdateItem replaces the seller-editable fields of an AVAILABLE item.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, req model.ItemRequest) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, brand = ?, condition = ?, price = ?, size = ?
		 WHERE id = ? AND status = 'AVAILABLE'`,
		req.Name, req.Brand, string(req.Condition), req.Price, req.Size, id,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireChanged(result, ErrItemNotAvailable)
}

// DeleteItem removes an AVAILABLE item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND status = 'AVAILABLE'`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return requireChanged(result, ErrItemNotAvailable)
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ? WHERE id = ? AND status = 'AVAILABLE'`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return requireChanged(result, ErrItemNotAvailable)
}

// GetItemImage returns an item's image data and MIME type. Data is nil when
// the item has no image.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func requireChanged(result sql.Result, notChanged error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return notChanged
	}
	return nil
}
