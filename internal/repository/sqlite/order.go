package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// orderRepo implements domain.OrderRepository using SQLite.
// The caller's fields are kept as a JSON document; review state and
// creation time live in their own columns.
type orderRepo struct {
	db *sql.DB
}

// NewOrderRepository creates an order store backed by db.
func NewOrderRepository(db *DB) domain.OrderRepository {
	return &orderRepo{db: db.SqlDB}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	doc := order.Document
	if doc == nil {
		doc = map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode order: %v", domain.ErrInvalidInput, err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (id, document, is_reviewed, created_at) VALUES (?, ?, ?, ?)`,
		id, string(data), order.IsReviewed, toUnixNano(now),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	order.ID = id
	order.Document = doc
	order.CreatedAt = now
	return nil
}

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, document, is_reviewed, created_at FROM orders ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			o         domain.Order
			data      string
			createdAt int64
		)
		if err := rows.Scan(&o.ID, &data, &o.IsReviewed, &createdAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &o.Document); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", o.ID, err)
		}
		o.CreatedAt = fromUnixNano(createdAt)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		data       string
		isReviewed bool
	)
	err = tx.QueryRowContext(ctx, "SELECT document, is_reviewed FROM orders WHERE id = ?", id).
		Scan(&data, &isReviewed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return fmt.Errorf("decode order: %w", err)
	}
	for key, value := range fields {
		if key == "isReviewed" {
			if b, ok := value.(bool); ok {
				isReviewed = b
			}
			continue
		}
		doc[key] = value
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode order: %v", domain.ErrInvalidInput, err)
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE orders SET document = ?, is_reviewed = ? WHERE id = ?",
		string(updated), isReviewed, id,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}
