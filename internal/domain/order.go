package domain

import (
	"context"
	"time"
)

// Order is a caller-supplied document with server-managed review state.
type Order struct {
	ID         string
	Document   map[string]any
	IsReviewed bool
	CreatedAt  time.Time
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	// List returns all orders newest first.
	List(ctx context.Context) ([]Order, error)
	// Update sets the given top-level fields. Returns ErrNotFound if no order matched.
	Update(ctx context.Context, id string, fields map[string]any) error
}
