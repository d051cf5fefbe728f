package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// Fields owned by the server; callers cannot set them.
var reservedOrderFields = []string{"_id", "id", "createdAt"}

// OrderService handles order submissions and review updates.
type OrderService struct {
	orders domain.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders domain.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// Create stores a new, unreviewed order.
func (s *OrderService) Create(ctx context.Context, doc map[string]any) (*domain.Order, error) {
	clean := make(map[string]any, len(doc))
	for k, v := range doc {
		clean[k] = v
	}
	for _, k := range reservedOrderFields {
		delete(clean, k)
	}
	// Review state is tracked separately and always starts false.
	delete(clean, "isReviewed")

	order := &domain.Order{Document: clean}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// List returns all orders, newest first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// Update sets the given top-level fields on an order.
func (s *OrderService) Update(ctx context.Context, id string, fields map[string]any) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid order id", domain.ErrInvalidInput)
	}
	if v, ok := fields["isReviewed"]; ok {
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("%w: isReviewed must be a boolean", domain.ErrInvalidInput)
		}
	}

	set := make(map[string]any, len(fields))
	for k, v := range fields {
		set[k] = v
	}
	for _, k := range reservedOrderFields {
		delete(set, k)
	}

	if err := s.orders.Update(ctx, parsed.String(), set); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}
