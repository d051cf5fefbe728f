package handler

import (
	"net/http"

	"github.com/msomdec/portfolio-api/internal/service"
)

// OrderHandler handles order submission, listing, and review updates.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// HandleCreate stores an arbitrary JSON order.
// POST /orders
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := readJSON(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	order, err := h.orders.Create(r.Context(), doc)
	if err != nil {
		writeServiceError(w, err, "Failed to create order", "Order not found")
		return
	}
	writeJSON(w, http.StatusCreated, InsertedDTO{Acknowledged: true, InsertedID: order.ID})
}

// HandleList returns all orders newest first.
// GET /orders
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch orders", "Order not found")
		return
	}

	docs := make([]map[string]any, len(orders))
	for i, o := range orders {
		docs[i] = toOrderDocument(o)
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleUpdate sets the given fields on an order.
// PATCH /orders/{id}
func (h *OrderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := readJSON(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	if err := h.orders.Update(r.Context(), r.PathValue("id"), fields); err != nil {
		writeServiceError(w, err, "Internal server error", "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessDTO{Success: true, Message: "Order updated successfully"})
}
