package order

import (
	"context"
	"encoding/json"
	"log"

	"github.com/shopspring/decimal"
)

// Event channels consumed by the sibling services (kitchen displays,
// notifications). Delivery is best-effort: a lost event never fails the
// business operation that produced it.
const (
	EventOrderCreated       = "order.created"
	EventOrderUpdated       = "order.updated"
	EventOrderStatusChanged = "order.status.changed"
	EventOrderDeleted       = "order.deleted"
	EventItemAdded          = "order.item.added"
	EventItemUpdated        = "order.item.updated"
	EventItemRemoved        = "order.item.removed"
)

// Publisher is the event channel collaborator.
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	TableID     string          `json:"tableId"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

type OrderUpdatedEvent struct {
	OrderID     string          `json:"orderId"`
	TableID     string          `json:"tableId"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type OrderStatusChangedEvent struct {
	OrderID        string      `json:"orderId"`
	TableID        string      `json:"tableId"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previousStatus"`
}

type OrderDeletedEvent struct {
	OrderID string `json:"orderId"`
}

type ItemAddedEvent struct {
	OrderID  string `json:"orderId"`
	ItemID   string `json:"itemId"`
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
}

type ItemUpdatedEvent struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
}

type ItemRemovedEvent struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
}

// publish serializes and publishes an event, swallowing any failure. The
// surrounding transaction has already committed; downstream delivery is not
// part of business correctness.
func (s *Service) publish(ctx context.Context, channel string, event any) {
	if s.pub == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[events] marshal %s failed: %v", channel, err)
		return
	}
	if err := s.pub.Publish(ctx, channel, string(body)); err != nil {
		log.Printf("[events] publish %s failed: %v", channel, err)
	}
}
