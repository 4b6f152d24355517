package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"   // created, not yet confirmed
	StatusConfirmed OrderStatus = "confirmed" // confirmed, sent to kitchen
	StatusPreparing OrderStatus = "preparing" // kitchen is preparing
	StatusReady     OrderStatus = "ready"     // ready for serving
	StatusCompleted OrderStatus = "completed" // served, terminal
	StatusCancelled OrderStatus = "cancelled" // terminal
)

type Order struct {
	ID          string          `json:"id"`
	TableID     string          `json:"table_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"` // NUMERIC(10,2), derived from items
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	Items       []Item          `json:"items,omitempty"` // loaded only when needed
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Item struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	DishID   string `json:"dish_id"`
	DishName string `json:"dish_name"` // captured at order time for historical records
	Quantity int    `json:"quantity"`
	// Price at time of order; never re-fetched from the menu.
	Price     decimal.Decimal `json:"price"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
