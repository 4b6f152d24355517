package order

import "github.com/shopspring/decimal"

// OrderItemInput payload for one line item.
// swagger:model OrderItemInput
type OrderItemInput struct {
	DishID   string          `json:"dish_id" binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	DishName string          `json:"dish_name" binding:"required" example:"Pho Bo"`
	Quantity int             `json:"quantity" binding:"required,min=1" example:"2"`
	Price    decimal.Decimal `json:"price" example:"8.50"`
	Notes    *string         `json:"notes,omitempty"`
}

// CreateOrderRequest payload for order creation.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	TableID   string           `json:"table_id" binding:"required" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items     []OrderItemInput `json:"items"`
	Notes     string           `json:"notes,omitempty"`
	CreatedBy string           `json:"created_by,omitempty"`
}

// UpdateOrderRequest payload for PUT /orders/:id. Items use merge
// semantics: existing items with a matching dish_id are amended in place,
// unmatched ones are appended, and items absent from the list are kept.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	Status *OrderStatus     `json:"status,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
	Items  []OrderItemInput `json:"items,omitempty"`
}

// UpdateItemRequest payload for PUT /orders/:id/items/:itemId. Only the
// provided fields are overwritten.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity *int             `json:"quantity,omitempty" binding:"omitempty,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// Query filters for listing orders.
type Query struct {
	Status    OrderStatus
	TableID   string
	CreatedBy string
	Page      int
	Limit     int
}

// Normalize clamps paging values to sane defaults.
func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

type PageInfo struct {
	PageIndex  int `json:"pageIndex"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// PaginatedOrders mirrors the gateway's standard paginated envelope.
// swagger:model PaginatedOrders
type PaginatedOrders struct {
	Data     []Order  `json:"data"`
	Total    int      `json:"total"`
	PageInfo PageInfo `json:"pageInfo"`
}

func NewPaginatedOrders(data []Order, total, pageIndex, pageSize int) *PaginatedOrders {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &PaginatedOrders{
		Data:  data,
		Total: total,
		PageInfo: PageInfo{
			PageIndex:  pageIndex,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}
