package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service is the order lifecycle manager. Every mutation runs inside one
// repository unit of work so that a committed order's total always matches
// its items; events go out only after the commit.
type Service struct {
	repo Repository
	pub  Publisher
}

// NewService builds a Service. pub may be nil, in which case no events are
// published.
func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func validateItemInput(in OrderItemInput) error {
	if in.DishID == "" || in.DishName == "" {
		return fmt.Errorf("%w: dish_id and dish_name are required", ErrValidation)
	}
	if in.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

// Create opens an order for a table with its initial items. The order row,
// every item row and the recomputed total are committed atomically.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if req.TableID == "" {
		return nil, fmt.Errorf("%w: table_id is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must have at least one item", ErrValidation)
	}
	for _, in := range req.Items {
		if err := validateItemInput(in); err != nil {
			return nil, err
		}
	}

	o := &Order{
		ID:        uuid.NewString(),
		TableID:   req.TableID,
		Status:    StatusPending,
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
	}

	err := s.repo.InTx(ctx, func(tx Store) error {
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		for _, in := range req.Items {
			it := newItem(o.ID, in)
			if err := tx.InsertItem(ctx, &it); err != nil {
				return err
			}
			o.Items = append(o.Items, it)
		}
		o.TotalAmount = TotalAmount(o.Items)
		return tx.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderCreated, OrderCreatedEvent{
		OrderID:     o.ID,
		TableID:     o.TableID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		ItemCount:   len(o.Items),
	})
	return o, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.repo.GetItems(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns order headers (no items) matching q, newest first.
func (s *Service) List(ctx context.Context, q Query) (*PaginatedOrders, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of the following values: %s",
			ErrValidation, statusValues())
	}
	q.Normalize()
	data, total, err := s.repo.ListOrders(ctx, q)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []Order{}
	}
	return NewPaginatedOrders(data, total, q.Page, q.Limit), nil
}

// ListByTable returns all of a table's orders with items, newest first.
func (s *Service) ListByTable(ctx context.Context, tableID string) ([]Order, error) {
	orders, err := s.repo.ListByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Items, err = s.repo.GetItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ActiveByTable returns the most recent in-flight order (pending, confirmed
// or preparing) for a table, or nil if there is none.
func (s *Service) ActiveByTable(ctx context.Context, tableID string) (*Order, error) {
	o, err := s.repo.FindActiveByTable(ctx, tableID)
	if err != nil || o == nil {
		return nil, err
	}
	if o.Items, err = s.repo.GetItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// Update amends an order. Submitted items merge with the existing ones:
// a matching dish_id amends that item in place, an unknown dish_id appends
// a new item, and items left out of the request are untouched. Status
// changes are validated against the transition table.
func (s *Service) Update(ctx context.Context, id string, req UpdateOrderRequest) (*Order, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of the following values: %s",
			ErrValidation, statusValues())
	}
	for _, in := range req.Items {
		if err := validateItemInput(in); err != nil {
			return nil, err
		}
	}

	var o *Order
	err := s.repo.InTx(ctx, func(tx Store) error {
		var err error
		if o, err = tx.GetOrderForUpdate(ctx, id); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: cannot update order with status %s", ErrIllegalState, o.Status)
		}
		if req.Status != nil && *req.Status != o.Status {
			if !CanTransition(o.Status, *req.Status) {
				return fmt.Errorf("%w: cannot transition from %s to %s",
					ErrIllegalState, o.Status, *req.Status)
			}
			o.Status = *req.Status
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}

		if len(req.Items) > 0 {
			existing, err := tx.GetItems(ctx, id)
			if err != nil {
				return err
			}
			if err := mergeItems(ctx, tx, id, existing, req.Items); err != nil {
				return err
			}
		}

		if o.Items, err = tx.GetItems(ctx, id); err != nil {
			return err
		}
		o.TotalAmount = TotalAmount(o.Items)
		return tx.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderUpdated, OrderUpdatedEvent{
		OrderID:     o.ID,
		TableID:     o.TableID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
	})
	return o, nil
}

// mergeItems applies the add-or-amend strategy: update the matching dish
// row if one exists, insert otherwise. Existing rows not mentioned in
// inputs stay as they are.
func mergeItems(ctx context.Context, tx Store, orderID string, existing []Item, inputs []OrderItemInput) error {
	byDish := make(map[string]*Item, len(existing))
	for i := range existing {
		byDish[existing[i].DishID] = &existing[i]
	}
	for _, in := range inputs {
		if cur, ok := byDish[in.DishID]; ok {
			cur.DishName = in.DishName
			cur.Quantity = in.Quantity
			cur.Price = in.Price
			if in.Notes != nil {
				cur.Notes = *in.Notes
			}
			if err := tx.UpdateItem(ctx, cur); err != nil {
				return err
			}
			continue
		}
		it := newItem(orderID, in)
		if err := tx.InsertItem(ctx, &it); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves an order along the transition table.
func (s *Service) UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of the following values: %s",
			ErrValidation, statusValues())
	}

	var o *Order
	var prev OrderStatus
	err := s.repo.InTx(ctx, func(tx Store) error {
		var err error
		if o, err = tx.GetOrderForUpdate(ctx, id); err != nil {
			return err
		}
		prev = o.Status
		if !CanTransition(prev, status) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrIllegalState, prev, status)
		}
		o.Status = status
		return tx.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:        o.ID,
		TableID:        o.TableID,
		Status:         o.Status,
		PreviousStatus: prev,
	})
	return o, nil
}

// Delete removes an order and all its items. Only pending or cancelled
// orders are deletable; anything in flight has to be cancelled first.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != StatusPending && o.Status != StatusCancelled {
			return fmt.Errorf("%w: cannot delete order with status %s, only pending or cancelled orders can be deleted",
				ErrIllegalState, o.Status)
		}
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventOrderDeleted, OrderDeletedEvent{OrderID: id})
	return nil
}

// AddItem appends a line item unconditionally; unlike Update it never
// merges by dish.
func (s *Service) AddItem(ctx context.Context, orderID string, in OrderItemInput) (*Item, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	it := newItem(orderID, in)
	err := s.repo.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: cannot add items to order with status %s", ErrIllegalState, o.Status)
		}
		if err := tx.InsertItem(ctx, &it); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventItemAdded, ItemAddedEvent{
		OrderID:  orderID,
		ItemID:   it.ID,
		DishID:   it.DishID,
		Quantity: it.Quantity,
	})
	return &it, nil
}

// UpdateItem overwrites only the provided fields of one item.
func (s *Service) UpdateItem(ctx context.Context, orderID, itemID string, req UpdateItemRequest) (*Item, error) {
	if req.Quantity != nil && *req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	var it *Item
	err := s.repo.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: cannot update items in order with status %s", ErrIllegalState, o.Status)
		}
		if it, err = tx.GetItem(ctx, orderID, itemID); err != nil {
			return err
		}
		if req.Quantity != nil {
			it.Quantity = *req.Quantity
		}
		if req.Price != nil {
			it.Price = *req.Price
		}
		if req.Notes != nil {
			it.Notes = *req.Notes
		}
		if err := tx.UpdateItem(ctx, it); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventItemUpdated, ItemUpdatedEvent{OrderID: orderID, ItemID: itemID})
	return it, nil
}

// RemoveItem deletes one item. An order always keeps at least one item;
// emptying it entirely means deleting the order.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) error {
	err := s.repo.InTx(ctx, func(tx Store) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: cannot remove items from order with status %s", ErrIllegalState, o.Status)
		}
		if _, err := tx.GetItem(ctx, orderID, itemID); err != nil {
			return err
		}
		n, err := tx.CountItems(ctx, orderID)
		if err != nil {
			return err
		}
		if n == 1 {
			return fmt.Errorf("%w: cannot remove the last item from an order, delete the order instead", ErrValidation)
		}
		if err := tx.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, o)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventItemRemoved, ItemRemovedEvent{OrderID: orderID, ItemID: itemID})
	return nil
}

func newItem(orderID string, in OrderItemInput) Item {
	it := Item{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		DishID:   in.DishID,
		DishName: in.DishName,
		Quantity: in.Quantity,
		Price:    in.Price,
	}
	if in.Notes != nil {
		it.Notes = *in.Notes
	}
	return it
}

// recomputeTotal rewrites the order's total from its full current item set,
// inside the same transaction as the item mutation that made it stale.
func recomputeTotal(ctx context.Context, tx Store, o *Order) error {
	items, err := tx.GetItems(ctx, o.ID)
	if err != nil {
		return err
	}
	o.TotalAmount = TotalAmount(items)
	return tx.UpdateOrder(ctx, o)
}

func statusValues() string {
	ss := Statuses()
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
