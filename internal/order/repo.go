// Package order implements the order lifecycle: entities, status machine,
// repository and the service orchestrating them.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store is the storage surface for orders and their items. All methods are
// single statements; multi-statement invariants are built by running a
// sequence of Store calls inside Repository.InTx.
type Store interface {
	InsertOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, q Query) ([]Order, int, error)
	ListByTable(ctx context.Context, tableID string) ([]Order, error)
	FindActiveByTable(ctx context.Context, tableID string) (*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	DeleteOrder(ctx context.Context, id string) error

	InsertItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, orderID, itemID string) (*Item, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id string) error
	CountItems(ctx context.Context, orderID string) (int, error)
}

// Repository adds the atomic unit-of-work primitive on top of Store. The fn
// argument receives a Store bound to one transaction; returning an error
// rolls everything back.
type Repository interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every Store
// method works the same inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGRepo struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{pool: pool, q: pool} }

func (r *PGRepo) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&PGRepo{pool: r.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderCols = `id, table_id, status, total_amount::text, notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.TableID, &o.Status, &total,
		&o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("bad total_amount %q: %w", total, err)
	}
	return &o, nil
}

func (r *PGRepo) InsertOrder(ctx context.Context, o *Order) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO orders (id, table_id, status, total_amount, notes, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.TableID, string(o.Status), o.TotalAmount.StringFixed(2), o.Notes, o.CreatedBy).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.q.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return o, err
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Concurrent writers on the same order serialize here.
func (r *PGRepo) GetOrderForUpdate(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return o, err
}

func (r *PGRepo) ListOrders(ctx context.Context, q Query) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q.Normalize()
	offset := (q.Page - 1) * q.Limit

	const where = `
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR table_id = $2)
		  AND ($3 = '' OR created_by = $3)`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where,
		string(q.Status), q.TableID, q.CreatedBy).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+orderCols+` FROM orders`+where+`
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, string(q.Status), q.TableID, q.CreatedBy, q.Limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectOrders(rows)
	return out, total, err
}

func (r *PGRepo) ListByTable(ctx context.Context, tableID string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE table_id = $1
		ORDER BY created_at DESC
	`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// FindActiveByTable returns the newest in-flight order for a table, or nil
// if the table has none.
func (r *PGRepo) FindActiveByTable(ctx context.Context, tableID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.q.QueryRow(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE table_id = $1 AND status IN ('pending','confirmed','preparing')
		ORDER BY created_at DESC
		LIMIT 1
	`, tableID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *PGRepo) UpdateOrder(ctx context.Context, o *Order) error {
	err := r.q.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, total_amount = $3, notes = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, o.ID, string(o.Status), o.TotalAmount.StringFixed(2), o.Notes).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: order %s", ErrNotFound, o.ID)
	}
	return err
}

// DeleteOrder removes the order row; order_items cascade via the FK.
func (r *PGRepo) DeleteOrder(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return nil
}

const itemCols = `id, order_id, dish_id, dish_name, quantity, price::text, notes, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	var price string
	if err := row.Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName,
		&it.Quantity, &price, &it.Notes, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if it.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("bad price %q: %w", price, err)
	}
	return &it, nil
}

func (r *PGRepo) InsertItem(ctx context.Context, it *Item) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO order_items (id, order_id, dish_id, dish_name, quantity, price, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, it.ID, it.OrderID, it.DishID, it.DishName, it.Quantity, it.Price.StringFixed(2), it.Notes).
		Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (r *PGRepo) GetItem(ctx context.Context, orderID, itemID string) (*Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `
		SELECT `+itemCols+` FROM order_items WHERE id=$1 AND order_id=$2
	`, itemID, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s in order %s", ErrNotFound, itemID, orderID)
	}
	return it, err
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+itemCols+` FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *PGRepo) UpdateItem(ctx context.Context, it *Item) error {
	err := r.q.QueryRow(ctx, `
		UPDATE order_items
		SET dish_name = $2, quantity = $3, price = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, it.ID, it.DishName, it.Quantity, it.Price.StringFixed(2), it.Notes).Scan(&it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: item %s", ErrNotFound, it.ID)
	}
	return err
}

func (r *PGRepo) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	return nil
}

func (r *PGRepo) CountItems(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM order_items WHERE order_id=$1`, orderID).Scan(&n)
	return n, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
