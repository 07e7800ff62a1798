package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"orderhub/internal/domain"
)

// OrderStore persists orders in Postgres. Status transitions are checked
// inside the update transaction, so an illegal change never commits and the
// hub never broadcasts it.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "create order", Err: err}
	}
	defer tx.Rollback()

	order := domain.Order{
		ID:                  uuid.NewString(),
		RestaurantID:        draft.RestaurantID,
		TableID:             draft.TableID,
		CustomerName:        draft.CustomerName,
		CustomerPhone:       draft.CustomerPhone,
		OrderType:           draft.OrderType,
		PaymentMethod:       draft.PaymentMethod,
		Status:              domain.StatusPending,
		PaymentStatus:       domain.PaymentPending,
		SpecialInstructions: draft.SpecialInstructions,
		DeliveryAddress:     draft.DeliveryAddress,
		Subtotal:            draft.Subtotal(),
		DeliveryFee:         draft.DeliveryFee,
	}
	order.Total = order.Subtotal + order.DeliveryFee

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, restaurant_id, table_id, customer_name, customer_phone,
			order_type, payment_method, status, payment_status,
			special_instructions, delivery_address, subtotal, delivery_fee, total
		)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14)
		RETURNING created_at, updated_at
	`,
		order.ID, order.RestaurantID, order.TableID, order.CustomerName, order.CustomerPhone,
		order.OrderType, order.PaymentMethod, order.Status, order.PaymentStatus,
		order.SpecialInstructions, order.DeliveryAddress, order.Subtotal, order.DeliveryFee, order.Total,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "insert order", Err: err}
	}

	for _, item := range draft.Items {
		item.ID = uuid.NewString()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, price, special_instructions)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		`, item.ID, order.ID, item.MenuItemID, item.Name, item.Quantity, item.Price, item.SpecialInstructions)
		if err != nil {
			return domain.Order{}, &domain.PersistenceError{Op: "insert order item", Err: err}
		}

		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "commit order", Err: err}
	}

	return order, nil
}

func (s *OrderStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "update order status", Err: err}
	}
	defer tx.Rollback()

	var current domain.OrderStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, &domain.PersistenceError{Op: "update order status", Err: domain.ErrOrderNotFound}
	}
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "select order status", Err: err}
	}

	if !current.CanTransitionTo(status) {
		return domain.Order{}, &domain.PersistenceError{
			Op:  "update order status",
			Err: fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, status),
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, orderID)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "update order status", Err: err}
	}

	order, err := s.fetchOrder(ctx, tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "commit status update", Err: err}
	}

	return order, nil
}

func (s *OrderStore) UpdateOrderPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) (domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "update payment status", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE orders SET payment_status = $1, updated_at = now() WHERE id = $2`, status, orderID)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "update payment status", Err: err}
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Order{}, &domain.PersistenceError{Op: "update payment status", Err: domain.ErrOrderNotFound}
	}

	order, err := s.fetchOrder(ctx, tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "commit payment update", Err: err}
	}

	return order, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orders, err := s.queryOrders(ctx, `WHERE o.id = $1`, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if len(orders) == 0 {
		return domain.Order{}, &domain.PersistenceError{Op: "get order", Err: domain.ErrOrderNotFound}
	}

	return orders[0], nil
}

// GetOpenOrders lists every order of the restaurant that is not yet delivered
// or cancelled, oldest first, for backfill snapshots.
func (s *OrderStore) GetOpenOrders(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	return s.queryOrders(ctx, `
		WHERE o.restaurant_id = $1 AND o.status NOT IN ('DELIVERED', 'CANCELLED')
		ORDER BY o.created_at ASC`, restaurantID)
}

const orderColumns = `
	o.id, o.restaurant_id, COALESCE(o.table_id, ''), o.customer_name, o.customer_phone,
	o.order_type, o.payment_method, o.status, o.payment_status,
	COALESCE(o.special_instructions, ''), COALESCE(o.delivery_address, ''),
	o.subtotal, o.delivery_fee, o.total, o.created_at, o.updated_at`

func (s *OrderStore) queryOrders(ctx context.Context, clause string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders o `+clause, args...)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query orders", Err: err}
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	index := make(map[string]int)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.TableID, &o.CustomerName, &o.CustomerPhone,
			&o.OrderType, &o.PaymentMethod, &o.Status, &o.PaymentStatus,
			&o.SpecialInstructions, &o.DeliveryAddress,
			&o.Subtotal, &o.DeliveryFee, &o.Total, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, &domain.PersistenceError{Op: "scan order", Err: err}
		}

		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "query orders", Err: err}
	}

	if len(orders) == 0 {
		return orders, nil
	}

	if err := s.attachItems(ctx, ids, index, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *OrderStore) attachItems(ctx context.Context, ids []string, index map[string]int, orders []domain.Order) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, COALESCE(name, ''), quantity, price, COALESCE(special_instructions, '')
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return &domain.PersistenceError{Op: "query order items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var orderID string
		if err := rows.Scan(&item.ID, &orderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price, &item.SpecialInstructions); err != nil {
			return &domain.PersistenceError{Op: "scan order item", Err: err}
		}

		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return &domain.PersistenceError{Op: "query order items", Err: err}
	}

	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *OrderStore) fetchOrder(ctx context.Context, q queryer, orderID string) (domain.Order, error) {
	var o domain.Order
	err := q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, orderID).Scan(
		&o.ID, &o.RestaurantID, &o.TableID, &o.CustomerName, &o.CustomerPhone,
		&o.OrderType, &o.PaymentMethod, &o.Status, &o.PaymentStatus,
		&o.SpecialInstructions, &o.DeliveryAddress,
		&o.Subtotal, &o.DeliveryFee, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, &domain.PersistenceError{Op: "fetch order", Err: domain.ErrOrderNotFound}
	}
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "fetch order", Err: err}
	}

	itemRows, err := q.QueryContext(ctx, `
		SELECT id, menu_item_id, COALESCE(name, ''), quantity, price, COALESCE(special_instructions, '')
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "fetch order items", Err: err}
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price, &item.SpecialInstructions); err != nil {
			return domain.Order{}, &domain.PersistenceError{Op: "scan order item", Err: err}
		}

		o.Items = append(o.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return domain.Order{}, &domain.PersistenceError{Op: "fetch order items", Err: err}
	}

	return o, nil
}
