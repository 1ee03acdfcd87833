package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/filmshop-orders/internal/model"
)

const orderColumns = `id::text, user_id, order_items, shipping_address,
	items_price, tax_price, shipping_price, total_price,
	is_paid, paid_at, payment_result, created_at, updated_at`

// toCents переводит денежную сумму в целые центы с округлением до двух знаков.
func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                           model.Order
		items, shipping, tax, total int64
		orderItems                  []model.OrderItem
		paymentResult               *model.PaymentResult
	)

	err := row.Scan(
		&o.ID, &o.UserID, &orderItems, &o.ShippingAddress,
		&items, &tax, &shipping, &total,
		&o.IsPaid, &o.PaidAt, &paymentResult, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Items = orderItems
	o.PaymentResult = paymentResult
	o.ItemsPrice = fromCents(items)
	o.TaxPrice = fromCents(tax)
	o.ShippingPrice = fromCents(shipping)
	o.TotalPrice = fromCents(total)

	return &o, nil
}

// isInvalidID сообщает, что идентификатор не является корректным UUID.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation
}

// CreateOrder сохраняет новый заказ и возвращает его с заполненными отметками времени.
func (r *PostgresRepository) CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	items := o.Items
	if items == nil {
		items = []model.OrderItem{}
	}

	var created *model.Order
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO orders (id, user_id, order_items, shipping_address,
				items_price, tax_price, shipping_price, total_price, is_paid)
			 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, FALSE)
			 RETURNING `+orderColumns,
			o.ID, o.UserID, items, o.ShippingAddress,
			toCents(o.ItemsPrice), toCents(o.TaxPrice), toCents(o.ShippingPrice), toCents(o.TotalPrice),
		)

		var err error
		created, err = scanOrder(row)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return created, nil
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1::uuid`,
		id,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return o, nil
}

// GetOrdersByUser возвращает заказы пользователя, начиная с самых новых.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// MarkOrderPaid атомарно переводит неоплаченный заказ в оплаченный.
// Если заказ уже оплачен, возвращает ErrOrderAlreadyPaid и ничего не меняет.
func (r *PostgresRepository) MarkOrderPaid(ctx context.Context, id string, paidAt time.Time, result model.PaymentResult) (*model.Order, error) {
	var updated *model.Order
	err := r.withRetry(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`UPDATE orders
			 SET is_paid = TRUE, paid_at = $2, payment_result = $3, updated_at = now()
			 WHERE id = $1::uuid AND is_paid = FALSE
			 RETURNING `+orderColumns,
			id, paidAt, result,
		)

		var err error
		updated, err = scanOrder(row)
		return err
	})
	if err == nil {
		return updated, nil
	}
	if isInvalidID(err) {
		return nil, ErrOrderNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	var isPaid bool
	err = r.pool.QueryRow(ctx, `SELECT is_paid FROM orders WHERE id = $1::uuid`, id).Scan(&isPaid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("check order: %w", err)
	}

	return nil, ErrOrderAlreadyPaid
}
