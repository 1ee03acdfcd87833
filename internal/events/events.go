// Package events публикует события жизненного цикла заказов в RabbitMQ.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/filmshop-orders/internal/model"
)

const (
	// ExchangeOrders — topic-exchange событий заказов.
	ExchangeOrders = "orders.events"

	TypeOrderCreated = "orders.created"
	TypeOrderPaid    = "orders.paid"

	eventVersion = 1
)

// Event — конверт события с полезной нагрузкой произвольного типа.
type Event[T any] struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Time    time.Time `json:"time"`
	OrderID string    `json:"order_id"`
	Payload T         `json:"payload"`
}

// OrderCreatedPayload — данные события создания заказа.
type OrderCreatedPayload struct {
	UserID     int64  `json:"user_id"`
	TotalPrice string `json:"total_price"`
	Items      int    `json:"items"`
}

// OrderPaidPayload — данные события оплаты заказа.
type OrderPaidPayload struct {
	UserID        int64     `json:"user_id"`
	TotalPrice    string    `json:"total_price"`
	PayPalOrderID string    `json:"paypal_order_id"`
	PayerEmail    string    `json:"payer_email,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
}

// NewOrderCreatedEvent формирует событие создания заказа.
func NewOrderCreatedEvent(o *model.Order) Event[OrderCreatedPayload] {
	return Event[OrderCreatedPayload]{
		ID:      uuid.NewString(),
		Type:    TypeOrderCreated,
		Version: eventVersion,
		Time:    time.Now().UTC(),
		OrderID: o.ID,
		Payload: OrderCreatedPayload{
			UserID:     o.UserID,
			TotalPrice: o.TotalPrice.StringFixed(2),
			Items:      len(o.Items),
		},
	}
}

// NewOrderPaidEvent формирует событие оплаты заказа.
func NewOrderPaidEvent(o *model.Order) Event[OrderPaidPayload] {
	p := OrderPaidPayload{
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice.StringFixed(2),
	}
	if o.PaidAt != nil {
		p.PaidAt = o.PaidAt.UTC()
	}
	if o.PaymentResult != nil {
		p.PayPalOrderID = o.PaymentResult.ID
		p.PayerEmail = o.PaymentResult.EmailAddress
	}

	return Event[OrderPaidPayload]{
		ID:      uuid.NewString(),
		Type:    TypeOrderPaid,
		Version: eventVersion,
		Time:    time.Now().UTC(),
		OrderID: o.ID,
		Payload: p,
	}
}
