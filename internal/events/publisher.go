package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mmeshcher/filmshop-orders/internal/model"
)

const publishTimeout = 5 * time.Second

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher публикует события заказов в exchange RabbitMQ.
type RabbitPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// Dial подключается к RabbitMQ и объявляет exchange событий заказов.
func Dial(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeOrders, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: ExchangeOrders}, nil
}

// Close закрывает подключение к RabbitMQ.
func (p *RabbitPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// OrderCreated публикует событие orders.created.
func (p *RabbitPublisher) OrderCreated(ctx context.Context, o *model.Order) error {
	return p.publishJSON(ctx, TypeOrderCreated, NewOrderCreatedEvent(o))
}

// OrderPaid публикует событие orders.paid.
func (p *RabbitPublisher) OrderPaid(ctx context.Context, o *model.Order) error {
	return p.publishJSON(ctx, TypeOrderPaid, NewOrderPaidEvent(o))
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Nop — публикатор, который ничего не отправляет. Используется, когда RabbitMQ не настроен.
type Nop struct{}

// OrderCreated ничего не делает.
func (Nop) OrderCreated(context.Context, *model.Order) error { return nil }

// OrderPaid ничего не делает.
func (Nop) OrderPaid(context.Context, *model.Order) error { return nil }
