// Package model содержит доменные сущности сервиса заказов магазина фильмов.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User представляет зарегистрированного покупателя.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// OrderItem описывает позицию заказа: фильм, его цену и количество.
type OrderItem struct {
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Image   string          `json:"image,omitempty"`
	Price   decimal.Decimal `json:"price"`
	Product string          `json:"product"`
}

// ShippingAddress содержит адрес доставки заказа.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult хранит данные подтверждённого платежа PayPal.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// Order описывает заказ пользователя.
type Order struct {
	ID              string
	UserID          int64
	Items           []OrderItem
	ShippingAddress ShippingAddress
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Status возвращает состояние оплаты заказа.
func (o *Order) Status() PaymentStatus {
	if o.IsPaid {
		return PaymentStatusPaid
	}
	return PaymentStatusUnpaid
}

// NewOrder содержит данные для создания заказа.
// Items == nil означает, что список позиций не передан.
type NewOrder struct {
	Items           []OrderItem
	ShippingAddress ShippingAddress
	ItemsPrice      decimal.Decimal
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
	TotalPrice      decimal.Decimal
}
