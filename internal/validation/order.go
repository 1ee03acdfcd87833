// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/filmshop-orders/internal/model"
)

// maxCents — наибольшая сумма в центах, которая помещается в BIGINT.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// ErrNoOrderItems возвращается, если передан пустой список позиций заказа.
var ErrNoOrderItems = errors.New("no order items")

// Error описывает ошибку валидации входных данных.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidationError сообщает, является ли err ошибкой валидации.
func IsValidationError(err error) bool {
	var vErr *Error
	return errors.As(err, &vErr) || errors.Is(err, ErrNoOrderItems)
}

// ValidateNewOrder проверяет данные нового заказа.
// Отсутствующий список позиций допустим, явно пустой — нет.
func ValidateNewOrder(in model.NewOrder) error {
	if in.Items != nil && len(in.Items) == 0 {
		return ErrNoOrderItems
	}

	for i, item := range in.Items {
		field := fmt.Sprintf("orderItems[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			return &Error{Field: field + ".name", Reason: "must not be empty"}
		}
		if strings.TrimSpace(item.Product) == "" {
			return &Error{Field: field + ".product", Reason: "must not be empty"}
		}
		if item.Qty < 1 {
			return &Error{Field: field + ".qty", Reason: "must be at least 1"}
		}
		if err := validateAmount(field+".price", item.Price); err != nil {
			return err
		}
	}

	prices := []struct {
		field  string
		amount decimal.Decimal
	}{
		{"itemsPrice", in.ItemsPrice},
		{"taxPrice", in.TaxPrice},
		{"shippingPrice", in.ShippingPrice},
		{"totalPrice", in.TotalPrice},
	}
	for _, p := range prices {
		if err := validateAmount(p.field, p.amount); err != nil {
			return err
		}
	}

	return nil
}

// validateAmount проверяет, что сумма неотрицательна и после округления
// до центов помещается в int64.
func validateAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return &Error{Field: field, Reason: "must not be negative"}
	}
	if d.Round(2).Shift(2).GreaterThan(maxCents) {
		return &Error{Field: field, Reason: "is too large"}
	}
	return nil
}

// ValidatePayPalOrderID проверяет идентификатор заказа PayPal.
func ValidatePayPalOrderID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &Error{Field: "paypalOrderId", Reason: "must not be empty"}
	}
	return nil
}
