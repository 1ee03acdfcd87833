package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/filmshop-orders/internal/metrics"
	"github.com/mmeshcher/filmshop-orders/internal/model"
	"github.com/mmeshcher/filmshop-orders/internal/paypal"
	"github.com/mmeshcher/filmshop-orders/internal/repository"
	"github.com/mmeshcher/filmshop-orders/internal/validation"
)

var (
	// ErrVerificationFailed возвращается, если статус, сумма или валюта платежа не совпали с заказом.
	ErrVerificationFailed = errors.New("paypal payment verification failed: status/amount mismatch")
	// ErrMalformedProviderResponse возвращается, если в заказе PayPal нет списаний.
	ErrMalformedProviderResponse = errors.New("malformed paypal order: no captures")
)

// CreateOrder создаёт неоплаченный заказ пользователя.
func (s *Service) CreateOrder(ctx context.Context, userID int64, in model.NewOrder) (*model.Order, error) {
	if err := validation.ValidateNewOrder(in); err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()

	if err := s.publisher.OrderCreated(ctx, created); err != nil {
		s.logger.Warn("publish order created event", zap.Error(err), zap.String("orderId", created.ID))
	}

	return created, nil
}

// GetOrdersByUser возвращает заказы пользователя, начиная с самых новых.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// UpdateOrderToPaid сверяет заказ с платежом PayPal и при совпадении отмечает его оплаченным.
// При любом несовпадении заказ остаётся неоплаченным.
func (s *Service) UpdateOrderToPaid(ctx context.Context, orderID, paypalOrderID string) (*model.Order, error) {
	order, err := s.updateOrderToPaid(ctx, orderID, paypalOrderID)
	metrics.PaymentVerifications.WithLabelValues(verificationResult(err)).Inc()
	return order, err
}

func (s *Service) updateOrderToPaid(ctx context.Context, orderID, paypalOrderID string) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, repository.ErrOrderAlreadyPaid
	}

	if err := validation.ValidatePayPalOrderID(paypalOrderID); err != nil {
		return nil, err
	}

	token, err := s.provider.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ppOrder, err := s.provider.GetOrder(ctx, token, paypalOrderID)
	if err != nil {
		return nil, err
	}

	capture, ok := ppOrder.FirstCapture()
	if !ok {
		s.logger.Warn("paypal order has no captures",
			zap.String("orderId", orderID), zap.String("paypalOrderId", paypalOrderID))
		return nil, ErrMalformedProviderResponse
	}

	expectedAmount := order.TotalPrice.StringFixed(2)
	if ppOrder.Status != paypal.StatusCompleted ||
		capture.Amount.Value != expectedAmount ||
		capture.Amount.CurrencyCode != s.currency {
		s.logger.Warn("paypal payment verification failed",
			zap.String("orderId", orderID),
			zap.String("paypalOrderId", paypalOrderID),
			zap.String("status", ppOrder.Status),
			zap.String("amount", capture.Amount.Value),
			zap.String("expectedAmount", expectedAmount),
			zap.String("currency", capture.Amount.CurrencyCode),
		)
		return nil, ErrVerificationFailed
	}

	result := model.PaymentResult{
		ID:           ppOrder.ID,
		Status:       ppOrder.Status,
		UpdateTime:   ppOrder.UpdateTime,
		EmailAddress: ppOrder.PayerEmail(),
	}

	updated, err := s.repo.MarkOrderPaid(ctx, order.ID, s.now(), result)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order paid", zap.String("orderId", updated.ID), zap.String("paypalOrderId", ppOrder.ID))

	if err := s.publisher.OrderPaid(ctx, updated); err != nil {
		s.logger.Warn("publish order paid event", zap.Error(err), zap.String("orderId", updated.ID))
	}

	return updated, nil
}

func verificationResult(err error) string {
	switch {
	case err == nil:
		return metrics.VerificationPaid
	case errors.Is(err, ErrVerificationFailed):
		return metrics.VerificationMismatch
	case errors.Is(err, ErrMalformedProviderResponse):
		return metrics.VerificationMalformed
	case errors.Is(err, repository.ErrOrderNotFound):
		return metrics.VerificationNotFound
	case errors.Is(err, repository.ErrOrderAlreadyPaid):
		return metrics.VerificationAlreadyPaid
	case errors.Is(err, paypal.ErrNotConfigured):
		return metrics.VerificationConfigError
	case errors.Is(err, paypal.ErrAccessToken), errors.Is(err, paypal.ErrOrderFetch):
		return metrics.VerificationProviderError
	case validation.IsValidationError(err):
		return metrics.VerificationInvalid
	default:
		return metrics.VerificationError
	}
}
