// Package handler содержит HTTP-обработчики API сервиса заказов.
package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/filmshop-orders/internal/middleware"
	"github.com/mmeshcher/filmshop-orders/internal/model"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)
	CreateOrder(ctx context.Context, userID int64, in model.NewOrder) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	PayPalClientID() (string, error)
	UpdateOrderToPaid(ctx context.Context, orderID, paypalOrderID string) (*model.Order, error)
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler реализует HTTP-обработчики API сервиса заказов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	pinger         Pinger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, pinger Pinger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		pinger:         pinger,
	}
}

// Health сообщает о доступности сервиса и базы данных.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
