package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/filmshop-orders/internal/paypal"
	"github.com/mmeshcher/filmshop-orders/internal/repository"
	"github.com/mmeshcher/filmshop-orders/internal/service"
	"github.com/mmeshcher/filmshop-orders/internal/validation"
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		StatusCode: status,
		Message:    message,
	})
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
// Подробности внутренних ошибок остаются только в логе.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error, fields ...zap.Field) {
	var vErr *validation.Error

	switch {
	case errors.Is(err, validation.ErrNoOrderItems):
		writeError(w, http.StatusBadRequest, "No order items")
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrVerificationFailed):
		writeError(w, http.StatusBadRequest, "PayPal payment verification failed. Status/Amount mismatch.")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid login or password")
	case errors.Is(err, repository.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, repository.ErrOrderAlreadyPaid):
		writeError(w, http.StatusConflict, "Order is already paid")
	case errors.Is(err, repository.ErrUserExists):
		writeError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, paypal.ErrAccessToken):
		h.logger.Error(op, append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, "Could not generate PayPal access token")
	case errors.Is(err, paypal.ErrOrderFetch), errors.Is(err, service.ErrMalformedProviderResponse):
		h.logger.Error(op, append(fields, zap.Error(err))...)
		writeError(w, http.StatusBadGateway, "Could not verify PayPal payment")
	default:
		// paypal.ErrNotConfigured и service.ErrNoPayPalClientID тоже попадают сюда.
		h.logger.Error(op, append(fields, zap.Error(err))...)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
