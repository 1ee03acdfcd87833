package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/filmshop-orders/internal/middleware"
	"github.com/mmeshcher/filmshop-orders/internal/model"
)

type createOrderRequest struct {
	OrderItems      []model.OrderItem     `json:"orderItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	ItemsPrice      decimal.Decimal       `json:"itemsPrice"`
	TaxPrice        decimal.Decimal       `json:"taxPrice"`
	ShippingPrice   decimal.Decimal       `json:"shippingPrice"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
}

type payOrderRequest struct {
	PayPalOrderID string `json:"paypalOrderId"`
}

type orderItemResponse struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price"`
	Product string  `json:"product"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	User            int64                 `json:"user"`
	OrderItems      []orderItemResponse   `json:"orderItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	ItemsPrice      float64               `json:"itemsPrice"`
	TaxPrice        float64               `json:"taxPrice"`
	ShippingPrice   float64               `json:"shippingPrice"`
	TotalPrice      float64               `json:"totalPrice"`
	Status          string                `json:"status"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *string               `json:"paidAt,omitempty"`
	PaymentResult   *model.PaymentResult  `json:"paymentResult,omitempty"`
	CreatedAt       string                `json:"createdAt"`
	UpdatedAt       string                `json:"updatedAt"`
}

func newOrderResponse(o *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			Name:    it.Name,
			Qty:     it.Qty,
			Image:   it.Image,
			Price:   it.Price.InexactFloat64(),
			Product: it.Product,
		})
	}

	resp := orderResponse{
		ID:              o.ID,
		User:            o.UserID,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		ItemsPrice:      o.ItemsPrice.InexactFloat64(),
		TaxPrice:        o.TaxPrice.InexactFloat64(),
		ShippingPrice:   o.ShippingPrice.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		Status:          string(o.Status()),
		IsPaid:          o.IsPaid,
		PaymentResult:   o.PaymentResult,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
	if o.PaidAt != nil {
		paidAt := o.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

// CreateOrder создаёт неоплаченный заказ текущего пользователя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, model.NewOrder{
		Items:           req.OrderItems,
		ShippingAddress: req.ShippingAddress,
		ItemsPrice:      req.ItemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		h.writeServiceError(w, "create order error", err, zap.Int64("userID", userID))
		return
	}

	writeSuccess(w, http.StatusCreated, newOrderResponse(order), "Order created successfully")
}

// GetMyOrders возвращает заказы текущего пользователя, начиная с новых.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "get orders error", err, zap.Int64("userID", userID))
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}

	writeSuccess(w, http.StatusOK, resp, "User orders fetched successfully")
}

// GetPayPalClientID отдаёт публичный идентификатор клиента PayPal.
func (h *Handler) GetPayPalClientID(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.service.PayPalClientID()
	if err != nil {
		h.writeServiceError(w, "get paypal client id error", err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"clientId": clientID}, "PayPal client ID fetched successfully")
}

// PayOrder сверяет платёж PayPal и отмечает заказ оплаченным.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req payOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.UpdateOrderToPaid(r.Context(), orderID, req.PayPalOrderID)
	if err != nil {
		h.writeServiceError(w, "update order to paid error", err,
			zap.String("orderId", orderID), zap.String("paypalOrderId", req.PayPalOrderID))
		return
	}

	writeSuccess(w, http.StatusOK, newOrderResponse(order), "Order payment successful and recorded")
}
