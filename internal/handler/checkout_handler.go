package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/salvore/internal/checkout"
)

// CheckoutServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type CheckoutServiceInterface interface {
	// QuoteOrder は現在のカートに対する注文金額の見積もりを返す。
	QuoteOrder(ctx context.Context, deliveryOption, promoCode string) (*checkout.Quote, error)
	// PlaceOrder は現在のカートの内容で注文を確定する。
	PlaceOrder(ctx context.Context, deliveryOption, promoCode string) (*checkout.Order, error)
}

// CheckoutHandler は注文のHTTPハンドラー。
type CheckoutHandler struct {
	service CheckoutServiceInterface
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(service CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// checkoutRequest は見積もり・注文確定リクエストのボディ。
type checkoutRequest struct {
	DeliveryOption string `json:"deliveryOption"`
	PromoCode      string `json:"promoCode"`
}

// Quote は注文金額の見積もりを返す。カートは変更しない。
// POST /api/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	quote, err := h.service.QuoteOrder(r.Context(), req.DeliveryOption, req.PromoCode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// PlaceOrder は注文確定を処理する。
// POST /api/checkout/order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), req.DeliveryOption, req.PromoCode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
