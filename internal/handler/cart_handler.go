package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	// GetCart は現在のカートを返す。
	GetCart(ctx context.Context) (*model.Cart, error)
	// AddItem は商品を指定数量でカートに追加する（既存明細には加算）。
	AddItem(ctx context.Context, productID string, quantity int) (*model.Cart, error)
	// AddOne は商品を数量1でカートに追加する（既存明細は数量1に置換）。
	AddOne(ctx context.Context, productID string) (*model.Cart, error)
	// RemoveItem は指定商品の明細を削除する。
	RemoveItem(ctx context.Context, productID string) (*model.Cart, error)
	// UpdateQuantity は指定商品の数量を変更する。
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error)
	// Clear はカートを空にする。
	Clear(ctx context.Context) error
}

// CartHandler はカートのHTTPハンドラー。
type CartHandler struct {
	service   CartServiceInterface
	collector metrics.MetricsCollector
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface, collector metrics.MetricsCollector) *CartHandler {
	return &CartHandler{
		service:   service,
		collector: collector,
	}
}

// addCartItemRequest はカート追加リクエストのボディ。
type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// updateQuantityRequest は数量変更リクエストのボディ。
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// cartResponse はカートのAPIレスポンス。明細に加えて集計値を返す。
type cartResponse struct {
	Items      []model.CartItem `json:"items"`
	TotalPrice float64          `json:"totalPrice"`
	TotalItems int              `json:"totalItems"`
}

func toCartResponse(c *model.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []model.CartItem{}
	}
	return cartResponse{
		Items:      items,
		TotalPrice: c.TotalPrice(),
		TotalItems: c.TotalItems(),
	}
}

// GetCart は現在のカートを返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCart(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// AddItem はカートへの商品追加を処理する。
// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	// 数量省略時は1個として扱う
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.service.AddItem(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartOperation("add")
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// AddOne は商品を数量1でカートに入れる操作を処理する。
// PUT /api/cart/items/:productId
func (h *CartHandler) AddOne(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	c, err := h.service.AddOne(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartOperation("add_one")
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// UpdateQuantity は明細の数量変更を処理する。0以下の数量は明細削除を意味する。
// PATCH /api/cart/items/:productId
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(), productID, req.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartOperation("update_quantity")
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// RemoveItem は明細削除を処理する。
// DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	c, err := h.service.RemoveItem(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartOperation("remove")
	writeJSON(w, http.StatusOK, toCartResponse(c))
}

// ClearCart はカート全削除を処理する。
// DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCartOperation("clear")
	w.WriteHeader(http.StatusNoContent)
}
