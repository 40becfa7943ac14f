package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/model"
)

// CatalogServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	// AddProduct は商品を登録する。
	AddProduct(ctx context.Context, product model.Product) (*model.Product, error)
	// DeleteProduct は商品を削除する。
	DeleteProduct(ctx context.Context, productID string) error
	// GetProduct は指定IDの商品を取得する。
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	// ListProducts は全商品を返す。
	ListProducts(ctx context.Context) ([]model.Product, error)
	// UpdateProduct は指定IDの商品にスパースパッチを適用する。
	UpdateProduct(ctx context.Context, productID string, patch model.ProductPatch) (*model.Product, error)
	// ClearProducts は全商品を削除する。
	ClearProducts(ctx context.Context) error
}

// ProductHandler は商品カタログのHTTPハンドラー。
type ProductHandler struct {
	service   CatalogServiceInterface
	collector metrics.MetricsCollector
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service CatalogServiceInterface, collector metrics.MetricsCollector) *ProductHandler {
	return &ProductHandler{
		service:   service,
		collector: collector,
	}
}

// addProductRequest は商品登録リクエストのボディ。
// 価格はJSON数値と文字列の両方を受け付ける。
type addProductRequest struct {
	Name        string          `json:"productName"`
	Price       model.FlexPrice `json:"productPrice"`
	Description string          `json:"productDesc"`
	Image       string          `json:"image"`
}

// ListProducts は商品一覧を返す。
// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct は商品詳細を返す。
// GET /api/products/:id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// AddProduct は商品登録を処理する。
// POST /api/products
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.AddProduct(r.Context(), model.Product{
		Name:        req.Name,
		Price:       float64(req.Price),
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCatalogMutation("add")
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct は商品のスパース更新を処理する。
// PATCH /api/products/:id
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var patch model.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), productID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCatalogMutation("update")
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct は商品削除を処理する。
// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), productID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCatalogMutation("delete")
	w.WriteHeader(http.StatusNoContent)
}

// ClearProducts はカタログ全削除を処理する。
// DELETE /api/products
func (h *ProductHandler) ClearProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearProducts(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordCatalogMutation("clear")
	w.WriteHeader(http.StatusNoContent)
}
