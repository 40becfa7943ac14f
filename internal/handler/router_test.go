package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/salvore/internal/middleware"
	"github.com/hitoshi/salvore/internal/model"
)

// mockSessionFinderForRouter はRouter統合テスト用のSessionFinderモック。
// 単一のセッションスロットを模倣する。
type mockSessionFinderForRouter struct {
	session *model.Session
}

func (m *mockSessionFinderForRouter) Find(ctx context.Context) (*model.Session, error) {
	return m.session, nil
}

// createTestRouter はテスト用の完全なルーターを構築するヘルパー。
func createTestRouter() http.Handler {
	sessionFinder := &mockSessionFinderForRouter{
		session: &model.Session{
			ID:        "valid-session",
			User:      model.User{ID: "1", Email: "taro@example.com"},
			CreatedAt: time.Now(),
		},
	}

	deps := &RouterDeps{
		SessionFinder: sessionFinder,
		CSRFConfig:    middleware.CSRFConfig{CookieSecure: false},
		RateLimiter:   middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		Collector:     &mockCollector{},
		CatalogService: &mockCatalogService{
			listProductsFn: func(ctx context.Context) ([]model.Product, error) {
				return []model.Product{{ID: "1", Name: "サーモン刺身", Price: 18.99}}, nil
			},
			getProductFn: func(ctx context.Context, productID string) (*model.Product, error) {
				return &model.Product{ID: productID, Name: "サーモン刺身", Price: 18.99}, nil
			},
		},
		CartService: &mockCartService{},
		AccountService: &mockAccountService{
			currentUserFn: func(ctx context.Context) (*model.User, error) {
				return &model.User{ID: "1", Email: "taro@example.com"}, nil
			},
		},
		AccountConfig:   AccountHandlerConfig{SessionMaxAge: 86400},
		CheckoutService: &mockCheckoutService{},
		Uploader:        &mockUploader{enabled: true},
	}

	return NewRouter(deps)
}

// withSessionAndCSRF はセッションCookieとCSRFトークンを付与するヘルパー。
func withSessionAndCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "test-token"})
	req.Header.Set("X-CSRF-Token", "test-token")
	return req
}

// TestNewRouter_PublicRoutes_NoAuthRequired は
// 商品閲覧と認証系エントリポイントが認証不要であることを検証する。
func TestNewRouter_PublicRoutes_NoAuthRequired(t *testing.T) {
	router := createTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/products", ""},
		{http.MethodGet, "/api/products/1", ""},
		{http.MethodPost, "/auth/register", `{"email": "taro@example.com", "password": "x"}`},
		{http.MethodPost, "/auth/login", `{"email": "taro@example.com", "password": "x"}`},
		{http.MethodGet, "/api/csrf-token", ""},
	}

	for _, tt := range tests {
		var req *http.Request
		if tt.body != "" {
			req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tt.method, tt.path, nil)
		}
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		status := w.Result().StatusCode
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			t.Errorf("%s %s status = %d, should not require auth", tt.method, tt.path, status)
		}
	}
}

// TestNewRouter_ProtectedRoute_NoSession_Returns401 は
// セッションCookieなしの保護ルートアクセスが401になることを検証する。
func TestNewRouter_ProtectedRoute_NoSession_Returns401(t *testing.T) {
	router := createTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/cart (no session) status = %d, want %d",
			w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestNewRouter_ProtectedRoute_StaleCookie_Returns401 は
// スロットと一致しないセッションIDのCookieが拒否されることを検証する。
func TestNewRouter_ProtectedRoute_StaleCookie_Returns401(t *testing.T) {
	router := createTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/cart (stale cookie) status = %d, want %d",
			w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestNewRouter_ProtectedRoute_WithSession_GET_Succeeds は
// 有効なセッションでGETリクエストが成功することを検証する。
func TestNewRouter_ProtectedRoute_WithSession_GET_Succeeds(t *testing.T) {
	router := createTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /api/cart status = %d, want %d",
			w.Result().StatusCode, http.StatusOK)
	}
}

// TestNewRouter_ProtectedRoute_POST_RequiresCSRF は
// 状態変更リクエストにCSRFトークンが必須であることを検証する。
func TestNewRouter_ProtectedRoute_POST_RequiresCSRF(t *testing.T) {
	router := createTestRouter()

	body := `{"productId": "1", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("POST /api/cart/items (no CSRF) status = %d, want %d",
			w.Result().StatusCode, http.StatusForbidden)
	}
}

// TestNewRouter_ProtectedRoute_POST_WithCSRF_Succeeds は
// CSRFトークン付きの状態変更リクエストが成功することを検証する。
func TestNewRouter_ProtectedRoute_POST_WithCSRF_Succeeds(t *testing.T) {
	router := createTestRouter()

	body := `{"productId": "1", "quantity": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSessionAndCSRF(req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	status := w.Result().StatusCode
	if status == http.StatusForbidden || status == http.StatusUnauthorized {
		t.Errorf("POST /api/cart/items (with CSRF) status = %d, should not be 403 or 401", status)
	}
}

// TestNewRouter_MiddlewareOrder_SessionBeforeCSRF は
// セッション検証がCSRF検証より先に実行されることを検証する。
func TestNewRouter_MiddlewareOrder_SessionBeforeCSRF(t *testing.T) {
	router := createTestRouter()

	body := `{"productId": "1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("POST (no session, no CSRF) status = %d, want %d (session check before CSRF)",
			w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// TestNewRouter_CartRoutes_AllEndpoints はカート関連の全エンドポイントが登録されていることを検証する。
func TestNewRouter_CartRoutes_AllEndpoints(t *testing.T) {
	router := createTestRouter()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/cart", ""},
		{http.MethodDelete, "/api/cart", ""},
		{http.MethodPost, "/api/cart/items", `{"productId": "1", "quantity": 1}`},
		{http.MethodPut, "/api/cart/items/1", ""},
		{http.MethodPatch, "/api/cart/items/1", `{"quantity": 3}`},
		{http.MethodDelete, "/api/cart/items/1", ""},
	}

	for _, tt := range tests {
		var req *http.Request
		if tt.body != "" {
			req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tt.method, tt.path, nil)
		}
		req = withSessionAndCSRF(req)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode == http.StatusNotFound ||
			w.Result().StatusCode == http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, route not registered", tt.method, tt.path, w.Result().StatusCode)
		}
	}
}

// TestNewRouter_CheckoutRoutes_AllEndpoints は注文関連のエンドポイントが登録されていることを検証する。
func TestNewRouter_CheckoutRoutes_AllEndpoints(t *testing.T) {
	router := createTestRouter()

	for _, path := range []string{"/api/checkout/quote", "/api/checkout/order"} {
		body := `{"deliveryOption": "delivery"}`
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = withSessionAndCSRF(req)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode == http.StatusNotFound ||
			w.Result().StatusCode == http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, route not registered", path, w.Result().StatusCode)
		}
	}
}

// TestNewRouter_CatalogMutations_RequireAuth は
// 商品の登録・更新・削除が認証必須であることを検証する。
func TestNewRouter_CatalogMutations_RequireAuth(t *testing.T) {
	router := createTestRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPatch, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodDelete, "/api/products"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s (no session) status = %d, want %d",
				tt.method, tt.path, w.Result().StatusCode, http.StatusUnauthorized)
		}
	}
}

// TestNewRouter_ProfileRoute_InjectsUserID は
// セッションからユーザーIDがハンドラーに渡ることを検証する。
func TestNewRouter_ProfileRoute_InjectsUserID(t *testing.T) {
	var gotUserID string
	sessionFinder := &mockSessionFinderForRouter{
		session: &model.Session{
			ID:        "valid-session",
			User:      model.User{ID: "42", Email: "taro@example.com"},
			CreatedAt: time.Now(),
		},
	}

	deps := &RouterDeps{
		SessionFinder:  sessionFinder,
		CSRFConfig:     middleware.CSRFConfig{CookieSecure: false},
		RateLimiter:    middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig()),
		Collector:      &mockCollector{},
		CatalogService: &mockCatalogService{},
		CartService:    &mockCartService{},
		AccountService: &mockAccountService{
			updateProfileFn: func(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
				gotUserID = userID
				return &model.User{ID: userID}, nil
			},
		},
		AccountConfig:   AccountHandlerConfig{SessionMaxAge: 86400},
		CheckoutService: &mockCheckoutService{},
		Uploader:        &mockUploader{},
	}
	router := NewRouter(deps)

	body := `{"firstName": "太郎"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withSessionAndCSRF(req)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("PATCH /api/users/me status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotUserID != "42" {
		t.Errorf("userID = %q, want %q", gotUserID, "42")
	}
}

// TestNewRouter_SecurityHeaders_Applied は
// 全ルートにセキュリティヘッダーが付与されることを検証する。
func TestNewRouter_SecurityHeaders_Applied(t *testing.T) {
	router := createTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Result().Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}

// TestNewRouter_UnknownRoute_Returns404 は未登録パスが404になることを検証する。
func TestNewRouter_UnknownRoute_Returns404(t *testing.T) {
	router := createTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("GET /api/unknown status = %d, want %d",
			w.Result().StatusCode, http.StatusNotFound)
	}
}
