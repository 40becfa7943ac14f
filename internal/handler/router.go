package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// kvstore.Providerの部分集合として定義する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// メトリクス
	Collector       metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// カタログ
	CatalogService CatalogServiceInterface

	// カート
	CartService CartServiceInterface

	// アカウント
	AccountService AccountServiceInterface
	AccountConfig  AccountHandlerConfig

	// 注文
	CheckoutService CheckoutServiceInterface

	// 画像アップロード
	Uploader UploaderInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//	  → (認証ルートのみ) Session → CSRF → RateLimit(General)
//
// 商品閲覧と認証系エントリポイント（/auth/register, /auth/login）は
// ミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}

	productHandler := NewProductHandler(deps.CatalogService, deps.Collector)
	cartHandler := NewCartHandler(deps.CartService, deps.Collector)
	accountHandler := NewAccountHandler(deps.AccountService, deps.AccountConfig)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutService)
	uploadHandler := NewUploadHandler(deps.Uploader)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.Ping(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// 商品閲覧
	r.Get("/api/products", productHandler.ListProducts)
	r.Get("/api/products/{id}", productHandler.GetProduct)

	// アカウント登録・ログイン
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", accountHandler.Register)
		r.Post("/login", accountHandler.Login)
		r.Post("/forget-password", accountHandler.ForgetPassword)
	})

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// Prometheusメトリクス
	if deps.MetricsGatherer != nil {
		r.Mount("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// セッション管理
		r.Route("/auth", func(r chi.Router) {
			r.Post("/logout", accountHandler.Logout)
			r.Get("/me", accountHandler.Me)
		})

		// プロフィール更新
		r.Patch("/api/users/me", accountHandler.UpdateProfile)

		// 商品管理
		r.Route("/api/products", func(r chi.Router) {
			r.Post("/", productHandler.AddProduct)
			r.Delete("/", productHandler.ClearProducts)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", productHandler.UpdateProduct)
				r.Delete("/", productHandler.DeleteProduct)
			})
		})

		// カート管理
		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Route("/items/{productId}", func(r chi.Router) {
				r.Put("/", cartHandler.AddOne)
				r.Patch("/", cartHandler.UpdateQuantity)
				r.Delete("/", cartHandler.RemoveItem)
			})
		})

		// 注文
		r.Route("/api/checkout", func(r chi.Router) {
			r.Post("/quote", checkoutHandler.Quote)
			r.Post("/order", checkoutHandler.PlaceOrder)
		})

		// 画像アップロード（アップロード専用レート制限を追加）
		r.With(deps.RateLimiter.UploadMiddleware()).Post("/api/upload", uploadHandler.Upload)
	})

	return r
}
