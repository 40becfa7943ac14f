// Package app はアプリケーションの起動と依存関係のワイヤリングを担当する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/salvore/internal/account"
	"github.com/hitoshi/salvore/internal/cart"
	"github.com/hitoshi/salvore/internal/catalog"
	"github.com/hitoshi/salvore/internal/checkout"
	"github.com/hitoshi/salvore/internal/config"
	"github.com/hitoshi/salvore/internal/handler"
	"github.com/hitoshi/salvore/internal/kvstore"
	"github.com/hitoshi/salvore/internal/logger"
	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/middleware"
	"github.com/hitoshi/salvore/internal/repository"
	"github.com/hitoshi/salvore/internal/security"
	"github.com/hitoshi/salvore/internal/upload"
	"github.com/hitoshi/salvore/internal/worker/janitor"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandSeed:
		return runSeed(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openProvider は設定されたドライバーのストレージプロバイダーを開く。
func openProvider(cfg *config.Config) (kvstore.Provider, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		provider, err := kvstore.Open(cfg.SQLitePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return provider, nil
	default:
		provider, err := kvstore.NewFileProvider(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return provider, nil
	}
}

// runServe はAPIサーバーモードで起動する。
// ストレージを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストレージの初期化
	provider, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	if err := provider.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to access storage: %w", err)
	}

	slog.Info("storage initialized", slog.String("driver", cfg.StorageDriver))

	// 2. リポジトリの初期化
	productRepo := repository.NewKVProductRepo(provider.Area("products"))
	cartRepo := repository.NewKVCartRepo(provider.Area("cart"))
	userRepo := repository.NewKVUserRepo(provider.Area("users"))
	sessionRepo := repository.NewKVSessionRepo(provider.Area("users"))

	// 3. セキュリティサービスの初期化
	sanitizer := security.NewTextSanitizer()
	ssrfGuard := security.NewSSRFGuard()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ドメインサービスの初期化
	catalogService := catalog.NewService(productRepo, sanitizer)
	cartService := cart.NewService(cartRepo, productRepo)
	accountService := account.NewService(userRepo, sessionRepo, sanitizer)
	checkoutService := checkout.NewService(cartRepo, checkout.Config{
		DeliveryFee:   cfg.DeliveryFee,
		TaxRate:       cfg.TaxRate,
		PromoCode:     cfg.PromoCode,
		PromoDiscount: cfg.PromoDiscount,
	}, collector)
	uploader := upload.NewUploader(upload.Config{
		Endpoint:        cfg.UploadEndpoint,
		APIKey:          cfg.UploadAPIKey,
		Timeout:         cfg.UploadTimeout,
		MaxResponseSize: cfg.UploadMaxSize,
	}, ssrfGuard, collector)

	// 6. レート制限の構築（configはreq/min単位なのでreq/secに変換する）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.UploadRate = rate.Limit(float64(cfg.RateLimitUpload) / 60.0)
	rateLimiterCfg.UploadBurst = cfg.RateLimitUpload

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		HealthChecker:     provider,
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterCfg),
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger: slog.Default(),

		Collector:       collector,
		MetricsGatherer: registry,

		CatalogService: catalogService,
		CartService:    cartService,

		AccountService: accountService,
		AccountConfig: handler.AccountHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		CheckoutService: checkoutService,
		Uploader:        uploader,
	}

	router := handler.NewRouter(deps)

	// 8. セッションジャニターをバックグラウンドで起動
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionJanitor := janitor.NewJanitor(
		sessionRepo, slog.Default(),
		time.Duration(cfg.SessionMaxAge)*time.Second,
	)
	go sessionJanitor.Start(ctx, cfg.JanitorInterval)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runSeed は初期メニューをカタログに投入する。
// カタログが空でない場合は何もしない。
func runSeed(cfg *config.Config) error {
	provider, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	productRepo := repository.NewKVProductRepo(provider.Area("products"))
	catalogService := catalog.NewService(productRepo, security.NewTextSanitizer())

	added, err := catalogService.Seed(context.Background(), DefaultMenu())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed", slog.Int("added", added))
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// SQLiteドライバーの場合のみ、すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.StorageDriver != config.DriverSQLite {
		slog.Info("migration skipped: file driver does not require migrations")
		return nil
	}

	slog.Info("running database migrations",
		slog.String("path", cfg.SQLitePath()),
	)

	if err := kvstore.RunMigrations(cfg.SQLitePath()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
