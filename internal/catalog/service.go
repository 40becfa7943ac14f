// Package catalog は商品カタログのドメインロジックを提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/salvore/internal/model"
	"github.com/hitoshi/salvore/internal/repository"
	"github.com/hitoshi/salvore/internal/security"
)

// Service は商品カタログのサービス層。
// 入力テキストのサニタイズと価格検証を行った上でリポジトリに委譲する。
type Service struct {
	repo      repository.ProductRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProductRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// AddProduct は商品を登録する。IDはリポジトリで採番される。
// 名前と説明はサニタイズされ、負の価格は拒否される。
func (s *Service) AddProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	if product.Price < 0 {
		return nil, model.NewInvalidPriceError(fmt.Sprintf("%v", product.Price))
	}

	product.Name = s.sanitizer.Sanitize(product.Name)
	product.Description = s.sanitizer.Sanitize(product.Description)

	if err := s.repo.Add(ctx, &product); err != nil {
		return nil, fmt.Errorf("商品の登録に失敗しました: %w", err)
	}

	slog.Info("商品を登録しました",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return &product, nil
}

// DeleteProduct は商品を削除する。
func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}

	slog.Info("商品を削除しました", slog.String("product_id", productID))
	return nil
}

// GetProduct は指定IDの商品を取得する。見つからない場合はエラーを返す。
func (s *Service) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}
	return product, nil
}

// ListProducts は全商品を返す。
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	return products, nil
}

// UpdateProduct は指定IDの商品にスパースパッチを適用する。
// パッチに含まれるフィールドのみが更新される。
func (s *Service) UpdateProduct(ctx context.Context, productID string, patch model.ProductPatch) (*model.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, model.NewInvalidPriceError(fmt.Sprintf("%v", float64(*patch.Price)))
	}

	if patch.Name != nil {
		cleaned := s.sanitizer.Sanitize(*patch.Name)
		patch.Name = &cleaned
	}
	if patch.Description != nil {
		cleaned := s.sanitizer.Sanitize(*patch.Description)
		patch.Description = &cleaned
	}

	updated, err := s.repo.Update(ctx, productID, patch)
	if err != nil {
		return nil, fmt.Errorf("商品の更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewProductNotFoundError(productID)
	}

	slog.Info("商品を更新しました", slog.String("product_id", productID))
	return updated, nil
}

// ClearProducts は全商品を削除する。
func (s *Service) ClearProducts(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("カタログのクリアに失敗しました: %w", err)
	}

	slog.Info("カタログをクリアしました")
	return nil
}

// Seed は初期メニューをカタログに投入する。
// カタログが空でない場合は何もせず0を返す（冪等）。
func (s *Service) Seed(ctx context.Context, products []model.Product) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("カタログの読込に失敗しました: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("カタログが空でないため初期投入をスキップします",
			slog.Int("existing_count", len(existing)),
		)
		return 0, nil
	}

	added := 0
	for _, p := range products {
		if _, err := s.AddProduct(ctx, p); err != nil {
			return added, fmt.Errorf("初期メニューの投入に失敗しました: %w", err)
		}
		added++
	}

	slog.Info("初期メニューを投入しました", slog.Int("count", added))
	return added, nil
}
