// Package cart はカートのドメインロジックを提供する。
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/salvore/internal/model"
	"github.com/hitoshi/salvore/internal/repository"
)

// ProductFinder はカタログから商品を取得するための最小インターフェース。
type ProductFinder interface {
	FindByID(ctx context.Context, productID string) (*model.Product, error)
}

// Service はカートのサービス層。
// 商品の実在確認をカタログに照会してからカートを更新する。
type Service struct {
	repo     repository.CartRepository
	products ProductFinder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CartRepository, products ProductFinder) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// GetCart は現在のカートを返す。
func (s *Service) GetCart(ctx context.Context) (*model.Cart, error) {
	c, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("カートの取得に失敗しました: %w", err)
	}
	return c, nil
}

// AddItem は商品を指定数量でカートに追加する。
// 既にカートにある商品は数量が加算される。
func (s *Service) AddItem(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		return nil, model.NewInvalidQuantityError(quantity)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の確認に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}

	c, err := s.repo.AddItem(ctx, *product, quantity)
	if err != nil {
		return nil, fmt.Errorf("カートへの追加に失敗しました: %w", err)
	}

	slog.Info("カートに追加しました",
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)
	return c, nil
}

// AddOne は商品を数量1でカートに追加する。
// 既にカートにある商品は数量が1に置き換わる。
func (s *Service) AddOne(ctx context.Context, productID string) (*model.Cart, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の確認に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}

	c, err := s.repo.AddOneItem(ctx, *product)
	if err != nil {
		return nil, fmt.Errorf("カートへの追加に失敗しました: %w", err)
	}

	slog.Info("カートに追加しました", slog.String("product_id", productID))
	return c, nil
}

// RemoveItem は指定商品の明細をカートから削除する。
func (s *Service) RemoveItem(ctx context.Context, productID string) (*model.Cart, error) {
	c, err := s.repo.RemoveItem(ctx, productID)
	if err != nil {
		return nil, err
	}

	slog.Info("カートから削除しました", slog.String("product_id", productID))
	return c, nil
}

// UpdateQuantity は指定商品の数量を変更する。0以下を指定すると明細が削除される。
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	c, err := s.repo.UpdateQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("数量の変更に失敗しました: %w", err)
	}
	return c, nil
}

// Clear はカートを空にする。
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("カートのクリアに失敗しました: %w", err)
	}

	slog.Info("カートをクリアしました")
	return nil
}
