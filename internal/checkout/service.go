// Package checkout は注文見積もりと注文確定のドメインロジックを提供する。
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/salvore/internal/metrics"
	"github.com/hitoshi/salvore/internal/model"
	"github.com/hitoshi/salvore/internal/repository"
)

// 受け取り方法。
const (
	OptionDelivery = "delivery"
	OptionPickup   = "pickup"
)

// Config は注文金額計算のパラメータ。
type Config struct {
	DeliveryFee   float64
	TaxRate       float64
	PromoCode     string
	PromoDiscount float64
}

// DefaultConfig は標準の計算パラメータを返す。
func DefaultConfig() Config {
	return Config{
		DeliveryFee:   2.99,
		TaxRate:       0.08,
		PromoCode:     "SAVE10",
		PromoDiscount: 0.10,
	}
}

// Quote は注文金額の内訳。
type Quote struct {
	Subtotal     float64 `json:"subtotal"`
	DeliveryFee  float64 `json:"deliveryFee"`
	Discount     float64 `json:"discount"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	PromoApplied bool    `json:"promoApplied"`
}

// Order は確定済みの注文。
type Order struct {
	ID             string           `json:"orderId"`
	Items          []model.CartItem `json:"items"`
	DeliveryOption string           `json:"deliveryOption"`
	Quote          Quote            `json:"quote"`
	PlacedAt       time.Time        `json:"placedAt"`
}

// Service は注文のサービス層。
type Service struct {
	carts     repository.CartRepository
	config    Config
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(carts repository.CartRepository, config Config, collector metrics.MetricsCollector) *Service {
	return &Service{
		carts:     carts,
		config:    config,
		collector: collector,
	}
}

// round2 は金額をセント単位に丸める。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// quote は小計に対して配送料・割引・税を計算する。
// 割引は小計のみに適用され、税は配送料込み・割引後の金額に掛かる。
func (s *Service) quote(c *model.Cart, deliveryOption, promoCode string) (Quote, error) {
	var fee float64
	switch deliveryOption {
	case OptionDelivery:
		fee = s.config.DeliveryFee
	case OptionPickup:
		fee = 0
	default:
		return Quote{}, model.NewInvalidDeliveryOptionError(deliveryOption)
	}

	subtotal := c.TotalPrice()

	var discount float64
	promoApplied := false
	if promoCode != "" && strings.EqualFold(promoCode, s.config.PromoCode) {
		discount = subtotal * s.config.PromoDiscount
		promoApplied = true
	}

	tax := (subtotal + fee - discount) * s.config.TaxRate
	total := subtotal + fee - discount + tax

	return Quote{
		Subtotal:     round2(subtotal),
		DeliveryFee:  round2(fee),
		Discount:     round2(discount),
		Tax:          round2(tax),
		Total:        round2(total),
		PromoApplied: promoApplied,
	}, nil
}

// QuoteOrder は現在のカートに対する注文金額の見積もりを返す。カートは変更しない。
func (s *Service) QuoteOrder(ctx context.Context, deliveryOption, promoCode string) (*Quote, error) {
	c, err := s.carts.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("カートの取得に失敗しました: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, model.NewEmptyCartError()
	}

	q, err := s.quote(c, deliveryOption, promoCode)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// PlaceOrder は現在のカートの内容で注文を確定し、カートを空にする。
func (s *Service) PlaceOrder(ctx context.Context, deliveryOption, promoCode string) (*Order, error) {
	c, err := s.carts.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("カートの取得に失敗しました: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, model.NewEmptyCartError()
	}

	q, err := s.quote(c, deliveryOption, promoCode)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:             uuid.NewString(),
		Items:          append([]model.CartItem(nil), c.Items...),
		DeliveryOption: deliveryOption,
		Quote:          q,
		PlacedAt:       time.Now(),
	}

	if err := s.carts.Clear(ctx); err != nil {
		return nil, fmt.Errorf("注文後のカートクリアに失敗しました: %w", err)
	}

	s.collector.RecordOrderPlaced(q.Total)
	slog.Info("注文を確定しました",
		slog.String("order_id", order.ID),
		slog.String("delivery_option", deliveryOption),
		slog.Float64("total", q.Total),
	)

	return order, nil
}
