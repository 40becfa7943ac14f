package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hitoshi/salvore/internal/kvstore"
	"github.com/hitoshi/salvore/internal/model"
)

// cartKey はカート全体を保持するブロブのキー。
const cartKey = "local_cart"

// KVCartRepo はキーバリューストアを使用したカートリポジトリ。
// すべての操作でカート全体のブロブを読み書きする。
type KVCartRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

// NewKVCartRepo はKVCartRepoを生成する。
// storeにはカート専用のストレージ領域を渡す。
func NewKVCartRepo(store kvstore.Store) *KVCartRepo {
	return &KVCartRepo{store: store}
}

// load はカート全体をストレージから読み込む。
// ブロブが存在しない場合は空のカートを返す。
func (r *KVCartRepo) load(ctx context.Context) (*model.Cart, error) {
	data, ok, err := r.store.Get(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok {
		return model.NewCart(), nil
	}

	cart := model.NewCart()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to parse cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []model.CartItem{}
	}
	return cart, nil
}

// save はカート全体をストレージに書き戻す。
func (r *KVCartRepo) save(ctx context.Context, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.store.Set(ctx, cartKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Get はカートをストレージから再読込して返す。
func (r *KVCartRepo) Get(ctx context.Context) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// AddItem は商品を指定数量でカートに追加する。既存明細には数量を加算する。
func (r *KVCartRepo) AddItem(ctx context.Context, product model.Product, quantity int) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	cart.AddItem(product, quantity)

	if err := r.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddOneItem は商品を数量1でカートに追加する。既存明細は数量1に置き換える。
func (r *KVCartRepo) AddOneItem(ctx context.Context, product model.Product) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	cart.AddOneItem(product)

	if err := r.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem は指定商品IDの明細を削除する。明細がない場合はエラーを返す。
func (r *KVCartRepo) RemoveItem(ctx context.Context, productID string) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if cart.FindItem(productID) == nil {
		return nil, model.NewCartItemNotFoundError(productID)
	}
	cart.RemoveItem(productID)

	if err := r.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity は指定商品IDの数量を更新する。0以下は明細削除を意味する。
func (r *KVCartRepo) UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(productID, quantity)

	if err := r.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear は全明細を削除して永続化する。
func (r *KVCartRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(ctx, model.NewCart())
}

// compile-time interface check
var _ CartRepository = (*KVCartRepo)(nil)
