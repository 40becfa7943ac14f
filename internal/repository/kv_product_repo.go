package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/hitoshi/salvore/internal/kvstore"
	"github.com/hitoshi/salvore/internal/model"
)

// productsKey は商品コレクション全体を保持するブロブのキー。
const productsKey = "local_products"

// KVProductRepo はキーバリューストアを使用した商品リポジトリ。
// コレクション全体を1つのJSON配列として読み書きする。
type KVProductRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

// NewKVProductRepo はKVProductRepoを生成する。
// storeには商品専用のストレージ領域を渡す。
func NewKVProductRepo(store kvstore.Store) *KVProductRepo {
	return &KVProductRepo{store: store}
}

// load はコレクション全体をストレージから読み込む。
// ブロブが存在しない場合は空のコレクションを返す。
func (r *KVProductRepo) load(ctx context.Context) ([]model.Product, error) {
	data, ok, err := r.store.Get(ctx, productsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if !ok {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// save はコレクション全体をストレージに書き戻す。
func (r *KVProductRepo) save(ctx context.Context, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	if err := r.store.Set(ctx, productsKey, data); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

// nextID は既存コレクション中の最大の数値IDに1を加えたIDを返す。
// 数値として解釈できないIDは0として扱う。
func nextID(products []model.Product) string {
	maxID := 0
	for _, p := range products {
		if n, err := strconv.Atoi(p.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}

// Add は次の連番IDを採番してproductに設定し、コレクションに追加して永続化する。
func (r *KVProductRepo) Add(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return err
	}

	product.ID = nextID(products)
	products = append(products, *product)

	return r.save(ctx, products)
}

// Delete は指定IDの商品を削除する。見つからない場合はエラーを返す。
func (r *KVProductRepo) Delete(ctx context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i, p := range products {
		if p.ID == productID {
			products = append(products[:i], products[i+1:]...)
			return r.save(ctx, products)
		}
	}
	return model.NewProductNotFoundError(productID)
}

// FindByID はコレクションを再読込した上で指定IDの商品を検索する。
// 見つからない場合はnilを返す。
func (r *KVProductRepo) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range products {
		if p.ID == productID {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

// List はコレクションを再読込して全商品を返す。
func (r *KVProductRepo) List(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// Update は指定IDの商品にスパースパッチを適用して永続化する。
// 見つからない場合はnilを返す。
func (r *KVProductRepo) Update(ctx context.Context, productID string, patch model.ProductPatch) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if products[i].ID == productID {
			patch.Apply(&products[i])
			if err := r.save(ctx, products); err != nil {
				return nil, err
			}
			updated := products[i]
			return &updated, nil
		}
	}
	return nil, nil
}

// Clear は全商品を削除して永続化する。
func (r *KVProductRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(ctx, []model.Product{})
}

// compile-time interface check
var _ ProductRepository = (*KVProductRepo)(nil)
