// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/salvore/internal/model"
)

// ストレージ領域名。各リポジトリは自分専用の領域を1つ占有する。
const (
	AreaProducts = "products"
	AreaCart     = "cart"
	AreaUsers    = "users"
)

// ProductRepository は商品カタログの永続化インターフェース。
type ProductRepository interface {
	// Add は次の連番IDを採番してproductに設定し、コレクションに追加して永続化する。
	Add(ctx context.Context, product *model.Product) error

	// Delete は指定IDの商品を削除する。見つからない場合はエラーを返す。
	Delete(ctx context.Context, productID string) error

	// FindByID はコレクションをストレージから再読込した上で指定IDの商品を検索する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, productID string) (*model.Product, error)

	// List はコレクションをストレージから再読込して全商品を返す。
	List(ctx context.Context) ([]model.Product, error)

	// Update は指定IDの商品にスパースパッチを適用して永続化する。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, productID string, patch model.ProductPatch) (*model.Product, error)

	// Clear は全商品を削除して永続化する。
	Clear(ctx context.Context) error
}

// CartRepository はカートの永続化インターフェース。
// すべての操作でカート全体のブロブを読み書きする。
type CartRepository interface {
	// Get はカートをストレージから再読込して返す。
	Get(ctx context.Context) (*model.Cart, error)

	// AddItem は商品を指定数量でカートに追加する（既存明細には加算）。
	AddItem(ctx context.Context, product model.Product, quantity int) (*model.Cart, error)

	// AddOneItem は商品を数量1でカートに追加する（既存明細は数量1に置換）。
	AddOneItem(ctx context.Context, product model.Product) (*model.Cart, error)

	// RemoveItem は指定商品IDの明細を削除する。明細がない場合はエラーを返す。
	RemoveItem(ctx context.Context, productID string) (*model.Cart, error)

	// UpdateQuantity は指定商品IDの数量を更新する。0以下は明細削除を意味する。
	UpdateQuantity(ctx context.Context, productID string, quantity int) (*model.Cart, error)

	// Clear は全明細を削除して永続化する。
	Clear(ctx context.Context) error
}

// UserRepository はユーザーアカウントの永続化インターフェース。
type UserRepository interface {
	// Count は登録済みユーザー数を返す。登録時のID採番（件数+1）に使用する。
	Count(ctx context.Context) (int, error)

	// Insert はユーザーをそのままコレクションに追加して永続化する。
	// ID採番は呼び出し側の責務。
	Insert(ctx context.Context, user model.User) error

	// FindByEmail はメールアドレス完全一致でユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID string) (*model.User, error)

	// Update は指定IDのユーザーにスパースパッチを適用して永続化する。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)

	// List は全ユーザーを返す。
	List(ctx context.Context) ([]model.User, error)
}

// SessionRepository は現在セッションスロットの永続化インターフェース。
// スロットは高々1件で、アカウントコレクションとは別キーに保存される。
type SessionRepository interface {
	// Save はセッションスロットを保存する。
	Save(ctx context.Context, session *model.Session) error

	// Find は現在のセッションをストレージから再読込して返す。
	// スロットが空（未認証）の場合はnilを返す。
	Find(ctx context.Context) (*model.Session, error)

	// Clear はセッションスロットを空にする。
	Clear(ctx context.Context) error
}
