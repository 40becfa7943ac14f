package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hitoshi/salvore/internal/kvstore"
	"github.com/hitoshi/salvore/internal/model"
)

// usersKey はユーザーコレクション全体を保持するブロブのキー。
// currentUserKey はセッションスロットのキー。同じ領域内の別キーに保存される。
const (
	usersKey       = "local_users"
	currentUserKey = "current_user"
)

// KVUserRepo はキーバリューストアを使用したユーザーリポジトリ。
// コレクション全体を1つのJSON配列として読み書きする。
type KVUserRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

// NewKVUserRepo はKVUserRepoを生成する。
// storeにはユーザー専用のストレージ領域を渡す。
func NewKVUserRepo(store kvstore.Store) *KVUserRepo {
	return &KVUserRepo{store: store}
}

func (r *KVUserRepo) load(ctx context.Context) ([]model.User, error) {
	data, ok, err := r.store.Get(ctx, usersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if !ok {
		return []model.User{}, nil
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (r *KVUserRepo) save(ctx context.Context, users []model.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := r.store.Set(ctx, usersKey, data); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// Count は登録済みユーザー数を返す。
func (r *KVUserRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Insert はユーザーをそのままコレクションに追加して永続化する。
// ID採番は呼び出し側の責務。削除操作が存在しないため、IDは再利用されない。
func (r *KVUserRepo) Insert(ctx context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}

	users = append(users, user)

	return r.save(ctx, users)
}

// FindByEmail はメールアドレス完全一致（大文字小文字を区別）でユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *KVUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *KVUserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.ID == userID {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Update は指定IDのユーザーにスパースパッチを適用して永続化する。
// 見つからない場合はnilを返す。メールアドレスの重複チェックは行わない。
func (r *KVUserRepo) Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == userID {
			patch.Apply(&users[i])
			if err := r.save(ctx, users); err != nil {
				return nil, err
			}
			updated := users[i]
			return &updated, nil
		}
	}
	return nil, nil
}

// List は全ユーザーを返す。
func (r *KVUserRepo) List(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// compile-time interface check
var _ UserRepository = (*KVUserRepo)(nil)

// KVSessionRepo はセッションスロットを永続化するリポジトリ。
// ユーザー領域内のcurrent_userキーを単一スロットとして使用する。
type KVSessionRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

// NewKVSessionRepo はKVSessionRepoを生成する。
func NewKVSessionRepo(store kvstore.Store) *KVSessionRepo {
	return &KVSessionRepo{store: store}
}

// Save はセッションスロットを保存する。
func (r *KVSessionRepo) Save(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.store.Set(ctx, currentUserKey, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Find は現在のセッションをストレージから再読込して返す。
// スロットが空（未認証）の場合はnilを返す。
func (r *KVSessionRepo) Find(ctx context.Context) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok, err := r.store.Get(ctx, currentUserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &session, nil
}

// Clear はセッションスロットを空にする。
func (r *KVSessionRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, currentUserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*KVSessionRepo)(nil)
