// Package account はユーザーアカウントとセッションのドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/salvore/internal/model"
	"github.com/hitoshi/salvore/internal/repository"
	"github.com/hitoshi/salvore/internal/security"
)

// Service はアカウントのサービス層。
// アクティブなセッションは高々1つで、スロットとして永続化される。
type Service struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, sessions repository.SessionRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		sanitizer: sanitizer,
	}
}

// Register は新規ユーザーを登録する。
// メールアドレスの重複チェックは登録時のみ行われる（完全一致）。
// IDは登録済み件数+1で採番され、氏名はプレースホルダで初期化される。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, model.NewInvalidEmailError()
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError(email)
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー数の取得に失敗しました: %w", err)
	}

	id := strconv.Itoa(count + 1)
	user := model.User{
		ID:        id,
		Email:     email,
		FirstName: "User",
		LastName:  id,
	}
	// passwordは保存されない。後続のログインでも検証されない。
	_ = password

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの登録に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました", slog.String("user_id", id))
	return &user, nil
}

// Login はメールアドレスでユーザーを特定し、セッションスロットを設定する。
// 保存されたレコードにパスワードは存在せず、渡されたパスワードは照合されない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidEmailError()
	}
	_ = password

	session := &model.Session{
		ID:        uuid.NewString(),
		User:      *user,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	slog.Info("ログインしました", slog.String("user_id", user.ID))
	return session, nil
}

// Logout は現在のセッションスロットを空にする。
// 未認証状態でもエラーにはならない。
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("セッションのクリアに失敗しました: %w", err)
	}

	slog.Info("ログアウトしました")
	return nil
}

// CurrentSession は現在のセッションをストレージから再読込して返す。
// 未認証の場合はnilを返す。
func (s *Service) CurrentSession(ctx context.Context) (*model.Session, error) {
	session, err := s.sessions.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	return session, nil
}

// CurrentUser は現在のセッションに紐づくユーザーを返す。
// 未認証の場合はエラーを返す。
func (s *Service) CurrentUser(ctx context.Context) (*model.User, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.NewUnauthorizedError()
	}
	user := session.User
	return &user, nil
}

// UpdateProfile は指定ユーザーにスパースパッチを適用する。
// 対象がアクティブなセッションのユーザーである場合、セッション内のコピーも更新する。
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	if patch.FirstName != nil {
		cleaned := s.sanitizer.Sanitize(*patch.FirstName)
		patch.FirstName = &cleaned
	}
	if patch.LastName != nil {
		cleaned := s.sanitizer.Sanitize(*patch.LastName)
		patch.LastName = &cleaned
	}
	if patch.Address != nil {
		cleaned := s.sanitizer.Sanitize(*patch.Address)
		patch.Address = &cleaned
	}

	updated, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	session, err := s.sessions.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}
	if session != nil && session.User.ID == userID {
		session.User = *updated
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("セッションの更新に失敗しました: %w", err)
		}
	}

	slog.Info("プロフィールを更新しました", slog.String("user_id", userID))
	return updated, nil
}

// ForgetPassword はパスワード再設定の案内メッセージを返す。メールは送信しない。
// 該当するメールアドレスが存在しない場合はエラーを返す。
func (s *Service) ForgetPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidEmailError()
	}

	slog.Info("パスワード再設定が要求されました", slog.String("user_id", user.ID))
	return "パスワード再設定の案内を " + email + " 宛に送信しました。メールをご確認ください。", nil
}
