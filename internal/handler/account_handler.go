package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/salvore/internal/middleware"
	"github.com/hitoshi/salvore/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, email, password string) (*model.User, error)
	// Login はメールアドレスでユーザーを特定し、セッションスロットを設定する。
	Login(ctx context.Context, email, password string) (*model.Session, error)
	// Logout は現在のセッションスロットを空にする。
	Logout(ctx context.Context) error
	// CurrentUser は現在のセッションに紐づくユーザーを返す。
	CurrentUser(ctx context.Context) (*model.User, error)
	// UpdateProfile は指定ユーザーにスパースパッチを適用する。
	UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
	// ForgetPassword はパスワード再設定の案内メッセージを返す。
	ForgetPassword(ctx context.Context, email string) (string, error)
}

// AccountHandlerConfig はアカウントハンドラーの設定。
type AccountHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AccountHandler はアカウント関連のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
	config  AccountHandlerConfig
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface, config AccountHandlerConfig) *AccountHandler {
	return &AccountHandler{
		service: service,
		config:  config,
	}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// forgetPasswordRequest はパスワード再設定リクエストのボディ。
type forgetPasswordRequest struct {
	Email string `json:"email"`
}

// messageResponse は単一メッセージのAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// Register はユーザー登録を処理する。
// POST /auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login はログインを処理し、セッションCookieを設定する。
// POST /auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// セッションCookieを設定（HTTP Only）
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName(),
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, session.User)
}

// Logout はログアウトを処理し、セッションCookieを破棄する。
// POST /auth/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName(),
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "ログアウトしました。"})
}

// Me は現在のユーザー情報を返す。
// GET /auth/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile はプロフィールのスパース更新を処理する。
// 対象は認証済みユーザー自身に限定される。
// PATCH /api/users/me
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var patch model.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// ForgetPassword はパスワード再設定の案内を返す。
// POST /auth/forget-password
func (h *AccountHandler) ForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req forgetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	msg, err := h.service.ForgetPassword(r.Context(), req.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
