package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/salvore/internal/model"
)

// mockAccountService はAccountServiceInterfaceのモック実装。
type mockAccountService struct {
	registerFn       func(ctx context.Context, email, password string) (*model.User, error)
	loginFn          func(ctx context.Context, email, password string) (*model.Session, error)
	logoutFn         func(ctx context.Context) error
	currentUserFn    func(ctx context.Context) (*model.User, error)
	updateProfileFn  func(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
	forgetPasswordFn func(ctx context.Context, email string) (string, error)
}

func (m *mockAccountService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password)
	}
	return &model.User{ID: "1", Email: email}, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &model.Session{
		ID:        "session-abc",
		User:      model.User{ID: "1", Email: email},
		CreatedAt: time.Now(),
	}, nil
}

func (m *mockAccountService) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAccountService) CurrentUser(ctx context.Context) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx)
	}
	return nil, model.NewUnauthorizedError()
}

func (m *mockAccountService) UpdateProfile(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, patch)
	}
	return &model.User{ID: userID}, nil
}

func (m *mockAccountService) ForgetPassword(ctx context.Context, email string) (string, error) {
	if m.forgetPasswordFn != nil {
		return m.forgetPasswordFn(ctx, email)
	}
	return "", model.NewInvalidEmailError()
}

func newTestAccountHandler(svc AccountServiceInterface) *AccountHandler {
	return NewAccountHandler(svc, AccountHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	})
}

// --- POST /auth/register テスト ---

func TestAccountHandler_Register_Success(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, email, password string) (*model.User, error) {
			if email != "taro@example.com" {
				t.Errorf("email = %q, want %q", email, "taro@example.com")
			}
			return &model.User{ID: "1", Email: email, FirstName: "User", LastName: "1"}, nil
		},
	}
	h := newTestAccountHandler(svc)

	body := `{"email": "taro@example.com", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var user model.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.ID != "1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "1")
	}
	if user.FirstName != "User" {
		t.Errorf("user.FirstName = %q, want %q", user.FirstName, "User")
	}
}

func TestAccountHandler_Register_DuplicateEmail(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, email, password string) (*model.User, error) {
			return nil, model.NewDuplicateEmailError(email)
		},
	}
	h := newTestAccountHandler(svc)

	body := `{"email": "taro@example.com", "password": "secret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	result := parseAPIErrorResponse(t, w)
	if result["code"] != model.ErrCodeDuplicateEmail {
		t.Errorf("code = %q, want %q", result["code"], model.ErrCodeDuplicateEmail)
	}
}

// --- POST /auth/login テスト ---

func TestAccountHandler_Login_SetsSessionCookie(t *testing.T) {
	h := newTestAccountHandler(&mockAccountService{})

	body := `{"email": "taro@example.com", "password": "whatever"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	cookies := w.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie not set")
	}
	if sessionCookie.Value != "session-abc" {
		t.Errorf("cookie value = %q, want %q", sessionCookie.Value, "session-abc")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if sessionCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sessionCookie.SameSite)
	}

	var user model.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if user.Email != "taro@example.com" {
		t.Errorf("user.Email = %q, want %q", user.Email, "taro@example.com")
	}
}

func TestAccountHandler_Login_UnknownEmail(t *testing.T) {
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, email, password string) (*model.Session, error) {
			return nil, model.NewInvalidEmailError()
		},
	}
	h := newTestAccountHandler(svc)

	body := `{"email": "unknown@example.com", "password": "x"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie should be set on login failure")
	}
}

// --- POST /auth/logout テスト ---

func TestAccountHandler_Logout_ExpiresCookie(t *testing.T) {
	logoutCalled := false
	svc := &mockAccountService{
		logoutFn: func(ctx context.Context) error {
			logoutCalled = true
			return nil
		},
	}
	h := newTestAccountHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !logoutCalled {
		t.Error("Logout was not called")
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookies[0].MaxAge)
	}
}

// --- GET /auth/me テスト ---

func TestAccountHandler_Me_Success(t *testing.T) {
	svc := &mockAccountService{
		currentUserFn: func(ctx context.Context) (*model.User, error) {
			return &model.User{ID: "1", Email: "taro@example.com"}, nil
		},
	}
	h := newTestAccountHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAccountHandler_Me_Unauthorized(t *testing.T) {
	h := newTestAccountHandler(&mockAccountService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- PATCH /api/users/me テスト ---

func TestAccountHandler_UpdateProfile_Success(t *testing.T) {
	svc := &mockAccountService{
		updateProfileFn: func(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
			if userID != "1" {
				t.Errorf("userID = %q, want %q", userID, "1")
			}
			if patch.FirstName == nil || *patch.FirstName != "太郎" {
				t.Errorf("patch.FirstName = %v, want 太郎", patch.FirstName)
			}
			return &model.User{ID: "1", FirstName: "太郎"}, nil
		},
	}
	h := newTestAccountHandler(svc)

	body := `{"firstName": "太郎"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/me", bytes.NewBufferString(body))
	req = withUserID(req, "1")
	w := httptest.NewRecorder()

	h.UpdateProfile(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAccountHandler_UpdateProfile_NoUserInContext(t *testing.T) {
	h := newTestAccountHandler(&mockAccountService{})

	body := `{"firstName": "太郎"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/users/me", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.UpdateProfile(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// --- POST /auth/forget-password テスト ---

func TestAccountHandler_ForgetPassword_Success(t *testing.T) {
	svc := &mockAccountService{
		forgetPasswordFn: func(ctx context.Context, email string) (string, error) {
			return "パスワードは保存されていないため、そのままログインできます。", nil
		},
	}
	h := newTestAccountHandler(svc)

	body := `{"email": "taro@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/forget-password", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.ForgetPassword(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp messageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message == "" {
		t.Error("message should not be empty")
	}
}

func TestAccountHandler_ForgetPassword_UnknownEmail(t *testing.T) {
	h := newTestAccountHandler(&mockAccountService{})

	body := `{"email": "unknown@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/forget-password", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.ForgetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
