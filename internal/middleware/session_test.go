package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/salvore/internal/model"
)

// mockSessionFinder はテスト用のSessionFinderモック。
type mockSessionFinder struct {
	session *model.Session
	err     error
}

func (m *mockSessionFinder) Find(_ context.Context) (*model.Session, error) {
	return m.session, m.err
}

func activeSession(id string) *model.Session {
	return &model.Session{
		ID:        id,
		User:      model.User{ID: "1", Email: "taro@example.com"},
		CreatedAt: time.Now(),
	}
}

func sessionTestHandler(t *testing.T, wantUserID string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext: %v", err)
		}
		if userID != wantUserID {
			t.Errorf("userID = %q, want %q", userID, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_ValidCookie(t *testing.T) {
	finder := &mockSessionFinder{session: activeSession("sess-abc")}
	handler := NewSessionMiddleware(finder)(sessionTestHandler(t, "1"))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	finder := &mockSessionFinder{session: activeSession("sess-abc")}
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("ハンドラーが呼ばれてはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_Unauthorized_ReturnsUnifiedErrorBody(t *testing.T) {
	finder := &mockSessionFinder{}
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("ハンドラーが呼ばれてはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
	if body.Category != "auth" {
		t.Errorf("category = %q, want %q", body.Category, "auth")
	}
}

func TestSessionMiddleware_CookieDoesNotMatchSlot(t *testing.T) {
	finder := &mockSessionFinder{session: activeSession("sess-abc")}
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("ハンドラーが呼ばれてはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "stale-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_EmptySlot(t *testing.T) {
	finder := &mockSessionFinder{}
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("ハンドラーが呼ばれてはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_FinderError(t *testing.T) {
	finder := &mockSessionFinder{err: errors.New("storage down")}
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("ハンドラーが呼ばれてはならない")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestUserIDFromContext_NotSet(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("エラーを期待した")
	}
}

func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "42")
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext: %v", err)
	}
	if userID != "42" {
		t.Errorf("userID = %q, want %q", userID, "42")
	}
}
