package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zxdhiruu/Restroo/internal/auth"
	"github.com/zxdhiruu/Restroo/internal/password"
	"github.com/zxdhiruu/Restroo/internal/plans"
	"github.com/zxdhiruu/Restroo/internal/store/memory"
	"github.com/zxdhiruu/Restroo/internal/token"
)

type testEnv struct {
	router  http.Handler
	store   *memory.Store
	authSvc *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	tokens, err := token.NewService(strings.Repeat("s", 32), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc, err := auth.NewService(auth.Config{
		Store:  st,
		Hasher: password.NewBcryptHasher(&password.BcryptConfig{Cost: 4}),
		Tokens: tokens,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	router := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(svc, nil, "http://localhost:3000"),
		Contact:       NewContactHandler(st, nil, ""),
		Subscriptions: NewSubscriptionHandler(st, plans.Default(), false),
		AuthService:   svc,
	})
	return &testEnv{router: router, store: st, authSvc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func (e *testEnv) signup(t *testing.T, email, pass string) (userID, bearer string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "firstName": "Alex", "lastName": "Chen", "password": pass,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "owner@restroo.test", "firstName": "Alex", "lastName": "Chen",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["token"] == "" {
		t.Error("response should include a session token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("response should include a user object: %v", body)
	}
	if user["email"] != "owner@restroo.test" {
		t.Errorf("email = %v", user["email"])
	}
	if user["firstName"] != "Alex" || user["lastName"] != "Chen" {
		t.Errorf("name = %v %v", user["firstName"], user["lastName"])
	}
	// Credentials never appear in responses.
	for _, forbidden := range []string{"password", "passwordHash", "password_hash"} {
		if _, present := user[forbidden]; present {
			t.Errorf("user response must not contain %q", forbidden)
		}
	}
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
	}{
		{"short password", map[string]string{"email": "a@restroo.test", "firstName": "A", "lastName": "B", "password": "short"}, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "nope", "firstName": "A", "lastName": "B", "password": "password123"}, http.StatusBadRequest},
		{"missing name", map[string]string{"email": "a@restroo.test", "password": "password123"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/signup", "", tt.payload)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	// Duplicate email.
	env.signup(t, "owner@restroo.test", "password123")
	rec := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "owner@restroo.test", "firstName": "Alex", "lastName": "Chen",
		"password": "password123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d, want 400", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "owner@restroo.test", "password123")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "owner@restroo.test", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["token"] == "" {
		t.Error("login should return a token")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "owner@restroo.test", "password123")

	// Unknown email and wrong password produce the identical response.
	recUnknown := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@restroo.test", "password": "password123",
	})
	recWrong := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "owner@restroo.test", "password": "wrongpassword",
	})

	for _, rec := range []*httptest.ResponseRecorder{recUnknown, recWrong} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	}
	if recUnknown.Body.String() != recWrong.Body.String() {
		t.Errorf("failure responses must be identical:\n%s\n%s",
			recUnknown.Body.String(), recWrong.Body.String())
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	userID, bearer := env.signup(t, "owner@restroo.test", "password123")

	rec := env.do(t, http.MethodGet, "/api/auth/me", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	user := decodeBody(t, rec)["user"].(map[string]any)
	if user["id"] != userID {
		t.Errorf("id = %v, want %v", user["id"], userID)
	}
}

func TestMe_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Authentication required" {
		t.Errorf("message = %v", decodeBody(t, rec)["message"])
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", "bogus-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Invalid token" {
		t.Errorf("message = %v", decodeBody(t, rec)["message"])
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	_, bearer := env.signup(t, "owner@restroo.test", "password123")

	rec := env.do(t, http.MethodPost, "/api/auth/logout", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestForgotPassword_UniformResponse(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "owner@restroo.test", "password123")

	recKnown := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "owner@restroo.test",
	})
	recUnknown := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "nobody@restroo.test",
	})

	if recKnown.Code != http.StatusOK || recUnknown.Code != http.StatusOK {
		t.Fatalf("status = %d / %d, want 200 / 200", recKnown.Code, recUnknown.Code)
	}
	if recKnown.Body.String() != recUnknown.Body.String() {
		t.Errorf("responses must not reveal whether the email exists:\n%s\n%s",
			recKnown.Body.String(), recUnknown.Body.String())
	}
}

func TestResetPassword_BadToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"token": "bogus", "password": "newpassword1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGoogleExchange_BadCode(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/google/exchange", "", map[string]string{
		"code": "bogus",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGoogleStart_NotConfigured(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/google", "", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
