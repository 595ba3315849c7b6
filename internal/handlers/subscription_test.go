package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/zxdhiruu/Restroo/internal/auth"
	"github.com/zxdhiruu/Restroo/internal/password"
	"github.com/zxdhiruu/Restroo/internal/plans"
	"github.com/zxdhiruu/Restroo/internal/store/memory"
	"github.com/zxdhiruu/Restroo/internal/token"
)

// newBillingEnv builds a router with billing switched on.
func newBillingEnv(t *testing.T) *testEnv {
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
		Subscriptions: NewSubscriptionHandler(st, plans.Default(), true),
		AuthService:   svc,
	})
	return &testEnv{router: router, store: st, authSvc: svc}
}

func TestPlans(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/plans", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	list, ok := decodeBody(t, rec)["plans"].([]any)
	if !ok || len(list) == 0 {
		t.Fatal("plans should be a non-empty array")
	}
	first := list[0].(map[string]any)
	if first["key"] == "" {
		t.Error("plan should have a key")
	}
}

func TestSubscriptionCreate_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/subscription/create", "", map[string]string{"plan": "basic"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSubscriptionCreate_BillingNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	_, bearer := env.signup(t, "owner@restroo.test", "password123")

	rec := env.do(t, http.MethodPost, "/api/subscription/create", bearer, map[string]string{"plan": "basic"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Payment system not configured" {
		t.Errorf("message = %v", decodeBody(t, rec)["message"])
	}
}

func TestSubscriptionCreate_UnknownPlan(t *testing.T) {
	env := newBillingEnv(t)
	_, bearer := env.signup(t, "owner@restroo.test", "password123")

	rec := env.do(t, http.MethodPost, "/api/subscription/create", bearer, map[string]string{"plan": "platinum"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newBillingEnv(t)
	userID, bearer := env.signup(t, "owner@restroo.test", "password123")

	// No subscription yet: the body is an explicit null.
	rec := env.do(t, http.MethodGet, "/api/subscription", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["subscription"] != nil {
		t.Fatalf("expected null subscription, got %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/subscription/create", bearer, map[string]string{"plan": "premium"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	sub := decodeBody(t, rec)["subscription"].(map[string]any)
	if sub["plan"] != "premium" || sub["status"] != "active" {
		t.Errorf("subscription = %v", sub)
	}
	if sub["userId"] != userID {
		t.Errorf("userId = %v, want %v", sub["userId"], userID)
	}
	if sub["currentPeriodStart"] == nil || sub["currentPeriodEnd"] == nil {
		t.Error("subscription should carry a billing period")
	}

	rec = env.do(t, http.MethodGet, "/api/subscription", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	sub = decodeBody(t, rec)["subscription"].(map[string]any)
	if sub["plan"] != "premium" {
		t.Errorf("plan = %v", sub["plan"])
	}

	// Choosing a new plan replaces the old one.
	rec = env.do(t, http.MethodPost, "/api/subscription/create", bearer, map[string]string{"plan": "basic"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/subscription", bearer, nil)
	sub = decodeBody(t, rec)["subscription"].(map[string]any)
	if sub["plan"] != "basic" {
		t.Errorf("plan = %v, want basic", sub["plan"])
	}
}
