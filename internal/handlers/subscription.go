package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zxdhiruu/Restroo/internal/middleware"
	"github.com/zxdhiruu/Restroo/internal/plans"
	"github.com/zxdhiruu/Restroo/internal/store"
)

// SubscriptionHandler serves plan selection and lookup. Payment
// collection is not wired; until a billing key is configured, checkout
// reports the gap instead of silently activating plans.
type SubscriptionHandler struct {
	store   store.Store
	catalog *plans.Catalog

	// billingEnabled is true once a payment provider key is
	// configured.
	billingEnabled bool
}

// NewSubscriptionHandler creates the subscription handler.
func NewSubscriptionHandler(st store.Store, catalog *plans.Catalog, billingEnabled bool) *SubscriptionHandler {
	if catalog == nil {
		catalog = plans.Default()
	}
	return &SubscriptionHandler{store: st, catalog: catalog, billingEnabled: billingEnabled}
}

// Plans handles GET /api/plans.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": h.catalog.List()})
}

// Create handles POST /api/subscription/create. Requires the auth
// middleware.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.GetUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, ok := h.catalog.Get(req.Plan); !ok {
		writeMessage(w, http.StatusBadRequest, "Unknown plan")
		return
	}

	if !h.billingEnabled {
		writeMessage(w, http.StatusInternalServerError, "Payment system not configured")
		return
	}

	now := time.Now()
	periodEnd := now.Add(30 * 24 * time.Hour)
	sub := &store.Subscription{
		ID:                 uuid.NewString(),
		UserID:             u.ID,
		Plan:               req.Plan,
		Status:             store.SubscriptionActive,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.store.CreateSubscription(r.Context(), sub); err != nil {
		writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Subscription created",
		"subscription": sub,
	})
}

// Get handles GET /api/subscription. Requires the auth middleware.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.GetUser(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sub, err := h.store.GetSubscriptionByUserID(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"subscription": nil})
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscription": sub})
}
