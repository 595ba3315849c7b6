package handlers

import (
	"net/http"
	"testing"
)

func TestContactCreate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"firstName":      "Jordan",
		"lastName":       "Reyes",
		"email":          "jordan@bistro.test",
		"restaurantName": "Jordan's Bistro",
		"restaurantType": "bistro",
		"message":        "I'd like a demo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["id"] == "" {
		t.Error("response should include the request id")
	}
}

func TestContactCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.test", "message": "hi"}},
		{"missing message", map[string]string{"firstName": "A", "lastName": "B", "email": "a@b.test"}},
		{"bad email", map[string]string{"firstName": "A", "lastName": "B", "email": "nope", "message": "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/contact", "", tt.payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestContactList(t *testing.T) {
	env := newTestEnv(t)
	_, bearer := env.signup(t, "owner@restroo.test", "password123")

	// Listing requires authentication.
	rec := env.do(t, http.MethodGet, "/api/contact-requests", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status = %d, want 401", rec.Code)
	}

	// Empty list is a JSON array, not null.
	rec = env.do(t, http.MethodGet, "/api/contact-requests", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	list, ok := body["contactRequests"].([]any)
	if !ok {
		t.Fatalf("contactRequests should be an array, got %T", body["contactRequests"])
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	env.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"firstName": "Jordan", "lastName": "Reyes",
		"email": "jordan@bistro.test", "message": "demo please",
	})

	rec = env.do(t, http.MethodGet, "/api/contact-requests", bearer, nil)
	list = decodeBody(t, rec)["contactRequests"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one request, got %d", len(list))
	}
	first := list[0].(map[string]any)
	if first["firstName"] != "Jordan" {
		t.Errorf("firstName = %v", first["firstName"])
	}
}
