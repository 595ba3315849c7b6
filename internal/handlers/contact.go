package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	mailer "github.com/zxdhiruu/Restroo/internal/mail"
	"github.com/zxdhiruu/Restroo/internal/store"
)

// ContactHandler serves the public contact form and the admin listing.
type ContactHandler struct {
	store  store.Store
	mailer mailer.Mailer

	// notifyAddress receives a copy of every submission. Empty
	// disables notification.
	notifyAddress string
}

// NewContactHandler creates the contact handler.
func NewContactHandler(st store.Store, m mailer.Mailer, notifyAddress string) *ContactHandler {
	if m == nil {
		m = mailer.LogMailer{}
	}
	return &ContactHandler{store: st, mailer: m, notifyAddress: notifyAddress}
}

// Create handles POST /api/contact.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		Email          string `json:"email"`
		RestaurantName string `json:"restaurantName"`
		RestaurantType string `json:"restaurantType"`
		Message        string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.FirstName == "" || req.LastName == "" || req.Message == "" {
		writeMessage(w, http.StatusBadRequest, "Name and message are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	rec := &store.ContactRequest{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		RestaurantName: strings.TrimSpace(req.RestaurantName),
		RestaurantType: strings.TrimSpace(req.RestaurantType),
		Message:        req.Message,
		CreatedAt:      time.Now(),
	}
	if err := h.store.CreateContactRequest(r.Context(), rec); err != nil {
		writeServerError(w, err)
		return
	}

	if h.notifyAddress != "" {
		body := "New contact request from " + rec.FirstName + " " + rec.LastName +
			" <" + rec.Email + ">\n" +
			"Restaurant: " + rec.RestaurantName + " (" + rec.RestaurantType + ")\n\n" +
			rec.Message + "\n"
		// Notification failure must not fail the submission.
		if err := h.mailer.Send(h.notifyAddress, "New contact request", body); err != nil {
			logMailFailure(err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Thanks for reaching out, we'll be in touch soon",
		"id":      rec.ID,
	})
}

// List handles GET /api/contact-requests. Requires the auth middleware.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.store.ListContactRequests(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	if reqs == nil {
		reqs = []*store.ContactRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contactRequests": reqs})
}
