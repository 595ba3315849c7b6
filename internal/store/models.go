package store

import "time"

// User is an account holder. PasswordHash is nil for accounts created
// through Google sign-in that never set a password; GoogleID is nil for
// password-only accounts. Reset tokens are stored as SHA-256 digests.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	PasswordHash   *string    `json:"-"`
	GoogleID       *string    `json:"-"`
	EmailVerified  bool       `json:"emailVerified"`
	ResetTokenHash *string    `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// HasPassword reports whether the account can authenticate with a
// password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// LoginCode is a short-lived one-time code minted after a successful
// Google sign-in. The browser exchanges it for a session token so the
// session token itself never rides in a redirect URL.
type LoginCode struct {
	CodeHash  string
	UserID    string
	ExpiresAt time.Time
}

// ContactRequest is a message submitted through the public contact
// form.
type ContactRequest struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	RestaurantName string    `json:"restaurantName"`
	RestaurantType string    `json:"restaurantType"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Subscription records a user's chosen plan. The stripe fields stay
// nil until a payment provider is wired in.
type Subscription struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	StripeCustomerID     *string    `json:"stripeCustomerId"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
	Plan                 string     `json:"plan"`
	Status               string     `json:"status"`
	CurrentPeriodStart   *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionPastDue  = "past_due"
)
