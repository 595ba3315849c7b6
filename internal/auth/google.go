package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/zxdhiruu/Restroo/internal/store"
)

// googleUserInfoURL is Google's OpenID userinfo endpoint.
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig configures the Google sign-in bridge.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides Google's OAuth endpoint. Tests point it at a
	// local fake.
	Endpoint oauth2.Endpoint

	// UserInfoURL overrides the userinfo endpoint. Tests point it at a
	// local fake.
	UserInfoURL string
}

// Google bridges Google OAuth sign-in into local accounts.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	store       store.Store
	httpClient  *http.Client
}

// NewGoogle creates the Google bridge.
func NewGoogle(cfg GoogleConfig, st store.Store) *Google {
	ep := cfg.Endpoint
	if ep.AuthURL == "" {
		ep = google.Endpoint
	}
	infoURL := cfg.UserInfoURL
	if infoURL == "" {
		infoURL = googleUserInfoURL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     ep,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: infoURL,
		store:       st,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthURL builds the consent-screen URL for the given CSRF state.
func (g *Google) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// profile is the subset of Google's userinfo response we use.
type profile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
}

// names returns the profile's first and last name, splitting the
// display name when Google omits the structured fields.
func (p *profile) names() (first, last string) {
	first, last = p.GivenName, p.FamilyName
	if first == "" && p.Name != "" {
		first, last, _ = strings.Cut(p.Name, " ")
	}
	return first, last
}

// LinkDecision says how a Google profile mapped onto local accounts.
type LinkDecision int

const (
	// CreateNew: no account matched; a new one was created.
	CreateNew LinkDecision = iota

	// LinkExisting: an account with the same email existed and the
	// Google ID was attached to it.
	LinkExisting

	// AlreadyLinked: the Google ID was already attached to an account.
	AlreadyLinked

	// AmbiguousConflict: the email's account is bound to a different
	// Google identity. The stored binding is left unchanged and the
	// sign-in proceeds with the existing record.
	AmbiguousConflict
)

// Callback exchanges an authorization code, fetches the Google profile,
// and creates or links a local account. The decision taken is returned
// alongside the user.
func (g *Google) Callback(ctx context.Context, code string) (*store.User, LinkDecision, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}

	p, err := g.fetchProfile(ctx, tok)
	if err != nil {
		return nil, 0, err
	}
	if p.Sub == "" || p.Email == "" {
		return nil, 0, fmt.Errorf("%w: profile missing id or email", ErrProviderExchange)
	}

	return g.resolve(ctx, p)
}

func (g *Google) fetchProfile(ctx context.Context, tok *oauth2.Token) (*profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned %d", ErrProviderExchange, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	var p profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	return &p, nil
}

// resolve maps a Google profile to a local account: look up by email,
// link or create as needed.
func (g *Google) resolve(ctx context.Context, p *profile) (*store.User, LinkDecision, error) {
	email := strings.ToLower(p.Email)

	u, err := g.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.GoogleID != nil {
			if *u.GoogleID != p.Sub {
				log.Printf("auth: google sub mismatch for %s: stored binding kept", u.ID)
				return u, AmbiguousConflict, nil
			}
			return u, AlreadyLinked, nil
		}
		sub := p.Sub
		u.GoogleID = &sub
		if p.EmailVerified {
			u.EmailVerified = true
		}
		if u.FirstName == "" && u.LastName == "" {
			u.FirstName, u.LastName = p.names()
		}
		if err := g.store.UpdateUser(ctx, u); err != nil {
			return nil, 0, fmt.Errorf("auth: linking google account: %w", err)
		}
		return u, LinkExisting, nil

	case errors.Is(err, store.ErrNotFound):
		now := time.Now()
		sub := p.Sub
		first, last := p.names()
		u = &store.User{
			ID:            uuid.NewString(),
			Email:         email,
			FirstName:     first,
			LastName:      last,
			GoogleID:      &sub,
			EmailVerified: p.EmailVerified,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := g.store.CreateUser(ctx, u); err != nil {
			return nil, 0, fmt.Errorf("auth: creating google account: %w", err)
		}
		return u, CreateNew, nil

	default:
		return nil, 0, fmt.Errorf("auth: looking up user: %w", err)
	}
}
