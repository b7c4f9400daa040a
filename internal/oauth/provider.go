package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/repositories"
)

// Identity is the account data returned by a provider after the code exchange.
type Identity struct {
	Provider      repositories.Provider
	ProviderID    string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	DisplayName   string
	PictureURL    string
	AccessToken   string
	RefreshToken  string
	Expiry        time.Time
}

// Provider drives one OAuth2 authorization-code flow.
type Provider interface {
	Name() repositories.Provider
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Providers holds the configured providers; a nil entry means disabled.
type Providers struct {
	Google   *GoogleProvider
	LinkedIn *LinkedInProvider
}

func NewProviders(cfg *config.Config) *Providers {
	p := &Providers{}
	if cfg.OAuth.Google.Enabled() {
		p.Google = NewGoogleProvider(cfg.OAuth.Google)
	}
	if cfg.OAuth.LinkedIn.Enabled() {
		p.LinkedIn = NewLinkedInProvider(cfg.OAuth.LinkedIn)
	}
	return p
}

// Get returns the provider by name, or false when it is not configured.
func (p *Providers) Get(name repositories.Provider) (Provider, bool) {
	switch name {
	case repositories.ProviderGoogle:
		if p.Google != nil {
			return p.Google, true
		}
	case repositories.ProviderLinkedIn:
		if p.LinkedIn != nil {
			return p.LinkedIn, true
		}
	}
	return nil, false
}

// NewState returns a random value for the state parameter.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func identityFromToken(tok *oauth2.Token) Identity {
	return Identity{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

// splitName is used when a provider returns only a display name.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
