package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/pkg/apperrors"
)

// GoogleProvider signs users in with Google. The granted token also carries
// read-only Gmail access used by the inbox import.
type GoogleProvider struct {
	cfg *oauth2.Config
}

func NewGoogleProvider(client config.OAuthClient) *GoogleProvider {
	return &GoogleProvider{cfg: &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  client.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"openid",
			googleoauth.UserinfoEmailScope,
			googleoauth.UserinfoProfileScope,
			gmail.GmailReadonlyScope,
		},
	}}
}

func (p *GoogleProvider) Name() repositories.Provider { return repositories.ProviderGoogle }

// Config exposes the oauth2 config so stored tokens can be refreshed.
func (p *GoogleProvider) Config() *oauth2.Config { return p.cfg }

func (p *GoogleProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.ErrExternalService(fmt.Errorf("google code exchange: %w", err), apperrors.ServiceOAuth)
	}

	svc, err := googleoauth.NewService(ctx, option.WithTokenSource(p.cfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, apperrors.ErrExternalService(err, apperrors.ServiceOAuth)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, apperrors.ErrExternalService(fmt.Errorf("google userinfo: %w", err), apperrors.ServiceOAuth)
	}
	if info.Email == "" {
		return nil, apperrors.NewBadRequestError("Google account has no email address")
	}

	id := identityFromToken(tok)
	id.Provider = repositories.ProviderGoogle
	id.ProviderID = info.Id
	id.Email = info.Email
	id.EmailVerified = info.VerifiedEmail != nil && *info.VerifiedEmail
	id.FirstName = info.GivenName
	id.LastName = info.FamilyName
	id.DisplayName = info.Name
	id.PictureURL = info.Picture
	if id.FirstName == "" {
		id.FirstName, id.LastName = splitName(info.Name)
	}
	return &id, nil
}
