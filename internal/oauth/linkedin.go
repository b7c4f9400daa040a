package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/pkg/apperrors"
)

const linkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"

// LinkedInProvider signs users in with "Sign In with LinkedIn using OpenID Connect".
type LinkedInProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

func NewLinkedInProvider(client config.OAuthClient) *LinkedInProvider {
	return &LinkedInProvider{
		cfg: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  client.RedirectURL,
			Endpoint:     linkedin.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: linkedInUserInfoURL,
	}
}

func (p *LinkedInProvider) Name() repositories.Provider { return repositories.ProviderLinkedIn }

func (p *LinkedInProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

type linkedInUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (p *LinkedInProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.ErrExternalService(fmt.Errorf("linkedin code exchange: %w", err), apperrors.ServiceOAuth)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, apperrors.ErrExternalService(fmt.Errorf("linkedin userinfo: %w", err), apperrors.ServiceOAuth)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.ErrExternalService(
			fmt.Errorf("linkedin userinfo: status %d: %s", resp.StatusCode, body), apperrors.ServiceOAuth)
	}

	var info linkedInUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.ErrExternalService(fmt.Errorf("decode linkedin userinfo: %w", err), apperrors.ServiceOAuth)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, apperrors.NewBadRequestError("LinkedIn account has no email address")
	}

	id := identityFromToken(tok)
	id.Provider = repositories.ProviderLinkedIn
	id.ProviderID = info.Sub
	id.Email = info.Email
	id.EmailVerified = info.EmailVerified
	id.FirstName = info.GivenName
	id.LastName = info.FamilyName
	id.DisplayName = info.Name
	id.PictureURL = info.Picture
	if id.FirstName == "" {
		id.FirstName, id.LastName = splitName(info.Name)
	}
	return &id, nil
}
