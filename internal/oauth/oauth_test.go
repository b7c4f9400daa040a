package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"jobtracker_backend/internal/config"
	"jobtracker_backend/internal/repositories"
	"jobtracker_backend/pkg/apperrors"
)

func fakeLinkedIn(t *testing.T, userinfo string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestLinkedIn(srv *httptest.Server) *LinkedInProvider {
	p := NewLinkedInProvider(config.OAuthClient{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://app/cb"})
	p.cfg.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	p.userInfoURL = srv.URL + "/userinfo"
	return p
}

func TestLinkedInExchange(t *testing.T) {
	srv := fakeLinkedIn(t, `{"sub":"li-42","name":"Ann Marie Lee","email":"ann@example.com","email_verified":true}`, http.StatusOK)
	p := newTestLinkedIn(srv)

	id, err := p.Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, repositories.ProviderLinkedIn, id.Provider)
	assert.Equal(t, "li-42", id.ProviderID)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "Ann", id.FirstName)
	assert.Equal(t, "Marie Lee", id.LastName)
	assert.Equal(t, "at-1", id.AccessToken)
}

func TestLinkedInExchange_UserInfoFailure(t *testing.T) {
	srv := fakeLinkedIn(t, `{"message":"denied"}`, http.StatusUnauthorized)
	p := newTestLinkedIn(srv)

	_, err := p.Exchange(context.Background(), "the-code")

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ServiceOAuth, appErr.Domain)
}

func TestGoogleAuthURL(t *testing.T) {
	p := NewGoogleProvider(config.OAuthClient{ClientID: "cid", ClientSecret: "s", RedirectURL: "http://app/cb"})

	u, err := url.Parse(p.AuthURL("st-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Contains(t, q.Get("scope"), "gmail.readonly")
}

func TestProviders_Get(t *testing.T) {
	cfg := &config.Config{}
	cfg.OAuth.Google = config.OAuthClient{ClientID: "a", ClientSecret: "b"}
	p := NewProviders(cfg)

	_, ok := p.Get(repositories.ProviderGoogle)
	assert.True(t, ok)
	_, ok = p.Get(repositories.ProviderLinkedIn)
	assert.False(t, ok)
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
