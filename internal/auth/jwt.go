package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType keeps a refresh token from being accepted as an access token.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenWrongType = errors.New("token has the wrong type")
)

type Claims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenTTLs holds the lifetime of each token type.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

// TokenManager signs and validates HS256 tokens.
type TokenManager struct {
	secret []byte
	ttls   TokenTTLs
	now    func() time.Time
}

func NewTokenManager(secret string, ttls TokenTTLs) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required but was empty")
	}
	return &TokenManager{secret: []byte(secret), ttls: ttls, now: time.Now}, nil
}

func (m *TokenManager) ttl(t TokenType) time.Duration {
	switch t {
	case TokenRefresh:
		return m.ttls.Refresh
	default:
		return m.ttls.Access
	}
}

// Generate signs a token of type t for the user. The returned time is its expiry.
func (m *TokenManager) Generate(userID, email string, t TokenType) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl(t))

	claims := &Claims{
		UserID:    userID,
		Email:     email,
		TokenType: t,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps two tokens issued in the same second distinct
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) GenerateAccessToken(userID, email string) (string, error) {
	token, _, err := m.Generate(userID, email, TokenAccess)
	return token, err
}

// Parse validates the signature, expiry and the expected type.
func (m *TokenManager) Parse(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != expected {
		return nil, ErrTokenWrongType
	}
	return claims, nil
}
