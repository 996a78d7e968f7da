package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrMissingSecret  = errors.New("signing secret is not configured")
	ErrWrongTokenType = errors.New("wrong token type")
)

const (
	issuer = "shop-kita"

	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims represents the bearer token claims
type Claims struct {
	AccountID uuid.UUID `json:"accountId"`
	Role      string    `json:"role"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service signs and verifies access and refresh tokens. The two token kinds
// use independent secrets so a leaked access secret never validates refresh
// tokens.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

// NewService creates a new JWT service. Missing secrets are a deployment
// defect: the constructor fails and the process must not start.
func NewService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) (*Service, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// SignAccess signs a short-lived access token
func (s *Service) SignAccess(accountID uuid.UUID, role string) (string, error) {
	return s.sign(accountID, role, typeAccess, s.accessSecret, s.accessExpiry)
}

// SignRefresh signs a long-lived refresh token
func (s *Service) SignRefresh(accountID uuid.UUID, role string) (string, error) {
	return s.sign(accountID, role, typeRefresh, s.refreshSecret, s.refreshExpiry)
}

// SignPair signs a matching access+refresh pair
func (s *Service) SignPair(accountID uuid.UUID, role string) (*TokenPair, error) {
	access, err := s.SignAccess(accountID, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.SignRefresh(accountID, role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ParseAccess validates an access token and returns its claims
func (s *Service) ParseAccess(tokenString string) (*Claims, error) {
	return s.parse(tokenString, typeAccess, s.accessSecret)
}

// ParseRefresh validates a refresh token and returns its claims
func (s *Service) ParseRefresh(tokenString string) (*Claims, error) {
	return s.parse(tokenString, typeRefresh, s.refreshSecret)
}

// RefreshExpiry returns the configured refresh TTL. Persisted refresh token
// rows track this value.
func (s *Service) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

func (s *Service) sign(accountID uuid.UUID, role, tokenType string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signJWTToken(token, secret)
}

func (s *Service) parse(tokenString, wantType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}
