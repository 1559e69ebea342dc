package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer   = "eduledger-api"
	audience = "eduledger-users"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenKind = errors.New("wrong token kind")
	ErrEmptySecret    = errors.New("jwt secret cannot be empty")
)

// Principal is who a token speaks for. Roles are student, lecturer and admin.
type Principal struct {
	UserID int64
	Role   string
}

type claims struct {
	UserID int64     `json:"user_id"`
	Role   string    `json:"role"`
	Kind   tokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is handed out on register and login.
type TokenPair struct {
	Access  string
	Refresh string
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func sign(p Principal, kind tokenKind, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: p.UserID,
		Role:   p.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(secret))
}

func IssueAccessToken(p Principal, secret string) (string, error) {
	return sign(p, kindAccess, secret, AccessTokenTTL)
}

func IssueTokens(p Principal, secret string) (TokenPair, error) {
	access, err := IssueAccessToken(p, secret)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(p, kindRefresh, secret, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseAccessToken authenticates a request bearer token.
func ParseAccessToken(token, secret string) (Principal, error) {
	return parse(token, kindAccess, secret)
}

// ParseRefreshToken accepts only refresh tokens, so a leaked access token cannot mint
// new ones.
func ParseRefreshToken(token, secret string) (Principal, error) {
	return parse(token, kindRefresh, secret)
}

func parse(token string, want tokenKind, secret string) (Principal, error) {
	if secret == "" {
		return Principal{}, ErrEmptySecret
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{},
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	if c.Kind != want {
		return Principal{}, ErrWrongTokenKind
	}
	return Principal{UserID: c.UserID, Role: c.Role}, nil
}
