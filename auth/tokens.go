package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"quickbites-api/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or registration hands back: a
// short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenManager signs and verifies JWTs. Access and refresh tokens use
// independent secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *TokenManager) sign(userID uint, email string, role models.UserRole, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// IssuePair creates a fresh access/refresh token pair for the user.
func (m *TokenManager) IssuePair(userID uint, email string, role models.UserRole) (TokenPair, error) {
	access, err := m.sign(userID, email, role, m.accessSecret, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(userID, email, role, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its claims. Expiry is a
// hard cutoff with no grace period.
func (m *TokenManager) VerifyAccess(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.accessSecret)
}

// VerifyRefresh validates a refresh token.
func (m *TokenManager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return m.verify(tokenStr, m.refreshSecret)
}

// RotateFromRefresh mints a new access token from a valid refresh token. The
// refresh token itself is not rotated: it lives for its full TTL. A stolen
// refresh token therefore stays valid until expiry; there is no revocation
// list.
func (m *TokenManager) RotateFromRefresh(refreshToken string) (string, *Claims, error) {
	claims, err := m.VerifyRefresh(refreshToken)
	if err != nil {
		return "", nil, err
	}
	access, err := m.sign(claims.UserID, claims.Email, claims.Role, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", nil, err
	}
	return access, claims, nil
}

// RefreshTTL exposes the refresh token lifetime for cookie expiry.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// NewOpaqueToken returns a random 256-bit token for email verification and
// password reset links. It carries no claims; the cache maps it to a user.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
