package auth

import (
	"errors"

	"quickbites-api/models"

	"gorm.io/gorm"
)

var (
	ErrNoToken           = errors.New("no token")
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountInactive   = errors.New("account inactive")
	ErrAccountUnverified = errors.New("account unverified")
	ErrForbidden         = errors.New("forbidden")
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID uint
	Email  string
	Role   models.UserRole
}

// Authenticator resolves bearer tokens to identities. The user record is
// loaded fresh from the database on every call so deactivation or revocation
// takes effect immediately, even against a still-valid token.
type Authenticator struct {
	db     *gorm.DB
	tokens *TokenManager
}

func NewAuthenticator(db *gorm.DB, tokens *TokenManager) *Authenticator {
	return &Authenticator{db: db, tokens: tokens}
}

// Authenticate verifies the access token and checks the user's current
// active/verified flags.
func (a *Authenticator) Authenticate(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrNoToken
	}

	claims, err := a.tokens.VerifyAccess(tokenStr)
	if err != nil {
		return Identity{}, err
	}

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}
	if !user.IsActive {
		return Identity{}, ErrAccountInactive
	}
	if !user.IsVerified {
		return Identity{}, ErrAccountUnverified
	}

	return Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Authorize passes when the identity holds one of the allowed roles.
func Authorize(id Identity, allowed ...models.UserRole) error {
	for _, role := range allowed {
		if id.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// OwnsResource reports whether the identity may act on a resource owned by
// ownerID. Admins may act on anything.
func OwnsResource(id Identity, ownerID uint) bool {
	return id.UserID == ownerID || id.Role == models.RoleAdmin
}
