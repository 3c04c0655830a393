package auth

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"quickbites-api/cache"
	"quickbites-api/models"
)

// Session is a cached snapshot of authorization-relevant user state. It is a
// cache, not a source of truth: absence only means the token path must hit
// the database again.
type Session struct {
	UserID     uint            `json:"user_id"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	IsVerified bool            `json:"is_verified"`
}

func sessionKey(userID uint) string {
	return "session:" + strconv.FormatUint(uint64(userID), 10)
}

// SessionStore keeps sessions and single-use verification/reset tokens in the
// shared cache. All operations are best-effort through cache.Cache.
type SessionStore struct {
	cache           *cache.Cache
	sessionTTL      time.Duration
	verificationTTL time.Duration
	resetTTL        time.Duration
}

func NewSessionStore(c *cache.Cache, sessionTTL, verificationTTL, resetTTL time.Duration) *SessionStore {
	return &SessionStore{
		cache:           c,
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

func (s *SessionStore) CacheSession(ctx context.Context, user *models.User) {
	payload, err := json.Marshal(Session{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	})
	if err != nil {
		return
	}
	s.cache.Set(ctx, sessionKey(user.ID), string(payload), s.sessionTTL)
}

func (s *SessionStore) GetSession(ctx context.Context, userID uint) (*Session, bool) {
	raw, ok := s.cache.Get(ctx, sessionKey(userID))
	if !ok {
		return nil, false
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, false
	}
	return &sess, true
}

func (s *SessionStore) DropSession(ctx context.Context, userID uint) {
	s.cache.Delete(ctx, sessionKey(userID))
}

// StoreVerificationToken maps an opaque token to a user for 24h.
func (s *SessionStore) StoreVerificationToken(ctx context.Context, token string, userID uint) {
	s.cache.Set(ctx, "verification:"+token, strconv.FormatUint(uint64(userID), 10), s.verificationTTL)
}

// StoreResetToken maps an opaque token to a user for 1h.
func (s *SessionStore) StoreResetToken(ctx context.Context, token string, userID uint) {
	s.cache.Set(ctx, "reset:"+token, strconv.FormatUint(uint64(userID), 10), s.resetTTL)
}

// RedeemVerificationToken consumes the token. A second redemption, an expired
// token and a never-issued token are indistinguishable: all miss.
func (s *SessionStore) RedeemVerificationToken(ctx context.Context, token string) (uint, bool) {
	return s.redeem(ctx, "verification:"+token)
}

func (s *SessionStore) RedeemResetToken(ctx context.Context, token string) (uint, bool) {
	return s.redeem(ctx, "reset:"+token)
}

func (s *SessionStore) redeem(ctx context.Context, key string) (uint, bool) {
	raw, ok := s.cache.GetDelete(ctx, key)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
