package data

import (
	"context"
	"fmt"
	"time"

	"ecoscore/internal/biz"
	"ecoscore/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	sessionKey     = "session:%s"
	sessionUserKey = "session:user:%s"

	defaultSessionTTL = 30 * 24 * time.Hour
)

type sessionRepo struct {
	store *CacheStore
	ttl   time.Duration
	log   *log.Helper
}

// NewSessionRepo creates the Redis-backed session index. Sessions use a
// sliding expiry; the per-user token list shares the same lifetime.
func NewSessionRepo(store *CacheStore, c *conf.Data, logger log.Logger) biz.SessionRepo {
	ttl := defaultSessionTTL
	if c != nil && c.Cache != nil && c.Cache.SessionTTLSeconds > 0 {
		ttl = time.Duration(c.Cache.SessionTTLSeconds) * time.Second
	}
	return &sessionRepo{
		store: store,
		ttl:   ttl,
		log:   log.NewHelper(logger),
	}
}

func (r *sessionRepo) Save(ctx context.Context, s *biz.Session) error {
	if s == nil || s.Token == "" || s.UserID == "" {
		return fmt.Errorf("session requires a token and user id")
	}
	s.ExpiresAt = time.Now().Add(r.ttl)
	r.store.Set(ctx, fmt.Sprintf(sessionKey, s.Token), s, r.ttl)

	tokens := r.userTokens(ctx, s.UserID)
	if !contains(tokens, s.Token) {
		tokens = append(tokens, s.Token)
	}
	r.store.Set(ctx, fmt.Sprintf(sessionUserKey, s.UserID), tokens, r.ttl)
	return nil
}

// Get returns the session for token and slides its expiry forward.
func (r *sessionRepo) Get(ctx context.Context, token string) (*biz.Session, error) {
	var s biz.Session
	key := fmt.Sprintf(sessionKey, token)
	if !r.store.Get(ctx, key, &s) {
		return nil, nil
	}
	now := time.Now()
	if !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) {
		// Redis should have expired it already; treat it as gone either way.
		if err := r.store.Delete(ctx, key); err != nil {
			r.log.Warnf("Get: dropping expired session %s: %v", token, err)
		}
		return nil, nil
	}
	s.LastAccess = now
	s.ExpiresAt = now.Add(r.ttl)
	r.store.Set(ctx, key, &s, r.ttl)
	// The token list must not expire before the sessions it indexes.
	r.store.Refresh(ctx, fmt.Sprintf(sessionUserKey, s.UserID), r.ttl)
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	var s biz.Session
	key := fmt.Sprintf(sessionKey, token)
	if r.store.Get(ctx, key, &s) && s.UserID != "" {
		r.removeUserToken(ctx, s.UserID, token)
	}
	return r.store.Delete(ctx, key)
}

func (r *sessionRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	tokens := r.userTokens(ctx, userID)
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, fmt.Sprintf(sessionKey, t))
	}
	keys = append(keys, fmt.Sprintf(sessionUserKey, userID))
	if err := r.store.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(tokens), nil
}

// UpdateUser rewrites the user snapshot in every live session of the
// user, preserving each session's remaining lifetime.
func (r *sessionRepo) UpdateUser(ctx context.Context, userID string, patch biz.UserPatch) (int, error) {
	updated := 0
	for _, token := range r.userTokens(ctx, userID) {
		key := fmt.Sprintf(sessionKey, token)
		var s biz.Session
		if !r.store.Get(ctx, key, &s) {
			continue
		}
		applyPatch(&s.User, patch)

		remaining, err := r.store.TTL(ctx, key)
		if err != nil || remaining <= 0 {
			remaining = r.ttl
		}
		r.store.Set(ctx, key, &s, remaining)
		updated++
	}
	return updated, nil
}

func (r *sessionRepo) userTokens(ctx context.Context, userID string) []string {
	var tokens []string
	r.store.Get(ctx, fmt.Sprintf(sessionUserKey, userID), &tokens)
	return tokens
}

func (r *sessionRepo) removeUserToken(ctx context.Context, userID, token string) {
	tokens := r.userTokens(ctx, userID)
	kept := tokens[:0]
	for _, t := range tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	key := fmt.Sprintf(sessionUserKey, userID)
	if len(kept) == 0 {
		if err := r.store.Delete(ctx, key); err != nil {
			r.log.Warnf("removeUserToken: %v", err)
		}
		return
	}
	r.store.Set(ctx, key, kept, r.ttl)
}

func applyPatch(u *biz.UserSnapshot, patch biz.UserPatch) {
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.Plan != nil {
		u.Plan = *patch.Plan
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
