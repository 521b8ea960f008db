package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// UserSnapshot is the denormalized user state carried inside a session
// so request handling does not need a user store round trip.
type UserSnapshot struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Plan        string `json:"plan"`
}

// UserPatch describes a partial update to the snapshot; nil fields are
// left unchanged.
type UserPatch struct {
	Email       *string
	DisplayName *string
	Plan        *string
}

// Session is an authenticated client session.
type Session struct {
	Token      string       `json:"token"`
	UserID     string       `json:"user_id"`
	User       UserSnapshot `json:"user"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
	LastAccess time.Time    `json:"last_access"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

// SessionRepo stores sessions with a sliding expiry and keeps a per-user
// index for bulk operations. Get returns (nil, nil) on a miss.
type SessionRepo interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
	UpdateUser(ctx context.Context, userID string, patch UserPatch) (int, error)
}

// SessionUsecase manages session lifecycle on top of the session index.
type SessionUsecase struct {
	repo SessionRepo
	log  *log.Helper
}

// NewSessionUsecase creates a SessionUsecase.
func NewSessionUsecase(repo SessionRepo, logger log.Logger) *SessionUsecase {
	return &SessionUsecase{repo: repo, log: log.NewHelper(logger)}
}

// CreateSession opens a session for the user and returns it with a fresh
// opaque token.
func (uc *SessionUsecase) CreateSession(ctx context.Context, user UserSnapshot) (*Session, error) {
	if user.ID == "" {
		return nil, fmt.Errorf("session requires a user id")
	}
	now := time.Now()
	s := &Session{
		Token:      uuid.NewString(),
		UserID:     user.ID,
		User:       user,
		IsActive:   true,
		CreatedAt:  now,
		LastAccess: now,
	}
	if err := uc.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Infof("CreateSession: user=%s token=%s", user.ID, s.Token)
	return s, nil
}

// GetSession returns the session for a token, refreshing its sliding
// expiry. Missing or expired sessions return (nil, nil).
func (uc *SessionUsecase) GetSession(ctx context.Context, token string) (*Session, error) {
	return uc.repo.Get(ctx, token)
}

// IsSessionValid reports whether the token maps to an active session.
func (uc *SessionUsecase) IsSessionValid(ctx context.Context, token string) (bool, error) {
	s, err := uc.repo.Get(ctx, token)
	if err != nil {
		return false, err
	}
	return s != nil && s.IsActive, nil
}

// InvalidateSession closes a single session. Invalidating an unknown
// token is not an error.
func (uc *SessionUsecase) InvalidateSession(ctx context.Context, token string) error {
	return uc.repo.Delete(ctx, token)
}

// InvalidateUserSessions closes every session of a user, returning how
// many were evicted.
func (uc *SessionUsecase) InvalidateUserSessions(ctx context.Context, userID string) (int, error) {
	n, err := uc.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	uc.log.Infof("InvalidateUserSessions: user=%s evicted=%d", userID, n)
	return n, nil
}

// UpdateUserInSessions fans a profile change out to every live session
// of the user so stale snapshots do not survive a plan or email change.
func (uc *SessionUsecase) UpdateUserInSessions(ctx context.Context, userID string, patch UserPatch) (int, error) {
	return uc.repo.UpdateUser(ctx, userID, patch)
}
