package service

import (
	"context"

	"ecoscore/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// AdminService exposes session lifecycle and cache administration.
type AdminService struct {
	sessions *biz.SessionUsecase
	analyses *biz.AnalysisUsecase
	log      *log.Helper
}

// NewAdminService creates an AdminService.
func NewAdminService(sessions *biz.SessionUsecase, analyses *biz.AnalysisUsecase, logger log.Logger) *AdminService {
	return &AdminService{
		sessions: sessions,
		analyses: analyses,
		log:      log.NewHelper(logger),
	}
}

// Login opens a session for an authenticated user.
func (s *AdminService) Login(ctx context.Context, user biz.UserSnapshot) (*biz.Session, error) {
	return s.sessions.CreateSession(ctx, user)
}

// Logout closes a single session.
func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.InvalidateSession(ctx, token)
}

// LogoutEverywhere closes every session of a user and returns how many
// were evicted.
func (s *AdminService) LogoutEverywhere(ctx context.Context, userID string) (int, error) {
	return s.sessions.InvalidateUserSessions(ctx, userID)
}

// UpdateProfile propagates a profile change into every live session of
// the user.
func (s *AdminService) UpdateProfile(ctx context.Context, userID string, patch biz.UserPatch) (int, error) {
	return s.sessions.UpdateUserInSessions(ctx, userID, patch)
}

// InvalidateAnalysis evicts a cached analysis, e.g. after a product
// reformulation.
func (s *AdminService) InvalidateAnalysis(ctx context.Context, id string) error {
	return s.analyses.Invalidate(ctx, id)
}

// PurgeAnalyses drops the whole analysis cache after a rule-table
// update and returns the number of evicted keys.
func (s *AdminService) PurgeAnalyses(ctx context.Context) (int64, error) {
	s.log.Warn("PurgeAnalyses: dropping every cached analysis")
	return s.analyses.PurgeAll(ctx)
}
