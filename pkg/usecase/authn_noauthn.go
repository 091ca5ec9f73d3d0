package usecase

import (
	"context"

	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// NoAuthnUseCase authenticates every request as one fixed user (for
// development and testing)
type NoAuthnUseCase struct {
	repo  interfaces.Repository
	sub   string
	email string
	name  string
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(repo interfaces.Repository, sub, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo:  repo,
		sub:   sub,
		email: email,
		name:  name,
	}
}

// CreateSession ignores the ID token and returns a token for the fixed user
func (uc *NoAuthnUseCase) CreateSession(ctx context.Context, idToken string) (*auth.Token, error) {
	claims := &IDTokenClaims{Sub: uc.sub, Email: uc.email, Name: uc.name}
	if err := ensureProfile(ctx, uc.repo, claims); err != nil {
		logging.From(ctx).Warn("failed to create user profile", "error", err, "sub", uc.sub)
	}
	return auth.NewToken(uc.sub, uc.email, uc.name), nil
}

// ValidateToken always returns a token for the specified user
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return auth.NewToken(uc.sub, uc.email, uc.name), nil
}

// Logout does nothing in no-auth mode
func (uc *NoAuthnUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
