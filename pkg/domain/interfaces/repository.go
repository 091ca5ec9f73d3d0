package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
)

// Repository defines the interface for data persistence
type Repository interface {
	Project() ProjectRepository
	User() UserRepository

	// Auth methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error
	// DeleteExpiredTokens removes tokens that expired before the given time
	// and returns how many were removed
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int, error)

	Close() error
}
