package interfaces

import (
	"context"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

type UserRepository interface {
	// Get retrieves a profile by user ID
	Get(ctx context.Context, id types.UserID) (*model.UserProfile, error)

	// Put creates or replaces a profile. CreatedAt is preserved for
	// existing profiles.
	Put(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error)
}
