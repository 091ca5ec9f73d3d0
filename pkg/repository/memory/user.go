package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.UserID]*model.UserProfile
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.UserID]*model.UserProfile),
	}
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	return model.CopyUserProfile(u), nil
}

func (r *userRepository) Put(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	if profile.ID == "" {
		return nil, goerr.New("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := model.CopyUserProfile(profile)
	now := time.Now().UTC()
	if existing, ok := r.users[profile.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.users[stored.ID] = stored
	return model.CopyUserProfile(stored), nil
}
