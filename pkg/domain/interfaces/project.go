package interfaces

import (
	"context"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// ProjectMutator edits a project in place inside Mutate. Returning an error
// discards every change.
type ProjectMutator func(p *model.Project) error

type ProjectRepository interface {
	// Create stores a new project. ID, CreatedAt and UpdatedAt are assigned
	// when empty.
	Create(ctx context.Context, project *model.Project) (*model.Project, error)

	// Get retrieves a project with its embedded risks
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)

	// ListByUser retrieves projects owned by userID or listing email as a
	// team member, most recently updated first
	ListByUser(ctx context.Context, userID types.UserID, email string) ([]*model.Project, error)

	// Mutate applies fn to the current state of the project atomically and
	// stores the result with a new UpdatedAt
	Mutate(ctx context.Context, id types.ProjectID, fn ProjectMutator) (*model.Project, error)

	// Delete deletes a project and its embedded risks
	Delete(ctx context.Context, id types.ProjectID) error
}
