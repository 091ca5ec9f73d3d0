package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// actor is the authenticated caller of a use case
type actor struct {
	ID    types.UserID
	Email string
	Name  string
}

func actorFrom(ctx context.Context) (*actor, error) {
	token := auth.TokenFromContext(ctx)
	if token == nil || token.Sub == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "no token in context")
	}
	return &actor{
		ID:    types.UserID(token.Sub),
		Email: model.NormalizeEmail(token.Email),
		Name:  token.Name,
	}, nil
}

// loadProject fetches a project and the caller's access to it. Projects the
// caller cannot read are reported as not found so their existence is not
// disclosed.
func loadProject(ctx context.Context, repo interfaces.Repository, id types.ProjectID) (*model.Project, *actor, model.Access, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, nil, model.Access{}, err
	}
	if err := id.Validate(); err != nil {
		return nil, nil, model.Access{}, goerr.Wrap(ErrProjectNotFound, "malformed project ID", goerr.V(ProjectIDKey, id))
	}

	p, err := repo.Project().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, model.Access{}, goerr.Wrap(ErrProjectNotFound, "project does not exist", goerr.V(ProjectIDKey, id))
		}
		return nil, nil, model.Access{}, goerr.Wrap(err, "failed to get project", goerr.V(ProjectIDKey, id))
	}

	access := model.AccessOf(p, a.ID, a.Email)
	if !access.CanRead() {
		return nil, nil, model.Access{}, goerr.Wrap(ErrProjectNotFound, "project is not visible to user",
			goerr.V(ProjectIDKey, id), goerr.V(UserIDKey, a.ID))
	}
	return p, a, access, nil
}

// mutateProject runs fn inside a repository transaction after re-checking
// access against the stored state
func mutateProject(ctx context.Context, repo interfaces.Repository, id types.ProjectID, check func(model.Access) bool, fn interfaces.ProjectMutator) (*model.Project, model.Access, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, model.Access{}, err
	}

	var access model.Access
	updated, err := repo.Project().Mutate(ctx, id, func(p *model.Project) error {
		access = model.AccessOf(p, a.ID, a.Email)
		if !access.CanRead() {
			return goerr.Wrap(ErrProjectNotFound, "project is not visible to user",
				goerr.V(ProjectIDKey, id), goerr.V(UserIDKey, a.ID))
		}
		if !check(access) {
			return goerr.Wrap(ErrAccessDenied, "insufficient role",
				goerr.V(ProjectIDKey, id), goerr.V(UserIDKey, a.ID), goerr.V("role", access.Role))
		}
		return fn(p)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, model.Access{}, goerr.Wrap(ErrProjectNotFound, "project does not exist", goerr.V(ProjectIDKey, id))
		}
		return nil, model.Access{}, err
	}
	return updated, access, nil
}
