package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
	}
}

func (r *projectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := model.CopyProject(p)
	if created.ID == "" {
		created.ID = types.NewProjectID()
	}
	if _, exists := r.projects[created.ID]; exists {
		return nil, goerr.New("project already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	for _, risk := range created.Risks {
		risk.ProjectID = created.ID
	}

	r.projects[created.ID] = created
	return model.CopyProject(created), nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}
	return model.CopyProject(p), nil
}

func (r *projectRepository) ListByUser(ctx context.Context, userID types.UserID, email string) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = model.NormalizeEmail(email)
	projects := make([]*model.Project, 0)
	for _, p := range r.projects {
		if (userID != "" && p.OwnerID == userID) || containsEmail(p.MemberEmails(), email) {
			projects = append(projects, model.CopyProject(p))
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (r *projectRepository) Mutate(ctx context.Context, id types.ProjectID, fn interfaces.ProjectMutator) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	working := model.CopyProject(existing)
	if err := fn(working); err != nil {
		return nil, err
	}

	working.ID = existing.ID
	working.CreatedAt = existing.CreatedAt
	working.UpdatedAt = time.Now().UTC()
	for _, risk := range working.Risks {
		risk.ProjectID = working.ID
	}

	r.projects[id] = working
	return model.CopyProject(working), nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[id]; !exists {
		return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}
	delete(r.projects, id)
	return nil
}

func containsEmail(emails []string, email string) bool {
	if email == "" {
		return false
	}
	for _, e := range emails {
		if e == email {
			return true
		}
	}
	return false
}
