package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// ProjectView is a project as seen by the caller
type ProjectView struct {
	Project     *model.Project
	Access      model.Access
	Permissions model.RiskPermissions
}

func newProjectView(p *model.Project, access model.Access) *ProjectView {
	return &ProjectView{
		Project:     p,
		Access:      access,
		Permissions: access.RiskPermissions(),
	}
}

// ProjectInput holds the editable project metadata
type ProjectInput struct {
	Name        string
	Description string
	Team        []model.TeamMember
}

type ProjectUseCase struct {
	repo interfaces.Repository
}

func NewProjectUseCase(repo interfaces.Repository) *ProjectUseCase {
	return &ProjectUseCase{repo: repo}
}

func normalizeTeam(team []model.TeamMember) []model.TeamMember {
	result := make([]model.TeamMember, 0, len(team))
	for _, m := range team {
		result = append(result, model.TeamMember{
			Email: model.NormalizeEmail(m.Email),
			Role:  types.TeamRole(strings.ToLower(strings.TrimSpace(m.Role.String()))),
		})
	}
	return result
}

// Create stores a new project owned by the caller
func (uc *ProjectUseCase) Create(ctx context.Context, input ProjectInput) (*ProjectView, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		OwnerID:     a.ID,
		OwnerEmail:  a.Email,
		Team:        normalizeTeam(input.Team),
	}
	if err := project.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid project")
	}

	created, err := uc.repo.Project().Create(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create project")
	}

	logging.From(ctx).Info("project created", "project_id", created.ID, "owner_id", a.ID)
	return newProjectView(created, model.AccessOf(created, a.ID, a.Email)), nil
}

// Get returns a project visible to the caller
func (uc *ProjectUseCase) Get(ctx context.Context, id types.ProjectID) (*ProjectView, error) {
	p, _, access, err := loadProject(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}
	return newProjectView(p, access), nil
}

// List returns projects owned by or shared with the caller, most recently
// updated first
func (uc *ProjectUseCase) List(ctx context.Context) ([]*ProjectView, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := uc.repo.Project().ListByUser(ctx, a.ID, a.Email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects", goerr.V(UserIDKey, a.ID))
	}

	views := make([]*ProjectView, 0, len(projects))
	for _, p := range projects {
		access := model.AccessOf(p, a.ID, a.Email)
		if !access.CanRead() {
			continue
		}
		views = append(views, newProjectView(p, access))
	}
	return views, nil
}

// Update replaces name and description. The team is left untouched; use
// UpdateTeam to change it.
func (uc *ProjectUseCase) Update(ctx context.Context, id types.ProjectID, input ProjectInput) (*ProjectView, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)

	updated, access, err := mutateProject(ctx, uc.repo, id, model.Access.CanEditProject, func(p *model.Project) error {
		p.Name = name
		p.Description = description
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid project")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newProjectView(updated, access), nil
}

// UpdateTeam replaces the team member list
func (uc *ProjectUseCase) UpdateTeam(ctx context.Context, id types.ProjectID, team []model.TeamMember) (*ProjectView, error) {
	team = normalizeTeam(team)
	if err := model.ValidateTeam(team); err != nil {
		return nil, goerr.Wrap(err, "invalid team", goerr.V(ProjectIDKey, id))
	}

	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	updated, _, err := mutateProject(ctx, uc.repo, id, model.Access.CanEditProject, func(p *model.Project) error {
		p.Team = team
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("project team updated", "project_id", id, "members", len(team))
	// A manager may have removed or downgraded themselves
	return newProjectView(updated, model.AccessOf(updated, a.ID, a.Email)), nil
}

// Delete removes a project with all of its risks. Owner only.
func (uc *ProjectUseCase) Delete(ctx context.Context, id types.ProjectID) error {
	_, a, access, err := loadProject(ctx, uc.repo, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteProject() {
		return goerr.Wrap(ErrAccessDenied, "only the owner can delete a project",
			goerr.V(ProjectIDKey, id), goerr.V(UserIDKey, a.ID))
	}

	if err := uc.repo.Project().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V(ProjectIDKey, id))
	}

	logging.From(ctx).Info("project deleted", "project_id", id, "owner_id", a.ID)
	return nil
}
