package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// RiskView is a risk with the controls the caller may use on it
type RiskView struct {
	Risk        *model.Risk
	Permissions model.RiskPermissions
}

// RiskInput holds the editable fields of a risk
type RiskInput struct {
	Title       string
	Description string
	Category    types.Category
	Probability types.Score
	Impact      types.Score
	Status      types.RiskStatus
	Assignee    string
	Tags        []string
}

// RiskFilter narrows a risk listing. Zero values match everything.
type RiskFilter struct {
	Status   types.RiskStatus
	Category types.Category
	Priority types.Priority
}

func (f RiskFilter) match(r *model.Risk) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Priority != "" && r.Priority() != f.Priority {
		return false
	}
	return true
}

func (in RiskInput) apply(r *model.Risk) {
	r.Title = strings.TrimSpace(in.Title)
	r.Description = strings.TrimSpace(in.Description)
	r.Category = in.Category
	if r.Category == "" {
		r.Category = types.CategoryOther
	}
	r.Probability = in.Probability
	r.Impact = in.Impact
	if in.Status != "" {
		r.Status = in.Status
	}
	if r.Status == "" {
		r.Status = types.RiskStatusOpen
	}
	r.Assignee = strings.TrimSpace(in.Assignee)
	r.Tags = model.NormalizeTags(in.Tags)
}

type RiskUseCase struct {
	repo     interfaces.Repository
	ai       *aiResolver
	notifier Notifier
}

func NewRiskUseCase(repo interfaces.Repository, ai *aiResolver, notifier Notifier) *RiskUseCase {
	return &RiskUseCase{
		repo:     repo,
		ai:       ai,
		notifier: notifier,
	}
}

// sortRisks orders by score descending, then creation time
func sortRisks(risks []*model.Risk) {
	sort.SliceStable(risks, func(i, j int) bool {
		if si, sj := risks[i].Score(), risks[j].Score(); si != sj {
			return si > sj
		}
		return risks[i].CreatedAt.Before(risks[j].CreatedAt)
	})
}

// List returns the project's risks matching filter, highest score first
func (uc *RiskUseCase) List(ctx context.Context, projectID types.ProjectID, filter RiskFilter) ([]*RiskView, error) {
	p, _, access, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}

	perms := access.RiskPermissions()
	risks := make([]*model.Risk, 0, len(p.Risks))
	for _, r := range p.Risks {
		if filter.match(r) {
			risks = append(risks, r)
		}
	}
	sortRisks(risks)

	views := make([]*RiskView, len(risks))
	for i, r := range risks {
		views[i] = &RiskView{Risk: r, Permissions: perms}
	}
	return views, nil
}

// Get returns a single risk
func (uc *RiskUseCase) Get(ctx context.Context, projectID types.ProjectID, riskID types.RiskID) (*RiskView, error) {
	p, _, access, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}
	r, _ := p.FindRisk(riskID)
	if r == nil {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk does not exist",
			goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
	}
	return &RiskView{Risk: r, Permissions: access.RiskPermissions()}, nil
}

// Create adds a risk to the project
func (uc *RiskUseCase) Create(ctx context.Context, projectID types.ProjectID, input RiskInput) (*RiskView, error) {
	now := time.Now().UTC()
	risk := &model.Risk{
		ID:        types.NewRiskID(),
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.apply(risk)
	if err := risk.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk", goerr.V(ProjectIDKey, projectID))
	}

	updated, access, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanContribute, func(p *model.Project) error {
		p.Risks = append(p.Risks, model.CopyRisk(risk))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("risk created", "project_id", projectID, "risk_id", risk.ID, "priority", risk.Priority())
	if escalated(nil, risk) {
		notifyAsync(ctx, uc.notifier, updated, risk)
	}
	return &RiskView{Risk: risk, Permissions: access.RiskPermissions()}, nil
}

// Update replaces the editable fields of a risk. Mitigation and solutions are
// kept.
func (uc *RiskUseCase) Update(ctx context.Context, projectID types.ProjectID, riskID types.RiskID, input RiskInput) (*RiskView, error) {
	var before *model.Risk
	updated, access, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanManageRisks, func(p *model.Project) error {
		r, _ := p.FindRisk(riskID)
		if r == nil {
			return goerr.Wrap(ErrRiskNotFound, "risk does not exist",
				goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
		}
		before = model.CopyRisk(r)
		input.apply(r)
		if err := r.Validate(); err != nil {
			return goerr.Wrap(err, "invalid risk", goerr.V(RiskIDKey, riskID))
		}
		r.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	after, _ := updated.FindRisk(riskID)
	if escalated(before, after) {
		notifyAsync(ctx, uc.notifier, updated, after)
	}
	return &RiskView{Risk: after, Permissions: access.RiskPermissions()}, nil
}

// UpdateStatus changes only the status of a risk
func (uc *RiskUseCase) UpdateStatus(ctx context.Context, projectID types.ProjectID, riskID types.RiskID, status types.RiskStatus) (*RiskView, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidStatus, "unknown status", goerr.V(model.FieldValueKey, status))
	}

	updated, access, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanManageRisks, func(p *model.Project) error {
		r, _ := p.FindRisk(riskID)
		if r == nil {
			return goerr.Wrap(ErrRiskNotFound, "risk does not exist",
				goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
		}
		r.Status = status
		r.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	after, _ := updated.FindRisk(riskID)

	logging.From(ctx).Info("risk status changed", "project_id", projectID, "risk_id", riskID, "status", status)
	return &RiskView{Risk: after, Permissions: access.RiskPermissions()}, nil
}

// Delete removes a risk from the project
func (uc *RiskUseCase) Delete(ctx context.Context, projectID types.ProjectID, riskID types.RiskID) error {
	_, _, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanManageRisks, func(p *model.Project) error {
		_, idx := p.FindRisk(riskID)
		if idx < 0 {
			return goerr.Wrap(ErrRiskNotFound, "risk does not exist",
				goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
		}
		p.Risks = append(p.Risks[:idx], p.Risks[idx+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	logging.From(ctx).Info("risk deleted", "project_id", projectID, "risk_id", riskID)
	return nil
}

// loadManagedRisk checks the caller may change the risk before an LLM call
func (uc *RiskUseCase) loadManagedRisk(ctx context.Context, projectID types.ProjectID, riskID types.RiskID) (*model.Project, *model.Risk, *actor, error) {
	p, a, access, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !access.CanManageRisks() {
		return nil, nil, nil, goerr.Wrap(ErrAccessDenied, "insufficient role",
			goerr.V(ProjectIDKey, projectID), goerr.V(UserIDKey, a.ID), goerr.V("role", access.Role))
	}
	r, _ := p.FindRisk(riskID)
	if r == nil {
		return nil, nil, nil, goerr.Wrap(ErrRiskNotFound, "risk does not exist",
			goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
	}
	return p, r, a, nil
}

// storeGenerated writes generated content back onto a risk that may have
// changed while the LLM was running
func (uc *RiskUseCase) storeGenerated(ctx context.Context, projectID types.ProjectID, riskID types.RiskID, fn func(r *model.Risk)) (*RiskView, error) {
	updated, access, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanManageRisks, func(p *model.Project) error {
		r, _ := p.FindRisk(riskID)
		if r == nil {
			return goerr.Wrap(ErrRiskNotFound, "risk was deleted during generation",
				goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
		}
		fn(r)
		r.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	after, _ := updated.FindRisk(riskID)
	return &RiskView{Risk: after, Permissions: access.RiskPermissions()}, nil
}

// RegenerateMitigation asks the LLM for a new mitigation strategy and stores
// it on the risk
func (uc *RiskUseCase) RegenerateMitigation(ctx context.Context, projectID types.ProjectID, riskID types.RiskID) (*RiskView, error) {
	p, r, a, err := uc.loadManagedRisk(ctx, projectID, riskID)
	if err != nil {
		return nil, err
	}

	gen, err := uc.ai.generatorFor(ctx, a)
	if err != nil {
		return nil, err
	}

	mitigation, err := gen.GenerateMitigation(ctx, p, r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate mitigation",
			goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
	}

	return uc.storeGenerated(ctx, projectID, riskID, func(r *model.Risk) {
		r.Mitigation = mitigation
	})
}

// RegenerateSolutions asks the LLM for a new solution list and stores it on
// the risk
func (uc *RiskUseCase) RegenerateSolutions(ctx context.Context, projectID types.ProjectID, riskID types.RiskID) (*RiskView, error) {
	p, r, a, err := uc.loadManagedRisk(ctx, projectID, riskID)
	if err != nil {
		return nil, err
	}

	gen, err := uc.ai.generatorFor(ctx, a)
	if err != nil {
		return nil, err
	}

	solutions, err := gen.GenerateSolutions(ctx, p, r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate solutions",
			goerr.V(ProjectIDKey, projectID), goerr.V(RiskIDKey, riskID))
	}

	return uc.storeGenerated(ctx, projectID, riskID, func(r *model.Risk) {
		r.Solutions = solutions
	})
}
