package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

const (
	DefaultGenerateCount = 3
	MaxGenerateCount     = 10
	maxGuidanceLength    = 2000
)

// GenerateInput controls a generation batch
type GenerateInput struct {
	// Count is the number of risks to generate. Zero means DefaultGenerateCount.
	Count int
	// Guidance is optional free text steering the suggestions
	Guidance string
	// Save appends the generated risks to the project in one write
	Save bool
}

// GenerateResult is the outcome of a batch
type GenerateResult struct {
	Risks       []*model.Risk
	Saved       bool
	Permissions model.RiskPermissions
}

type GenerateUseCase struct {
	repo     interfaces.Repository
	ai       *aiResolver
	notifier Notifier
}

func NewGenerateUseCase(repo interfaces.Repository, ai *aiResolver, notifier Notifier) *GenerateUseCase {
	return &GenerateUseCase{repo: repo, ai: ai, notifier: notifier}
}

// Generate runs risk, mitigation and solution generation for each requested
// risk in order. Any failure aborts the batch and nothing is stored.
func (uc *GenerateUseCase) Generate(ctx context.Context, projectID types.ProjectID, input GenerateInput) (*GenerateResult, error) {
	count := input.Count
	if count == 0 {
		count = DefaultGenerateCount
	}
	if count < 1 || count > MaxGenerateCount {
		return nil, goerr.Wrap(ErrInvalidInput, "count out of range", goerr.V("count", input.Count), goerr.V("max", MaxGenerateCount))
	}
	guidance := strings.TrimSpace(input.Guidance)
	if len(guidance) > maxGuidanceLength {
		return nil, goerr.Wrap(ErrInvalidInput, "guidance is too long", goerr.V("length", len(guidance)))
	}

	p, a, access, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanContribute() {
		return nil, goerr.Wrap(ErrAccessDenied, "insufficient role to generate risks",
			goerr.V(ProjectIDKey, projectID), goerr.V(UserIDKey, a.ID), goerr.V("role", access.Role))
	}

	gen, err := uc.ai.generatorFor(ctx, a)
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	known := make([]string, 0, len(p.Risks)+count)
	for _, r := range p.Risks {
		known = append(known, r.Title)
	}

	risks := make([]*model.Risk, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "generation cancelled", goerr.V("completed", i))
		}

		risk, err := gen.GenerateRisk(ctx, p, known, guidance)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate risk", goerr.V("index", i))
		}

		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "generation cancelled", goerr.V("completed", i))
		}
		mitigation, err := gen.GenerateMitigation(ctx, p, risk)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate mitigation", goerr.V("index", i), goerr.V("title", risk.Title))
		}
		risk.Mitigation = mitigation

		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "generation cancelled", goerr.V("completed", i))
		}
		solutions, err := gen.GenerateSolutions(ctx, p, risk)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to generate solutions", goerr.V("index", i), goerr.V("title", risk.Title))
		}
		risk.Solutions = solutions

		now := time.Now().UTC()
		risk.ID = types.NewRiskID()
		risk.ProjectID = projectID
		risk.Status = types.RiskStatusOpen
		risk.CreatedAt = now
		risk.UpdatedAt = now
		risks = append(risks, risk)
		known = append(known, risk.Title)

		logger.Debug("risk generated", "project_id", projectID, "index", i, "title", risk.Title)
	}

	result := &GenerateResult{Risks: risks, Permissions: access.RiskPermissions()}
	if !input.Save {
		return result, nil
	}

	updated, _, err := mutateProject(ctx, uc.repo, projectID, model.Access.CanContribute, func(p *model.Project) error {
		for _, r := range risks {
			p.Risks = append(p.Risks, model.CopyRisk(r))
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save generated risks", goerr.V(ProjectIDKey, projectID))
	}

	logger.Info("generated risks saved", "project_id", projectID, "count", len(risks))
	result.Saved = true

	var critical []*model.Risk
	for _, r := range risks {
		if escalated(nil, r) {
			critical = append(critical, r)
		}
	}
	notifyAsync(ctx, uc.notifier, updated, critical...)
	return result, nil
}
