package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
)

// Generator produces risk content for a project
type Generator interface {
	GenerateRisk(ctx context.Context, p *model.Project, known []string, guidance string) (*model.Risk, error)
	GenerateMitigation(ctx context.Context, p *model.Project, r *model.Risk) (*model.MitigationStrategy, error)
	GenerateSolutions(ctx context.Context, p *model.Project, r *model.Risk) ([]model.Solution, error)
}

type generator struct {
	completer Completer
}

// NewGenerator builds a Generator on top of a completer
func NewGenerator(c Completer) Generator {
	return &generator{completer: c}
}

func (g *generator) GenerateRisk(ctx context.Context, p *model.Project, known []string, guidance string) (*model.Risk, error) {
	text, err := g.completer.Complete(ctx, systemPrompt, BuildRiskPrompt(p, known, guidance))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate risk", goerr.V("project_id", p.ID))
	}
	return ParseRisk(text)
}

func (g *generator) GenerateMitigation(ctx context.Context, p *model.Project, r *model.Risk) (*model.MitigationStrategy, error) {
	text, err := g.completer.Complete(ctx, systemPrompt, BuildMitigationPrompt(p, r))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate mitigation", goerr.V("risk_title", r.Title))
	}
	return ParseMitigation(text)
}

func (g *generator) GenerateSolutions(ctx context.Context, p *model.Project, r *model.Risk) ([]model.Solution, error) {
	text, err := g.completer.Complete(ctx, systemPrompt, BuildSolutionsPrompt(p, r))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate solutions", goerr.V("risk_title", r.Title))
	}
	return ParseSolutions(text)
}
