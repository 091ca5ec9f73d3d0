package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
)

func ctxAs(sub, email string) context.Context {
	return auth.ContextWithToken(context.Background(), auth.NewToken(sub, email, sub))
}

func ownerCtx() context.Context   { return ctxAs("owner", "owner@example.com") }
func managerCtx() context.Context { return ctxAs("manager", "manager@example.com") }
func memberCtx() context.Context  { return ctxAs("member", "member@example.com") }
func viewerCtx() context.Context  { return ctxAs("viewer", "viewer@example.com") }
func outsideCtx() context.Context { return ctxAs("outsider", "outsider@example.com") }

func testTeam() []model.TeamMember {
	return []model.TeamMember{
		{Email: "Manager@Example.com", Role: types.TeamRoleManager},
		{Email: "member@example.com", Role: types.TeamRoleMember},
		{Email: "viewer@example.com", Role: types.TeamRoleViewer},
	}
}

// fakeGenerator returns canned content and can fail at a given step
type fakeGenerator struct {
	mu     sync.Mutex
	calls  []string
	failOn string
	known  [][]string
	score  types.Score
	n      int
}

func (g *fakeGenerator) record(step string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, step)
	if g.failOn == step {
		return goerr.Wrap(llm.ErrInvalidResponse, "fake failure", goerr.V("step", step))
	}
	return nil
}

func (g *fakeGenerator) GenerateRisk(ctx context.Context, p *model.Project, known []string, guidance string) (*model.Risk, error) {
	if err := g.record("risk"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.n++
	n := g.n
	g.known = append(g.known, append([]string(nil), known...))
	score := g.score
	g.mu.Unlock()
	if score == 0 {
		score = 5
	}

	return &model.Risk{
		Title:       "Generated risk " + string(rune('A'+n-1)),
		Description: "generated for " + p.Name,
		Category:    types.CategoryTechnical,
		Probability: score,
		Impact:      score,
	}, nil
}

func (g *fakeGenerator) GenerateMitigation(ctx context.Context, p *model.Project, r *model.Risk) (*model.MitigationStrategy, error) {
	if err := g.record("mitigation"); err != nil {
		return nil, err
	}
	return &model.MitigationStrategy{Overview: "mitigate " + r.Title}, nil
}

func (g *fakeGenerator) GenerateSolutions(ctx context.Context, p *model.Project, r *model.Risk) ([]model.Solution, error) {
	if err := g.record("solutions"); err != nil {
		return nil, err
	}
	return []model.Solution{{Title: "fix " + r.Title, Steps: []string{"step 1"}}}, nil
}

func (g *fakeGenerator) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// generatorSource hands out gen and records the selection it was asked for
type generatorSource struct {
	mu   sync.Mutex
	gen  llm.Generator
	sels []*llm.Selection
}

func (s *generatorSource) source(ctx context.Context, sel *llm.Selection) (llm.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sels = append(s.sels, sel)
	return s.gen, nil
}

func (s *generatorSource) last() *llm.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sels) == 0 {
		return nil
	}
	return s.sels[len(s.sels)-1]
}

// fakeNotifier records alerted risk titles
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *fakeNotifier) NotifyCriticalRisk(ctx context.Context, p *model.Project, r *model.Risk) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, r.Title)
	return nil
}

func (n *fakeNotifier) Titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles...)
}
