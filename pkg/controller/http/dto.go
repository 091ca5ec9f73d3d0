package http

import (
	"strings"
	"time"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

// Responses

type teamMemberJSON struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type accessJSON struct {
	Owner            bool   `json:"owner"`
	Role             string `json:"role,omitempty"`
	CanContribute    bool   `json:"canContribute"`
	CanManageRisks   bool   `json:"canManageRisks"`
	CanEditProject   bool   `json:"canEditProject"`
	CanDeleteProject bool   `json:"canDeleteProject"`
}

type projectJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	OwnerID     string           `json:"ownerId"`
	OwnerEmail  string           `json:"ownerEmail,omitempty"`
	Team        []teamMemberJSON `json:"team"`
	RiskCount   int              `json:"riskCount"`
	Access      accessJSON       `json:"access"`
	Risks       []riskJSON       `json:"risks,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type responsibleRoleJSON struct {
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
}

type timelinePhaseJSON struct {
	Phase      string   `json:"phase"`
	Duration   string   `json:"duration"`
	Activities []string `json:"activities"`
}

type costItemJSON struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

type mitigationJSON struct {
	Overview         string                `json:"overview"`
	ResponsibleRoles []responsibleRoleJSON `json:"responsibleRoles"`
	Timeline         []timelinePhaseJSON   `json:"timeline"`
	Resources        []string              `json:"resources"`
	SuccessMetrics   []string              `json:"successMetrics"`
	Costs            []costItemJSON        `json:"costs"`
	Challenges       []string              `json:"challenges"`
}

type solutionJSON struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Steps         []string `json:"steps"`
	EstimatedCost string   `json:"estimatedCost"`
	Timeline      string   `json:"timeline"`
	Effectiveness string   `json:"effectiveness"`
}

type riskJSON struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"projectId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Probability     int             `json:"probability"`
	Impact          int             `json:"impact"`
	Score           int             `json:"score"`
	Priority        string          `json:"priority"`
	Status          string          `json:"status"`
	Assignee        string          `json:"assignee"`
	Tags            []string        `json:"tags"`
	Mitigation      *mitigationJSON `json:"mitigation"`
	Solutions       []solutionJSON  `json:"solutions"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	CanEdit         bool            `json:"canEdit"`
	CanDelete       bool            `json:"canDelete"`
	CanChangeStatus bool            `json:"canChangeStatus"`
}

type aiConfigJSON struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	KeyHint  string `json:"keyHint"`
}

type profileJSON struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	DisplayName  string        `json:"displayName"`
	Organization string        `json:"organization"`
	JobTitle     string        `json:"jobTitle"`
	AI           *aiConfigJSON `json:"ai"`
}

type providerJSON struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	DefaultModel string   `json:"defaultModel"`
	Models       []string `json:"models"`
}

type providersJSON struct {
	Providers     []providerJSON `json:"providers"`
	ServerDefault bool           `json:"serverDefault"`
	Current       *aiConfigJSON  `json:"current"`
}

type userMeResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type matrixPointJSON struct {
	RiskID      string  `json:"riskId"`
	Title       string  `json:"title"`
	Probability int     `json:"probability"`
	Impact      int     `json:"impact"`
	Priority    string  `json:"priority"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Fallback    bool    `json:"fallback"`
}

type matrixCellJSON struct {
	Probability int    `json:"probability"`
	Impact      int    `json:"impact"`
	Priority    string `json:"priority"`
	Count       int    `json:"count"`
}

type matrixJSON struct {
	CellSize    float64           `json:"cellSize"`
	PointRadius float64           `json:"pointRadius"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Points      []matrixPointJSON `json:"points"`
	Cells       []matrixCellJSON  `json:"cells"`
}

func toAccessJSON(a model.Access) accessJSON {
	return accessJSON{
		Owner:            a.Owner,
		Role:             a.Role.String(),
		CanContribute:    a.CanContribute(),
		CanManageRisks:   a.CanManageRisks(),
		CanEditProject:   a.CanEditProject(),
		CanDeleteProject: a.CanDeleteProject(),
	}
}

func toProjectJSON(v *usecase.ProjectView, withRisks bool) projectJSON {
	p := v.Project
	team := make([]teamMemberJSON, len(p.Team))
	for i, m := range p.Team {
		team[i] = teamMemberJSON{Email: m.Email, Role: m.Role.String()}
	}

	resp := projectJSON{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		OwnerEmail:  p.OwnerEmail,
		Team:        team,
		RiskCount:   len(p.Risks),
		Access:      toAccessJSON(v.Access),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if withRisks {
		resp.Risks = make([]riskJSON, len(p.Risks))
		for i, r := range p.Risks {
			resp.Risks[i] = toRiskJSON(r, v.Permissions)
		}
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toMitigationJSON(m *model.MitigationStrategy) *mitigationJSON {
	if m == nil {
		return nil
	}
	resp := &mitigationJSON{
		Overview:         m.Overview,
		ResponsibleRoles: make([]responsibleRoleJSON, len(m.ResponsibleRoles)),
		Timeline:         make([]timelinePhaseJSON, len(m.Timeline)),
		Resources:        nonNil(m.Resources),
		SuccessMetrics:   nonNil(m.SuccessMetrics),
		Costs:            make([]costItemJSON, len(m.Costs)),
		Challenges:       nonNil(m.Challenges),
	}
	for i, r := range m.ResponsibleRoles {
		resp.ResponsibleRoles[i] = responsibleRoleJSON{Role: r.Role, Responsibilities: nonNil(r.Responsibilities)}
	}
	for i, p := range m.Timeline {
		resp.Timeline[i] = timelinePhaseJSON{Phase: p.Phase, Duration: p.Duration, Activities: nonNil(p.Activities)}
	}
	for i, c := range m.Costs {
		resp.Costs[i] = costItemJSON{Item: c.Item, Amount: c.Amount}
	}
	return resp
}

func toRiskJSON(r *model.Risk, perms model.RiskPermissions) riskJSON {
	solutions := make([]solutionJSON, len(r.Solutions))
	for i, s := range r.Solutions {
		solutions[i] = solutionJSON{
			Title:         s.Title,
			Description:   s.Description,
			Steps:         nonNil(s.Steps),
			EstimatedCost: s.EstimatedCost,
			Timeline:      s.Timeline,
			Effectiveness: s.Effectiveness,
		}
	}

	return riskJSON{
		ID:              r.ID.String(),
		ProjectID:       r.ProjectID.String(),
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category.String(),
		Probability:     r.Probability.Int(),
		Impact:          r.Impact.Int(),
		Score:           r.Score(),
		Priority:        r.Priority().String(),
		Status:          r.Status.String(),
		Assignee:        r.Assignee,
		Tags:            nonNil(r.Tags),
		Mitigation:      toMitigationJSON(r.Mitigation),
		Solutions:       solutions,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CanEdit:         perms.CanEdit,
		CanDelete:       perms.CanDelete,
		CanChangeStatus: perms.CanChangeStatus,
	}
}

func toRiskViewJSON(v *usecase.RiskView) riskJSON {
	return toRiskJSON(v.Risk, v.Permissions)
}

func toAIConfigJSON(c *model.AIConfig) *aiConfigJSON {
	if c == nil {
		return nil
	}
	return &aiConfigJSON{
		Provider: c.Provider.String(),
		Model:    c.Model,
		KeyHint:  c.KeyHint,
	}
}

func toProfileJSON(p *model.UserProfile) profileJSON {
	return profileJSON{
		ID:           p.ID.String(),
		Email:        p.Email,
		DisplayName:  p.DisplayName,
		Organization: p.Organization,
		JobTitle:     p.JobTitle,
		AI:           toAIConfigJSON(p.AI),
	}
}

func toProvidersJSON(list *usecase.ProviderList) providersJSON {
	providers := make([]providerJSON, len(list.Providers))
	for i, p := range list.Providers {
		providers[i] = providerJSON{
			Name:         p.Name.String(),
			Label:        p.Label,
			DefaultModel: p.DefaultModel,
			Models:       nonNil(p.Models),
		}
	}
	return providersJSON{
		Providers:     providers,
		ServerDefault: list.ServerDefault,
		Current:       toAIConfigJSON(list.Current),
	}
}

func toMatrixJSON(l *matrix.Layout) matrixJSON {
	resp := matrixJSON{
		CellSize:    l.CellSize,
		PointRadius: l.PointRadius,
		Width:       l.Width,
		Height:      l.Height,
		Points:      make([]matrixPointJSON, len(l.Points)),
		Cells:       make([]matrixCellJSON, len(l.Cells)),
	}
	for i, p := range l.Points {
		resp.Points[i] = matrixPointJSON{
			RiskID:      p.RiskID.String(),
			Title:       p.Title,
			Probability: p.Probability.Int(),
			Impact:      p.Impact.Int(),
			Priority:    p.Priority.String(),
			X:           p.X,
			Y:           p.Y,
			Fallback:    p.Fallback,
		}
	}
	for i, c := range l.Cells {
		resp.Cells[i] = matrixCellJSON{
			Probability: c.Probability.Int(),
			Impact:      c.Impact.Int(),
			Priority:    c.Priority.String(),
			Count:       c.Count,
		}
	}
	return resp
}

// Requests

type sessionRequest struct {
	IDToken string `json:"idToken"`
}

type projectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Team        []teamMemberJSON `json:"team"`
}

type teamRequest struct {
	Team []teamMemberJSON `json:"team"`
}

func toTeam(members []teamMemberJSON) []model.TeamMember {
	team := make([]model.TeamMember, len(members))
	for i, m := range members {
		team[i] = model.TeamMember{Email: m.Email, Role: types.TeamRole(m.Role)}
	}
	return team
}

type riskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Probability int      `json:"probability"`
	Impact      int      `json:"impact"`
	Status      string   `json:"status"`
	Assignee    string   `json:"assignee"`
	Tags        []string `json:"tags"`
}

func (req riskRequest) input() usecase.RiskInput {
	return usecase.RiskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    types.Category(strings.ToLower(strings.TrimSpace(req.Category))),
		Probability: types.Score(req.Probability),
		Impact:      types.Score(req.Impact),
		Status:      types.RiskStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Assignee:    req.Assignee,
		Tags:        req.Tags,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type generateRequest struct {
	Count    int    `json:"count"`
	Guidance string `json:"guidance"`
	Save     bool   `json:"save"`
}

type profileRequest struct {
	DisplayName  string `json:"displayName"`
	Organization string `json:"organization"`
	JobTitle     string `json:"jobTitle"`
}

type aiConfigRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey" masq:"secret"`
}
