package firestore

import (
	"time"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

type projectDocument struct {
	ID           string               `firestore:"id"`
	Name         string               `firestore:"name"`
	Description  string               `firestore:"description"`
	OwnerID      string               `firestore:"owner_id"`
	OwnerEmail   string               `firestore:"owner_email"`
	Team         []teamMemberDocument `firestore:"team"`
	MemberEmails []string             `firestore:"member_emails"`
	Risks        []riskDocument       `firestore:"risks"`
	CreatedAt    time.Time            `firestore:"created_at"`
	UpdatedAt    time.Time            `firestore:"updated_at"`
}

type teamMemberDocument struct {
	Email string `firestore:"email"`
	Role  string `firestore:"role"`
}

type riskDocument struct {
	ID          string              `firestore:"id"`
	Title       string              `firestore:"title"`
	Description string              `firestore:"description"`
	Category    string              `firestore:"category"`
	Probability int                 `firestore:"probability"`
	Impact      int                 `firestore:"impact"`
	Priority    string              `firestore:"priority"` // derived, stored for console readability only
	Status      string              `firestore:"status"`
	Assignee    string              `firestore:"assignee"`
	Tags        []string            `firestore:"tags"`
	Mitigation  *mitigationDocument `firestore:"mitigation,omitempty"`
	Solutions   []solutionDocument  `firestore:"solutions"`
	CreatedAt   time.Time           `firestore:"created_at"`
	UpdatedAt   time.Time           `firestore:"updated_at"`
}

type mitigationDocument struct {
	Overview         string                    `firestore:"overview"`
	ResponsibleRoles []responsibleRoleDocument `firestore:"responsible_roles"`
	Timeline         []timelinePhaseDocument   `firestore:"timeline"`
	Resources        []string                  `firestore:"resources"`
	SuccessMetrics   []string                  `firestore:"success_metrics"`
	Costs            []costItemDocument        `firestore:"costs"`
	Challenges       []string                  `firestore:"challenges"`
}

type responsibleRoleDocument struct {
	Role             string   `firestore:"role"`
	Responsibilities []string `firestore:"responsibilities"`
}

type timelinePhaseDocument struct {
	Phase      string   `firestore:"phase"`
	Duration   string   `firestore:"duration"`
	Activities []string `firestore:"activities"`
}

type costItemDocument struct {
	Item   string `firestore:"item"`
	Amount string `firestore:"amount"`
}

type solutionDocument struct {
	Title         string   `firestore:"title"`
	Description   string   `firestore:"description"`
	Steps         []string `firestore:"steps"`
	EstimatedCost string   `firestore:"estimated_cost"`
	Timeline      string   `firestore:"timeline"`
	Effectiveness string   `firestore:"effectiveness"`
}

type userDocument struct {
	ID           string            `firestore:"id"`
	Email        string            `firestore:"email"`
	DisplayName  string            `firestore:"display_name"`
	Organization string            `firestore:"organization"`
	JobTitle     string            `firestore:"job_title"`
	AI           *aiConfigDocument `firestore:"ai,omitempty"`
	CreatedAt    time.Time         `firestore:"created_at"`
	UpdatedAt    time.Time         `firestore:"updated_at"`
}

type aiConfigDocument struct {
	Provider     string `firestore:"provider"`
	Model        string `firestore:"model"`
	SealedAPIKey string `firestore:"sealed_api_key"`
	KeyHint      string `firestore:"key_hint"`
}

func fromProject(p *model.Project) *projectDocument {
	doc := &projectDocument{
		ID:           p.ID.String(),
		Name:         p.Name,
		Description:  p.Description,
		OwnerID:      p.OwnerID.String(),
		OwnerEmail:   p.OwnerEmail,
		Team:         make([]teamMemberDocument, len(p.Team)),
		MemberEmails: p.MemberEmails(),
		Risks:        make([]riskDocument, len(p.Risks)),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for i, m := range p.Team {
		doc.Team[i] = teamMemberDocument{Email: model.NormalizeEmail(m.Email), Role: m.Role.String()}
	}
	for i, r := range p.Risks {
		doc.Risks[i] = fromRisk(r)
	}
	return doc
}

func (d *projectDocument) toModel() *model.Project {
	p := &model.Project{
		ID:          types.ProjectID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		OwnerID:     types.UserID(d.OwnerID),
		OwnerEmail:  d.OwnerEmail,
		Team:        make([]model.TeamMember, len(d.Team)),
		Risks:       make([]*model.Risk, len(d.Risks)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for i, m := range d.Team {
		p.Team[i] = model.TeamMember{Email: m.Email, Role: types.TeamRole(m.Role)}
	}
	for i, r := range d.Risks {
		risk := r.toModel()
		risk.ProjectID = p.ID
		p.Risks[i] = risk
	}
	return p
}

func fromRisk(r *model.Risk) riskDocument {
	doc := riskDocument{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category.String(),
		Probability: r.Probability.Int(),
		Impact:      r.Impact.Int(),
		Priority:    r.Priority().String(),
		Status:      r.Status.String(),
		Assignee:    r.Assignee,
		Tags:        r.Tags,
		Solutions:   make([]solutionDocument, len(r.Solutions)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if m := r.Mitigation; m != nil {
		md := &mitigationDocument{
			Overview:       m.Overview,
			Resources:      m.Resources,
			SuccessMetrics: m.SuccessMetrics,
			Challenges:     m.Challenges,
		}
		for _, role := range m.ResponsibleRoles {
			md.ResponsibleRoles = append(md.ResponsibleRoles, responsibleRoleDocument{Role: role.Role, Responsibilities: role.Responsibilities})
		}
		for _, phase := range m.Timeline {
			md.Timeline = append(md.Timeline, timelinePhaseDocument{Phase: phase.Phase, Duration: phase.Duration, Activities: phase.Activities})
		}
		for _, cost := range m.Costs {
			md.Costs = append(md.Costs, costItemDocument{Item: cost.Item, Amount: cost.Amount})
		}
		doc.Mitigation = md
	}
	for i, s := range r.Solutions {
		doc.Solutions[i] = solutionDocument{
			Title:         s.Title,
			Description:   s.Description,
			Steps:         s.Steps,
			EstimatedCost: s.EstimatedCost,
			Timeline:      s.Timeline,
			Effectiveness: s.Effectiveness,
		}
	}
	return doc
}

func (d *riskDocument) toModel() *model.Risk {
	r := &model.Risk{
		ID:          types.RiskID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Category:    types.Category(d.Category),
		Probability: types.Score(d.Probability),
		Impact:      types.Score(d.Impact),
		Status:      types.RiskStatus(d.Status),
		Assignee:    d.Assignee,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if md := d.Mitigation; md != nil {
		m := &model.MitigationStrategy{
			Overview:       md.Overview,
			Resources:      md.Resources,
			SuccessMetrics: md.SuccessMetrics,
			Challenges:     md.Challenges,
		}
		for _, role := range md.ResponsibleRoles {
			m.ResponsibleRoles = append(m.ResponsibleRoles, model.ResponsibleRole{Role: role.Role, Responsibilities: role.Responsibilities})
		}
		for _, phase := range md.Timeline {
			m.Timeline = append(m.Timeline, model.TimelinePhase{Phase: phase.Phase, Duration: phase.Duration, Activities: phase.Activities})
		}
		for _, cost := range md.Costs {
			m.Costs = append(m.Costs, model.CostItem{Item: cost.Item, Amount: cost.Amount})
		}
		r.Mitigation = m
	}
	for _, s := range d.Solutions {
		r.Solutions = append(r.Solutions, model.Solution{
			Title:         s.Title,
			Description:   s.Description,
			Steps:         s.Steps,
			EstimatedCost: s.EstimatedCost,
			Timeline:      s.Timeline,
			Effectiveness: s.Effectiveness,
		})
	}
	return r
}

func fromUser(u *model.UserProfile) *userDocument {
	doc := &userDocument{
		ID:           u.ID.String(),
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Organization: u.Organization,
		JobTitle:     u.JobTitle,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.AI != nil {
		doc.AI = &aiConfigDocument{
			Provider:     u.AI.Provider.String(),
			Model:        u.AI.Model,
			SealedAPIKey: u.AI.SealedAPIKey,
			KeyHint:      u.AI.KeyHint,
		}
	}
	return doc
}

func (d *userDocument) toModel() *model.UserProfile {
	u := &model.UserProfile{
		ID:           types.UserID(d.ID),
		Email:        d.Email,
		DisplayName:  d.DisplayName,
		Organization: d.Organization,
		JobTitle:     d.JobTitle,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.AI != nil {
		u.AI = &model.AIConfig{
			Provider:     types.AIProvider(d.AI.Provider),
			Model:        d.AI.Model,
			SealedAPIKey: d.AI.SealedAPIKey,
			KeyHint:      d.AI.KeyHint,
		}
	}
	return u
}
