package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// Project groups risks and the team that may see and change them
type Project struct {
	ID          types.ProjectID
	Name        string
	Description string
	OwnerID     types.UserID
	OwnerEmail  string
	Team        []TeamMember
	Risks       []*Risk
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamMember grants a role in a project to an email address
type TeamMember struct {
	Email string
	Role  types.TeamRole
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the project metadata and team list. Risks are validated
// individually when they are written.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return goerr.Wrap(ErrMissingRequired, "project name is required", goerr.V(FieldNameKey, "name"))
	}
	if len(p.Name) > MaxNameLength {
		return goerr.Wrap(ErrFieldTooLong, "project name is too long", goerr.V(FieldNameKey, "name"))
	}
	if len(p.Description) > MaxDescriptionLength {
		return goerr.Wrap(ErrFieldTooLong, "project description is too long", goerr.V(FieldNameKey, "description"))
	}
	return ValidateTeam(p.Team)
}

// ValidateEmail accepts a bare address such as alice@example.com
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || email == "" || addr.Address != email {
		return goerr.Wrap(ErrInvalidEmail, "malformed email address", goerr.V(EmailKey, email))
	}
	return nil
}

// ValidateTeam checks roles, email format and uniqueness
func ValidateTeam(team []TeamMember) error {
	if len(team) > MaxTeamMembers {
		return goerr.Wrap(ErrFieldTooLong, "too many team members", goerr.V(FieldNameKey, "team"))
	}
	seen := make(map[string]struct{}, len(team))
	for _, m := range team {
		email := NormalizeEmail(m.Email)
		if err := ValidateEmail(email); err != nil {
			return goerr.Wrap(err, "invalid team member email")
		}
		if !m.Role.IsValid() {
			return goerr.Wrap(ErrInvalidRole, "invalid team member role", goerr.V(EmailKey, m.Email), goerr.V(FieldValueKey, m.Role))
		}
		if _, ok := seen[email]; ok {
			return goerr.Wrap(ErrDuplicateMember, "team member listed twice", goerr.V(EmailKey, m.Email))
		}
		seen[email] = struct{}{}
	}
	return nil
}

// MemberEmails returns normalized team member emails. The backing store
// indexes this list to answer "projects visible to this user".
func (p *Project) MemberEmails() []string {
	emails := make([]string, 0, len(p.Team))
	for _, m := range p.Team {
		emails = append(emails, NormalizeEmail(m.Email))
	}
	return emails
}

// FindRisk returns the risk and its index, or nil and -1
func (p *Project) FindRisk(id types.RiskID) (*Risk, int) {
	for i, r := range p.Risks {
		if r.ID == id {
			return r, i
		}
	}
	return nil, -1
}

// CopyProject creates a deep copy of a project
func CopyProject(p *Project) *Project {
	if p == nil {
		return nil
	}
	copied := *p
	if p.Team != nil {
		copied.Team = append([]TeamMember(nil), p.Team...)
	}
	if p.Risks != nil {
		copied.Risks = make([]*Risk, len(p.Risks))
		for i, r := range p.Risks {
			copied.Risks[i] = CopyRisk(r)
		}
	}
	return &copied
}
