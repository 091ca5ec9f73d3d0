package model

import "github.com/secmon-lab/riskpilot/pkg/domain/types"

// Access is what a user may do within one project
type Access struct {
	Owner bool
	Role  types.TeamRole // empty when the user is not a team member
}

// AccessOf resolves the access of a user to p by owner id and team email
func AccessOf(p *Project, userID types.UserID, email string) Access {
	access := Access{Owner: p.OwnerID != "" && p.OwnerID == userID}
	email = NormalizeEmail(email)
	if email == "" {
		return access
	}
	for _, m := range p.Team {
		if NormalizeEmail(m.Email) == email {
			access.Role = m.Role
			break
		}
	}
	return access
}

// CanRead reports read access to the project and its risks
func (a Access) CanRead() bool {
	return a.Owner || a.Role.IsValid()
}

// CanContribute reports whether new risks can be added or generated
func (a Access) CanContribute() bool {
	return a.Owner || a.Role == types.TeamRoleManager || a.Role == types.TeamRoleMember
}

// CanManageRisks reports whether existing risks can be edited, deleted or
// have their status changed
func (a Access) CanManageRisks() bool {
	return a.Owner || a.Role == types.TeamRoleManager
}

// CanEditProject reports whether project metadata and team can be changed
func (a Access) CanEditProject() bool {
	return a.Owner || a.Role == types.TeamRoleManager
}

// CanDeleteProject is reserved to the owner
func (a Access) CanDeleteProject() bool {
	return a.Owner
}

// RiskPermissions are the risk controls a client should render for a viewer
type RiskPermissions struct {
	CanEdit         bool
	CanDelete       bool
	CanChangeStatus bool
}

// RiskPermissions derives per-risk controls from project access
func (a Access) RiskPermissions() RiskPermissions {
	manage := a.CanManageRisks()
	return RiskPermissions{
		CanEdit:         manage,
		CanDelete:       manage,
		CanChangeStatus: manage,
	}
}
