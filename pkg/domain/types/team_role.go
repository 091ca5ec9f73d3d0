package types

import "fmt"

// TeamRole is the access tier of a team member within a project. The project
// owner is not a team role; ownership is tracked separately.
type TeamRole string

const (
	TeamRoleManager TeamRole = "manager"
	TeamRoleMember  TeamRole = "member"
	TeamRoleViewer  TeamRole = "viewer"
)

// AllTeamRoles returns all valid roles
func AllTeamRoles() []TeamRole {
	return []TeamRole{
		TeamRoleManager,
		TeamRoleMember,
		TeamRoleViewer,
	}
}

// IsValid checks if the role is valid
func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleManager, TeamRoleMember, TeamRoleViewer:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r TeamRole) String() string {
	return string(r)
}

// ParseTeamRole parses a string into a TeamRole
func ParseTeamRole(s string) (TeamRole, error) {
	r := TeamRole(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid team role: %s", s)
	}
	return r, nil
}
