package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

func TestAccessOf(t *testing.T) {
	p := &model.Project{
		OwnerID: "owner-uid",
		Team: []model.TeamMember{
			{Email: "manager@example.com", Role: types.TeamRoleManager},
			{Email: "member@example.com", Role: types.TeamRoleMember},
			{Email: "viewer@example.com", Role: types.TeamRoleViewer},
		},
	}

	tests := []struct {
		name       string
		uid        types.UserID
		email      string
		read       bool
		contribute bool
		manage     bool
		deleteProj bool
	}{
		{"owner", "owner-uid", "owner@example.com", true, true, true, true},
		{"manager", "m", "Manager@Example.com", true, true, true, false},
		{"member", "u", "member@example.com", true, true, false, false},
		{"viewer", "v", "viewer@example.com", true, false, false, false},
		{"stranger", "s", "stranger@example.com", false, false, false, false},
		{"empty email", "s", "", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.AccessOf(p, tt.uid, tt.email)
			gt.Value(t, a.CanRead()).Equal(tt.read)
			gt.Value(t, a.CanContribute()).Equal(tt.contribute)
			gt.Value(t, a.CanManageRisks()).Equal(tt.manage)
			gt.Value(t, a.CanDeleteProject()).Equal(tt.deleteProj)

			perms := a.RiskPermissions()
			gt.Value(t, perms.CanEdit).Equal(tt.manage)
			gt.Value(t, perms.CanDelete).Equal(tt.manage)
			gt.Value(t, perms.CanChangeStatus).Equal(tt.manage)
		})
	}
}

func TestAccessOf_OnlyManagerRoleSeesRiskControls(t *testing.T) {
	for _, role := range types.AllTeamRoles() {
		p := &model.Project{OwnerID: "owner", Team: []model.TeamMember{{Email: "x@example.com", Role: role}}}
		perms := model.AccessOf(p, "someone-else", "x@example.com").RiskPermissions()
		gt.Value(t, perms.CanEdit).Equal(role == types.TeamRoleManager)
	}
}

func TestMaskKey(t *testing.T) {
	gt.Value(t, model.MaskKey("sk-1234567890abcd")).Equal("••••abcd")
	gt.Value(t, model.MaskKey("abc")).Equal("••••")
}
