package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

func TestProject_Validate(t *testing.T) {
	t.Run("valid project", func(t *testing.T) {
		p := &model.Project{
			Name: "Payments migration",
			Team: []model.TeamMember{
				{Email: "alice@example.com", Role: types.TeamRoleManager},
				{Email: "bob@example.com", Role: types.TeamRoleViewer},
			},
		}
		gt.NoError(t, p.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		err := (&model.Project{Name: "  "}).Validate()
		gt.Bool(t, errors.Is(err, model.ErrMissingRequired)).True()
	})

	t.Run("name too long", func(t *testing.T) {
		err := (&model.Project{Name: strings.Repeat("x", model.MaxNameLength+1)}).Validate()
		gt.Bool(t, errors.Is(err, model.ErrFieldTooLong)).True()
	})

	t.Run("duplicate member ignores case", func(t *testing.T) {
		p := &model.Project{
			Name: "p",
			Team: []model.TeamMember{
				{Email: "Alice@Example.com", Role: types.TeamRoleManager},
				{Email: "alice@example.com", Role: types.TeamRoleMember},
			},
		}
		gt.Bool(t, errors.Is(p.Validate(), model.ErrDuplicateMember)).True()
	})

	t.Run("invalid role", func(t *testing.T) {
		p := &model.Project{
			Name: "p",
			Team: []model.TeamMember{{Email: "alice@example.com", Role: "owner"}},
		}
		gt.Bool(t, errors.Is(p.Validate(), model.ErrInvalidRole)).True()
	})

	t.Run("invalid email", func(t *testing.T) {
		p := &model.Project{
			Name: "p",
			Team: []model.TeamMember{{Email: "not an email", Role: types.TeamRoleMember}},
		}
		gt.Bool(t, errors.Is(p.Validate(), model.ErrInvalidEmail)).True()
	})
}

func TestProject_MemberEmails(t *testing.T) {
	p := &model.Project{Team: []model.TeamMember{
		{Email: " Alice@Example.com ", Role: types.TeamRoleManager},
		{Email: "bob@example.com", Role: types.TeamRoleViewer},
	}}
	gt.Array(t, p.MemberEmails()).Equal([]string{"alice@example.com", "bob@example.com"})
}

func TestCopyProject(t *testing.T) {
	original := &model.Project{
		Name: "p",
		Team: []model.TeamMember{{Email: "alice@example.com", Role: types.TeamRoleManager}},
		Risks: []*model.Risk{{
			ID:    types.NewRiskID(),
			Title: "Vendor lock-in",
			Tags:  []string{"cloud"},
			Mitigation: &model.MitigationStrategy{
				Overview:  "Abstract storage",
				Resources: []string{"platform team"},
			},
			Solutions: []model.Solution{{Title: "Adapter", Steps: []string{"design"}}},
		}},
	}

	copied := model.CopyProject(original)
	copied.Team[0].Role = types.TeamRoleViewer
	copied.Risks[0].Tags[0] = "changed"
	copied.Risks[0].Mitigation.Resources[0] = "changed"
	copied.Risks[0].Solutions[0].Steps[0] = "changed"

	gt.Value(t, original.Team[0].Role).Equal(types.TeamRoleManager)
	gt.Value(t, original.Risks[0].Tags[0]).Equal("cloud")
	gt.Value(t, original.Risks[0].Mitigation.Resources[0]).Equal("platform team")
	gt.Value(t, original.Risks[0].Solutions[0].Steps[0]).Equal("design")
}
