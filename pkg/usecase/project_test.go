package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/repository/memory"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

func setupProject(t *testing.T, uc *usecase.UseCases) types.ProjectID {
	t.Helper()
	view, err := uc.Project.Create(ownerCtx(), usecase.ProjectInput{
		Name:        "Payment platform",
		Description: "card processing",
		Team:        testTeam(),
	})
	gt.NoError(t, err).Required()
	return view.Project.ID
}

func TestProjectUseCase_Create(t *testing.T) {
	uc := usecase.New(memory.New())

	t.Run("owner is the caller and team is normalized", func(t *testing.T) {
		view, err := uc.Project.Create(ownerCtx(), usecase.ProjectInput{
			Name: "  Launch  ",
			Team: []model.TeamMember{{Email: " Dev@Example.COM ", Role: "Member"}},
		})
		gt.NoError(t, err).Required()

		gt.Value(t, view.Project.Name).Equal("Launch")
		gt.Value(t, view.Project.OwnerID).Equal(types.UserID("owner"))
		gt.A(t, view.Project.Team).Length(1)
		gt.Value(t, view.Project.Team[0].Email).Equal("dev@example.com")
		gt.Value(t, view.Project.Team[0].Role).Equal(types.TeamRoleMember)
		gt.Bool(t, view.Access.Owner).True()
		gt.Bool(t, view.Permissions.CanEdit).True()
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := uc.Project.Create(ownerCtx(), usecase.ProjectInput{Name: " "})
		gt.Error(t, err).Is(model.ErrMissingRequired)
	})

	t.Run("duplicate member is rejected", func(t *testing.T) {
		_, err := uc.Project.Create(ownerCtx(), usecase.ProjectInput{
			Name: "dup",
			Team: []model.TeamMember{
				{Email: "a@example.com", Role: types.TeamRoleMember},
				{Email: "A@example.com", Role: types.TeamRoleViewer},
			},
		})
		gt.Error(t, err).Is(model.ErrDuplicateMember)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := uc.Project.Create(context.Background(), usecase.ProjectInput{Name: "x"})
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})
}

func TestProjectUseCase_Visibility(t *testing.T) {
	uc := usecase.New(memory.New())
	id := setupProject(t, uc)

	t.Run("team members can read", func(t *testing.T) {
		for _, ctx := range []context.Context{ownerCtx(), managerCtx(), memberCtx(), viewerCtx()} {
			view, err := uc.Project.Get(ctx, id)
			gt.NoError(t, err).Required()
			gt.Value(t, view.Project.ID).Equal(id)
		}
	})

	t.Run("outsider gets not found", func(t *testing.T) {
		_, err := uc.Project.Get(outsideCtx(), id)
		gt.Error(t, err).Is(usecase.ErrProjectNotFound)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := uc.Project.Get(ownerCtx(), "not-a-uuid")
		gt.Error(t, err).Is(usecase.ErrProjectNotFound)
	})

	t.Run("list includes shared projects", func(t *testing.T) {
		views, err := uc.Project.List(viewerCtx())
		gt.NoError(t, err).Required()
		gt.A(t, views).Length(1)
		gt.Value(t, views[0].Access.Role).Equal(types.TeamRoleViewer)
		gt.Bool(t, views[0].Permissions.CanEdit).False()

		views, err = uc.Project.List(outsideCtx())
		gt.NoError(t, err).Required()
		gt.A(t, views).Length(0)
	})
}

func TestProjectUseCase_Update(t *testing.T) {
	uc := usecase.New(memory.New())
	id := setupProject(t, uc)

	t.Run("manager can edit metadata", func(t *testing.T) {
		view, err := uc.Project.Update(managerCtx(), id, usecase.ProjectInput{Name: "Renamed", Description: "new"})
		gt.NoError(t, err).Required()
		gt.Value(t, view.Project.Name).Equal("Renamed")
		gt.A(t, view.Project.Team).Length(3)
	})

	t.Run("member cannot edit metadata", func(t *testing.T) {
		_, err := uc.Project.Update(memberCtx(), id, usecase.ProjectInput{Name: "Nope"})
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("viewer cannot edit team", func(t *testing.T) {
		_, err := uc.Project.UpdateTeam(viewerCtx(), id, nil)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("invalid role in team update", func(t *testing.T) {
		_, err := uc.Project.UpdateTeam(ownerCtx(), id, []model.TeamMember{{Email: "x@example.com", Role: "admin"}})
		gt.Error(t, err).Is(model.ErrInvalidRole)
	})

	t.Run("owner replaces team", func(t *testing.T) {
		view, err := uc.Project.UpdateTeam(ownerCtx(), id, []model.TeamMember{
			{Email: "member@example.com", Role: types.TeamRoleManager},
		})
		gt.NoError(t, err).Required()
		gt.A(t, view.Project.Team).Length(1)

		_, err = uc.Project.Get(viewerCtx(), id)
		gt.Error(t, err).Is(usecase.ErrProjectNotFound)

		view, err = uc.Project.Update(memberCtx(), id, usecase.ProjectInput{Name: "Promoted"})
		gt.NoError(t, err).Required()
		gt.Value(t, view.Project.Name).Equal("Promoted")
	})
}

func TestProjectUseCase_Delete(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	id := setupProject(t, uc)

	err := uc.Project.Delete(managerCtx(), id)
	gt.Error(t, err).Is(usecase.ErrAccessDenied)

	err = uc.Project.Delete(outsideCtx(), id)
	gt.Error(t, err).Is(usecase.ErrProjectNotFound)

	gt.NoError(t, uc.Project.Delete(ownerCtx(), id)).Required()

	_, err = repo.Project().Get(context.Background(), id)
	gt.Bool(t, errors.Is(err, memory.ErrNotFound)).True()
}
