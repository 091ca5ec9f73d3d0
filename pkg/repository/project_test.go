package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

func newTestProject(owner types.UserID, team ...model.TeamMember) *model.Project {
	return &model.Project{
		Name:        "Payment platform migration",
		Description: "Move card processing to the new provider",
		OwnerID:     owner,
		OwnerEmail:  "owner@example.com",
		Team:        team,
	}
}

func newTestRisk(title string, probability, impact types.Score) *model.Risk {
	now := time.Now().UTC()
	return &model.Risk{
		ID:          types.NewRiskID(),
		Title:       title,
		Description: "description of " + title,
		Category:    types.CategoryTechnical,
		Probability: probability,
		Impact:      impact,
		Status:      types.RiskStatusOpen,
		Tags:        []string{"infra", "q3"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// uniqueUser keeps Firestore runs that share a database from colliding
func uniqueUser(name string) types.UserID {
	return types.UserID(fmt.Sprintf("%s-%d", name, time.Now().UnixNano()))
}

func runProjectRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, newTestProject(uniqueUser("owner")))
		gt.NoError(t, err).Required()

		gt.NoError(t, created.ID.Validate())
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Get returns project with team and risks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		p := newTestProject(uniqueUser("owner"),
			model.TeamMember{Email: "manager@example.com", Role: types.TeamRoleManager},
			model.TeamMember{Email: "viewer@example.com", Role: types.TeamRoleViewer},
		)
		risk := newTestRisk("Provider outage", 7, 9)
		risk.Mitigation = &model.MitigationStrategy{
			Overview:         "Run both providers in parallel",
			ResponsibleRoles: []model.ResponsibleRole{{Role: "SRE", Responsibilities: []string{"failover drills"}}},
			Costs:            []model.CostItem{{Item: "Dual contracts", Amount: "$20k"}},
		}
		risk.Solutions = []model.Solution{{Title: "Active-active", Steps: []string{"design", "rollout"}}}
		p.Risks = []*model.Risk{risk}

		created, err := repo.Project().Create(ctx, p)
		gt.NoError(t, err).Required()

		got, err := repo.Project().Get(ctx, created.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, got.Name).Equal(p.Name)
		gt.Value(t, got.OwnerID).Equal(p.OwnerID)
		gt.Array(t, got.Team).Length(2)
		gt.Array(t, got.Risks).Length(1).Required()

		r := got.Risks[0]
		gt.Value(t, r.ID).Equal(risk.ID)
		gt.Value(t, r.ProjectID).Equal(created.ID)
		gt.Value(t, r.Probability).Equal(types.Score(7))
		gt.Value(t, r.Impact).Equal(types.Score(9))
		gt.Value(t, r.Priority()).Equal(types.PriorityHigh)
		gt.Array(t, r.Tags).Length(2)
		gt.Value(t, r.Mitigation).NotNil()
		gt.Value(t, r.Mitigation.Overview).Equal("Run both providers in parallel")
		gt.Array(t, r.Mitigation.ResponsibleRoles).Length(1)
		gt.Array(t, r.Mitigation.Costs).Length(1)
		gt.Array(t, r.Solutions).Length(1)
		gt.Array(t, r.Solutions[0].Steps).Length(2)
	})

	t.Run("Get returns not found for unknown project", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Project().Get(context.Background(), types.NewProjectID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("ListByUser returns owned and member projects", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		owner := uniqueUser("owner")
		other := uniqueUser("other")
		memberEmail := fmt.Sprintf("member-%d@example.com", time.Now().UnixNano())

		owned, err := repo.Project().Create(ctx, newTestProject(owner))
		gt.NoError(t, err).Required()
		time.Sleep(5 * time.Millisecond)
		shared, err := repo.Project().Create(ctx, newTestProject(other,
			model.TeamMember{Email: memberEmail, Role: types.TeamRoleMember}))
		gt.NoError(t, err).Required()
		_, err = repo.Project().Create(ctx, newTestProject(other))
		gt.NoError(t, err).Required()

		byOwner, err := repo.Project().ListByUser(ctx, owner, "")
		gt.NoError(t, err).Required()
		gt.Array(t, byOwner).Length(1).Required()
		gt.Value(t, byOwner[0].ID).Equal(owned.ID)

		byMember, err := repo.Project().ListByUser(ctx, uniqueUser("nobody"), memberEmail)
		gt.NoError(t, err).Required()
		gt.Array(t, byMember).Length(1).Required()
		gt.Value(t, byMember[0].ID).Equal(shared.ID)

		// Owner that is also listed in another team, newest first
		both, err := repo.Project().ListByUser(ctx, owner, memberEmail)
		gt.NoError(t, err).Required()
		gt.Array(t, both).Length(2).Required()
		gt.Value(t, both[0].ID).Equal(shared.ID)
		gt.Value(t, both[1].ID).Equal(owned.ID)
	})

	t.Run("ListByUser matches member email case-insensitively", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		email := fmt.Sprintf("mixed-%d@example.com", time.Now().UnixNano())
		_, err := repo.Project().Create(ctx, newTestProject(uniqueUser("owner"),
			model.TeamMember{Email: email, Role: types.TeamRoleViewer}))
		gt.NoError(t, err).Required()

		got, err := repo.Project().ListByUser(ctx, uniqueUser("nobody"), "  MIXED"+email[5:])
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
	})

	t.Run("Mutate applies changes and bumps UpdatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, newTestProject(uniqueUser("owner")))
		gt.NoError(t, err).Required()

		time.Sleep(5 * time.Millisecond)
		risk := newTestRisk("Key person leaves", 4, 5)
		updated, err := repo.Project().Mutate(ctx, created.ID, func(p *model.Project) error {
			p.Name = "Renamed"
			p.Risks = append(p.Risks, risk)
			p.CreatedAt = time.Time{}
			return nil
		})
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Name).Equal("Renamed")
		gt.Bool(t, updated.UpdatedAt.After(created.UpdatedAt)).True()
		gt.Bool(t, updated.CreatedAt.Sub(created.CreatedAt).Abs() < time.Millisecond).True()

		got, err := repo.Project().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Renamed")
		gt.Array(t, got.Risks).Length(1).Required()
		gt.Value(t, got.Risks[0].ProjectID).Equal(created.ID)
	})

	t.Run("Mutate discards changes when fn fails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, newTestProject(uniqueUser("owner")))
		gt.NoError(t, err).Required()

		errAbort := errors.New("abort")
		_, err = repo.Project().Mutate(ctx, created.ID, func(p *model.Project) error {
			p.Name = "Should not persist"
			p.Risks = append(p.Risks, newTestRisk("Discarded", 1, 1))
			return errAbort
		})
		gt.Error(t, err).Is(errAbort)

		got, err := repo.Project().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal(created.Name)
		gt.Array(t, got.Risks).Length(0)
	})

	t.Run("Mutate returns not found for unknown project", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Project().Mutate(context.Background(), types.NewProjectID(), func(p *model.Project) error {
			return nil
		})
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Delete removes project", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Project().Create(ctx, newTestProject(uniqueUser("owner")))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Project().Delete(ctx, created.ID)).Required()

		_, err = repo.Project().Get(ctx, created.ID)
		gt.Bool(t, isNotFound(err)).True()

		gt.Bool(t, isNotFound(repo.Project().Delete(ctx, created.ID))).True()
	})

	t.Run("returned projects are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		p := newTestProject(uniqueUser("owner"))
		p.Risks = []*model.Risk{newTestRisk("Original", 2, 2)}
		created, err := repo.Project().Create(ctx, p)
		gt.NoError(t, err).Required()

		created.Risks[0].Title = "Changed outside"
		p.Risks[0].Title = "Changed input"

		got, err := repo.Project().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Risks[0].Title).Equal("Original")
	})
}
