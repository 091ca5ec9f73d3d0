package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get returns the profile", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		uid := types.UserID("user-" + time.Now().Format("150405.000000"))
		stored, err := repo.User().Put(ctx, &model.UserProfile{
			ID:           uid,
			Email:        "alice@example.com",
			DisplayName:  "Alice",
			Organization: "Example Corp",
			JobTitle:     "Risk Officer",
			AI: &model.AIConfig{
				Provider:     types.AIProviderOpenAI,
				Model:        "gpt-4o-mini",
				SealedAPIKey: "sealed-bytes",
				KeyHint:      "••••abcd",
			},
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.CreatedAt.IsZero()).False()

		got, err := repo.User().Get(ctx, uid)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Email).Equal("alice@example.com")
		gt.Value(t, got.DisplayName).Equal("Alice")
		gt.Value(t, got.Organization).Equal("Example Corp")
		gt.Value(t, got.JobTitle).Equal("Risk Officer")
		gt.Value(t, got.AI).NotNil()
		gt.Value(t, got.AI.Provider).Equal(types.AIProviderOpenAI)
		gt.Value(t, got.AI.SealedAPIKey).Equal("sealed-bytes")
		gt.Value(t, got.AI.KeyHint).Equal("••••abcd")
	})

	t.Run("Put preserves CreatedAt on update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		uid := types.UserID("user-update-" + time.Now().Format("150405.000000"))
		first, err := repo.User().Put(ctx, &model.UserProfile{ID: uid, DisplayName: "Before"})
		gt.NoError(t, err).Required()

		time.Sleep(5 * time.Millisecond)
		second, err := repo.User().Put(ctx, &model.UserProfile{ID: uid, DisplayName: "After"})
		gt.NoError(t, err).Required()

		gt.Bool(t, second.CreatedAt.Sub(first.CreatedAt).Abs() < time.Millisecond).True()
		gt.Bool(t, second.UpdatedAt.After(first.UpdatedAt)).True()

		got, err := repo.User().Get(ctx, uid)
		gt.NoError(t, err).Required()
		gt.Value(t, got.DisplayName).Equal("After")
		gt.Value(t, got.AI).Nil()
	})

	t.Run("Get returns not found for unknown user", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.User().Get(context.Background(), types.UserID("missing-user"))
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put requires an ID", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.User().Put(context.Background(), &model.UserProfile{DisplayName: "No ID"})
		gt.Error(t, err)
	})
}
