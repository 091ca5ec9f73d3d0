package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
)

func runAuthRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("PutToken and GetToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("user-123", "test@example.com", "Test User")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()

		retrieved, err := repo.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.ID).Equal(token.ID)
		gt.Value(t, retrieved.Secret).Equal(token.Secret)
		gt.Value(t, retrieved.Sub).Equal(token.Sub)
		gt.Value(t, retrieved.Email).Equal(token.Email)
		gt.Value(t, retrieved.Name).Equal(token.Name)

		// Firestore stores microsecond precision
		diff := retrieved.ExpiresAt.Sub(token.ExpiresAt)
		gt.Bool(t, diff < time.Second && diff > -time.Second).True()
	})

	t.Run("GetToken not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetToken(context.Background(), auth.NewTokenID())
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("DeleteToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("user-456", "delete@example.com", "Delete User")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()
		gt.NoError(t, repo.DeleteToken(ctx, token.ID)).Required()

		_, err := repo.GetToken(ctx, token.ID)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("DeleteToken not found", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.DeleteToken(context.Background(), auth.NewTokenID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Token validation on Put", func(t *testing.T) {
		repo := newRepo(t)

		invalid := auth.NewToken("", "test@example.com", "Test")
		gt.Error(t, repo.PutToken(context.Background(), invalid))
	})

	t.Run("DeleteExpiredTokens removes only expired tokens", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		expired := auth.NewToken("user-expired", "old@example.com", "Old")
		expired.ExpiresAt = time.Now().Add(-time.Hour)
		live := auth.NewToken("user-live", "new@example.com", "New")
		gt.NoError(t, repo.PutToken(ctx, expired)).Required()
		gt.NoError(t, repo.PutToken(ctx, live)).Required()

		n, err := repo.DeleteExpiredTokens(ctx, time.Now())
		gt.NoError(t, err).Required()
		gt.Bool(t, n >= 1).True()

		_, err = repo.GetToken(ctx, expired.ID)
		gt.Bool(t, isNotFound(err)).True()
		_, err = repo.GetToken(ctx, live.ID)
		gt.NoError(t, err)
	})
}
