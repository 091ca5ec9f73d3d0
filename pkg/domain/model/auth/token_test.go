package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
)

func TestNewToken(t *testing.T) {
	token := auth.NewToken("user-1", "alice@example.com", "Alice")
	gt.NoError(t, token.Validate())
	gt.Bool(t, token.IsExpired()).False()
	gt.Number(t, len(token.Secret)).Equal(64)

	other := auth.NewToken("user-1", "alice@example.com", "Alice")
	gt.Value(t, other.ID).NotEqual(token.ID)
	gt.Value(t, other.Secret).NotEqual(token.Secret)
}

func TestToken_Validate(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		token := auth.NewToken("user-1", "", "")
		token.ID = "abc"
		gt.Error(t, token.Validate())
	})

	t.Run("missing subject", func(t *testing.T) {
		token := auth.NewToken("", "", "")
		gt.Error(t, token.Validate())
	})
}

func TestToken_IsExpired(t *testing.T) {
	token := auth.NewToken("user-1", "", "")
	token.ExpiresAt = time.Now().Add(-time.Minute)
	gt.Bool(t, token.IsExpired()).True()
}

func TestContextWithToken(t *testing.T) {
	gt.Value(t, auth.TokenFromContext(context.Background())).Nil()

	token := auth.NewAnonymousUser()
	ctx := auth.ContextWithToken(context.Background(), token)
	gt.Value(t, auth.TokenFromContext(ctx)).Equal(token)
}
