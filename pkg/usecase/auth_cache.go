package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(tokenID auth.TokenID) (*auth.Token, bool) {
	val, ok := c.cache.Load(tokenID)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(tokenID)
		return nil, false
	}

	return cached.token, true
}

func (c *authCache) set(token *auth.Token) {
	c.cache.Store(token.ID, &cachedToken{
		token:     token,
		expiresAt: time.Now().Add(authCacheTTL),
	})
}

func (c *authCache) remove(tokenID auth.TokenID) {
	c.cache.Delete(tokenID)
}

// validateTokenWithCache checks the secret and expiry, consulting the
// repository only on a cache miss
func (uc *AuthUseCase) validateTokenWithCache(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	if token, ok := uc.cache.get(tokenID); ok {
		if token.Secret != tokenSecret {
			return nil, goerr.Wrap(ErrInvalidToken, "invalid token secret", goerr.V("token_id", tokenID))
		}
		if token.IsExpired() {
			uc.cache.remove(tokenID)
			return nil, goerr.Wrap(ErrInvalidToken, "token expired", goerr.V("token_id", tokenID))
		}
		return token, nil
	}

	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "malformed token ID", goerr.V("token_id", tokenID))
	}

	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to get token from repository",
			goerr.V("token_id", tokenID), goerr.V("cause", err.Error()))
	}

	if token.Secret != tokenSecret {
		return nil, goerr.Wrap(ErrInvalidToken, "invalid token secret", goerr.V("token_id", tokenID))
	}

	if token.IsExpired() {
		if err := uc.repo.DeleteToken(ctx, tokenID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete expired token", goerr.V("token_id", tokenID))
		}
		return nil, goerr.Wrap(ErrInvalidToken, "token expired", goerr.V("token_id", tokenID))
	}

	uc.cache.set(token)

	return token, nil
}
