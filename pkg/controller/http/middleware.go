package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

const (
	cookieTokenID     = "token_id"
	cookieTokenSecret = "token_secret"
)

// authMiddleware validates authentication for protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Without authentication every request runs as the configured user
			if authUC == nil || authUC.IsNoAuthn() {
				token := auth.NewAnonymousUser()
				if authUC != nil {
					if t, err := authUC.ValidateToken(ctx, "", ""); err == nil {
						token = t
					}
				}
				next.ServeHTTP(w, r.WithContext(auth.ContextWithToken(ctx, token)))
				return
			}

			tokenIDCookie, err := r.Cookie(cookieTokenID)
			if err != nil {
				writeError(ctx, w, goerr.Wrap(usecase.ErrUnauthenticated, "no token_id cookie"))
				return
			}
			tokenSecretCookie, err := r.Cookie(cookieTokenSecret)
			if err != nil {
				writeError(ctx, w, goerr.Wrap(usecase.ErrUnauthenticated, "no token_secret cookie"))
				return
			}

			token, err := authUC.ValidateToken(ctx, auth.TokenID(tokenIDCookie.Value), auth.TokenSecret(tokenSecretCookie.Value))
			if err != nil {
				writeError(ctx, w, err)
				return
			}

			ctx = auth.ContextWithToken(ctx, token)
			ctx = logging.With(ctx, logging.From(ctx).With("sub", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
