package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

func sessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if expires.IsZero() {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	return c
}

// authSessionHandler exchanges a Firebase ID token for session cookies
func authSessionHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req sessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
		if req.IDToken == "" && !authUC.IsNoAuthn() {
			writeError(ctx, w, goerr.Wrap(errBadRequest, "idToken is required"))
			return
		}

		token, err := authUC.CreateSession(ctx, req.IDToken)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(r, cookieTokenID, token.ID.String(), token.ExpiresAt))
		http.SetCookie(w, sessionCookie(r, cookieTokenSecret, token.Secret.String(), token.ExpiresAt))

		writeData(ctx, w, http.StatusOK, userMeResponse{
			Sub:   token.Sub,
			Email: token.Email,
			Name:  token.Name,
		}, map[string]any{"expiresAt": token.ExpiresAt})
	}
}

// authLogoutHandler handles user logout
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if tokenIDCookie, err := r.Cookie(cookieTokenID); err == nil {
			if err := authUC.Logout(ctx, auth.TokenID(tokenIDCookie.Value)); err != nil {
				writeError(ctx, w, goerr.Wrap(err, "failed to logout"))
				return
			}
		}

		http.SetCookie(w, sessionCookie(r, cookieTokenID, "", time.Time{}))
		http.SetCookie(w, sessionCookie(r, cookieTokenSecret, "", time.Time{}))

		writeData(ctx, w, http.StatusOK, map[string]bool{"success": true}, nil)
	}
}

// authMeHandler returns current user information. It runs behind
// authMiddleware.
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromContext(r.Context())
		if token == nil {
			writeError(r.Context(), w, usecase.ErrUnauthenticated)
			return
		}
		writeData(r.Context(), w, http.StatusOK, userMeResponse{
			Sub:   token.Sub,
			Email: token.Email,
			Name:  token.Name,
		}, nil)
	}
}
