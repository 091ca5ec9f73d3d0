package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds configuration for Firebase ID token sign-in
type Auth struct {
	firebaseProjectID string
	jwksURL           string
	noAuthEmail       string
	noAuthName        string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firebase-project-id",
			Usage:       "Firebase project ID used as the expected ID token audience",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKPILOT_FIREBASE_PROJECT_ID"),
			Destination: &x.firebaseProjectID,
		},
		&cli.StringFlag{
			Name:        "firebase-jwks-url",
			Usage:       "JWKS endpoint for ID token signing keys",
			Category:    "Authentication",
			Value:       usecase.DefaultFirebaseJWKSURL,
			Sources:     cli.EnvVars("RISKPILOT_FIREBASE_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given email (development only). Example: --no-auth=dev@example.com",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKPILOT_NO_AUTH"),
			Destination: &x.noAuthEmail,
		},
		&cli.StringFlag{
			Name:        "no-auth-name",
			Usage:       "Display name of the no-auth user",
			Category:    "Authentication",
			Value:       "Developer",
			Sources:     cli.EnvVars("RISKPILOT_NO_AUTH_NAME"),
			Destination: &x.noAuthName,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("firebase_project_id", x.firebaseProjectID),
		slog.String("jwks_url", x.jwksURL),
		slog.Bool("no_auth", x.noAuthEmail != ""),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthEmail != ""
}

// Configure returns a NoAuthnUseCase when --no-auth is set, otherwise an
// AuthUseCase verifying Firebase ID tokens
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuthEmail != "" {
		email := model.NormalizeEmail(x.noAuthEmail)
		if err := model.ValidateEmail(email); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid --no-auth email", goerr.V(FlagKey, "no-auth"), goerr.V(ValueKey, x.noAuthEmail))
		}
		if x.firebaseProjectID != "" {
			logging.Default().Warn("--no-auth is set, ignoring --firebase-project-id")
		}
		return usecase.NewNoAuthnUseCase(repo, email, email, x.noAuthName), nil
	}

	if x.firebaseProjectID == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "set --firebase-project-id, or use --no-auth for local development",
			goerr.V(FlagKey, "firebase-project-id"))
	}

	var opts []usecase.AuthOption
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	}
	return usecase.NewAuthUseCase(repo, x.firebaseProjectID, opts...), nil
}
