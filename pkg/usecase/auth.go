package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/model/auth"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFirebaseJWKSURL publishes the keys signing Firebase ID tokens
	DefaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	firebaseIssuerPrefix = "https://securetoken.google.com/"
	jwksTTL              = time.Hour
	clockSkew            = 10 * time.Second
)

// AuthUseCaseInterface is implemented by the Firebase backed and the no-auth
// use cases
type AuthUseCaseInterface interface {
	// CreateSession exchanges an identity token for a session token
	CreateSession(ctx context.Context, idToken string) (*auth.Token, error)
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	Logout(ctx context.Context, tokenID auth.TokenID) error
	IsNoAuthn() bool
}

type AuthUseCase struct {
	repo       interfaces.Repository
	projectID  string
	jwksURL    string
	httpClient *http.Client
	cache      *authCache
	keys       *keySetCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL overrides where signing keys are fetched from
func WithJWKSURL(url string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = url
	}
}

// WithHTTPClient sets the client used to fetch signing keys
func WithHTTPClient(client *http.Client) AuthOption {
	return func(uc *AuthUseCase) {
		uc.httpClient = client
	}
}

// NewAuthUseCase verifies Firebase ID tokens issued for the given Firebase
// (GCP) project
func NewAuthUseCase(repo interfaces.Repository, projectID string, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:       repo,
		projectID:  projectID,
		jwksURL:    DefaultFirebaseJWKSURL,
		httpClient: http.DefaultClient,
		cache:      newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}
	uc.keys = &keySetCache{url: uc.jwksURL, client: uc.httpClient}

	return uc
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// IDTokenClaims are the identity fields taken from a verified ID token
type IDTokenClaims struct {
	Sub   string
	Email string
	Name  string
}

// CreateSession verifies the ID token, stores a new session token and makes
// sure a profile exists for the user
func (uc *AuthUseCase) CreateSession(ctx context.Context, idToken string) (*auth.Token, error) {
	claims, err := uc.verifyIDToken(ctx, idToken)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify ID token", goerr.V("cause", err.Error()))
	}

	token := auth.NewToken(claims.Sub, claims.Email, claims.Name)
	if err := uc.repo.PutToken(ctx, token); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V("token", token))
	}

	if err := ensureProfile(ctx, uc.repo, claims); err != nil {
		logging.From(ctx).Warn("failed to create user profile", "error", err, "sub", claims.Sub)
	}

	logging.From(ctx).Info("session created", "sub", claims.Sub, "token_id", token.ID)
	return token, nil
}

func ensureProfile(ctx context.Context, repo interfaces.Repository, claims *IDTokenClaims) error {
	id := types.UserID(claims.Sub)
	_, err := repo.User().Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to get user profile")
	}

	_, err = repo.User().Put(ctx, &model.UserProfile{
		ID:          id,
		Email:       model.NormalizeEmail(claims.Email),
		DisplayName: claims.Name,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put user profile")
	}
	return nil
}

// verifyIDToken checks signature, issuer, audience and expiry of a Firebase
// ID token
func (uc *AuthUseCase) verifyIDToken(ctx context.Context, idToken string) (*IDTokenClaims, error) {
	keySet, err := uc.keys.get(ctx)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAudience(uc.projectID),
		jwt.WithIssuer(firebaseIssuerPrefix+uc.projectID),
		jwt.WithAcceptableSkew(clockSkew),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify JWT token")
	}

	if token.Subject() == "" {
		return nil, goerr.New("sub claim not found in token")
	}

	email, ok := stringClaim(token, "email")
	if !ok || email == "" {
		return nil, goerr.New("email claim not found in token")
	}
	if verified, ok := token.Get("email_verified"); !ok || verified != true {
		return nil, goerr.New("email is not verified", goerr.V("email", email))
	}
	name, _ := stringClaim(token, "name")

	return &IDTokenClaims{
		Sub:   token.Subject(),
		Email: model.NormalizeEmail(email),
		Name:  name,
	}, nil
}

func stringClaim(token jwt.Token, key string) (string, bool) {
	v, ok := token.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ValidateToken validates the token and returns user info
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	return uc.validateTokenWithCache(ctx, tokenID, tokenSecret)
}

// Logout deletes the token
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	// Remove from cache first
	uc.cache.remove(tokenID)

	// Then remove from repository
	if err := uc.repo.DeleteToken(ctx, tokenID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete token", goerr.V("token_id", tokenID))
	}
	return nil
}

// keySetCache keeps the signing keys for jwksTTL. Concurrent refreshes
// share one fetch.
type keySetCache struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	set       jwk.Set
	fetchedAt time.Time
	group     singleflight.Group
}

func (c *keySetCache) get(ctx context.Context) (jwk.Set, error) {
	c.mu.RLock()
	set, fetchedAt := c.set, c.fetchedAt
	c.mu.RUnlock()
	if set != nil && time.Since(fetchedAt) < jwksTTL {
		return set, nil
	}

	v, err, _ := c.group.Do(c.url, func() (any, error) {
		fetched, err := jwk.Fetch(ctx, c.url, jwk.WithHTTPClient(c.client))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch signing keys", goerr.V("jwks_url", c.url))
		}
		c.mu.Lock()
		c.set = fetched
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(jwk.Set), nil
}
