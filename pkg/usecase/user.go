package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/keyring"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// ProfileInput holds the user editable profile fields
type ProfileInput struct {
	DisplayName  string
	Organization string
	JobTitle     string
}

// AIConfigInput selects a provider. An empty APIKey keeps the stored key
// when the provider does not change.
type AIConfigInput struct {
	Provider types.AIProvider
	Model    string
	APIKey   string `masq:"secret"`
}

// ProviderList is what the client needs to render AI settings
type ProviderList struct {
	Providers     []llm.Provider
	ServerDefault bool
	Current       *model.AIConfig
}

type UserUseCase struct {
	repo    interfaces.Repository
	keyring *keyring.Keyring
	llm     *llm.Factory
}

func NewUserUseCase(repo interfaces.Repository, k *keyring.Keyring, f *llm.Factory) *UserUseCase {
	return &UserUseCase{repo: repo, keyring: k, llm: f}
}

func (uc *UserUseCase) catalog() *llm.Catalog {
	if uc.llm == nil {
		return llm.DefaultCatalog()
	}
	return uc.llm.Catalog()
}

// Profile returns the caller's profile. A profile that was never saved is
// synthesized from the session identity.
func (uc *UserUseCase) Profile(ctx context.Context) (*model.UserProfile, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return uc.load(ctx, a)
}

func (uc *UserUseCase) load(ctx context.Context, a *actor) (*model.UserProfile, error) {
	profile, err := uc.repo.User().Get(ctx, a.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return &model.UserProfile{
				ID:          a.ID,
				Email:       a.Email,
				DisplayName: a.Name,
			}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user profile", goerr.V(UserIDKey, a.ID))
	}
	return profile, nil
}

// UpdateProfile stores the editable profile fields. Email always follows the
// session identity.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, input ProfileInput) (*model.UserProfile, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{
		"display_name": strings.TrimSpace(input.DisplayName),
		"organization": strings.TrimSpace(input.Organization),
		"job_title":    strings.TrimSpace(input.JobTitle),
	}
	for name, v := range fields {
		if len(v) > model.MaxNameLength {
			return nil, goerr.Wrap(model.ErrFieldTooLong, "profile field is too long", goerr.V(model.FieldNameKey, name))
		}
	}

	profile, err := uc.load(ctx, a)
	if err != nil {
		return nil, err
	}
	profile.Email = a.Email
	profile.DisplayName = fields["display_name"]
	profile.Organization = fields["organization"]
	profile.JobTitle = fields["job_title"]

	saved, err := uc.repo.User().Put(ctx, profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save user profile", goerr.V(UserIDKey, a.ID))
	}
	return saved, nil
}

// SetAIConfig seals the API key and stores the provider selection
func (uc *UserUseCase) SetAIConfig(ctx context.Context, input AIConfigInput) (*model.UserProfile, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if uc.keyring == nil {
		return nil, goerr.Wrap(ErrAINotConfigured, "no keyring configured to store API keys")
	}

	provider, ok := uc.catalog().Get(input.Provider)
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidAIConfig, "unknown provider", goerr.V(model.FieldValueKey, input.Provider))
	}
	modelName := strings.TrimSpace(input.Model)
	if len(modelName) > model.MaxNameLength {
		return nil, goerr.Wrap(model.ErrFieldTooLong, "model name is too long", goerr.V(model.FieldNameKey, "model"))
	}
	apiKey := strings.TrimSpace(input.APIKey)

	profile, err := uc.load(ctx, a)
	if err != nil {
		return nil, err
	}

	cfg := &model.AIConfig{
		Provider: provider.Name,
		Model:    modelName,
	}
	switch {
	case apiKey != "":
		sealed, err := uc.keyring.Seal(apiKey, a.ID.String())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to seal API key", goerr.V(UserIDKey, a.ID))
		}
		cfg.SealedAPIKey = sealed
		cfg.KeyHint = model.MaskKey(apiKey)

	case profile.AI != nil && profile.AI.Provider == provider.Name && profile.AI.SealedAPIKey != "":
		cfg.SealedAPIKey = profile.AI.SealedAPIKey
		cfg.KeyHint = profile.AI.KeyHint

	default:
		return nil, goerr.Wrap(model.ErrInvalidAIConfig, "API key is required", goerr.V(model.FieldNameKey, "api_key"))
	}

	profile.AI = cfg
	saved, err := uc.repo.User().Put(ctx, profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save AI configuration", goerr.V(UserIDKey, a.ID))
	}

	logging.From(ctx).Info("AI configuration updated", "user_id", a.ID, "provider", cfg.Provider, "model", cfg.Model)
	return saved, nil
}

// ClearAIConfig removes the stored provider so the server default is used
func (uc *UserUseCase) ClearAIConfig(ctx context.Context) (*model.UserProfile, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := uc.load(ctx, a)
	if err != nil {
		return nil, err
	}
	if profile.AI == nil {
		return profile, nil
	}

	profile.AI = nil
	saved, err := uc.repo.User().Put(ctx, profile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to clear AI configuration", goerr.V(UserIDKey, a.ID))
	}
	return saved, nil
}

// Providers lists selectable providers with the caller's current choice
func (uc *UserUseCase) Providers(ctx context.Context) (*ProviderList, error) {
	a, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := uc.load(ctx, a)
	if err != nil {
		return nil, err
	}

	return &ProviderList{
		Providers:     uc.catalog().List(),
		ServerDefault: uc.llm != nil && uc.llm.HasServerDefault(),
		Current:       profile.AI,
	}, nil
}
