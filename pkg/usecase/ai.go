package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/service/keyring"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
)

// GeneratorSource builds a generator for a provider selection. A nil
// selection means the server default.
type GeneratorSource func(ctx context.Context, sel *llm.Selection) (llm.Generator, error)

// FactorySource adapts an llm.Factory to a GeneratorSource
func FactorySource(f *llm.Factory) GeneratorSource {
	return func(ctx context.Context, sel *llm.Selection) (llm.Generator, error) {
		c, err := f.Completer(ctx, sel)
		if err != nil {
			return nil, err
		}
		return llm.NewGenerator(c), nil
	}
}

// aiResolver picks the generator for the calling user
type aiResolver struct {
	repo      interfaces.Repository
	keyring   *keyring.Keyring
	generator GeneratorSource
}

func (r *aiResolver) generatorFor(ctx context.Context, a *actor) (llm.Generator, error) {
	if r.generator == nil {
		return nil, goerr.Wrap(ErrAINotConfigured, "AI generation is disabled on this server")
	}

	sel, err := r.selection(ctx, a)
	if err != nil {
		return nil, err
	}

	gen, err := r.generator(ctx, sel)
	if err != nil {
		if errors.Is(err, llm.ErrNoProvider) {
			return nil, goerr.Wrap(ErrAINotConfigured, "no usable AI provider", goerr.V(UserIDKey, a.ID), goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(err, "failed to build generator", goerr.V(UserIDKey, a.ID))
	}
	return gen, nil
}

// selection returns the decrypted user configuration, or nil when the user
// has none
func (r *aiResolver) selection(ctx context.Context, a *actor) (*llm.Selection, error) {
	profile, err := r.repo.User().Get(ctx, a.ID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get user profile", goerr.V(UserIDKey, a.ID))
	}
	if profile.AI == nil || !profile.AI.Provider.IsValid() {
		return nil, nil
	}
	if r.keyring == nil {
		return nil, goerr.Wrap(ErrAINotConfigured, "no keyring to open the stored API key")
	}

	key, err := r.keyring.Open(profile.AI.SealedAPIKey, a.ID.String())
	if errors.Is(err, keyring.ErrInvalidSealed) {
		return nil, goerr.Wrap(ErrAINotConfigured, "stored API key can no longer be opened, set it again",
			goerr.V(UserIDKey, a.ID), goerr.V("cause", err.Error()))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open stored API key", goerr.V(UserIDKey, a.ID))
	}

	return &llm.Selection{
		Provider: profile.AI.Provider,
		Model:    profile.AI.Model,
		APIKey:   key,
	}, nil
}
