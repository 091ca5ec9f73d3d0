package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// Completer sends one prompt and returns the raw model text
type Completer interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// gollemCompleter runs each prompt in a fresh session
type gollemCompleter struct {
	client   gollem.LLMClient
	jsonMode bool
}

// NewCompleter adapts a gollem client
func NewCompleter(client gollem.LLMClient, jsonMode bool) Completer {
	return &gollemCompleter{client: client, jsonMode: jsonMode}
}

func (c *gollemCompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	opts := []gollem.SessionOption{
		gollem.WithSessionSystemPrompt(systemPrompt),
	}
	if c.jsonMode {
		opts = append(opts, gollem.WithSessionContentType(gollem.ContentTypeJSON))
	}

	session, err := c.client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(ErrGeneration, "failed to create LLM session", goerr.V("cause", err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(ErrGeneration, "failed to generate content", goerr.V("cause", err.Error()))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrInvalidResponse, "empty response from LLM")
	}

	return strings.Join(resp.Texts, ""), nil
}

// Factory builds completers for a user's provider selection
type Factory struct {
	catalog       *Catalog
	serverDefault gollem.LLMClient
}

type FactoryOption func(*Factory)

// WithServerDefault sets the client used for users without their own
// provider configuration
func WithServerDefault(client gollem.LLMClient) FactoryOption {
	return func(f *Factory) {
		f.serverDefault = client
	}
}

func NewFactory(catalog *Catalog, opts ...FactoryOption) *Factory {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	f := &Factory{catalog: catalog}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Catalog() *Catalog {
	return f.catalog
}

// HasServerDefault reports whether users without configuration can generate
func (f *Factory) HasServerDefault() bool {
	return f.serverDefault != nil
}

// Selection is a decrypted provider configuration
type Selection struct {
	Provider types.AIProvider
	Model    string
	APIKey   string `masq:"secret"`
}

// Completer returns a completer for sel, or for the server default when sel
// is nil
func (f *Factory) Completer(ctx context.Context, sel *Selection) (Completer, error) {
	if sel == nil {
		if f.serverDefault == nil {
			return nil, goerr.Wrap(ErrNoProvider, "no user configuration and no server default")
		}
		return NewCompleter(f.serverDefault, true), nil
	}

	client, p, err := f.newClient(ctx, sel)
	if err != nil {
		return nil, err
	}
	return NewCompleter(client, p.JSONMode), nil
}

func (f *Factory) newClient(ctx context.Context, sel *Selection) (gollem.LLMClient, Provider, error) {
	p, ok := f.catalog.Get(sel.Provider)
	if !ok {
		return nil, Provider{}, goerr.Wrap(ErrUnknownProvider, "provider is not in catalog", goerr.V("provider", sel.Provider))
	}
	if sel.APIKey == "" {
		return nil, Provider{}, goerr.Wrap(ErrNoProvider, "API key is required", goerr.V("provider", sel.Provider))
	}

	model := sel.Model
	if model == "" {
		model = p.DefaultModel
	}

	switch p.Dialect {
	case DialectClaude:
		client, err := claude.New(ctx, sel.APIKey, claude.WithModel(model))
		if err != nil {
			return nil, p, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, p, nil

	default:
		client, err := openai.New(ctx, sel.APIKey,
			openai.WithModel(model),
			openai.WithBaseURL(p.BaseURL),
		)
		if err != nil {
			return nil, p, goerr.Wrap(err, "failed to create OpenAI compatible client", goerr.V("provider", p.Name))
		}
		return client, p, nil
	}
}
