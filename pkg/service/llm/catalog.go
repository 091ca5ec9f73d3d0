package llm

import (
	"os"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// Dialect is the wire protocol a provider speaks
type Dialect string

const (
	DialectOpenAI Dialect = "openai"
	DialectClaude Dialect = "claude"
)

// Provider describes one selectable LLM backend
type Provider struct {
	Name         types.AIProvider `json:"name"`
	Label        string           `json:"label"`
	Dialect      Dialect          `json:"-"`
	BaseURL      string           `json:"-"`
	DefaultModel string           `json:"default_model"`
	Models       []string         `json:"models"`
	// JSONMode asks the provider for a JSON response format. Some
	// OpenAI-compatible gateways reject the parameter.
	JSONMode bool `json:"-"`
}

// Catalog is the set of providers users may configure
type Catalog struct {
	providers map[types.AIProvider]*Provider
}

func DefaultCatalog() *Catalog {
	c := &Catalog{providers: make(map[types.AIProvider]*Provider)}
	for _, p := range []*Provider{
		{
			Name:         types.AIProviderOpenAI,
			Label:        "OpenAI",
			Dialect:      DialectOpenAI,
			BaseURL:      "https://api.openai.com/v1",
			DefaultModel: "gpt-4o-mini",
			Models:       []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
			JSONMode:     true,
		},
		{
			Name:         types.AIProviderDeepSeek,
			Label:        "DeepSeek",
			Dialect:      DialectOpenAI,
			BaseURL:      "https://api.deepseek.com/v1",
			DefaultModel: "deepseek-chat",
			Models:       []string{"deepseek-chat", "deepseek-reasoner"},
			JSONMode:     true,
		},
		{
			Name:         types.AIProviderGroq,
			Label:        "Groq",
			Dialect:      DialectOpenAI,
			BaseURL:      "https://api.groq.com/openai/v1",
			DefaultModel: "llama-3.3-70b-versatile",
			Models:       []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
			JSONMode:     true,
		},
		{
			Name:         types.AIProviderOpenRouter,
			Label:        "OpenRouter",
			Dialect:      DialectOpenAI,
			BaseURL:      "https://openrouter.ai/api/v1",
			DefaultModel: "openai/gpt-4o-mini",
			Models:       []string{"openai/gpt-4o-mini", "anthropic/claude-3.5-sonnet", "google/gemini-2.0-flash-001"},
		},
		{
			Name:         types.AIProviderGemini,
			Label:        "Google Gemini",
			Dialect:      DialectOpenAI,
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai/",
			DefaultModel: "gemini-2.0-flash",
			Models:       []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
		},
		{
			Name:         types.AIProviderClaude,
			Label:        "Anthropic Claude",
			Dialect:      DialectClaude,
			DefaultModel: "claude-sonnet-4-5",
			Models:       []string{"claude-sonnet-4-5", "claude-haiku-4-5"},
		},
	} {
		c.providers[p.Name] = p
	}
	return c
}

type catalogFile struct {
	Providers map[string]providerEntry `toml:"providers"`
}

type providerEntry struct {
	Label        string   `toml:"label"`
	BaseURL      string   `toml:"base_url"`
	DefaultModel string   `toml:"default_model"`
	Models       []string `toml:"models"`
	JSONMode     *bool    `toml:"json_mode"`
}

// LoadCatalog reads a TOML file and overlays it on the built-in catalog.
// Only known providers may be overridden; empty fields keep the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read provider catalog", goerr.V("path", path))
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse provider catalog", goerr.V("path", path))
	}
	return c, nil
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "invalid TOML")
	}

	c := DefaultCatalog()
	for name, entry := range file.Providers {
		p, ok := c.providers[types.AIProvider(name)]
		if !ok {
			return nil, goerr.Wrap(ErrUnknownProvider, "unknown provider in catalog", goerr.V("provider", name))
		}
		if entry.Label != "" {
			p.Label = entry.Label
		}
		if entry.BaseURL != "" {
			p.BaseURL = entry.BaseURL
		}
		if entry.DefaultModel != "" {
			p.DefaultModel = entry.DefaultModel
		}
		if len(entry.Models) > 0 {
			p.Models = entry.Models
		}
		if entry.JSONMode != nil {
			p.JSONMode = *entry.JSONMode
		}
	}
	return c, nil
}

// Get returns a copy of the provider entry
func (c *Catalog) Get(name types.AIProvider) (Provider, bool) {
	p, ok := c.providers[name]
	if !ok {
		return Provider{}, false
	}
	copied := *p
	copied.Models = append([]string(nil), p.Models...)
	return copied, true
}

// List returns providers in the order of types.AllAIProviders
func (c *Catalog) List() []Provider {
	rank := make(map[types.AIProvider]int)
	for i, name := range types.AllAIProviders() {
		rank[name] = i
	}

	result := make([]Provider, 0, len(c.providers))
	for name := range c.providers {
		p, _ := c.Get(name)
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return rank[result[i].Name] < rank[result[j].Name]
	})
	return result
}
