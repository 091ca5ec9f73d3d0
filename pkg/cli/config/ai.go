package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// AI holds configuration for the LLM gateway. The Gemini flags set up the
// server default used by members without their own provider.
type AI struct {
	geminiProject  string
	geminiLocation string
	catalogPath    string
}

func (x *AI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for the server default Gemini client",
			Category:    "AI",
			Sources:     cli.EnvVars("RISKPILOT_GEMINI_PROJECT"),
			Destination: &x.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Category:    "AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("RISKPILOT_GEMINI_LOCATION"),
			Destination: &x.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "ai-catalog",
			Usage:       "TOML file overriding the built-in AI provider catalog",
			Category:    "AI",
			Sources:     cli.EnvVars("RISKPILOT_AI_CATALOG"),
			Destination: &x.catalogPath,
		},
	}
}

// LogAttrs returns log attributes for the AI configuration
func (x *AI) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("gemini_project", x.geminiProject),
		slog.String("gemini_location", x.geminiLocation),
		slog.String("catalog", x.catalogPath),
	}
}

// Catalog returns the built-in provider catalog, overlaid with --ai-catalog
// when set
func (x *AI) Catalog() (*llm.Catalog, error) {
	if x.catalogPath == "" {
		return llm.DefaultCatalog(), nil
	}
	c, err := llm.LoadCatalog(x.catalogPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AI provider catalog")
	}
	return c, nil
}

// Configure builds the provider factory. Without --gemini-project there is
// no server default and members must configure their own provider.
func (x *AI) Configure(ctx context.Context) (*llm.Factory, error) {
	catalog, err := x.Catalog()
	if err != nil {
		return nil, err
	}

	var opts []llm.FactoryOption
	if x.geminiProject != "" {
		client, err := gemini.New(ctx, x.geminiProject, x.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		opts = append(opts, llm.WithServerDefault(client))
	}

	return llm.NewFactory(catalog, opts...), nil
}
