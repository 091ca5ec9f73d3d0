package usecase

import (
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/service/archive"
	"github.com/secmon-lab/riskpilot/pkg/service/keyring"
	"github.com/secmon-lab/riskpilot/pkg/service/llm"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
)

type UseCases struct {
	repo      interfaces.Repository
	llm       *llm.Factory
	generator GeneratorSource
	keyring   *keyring.Keyring
	notifier  Notifier
	archiver  archive.Archiver
	placer    *matrix.Placer
	pdfFont   string

	Project  *ProjectUseCase
	Risk     *RiskUseCase
	Generate *GenerateUseCase
	User     *UserUseCase
	Export   *ExportUseCase
	Auth     AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithLLMFactory enables AI generation through the given provider factory
func WithLLMFactory(f *llm.Factory) Option {
	return func(uc *UseCases) {
		uc.llm = f
	}
}

// WithGeneratorSource replaces how generators are built for a selection.
// Mainly for tests.
func WithGeneratorSource(src GeneratorSource) Option {
	return func(uc *UseCases) {
		uc.generator = src
	}
}

// WithKeyring sets the keyring sealing user API keys
func WithKeyring(k *keyring.Keyring) Option {
	return func(uc *UseCases) {
		uc.keyring = k
	}
}

// WithNotifier enables critical risk notifications
func WithNotifier(n Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithArchiver stores every generated report in addition to returning it
func WithArchiver(a archive.Archiver) Option {
	return func(uc *UseCases) {
		uc.archiver = a
	}
}

// WithPlacer sets the matrix placer. A seeded placer makes layouts
// reproducible.
func WithPlacer(p *matrix.Placer) Option {
	return func(uc *UseCases) {
		uc.placer = p
	}
}

// WithPDFFont embeds a TrueType font in PDF reports so any script renders
func WithPDFFont(path string) Option {
	return func(uc *UseCases) {
		uc.pdfFont = path
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.generator == nil && uc.llm != nil {
		uc.generator = FactorySource(uc.llm)
	}
	if uc.placer == nil {
		uc.placer = matrix.New()
	}

	ai := &aiResolver{
		repo:      repo,
		keyring:   uc.keyring,
		generator: uc.generator,
	}

	uc.Project = NewProjectUseCase(repo)
	uc.Risk = NewRiskUseCase(repo, ai, uc.notifier)
	uc.Generate = NewGenerateUseCase(repo, ai, uc.notifier)
	uc.User = NewUserUseCase(repo, uc.keyring, uc.llm)
	uc.Export = NewExportUseCase(repo, uc.placer, uc.archiver)
	uc.Export.pdfFont = uc.pdfFont

	return uc
}
