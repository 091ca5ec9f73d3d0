package usecase

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/archive"
	"github.com/secmon-lab/riskpilot/pkg/service/export"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
	"github.com/secmon-lab/riskpilot/pkg/utils/errutil"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

// Report is a rendered export ready to be downloaded
type Report struct {
	FileName    string
	ContentType string
	Data        []byte
	// ArchiveURL is set when the report was also archived
	ArchiveURL string
}

type ExportUseCase struct {
	repo     interfaces.Repository
	placer   *matrix.Placer
	archiver archive.Archiver
	pdfFont  string
	now      func() time.Time
}

func NewExportUseCase(repo interfaces.Repository, placer *matrix.Placer, archiver archive.Archiver) *ExportUseCase {
	if placer == nil {
		placer = matrix.New()
	}
	return &ExportUseCase{
		repo:     repo,
		placer:   placer,
		archiver: archiver,
		now:      time.Now,
	}
}

// Matrix lays out the project's risks on the probability/impact grid
func (uc *ExportUseCase) Matrix(ctx context.Context, projectID types.ProjectID) (*matrix.Layout, error) {
	p, _, _, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}
	return uc.placer.Place(p.Risks), nil
}

// Format is a report file format
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", goerr.Wrap(ErrInvalidInput, "unsupported export format", goerr.V("format", s))
	}
}

// CSV renders every risk of the project as CSV
func (uc *ExportUseCase) CSV(ctx context.Context, projectID types.ProjectID) (*Report, error) {
	p, _, _, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}
	return uc.Render(ctx, p, FormatCSV)
}

// PDF renders the full project report
func (uc *ExportUseCase) PDF(ctx context.Context, projectID types.ProjectID) (*Report, error) {
	p, _, _, err := loadProject(ctx, uc.repo, projectID)
	if err != nil {
		return nil, err
	}
	return uc.Render(ctx, p, FormatPDF)
}

// Render builds a report for an already loaded project without access
// checks. Operator commands use it directly.
func (uc *ExportUseCase) Render(ctx context.Context, p *model.Project, format Format) (*Report, error) {
	now := uc.now()
	var buf bytes.Buffer
	report := &Report{}

	switch format {
	case FormatCSV:
		if err := export.WriteCSV(&buf, p.Risks); err != nil {
			return nil, goerr.Wrap(err, "failed to export CSV", goerr.V(ProjectIDKey, p.ID))
		}
		report.ContentType = ContentTypeCSV
	case FormatPDF:
		if err := export.WritePDF(&buf, p, export.PDFOptions{GeneratedAt: now, Placer: uc.placer, FontPath: uc.pdfFont}); err != nil {
			return nil, goerr.Wrap(err, "failed to export PDF", goerr.V(ProjectIDKey, p.ID))
		}
		report.ContentType = ContentTypePDF
	default:
		return nil, goerr.Wrap(ErrInvalidInput, "unsupported export format", goerr.V("format", format))
	}

	report.FileName = export.FileName(p, string(format), now)
	report.Data = buf.Bytes()
	uc.archive(ctx, p.ID, report)
	return report, nil
}

// archive stores a copy of the report. The download does not depend on it,
// so failures are only reported.
func (uc *ExportUseCase) archive(ctx context.Context, projectID types.ProjectID, report *Report) {
	if uc.archiver == nil {
		return
	}

	url, err := uc.archiver.Store(ctx, projectID, report.FileName, report.ContentType, report.Data)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to archive report")
		return
	}
	report.ArchiveURL = url
	logging.From(ctx).Info("report archived", "project_id", projectID, "url", url)
}
