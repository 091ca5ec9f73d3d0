package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/repository/memory"
	"github.com/secmon-lab/riskpilot/pkg/service/export"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

type fakeArchiver struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (a *fakeArchiver) Store(ctx context.Context, projectID types.ProjectID, name, contentType string, data []byte) (string, error) {
	if a.fail {
		return "", goerr.New("bucket unavailable")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, name)
	return "gs://reports/" + projectID.String() + "/" + name, nil
}

func TestExportUseCase(t *testing.T) {
	archiver := &fakeArchiver{}
	uc := usecase.New(memory.New(),
		usecase.WithArchiver(archiver),
		usecase.WithPlacer(matrix.New(matrix.WithRand(matrix.NewSeededRand(1)))),
	)
	id := setupProject(t, uc)

	for _, in := range []usecase.RiskInput{
		riskInput("Outage, regional", 5, 5),
		riskInput("Outage, global", 5, 5),
		riskInput("Key leak", 9, 9),
	} {
		_, err := uc.Risk.Create(ownerCtx(), id, in)
		gt.NoError(t, err).Required()
	}

	t.Run("csv", func(t *testing.T) {
		report, err := uc.Export.CSV(viewerCtx(), id)
		gt.NoError(t, err).Required()
		gt.Value(t, report.ContentType).Equal(usecase.ContentTypeCSV)
		gt.String(t, report.FileName).Contains("riskpilot-payment-platform-")
		gt.String(t, report.ArchiveURL).Contains("gs://reports/")

		records, err := csv.NewReader(bytes.NewReader(report.Data)).ReadAll()
		gt.NoError(t, err).Required()
		gt.A(t, records).Length(4)
		gt.Value(t, records[0]).Equal(export.CSVHeader)
		gt.Value(t, records[1][1]).Equal("Outage; regional")
	})

	t.Run("pdf", func(t *testing.T) {
		report, err := uc.Export.PDF(ownerCtx(), id)
		gt.NoError(t, err).Required()
		gt.Value(t, report.ContentType).Equal(usecase.ContentTypePDF)
		gt.Bool(t, bytes.HasPrefix(report.Data, []byte("%PDF"))).True()
	})

	t.Run("matrix", func(t *testing.T) {
		layout, err := uc.Export.Matrix(memberCtx(), id)
		gt.NoError(t, err).Required()
		gt.A(t, layout.Points).Length(3)
		gt.Value(t, layout.CountAt(5, 5)).Equal(2)
		gt.Value(t, layout.CountAt(9, 9)).Equal(1)
	})

	t.Run("outsider", func(t *testing.T) {
		_, err := uc.Export.CSV(outsideCtx(), id)
		gt.Error(t, err).Is(usecase.ErrProjectNotFound)
	})

	t.Run("archive failure does not fail the download", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithArchiver(&fakeArchiver{fail: true}))
		id := setupProject(t, uc)
		report, err := uc.Export.CSV(ownerCtx(), id)
		gt.NoError(t, err).Required()
		gt.Value(t, report.ArchiveURL).Equal("")
	})
}

func TestParseFormat(t *testing.T) {
	f, err := usecase.ParseFormat(" PDF ")
	gt.NoError(t, err)
	gt.Value(t, f).Equal(usecase.FormatPDF)

	f, err = usecase.ParseFormat("csv")
	gt.NoError(t, err)
	gt.Value(t, f).Equal(usecase.FormatCSV)

	_, err = usecase.ParseFormat("xlsx")
	gt.Error(t, err).Is(usecase.ErrInvalidInput)
}

func TestExportUseCase_Render(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo)
	id := setupProject(t, uc)
	_, err := uc.Risk.Create(ownerCtx(), id, riskInput("Vendor lock-in", 4, 6))
	gt.NoError(t, err).Required()

	p, err := repo.Project().Get(context.Background(), id)
	gt.NoError(t, err).Required()

	report, err := uc.Export.Render(context.Background(), p, usecase.FormatPDF)
	gt.NoError(t, err).Required()
	gt.Value(t, report.ContentType).Equal(usecase.ContentTypePDF)
	gt.String(t, report.FileName).Contains(".pdf")
	gt.Bool(t, bytes.HasPrefix(report.Data, []byte("%PDF"))).True()
	gt.Value(t, report.ArchiveURL).Equal("")
}

func TestExportUseCase_RenderUsesPDFFont(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithPDFFont(filepath.Join(t.TempDir(), "missing.ttf")))
	id := setupProject(t, uc)

	p, err := repo.Project().Get(context.Background(), id)
	gt.NoError(t, err).Required()

	_, err = uc.Export.Render(context.Background(), p, usecase.FormatPDF)
	gt.Error(t, err)

	report, err := uc.Export.Render(context.Background(), p, usecase.FormatCSV)
	gt.NoError(t, err).Required()
	gt.Value(t, report.ContentType).Equal(usecase.ContentTypeCSV)
}
