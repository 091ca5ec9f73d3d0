package export_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/export"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
)

func sampleProject() *model.Project {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &model.Project{
		ID:          types.NewProjectID(),
		Name:        "Payment Platform: Migration!",
		Description: "Move card processing, step by step",
		OwnerEmail:  "owner@example.com",
		Team:        []model.TeamMember{{Email: "pm@example.com", Role: types.TeamRoleManager}},
		Risks: []*model.Risk{
			{
				ID:          types.NewRiskID(),
				Title:       "Outage, during cutover",
				Description: "Line one\nline two, with comma",
				Category:    types.CategoryTechnical,
				Probability: 8,
				Impact:      8,
				Status:      types.RiskStatusOpen,
				Assignee:    "sre@example.com",
				Tags:        []string{"infra", "cutover"},
				Mitigation: &model.MitigationStrategy{
					Overview:         "Blue/green, with rollback",
					ResponsibleRoles: []model.ResponsibleRole{{Role: "SRE", Responsibilities: []string{"rollback"}}},
					Costs:            []model.CostItem{{Item: "Extra capacity", Amount: "$3,000"}},
				},
				Solutions: []model.Solution{{Title: "Canary", Steps: []string{"1%", "10%", "100%"}, Effectiveness: "high"}},
				CreatedAt: created,
				UpdatedAt: created,
			},
			{
				ID:          types.NewRiskID(),
				Title:       "Vendor delay",
				Category:    types.CategorySchedule,
				Probability: 3,
				Impact:      4,
				Status:      types.RiskStatusMitigated,
				CreatedAt:   created,
				UpdatedAt:   created,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	p := sampleProject()

	var buf bytes.Buffer
	gt.NoError(t, export.WriteCSV(&buf, p.Risks)).Required()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	gt.Array(t, lines).Length(3).Required()
	gt.Value(t, lines[0]).Equal("ID,Title,Description,Category,Probability,Impact,Score,Priority,Status,Assignee,Tags,Mitigation,Created At,Updated At")

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	gt.NoError(t, err).Required()
	gt.Array(t, records).Length(3).Required()

	first := records[1]
	gt.Array(t, first).Length(len(export.CSVHeader)).Required()
	gt.Value(t, first[0]).Equal(p.Risks[0].ID.String())
	gt.Value(t, first[1]).Equal("Outage; during cutover")
	gt.Value(t, first[2]).Equal("Line one line two; with comma")
	gt.Value(t, first[6]).Equal("64")
	gt.Value(t, first[7]).Equal("critical")
	gt.Value(t, first[10]).Equal("infra; cutover")
	gt.Value(t, first[11]).Equal("Blue/green; with rollback")
	gt.Value(t, first[12]).Equal("2024-03-01T09:30:00Z")

	second := records[2]
	gt.Value(t, second[7]).Equal("low")
	gt.Value(t, second[11]).Equal("")

	for _, rec := range records[1:] {
		for _, field := range rec {
			gt.Bool(t, strings.ContainsAny(field, ",\n")).False()
		}
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, export.WriteCSV(&buf, nil)).Required()
	gt.Value(t, strings.Count(buf.String(), "\n")).Equal(1)
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)

	gt.Value(t, export.FileName(sampleProject(), "csv", now)).Equal("riskpilot-payment-platform-migration-20240102.csv")
	gt.Value(t, export.FileName(&model.Project{Name: "日本語"}, "pdf", now)).Equal("riskpilot-project-20240102.pdf")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := export.WritePDF(&buf, sampleProject(), export.PDFOptions{
		GeneratedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Placer:      matrix.New(matrix.WithRand(matrix.NewSeededRand(1))),
	})
	gt.NoError(t, err).Required()

	gt.Bool(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-"))).True()
	gt.Bool(t, buf.Len() > 1000).True()
}

func TestWritePDF_NonLatinWithoutFont(t *testing.T) {
	p := sampleProject()
	p.Name = "決済基盤"
	p.Risks[0].Title = "ベンダーロックイン"

	var buf bytes.Buffer
	gt.NoError(t, export.WritePDF(&buf, p, export.PDFOptions{})).Required()
	gt.Bool(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-"))).True()
}

func TestWritePDF_MissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := export.WritePDF(&buf, sampleProject(), export.PDFOptions{
		FontPath: filepath.Join(t.TempDir(), "missing.ttf"),
	})
	gt.Error(t, err)
	gt.Value(t, buf.Len()).Equal(0)
}

func TestWritePDF_WithUnicodeFont(t *testing.T) {
	fontPath := os.Getenv("TEST_PDF_FONT")
	if fontPath == "" {
		t.Skip("TEST_PDF_FONT not set")
	}

	p := sampleProject()
	p.Name = "決済基盤"
	var buf bytes.Buffer
	gt.NoError(t, export.WritePDF(&buf, p, export.PDFOptions{FontPath: fontPath})).Required()
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("/FontFile2"))).True()
}

func TestWritePDF_NoRisks(t *testing.T) {
	var buf bytes.Buffer
	err := export.WritePDF(&buf, &model.Project{Name: "Empty"}, export.PDFOptions{})
	gt.NoError(t, err).Required()
	gt.Bool(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-"))).True()
}
