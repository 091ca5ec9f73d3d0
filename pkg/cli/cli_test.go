package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/repository/memory"
)

func newTestProject(t *testing.T) (*memory.Memory, *model.Project) {
	t.Helper()
	repo := memory.New()
	p, err := repo.Project().Create(context.Background(), &model.Project{
		Name:       "Payment Platform",
		OwnerID:    "owner-1",
		OwnerEmail: "owner@example.com",
		Risks: []*model.Risk{
			{ID: types.NewRiskID(), Title: "Key leak", Category: types.CategorySecurity, Probability: 9, Impact: 9, Status: types.RiskStatusOpen},
			{ID: types.NewRiskID(), Title: "Outage", Category: types.CategoryTechnical, Probability: 3, Impact: 4, Status: types.RiskStatusOpen},
			{ID: types.NewRiskID(), Title: "Outage again", Category: types.CategoryTechnical, Probability: 3, Impact: 4, Status: types.RiskStatusOpen},
		},
	})
	gt.NoError(t, err).Required()
	return repo, p
}

func TestRenderMatrix(t *testing.T) {
	color.NoColor = true
	_, p := newTestProject(t)

	var buf bytes.Buffer
	gt.NoError(t, renderMatrix(&buf, p, newPlacer(7).Place(p.Risks))).Required()

	out := buf.String()
	gt.String(t, out).Contains("Payment Platform (3 risks)")
	gt.String(t, out).Contains("Impact")

	lines := strings.Split(out, "\n")
	// title, blank, axis label, then probability 10 down to 1
	row3 := lines[3+7]
	gt.Bool(t, strings.HasPrefix(row3, "  3 ")).True()
	gt.String(t, row3).Contains("  2 ")

	// points are listed by score, highest first
	critical := strings.Index(out, "Key leak")
	low := strings.Index(out, "Outage")
	gt.Bool(t, critical > 0 && critical < low).True()
	gt.String(t, out).Contains("critical")
}

func TestLoadProject(t *testing.T) {
	repo, p := newTestProject(t)

	got, err := loadProject(context.Background(), repo, p.ID.String())
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("Payment Platform")

	_, err = loadProject(context.Background(), repo, types.NewProjectID().String())
	gt.Value(t, err).NotNil()

	_, err = loadProject(context.Background(), repo, "not-a-uuid")
	gt.Value(t, err).NotNil()
}

func TestReportPath(t *testing.T) {
	dir := t.TempDir()
	gt.Value(t, reportPath("", "a.csv")).Equal("a.csv")
	gt.Value(t, reportPath(dir, "a.csv")).Equal(filepath.Join(dir, "a.csv"))

	file := filepath.Join(dir, "out.csv")
	gt.Value(t, reportPath(file, "a.csv")).Equal(file)
}

func TestRunExportCommand(t *testing.T) {
	t.Setenv("RISKPILOT_REPOSITORY_BACKEND", "memory")
	out := filepath.Join(t.TempDir(), "risks.csv")

	// the memory backend starts empty in a fresh process, so the command
	// fails to find the project
	err := Run(context.Background(), []string{
		"riskpilot", "--log-output", "stderr", "export",
		"--project", types.NewProjectID().String(), "--format", "csv", "--output", out,
	}, "test")
	gt.Value(t, err).NotNil()

	_, statErr := os.Stat(out)
	gt.Bool(t, os.IsNotExist(statErr)).True()
}

func TestRunExportRejectsFormat(t *testing.T) {
	t.Setenv("RISKPILOT_REPOSITORY_BACKEND", "memory")
	err := Run(context.Background(), []string{
		"riskpilot", "--log-output", "stderr", "export",
		"--project", types.NewProjectID().String(), "--format", "xlsx",
	}, "test")
	gt.Value(t, err).NotNil()
}
