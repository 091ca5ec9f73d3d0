package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/cli/config"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var projectID string
	var format string
	var output string
	var seed uint64
	var repoCfg config.Repository
	var storageCfg config.Storage

	flags := []cli.Flag{
		projectFlag(&projectID),
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Report format (csv or pdf)",
			Value:       "csv",
			Destination: &format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file or directory. Defaults to the generated file name in the current directory; '-' writes to stdout",
			Destination: &output,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "Seed for the matrix layout, for reproducible PDF reports (0 is random)",
			Destination: &seed,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export a project's risks as CSV or a PDF report",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			f, err := usecase.ParseFormat(format)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			pdfFont, err := storageCfg.PDFFont()
			if err != nil {
				return err
			}
			opts := []usecase.Option{usecase.WithPlacer(newPlacer(seed)), usecase.WithPDFFont(pdfFont)}
			archiver, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure report archive")
			}
			if archiver != nil {
				defer func() {
					if err := archiver.Close(); err != nil {
						logger.Error("failed to close report archive", "error", err.Error())
					}
				}()
				opts = append(opts, usecase.WithArchiver(archiver))
			}
			uc := usecase.New(repo, opts...)

			p, err := loadProject(ctx, repo, projectID)
			if err != nil {
				return err
			}

			report, err := uc.Export.Render(ctx, p, f)
			if err != nil {
				return err
			}

			if output == "-" {
				if _, err := os.Stdout.Write(report.Data); err != nil {
					return goerr.Wrap(err, "failed to write report")
				}
				return nil
			}

			path := reportPath(output, report.FileName)
			if err := os.WriteFile(path, report.Data, 0600); err != nil {
				return goerr.Wrap(err, "failed to write report", goerr.V("path", path))
			}

			logger.Info("Report exported",
				"project_id", p.ID,
				"format", f,
				"path", path,
				"bytes", len(report.Data),
				"archive_url", report.ArchiveURL,
			)
			return nil
		},
	}
}

// reportPath resolves --output. An empty value or a directory keeps the
// generated file name.
func reportPath(output, fileName string) string {
	if output == "" {
		return fileName
	}
	if st, err := os.Stat(output); err == nil && st.IsDir() {
		return filepath.Join(output, fileName)
	}
	return output
}

func newPlacer(seed uint64) *matrix.Placer {
	if seed == 0 {
		return matrix.New()
	}
	return matrix.New(matrix.WithRand(matrix.NewSeededRand(seed)))
}
