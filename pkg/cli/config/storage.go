package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Storage holds configuration for exported reports and their archive
type Storage struct {
	bucket  string
	prefix  string
	pdfFont string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket keeping a copy of every exported report",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISKPILOT_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix for archived reports",
			Category:    "Storage",
			Value:       "reports",
			Sources:     cli.EnvVars("RISKPILOT_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.StringFlag{
			Name:        "pdf-font",
			Usage:       "TrueType font embedded in PDF reports. Without it only Latin-1 text renders",
			Category:    "Storage",
			Sources:     cli.EnvVars("RISKPILOT_PDF_FONT"),
			Destination: &x.pdfFont,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("pdf_font", x.pdfFont),
	)
}

// IsConfigured reports whether archiving is enabled
func (x *Storage) IsConfigured() bool {
	return x.bucket != ""
}

// Configure returns the archiver, or nil when no bucket is set. The caller
// closes it.
func (x *Storage) Configure(ctx context.Context) (*archive.GCS, error) {
	if x.bucket == "" {
		return nil, nil
	}
	gcs, err := archive.NewGCS(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize report archive", goerr.V("bucket", x.bucket))
	}
	return gcs, nil
}

// PDFFont returns the --pdf-font path after checking that it is readable
func (x *Storage) PDFFont() (string, error) {
	if x.pdfFont == "" {
		return "", nil
	}
	if _, err := os.Stat(x.pdfFont); err != nil {
		return "", goerr.Wrap(ErrInvalidConfig, "cannot read --pdf-font",
			goerr.V(FlagKey, "pdf-font"), goerr.V(ValueKey, x.pdfFont), goerr.V("cause", err.Error()))
	}
	return x.pdfFont, nil
}
