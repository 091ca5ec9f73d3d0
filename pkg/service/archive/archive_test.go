package archive_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/archive"
)

func TestGCS_Store(t *testing.T) {
	bucket := os.Getenv("TEST_STORAGE_BUCKET")
	if bucket == "" {
		t.Skip("TEST_STORAGE_BUCKET not set")
	}

	ctx := context.Background()
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	g, err := archive.NewGCS(ctx, bucket,
		archive.WithPrefix("test-reports"),
		archive.WithClock(func() time.Time { return fixed }),
	)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = g.Close() })

	pid := types.NewProjectID()
	gt.Value(t, g.ObjectName(pid, "report.csv")).Equal("test-reports/" + pid.String() + "/20240506T070809Z-report.csv")

	url, err := g.Store(ctx, pid, "report.csv", "text/csv", []byte("ID,Title\n"))
	gt.NoError(t, err).Required()
	gt.Bool(t, strings.HasPrefix(url, "gs://"+bucket+"/test-reports/")).True()
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	_, err := archive.NewGCS(context.Background(), "")
	gt.Error(t, err)
}
