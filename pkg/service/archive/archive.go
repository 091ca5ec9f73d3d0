// Package archive keeps copies of generated reports in Cloud Storage
package archive

import (
	"context"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// Archiver stores a finished report and returns its location
type Archiver interface {
	Store(ctx context.Context, projectID types.ProjectID, name, contentType string, data []byte) (string, error)
}

// GCS writes reports to gs://<bucket>/<prefix>/<project>/<timestamp>-<name>
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

type Option func(*GCS)

func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *GCS) {
		g.now = now
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{
		client: client,
		bucket: bucket,
		prefix: "reports",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ObjectName returns the object path for a report
func (g *GCS) ObjectName(projectID types.ProjectID, name string) string {
	stamp := g.now().UTC().Format("20060102T150405Z")
	return path.Join(g.prefix, projectID.String(), stamp+"-"+name)
}

func (g *GCS) Store(ctx context.Context, projectID types.ProjectID, name, contentType string, data []byte) (string, error) {
	object := g.ObjectName(projectID, name)

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"project_id": projectID.String(),
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write report", goerr.V("bucket", g.bucket), goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize report", goerr.V("bucket", g.bucket), goerr.V("object", object))
	}

	return "gs://" + g.bucket + "/" + object, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
