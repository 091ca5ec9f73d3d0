package cli

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := getIndexConfig("")
	gt.A(t, cfg.Collections).Length(1)
	gt.Value(t, cfg.Collections[0].Name).Equal("projects")

	idx := cfg.Collections[0].Indexes
	gt.A(t, idx).Length(1)
	gt.Value(t, idx[0].Fields[0].Path).Equal("owner_id")
	gt.Value(t, idx[0].Fields[1].Path).Equal("updated_at")
	gt.Value(t, idx[0].Fields[1].Order).Equal(fireconf.OrderDescending)
}

func TestGetIndexConfigPrefix(t *testing.T) {
	cfg := getIndexConfig("staging")
	gt.Value(t, cfg.Collections[0].Name).Equal("staging_projects")
}
