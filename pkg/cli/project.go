package cli

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func projectFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "project",
		Aliases:     []string{"p"},
		Usage:       "Project ID",
		Required:    true,
		Destination: dst,
	}
}

// loadProject reads a project for operator commands, which bypass the
// per-user access checks of the API
func loadProject(ctx context.Context, repo interfaces.Repository, id string) (*model.Project, error) {
	projectID := types.ProjectID(id)
	if err := projectID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid project ID", goerr.V("project_id", id))
	}

	p, err := repo.Project().Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.New("project not found", goerr.V("project_id", id))
		}
		return nil, goerr.Wrap(err, "failed to load project", goerr.V("project_id", id))
	}
	return p, nil
}
