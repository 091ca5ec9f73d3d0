package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/cli/config"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMatrix() *cli.Command {
	var projectID string
	var noColor bool
	var seed uint64
	var repoCfg config.Repository

	flags := []cli.Flag{
		projectFlag(&projectID),
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &noColor,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "Seed for the point layout (0 is random)",
			Destination: &seed,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "matrix",
		Usage: "Print a project's probability/impact matrix",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if noColor {
				color.NoColor = true
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			p, err := loadProject(ctx, repo, projectID)
			if err != nil {
				return err
			}

			layout := newPlacer(seed).Place(p.Risks)
			if err := renderMatrix(os.Stdout, p, layout); err != nil {
				return goerr.Wrap(err, "failed to print matrix")
			}
			return nil
		},
	}
}

func priorityColor(p types.Priority) *color.Color {
	switch p {
	case types.PriorityCritical:
		return color.New(color.FgWhite, color.BgRed, color.Bold)
	case types.PriorityHigh:
		return color.New(color.FgBlack, color.BgHiYellow)
	case types.PriorityMedium:
		return color.New(color.FgBlack, color.BgYellow)
	default:
		return color.New(color.FgBlack, color.BgGreen)
	}
}

// renderMatrix prints the grid with probability 10 on the top row and impact
// growing to the right. Each cell shows its risk count on the priority color.
func renderMatrix(w io.Writer, p *model.Project, layout *matrix.Layout) error {
	bold := color.New(color.Bold)
	if _, err := bold.Fprintf(w, "%s (%d risks)\n\n", p.Name, len(p.Risks)); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Probability"); err != nil {
		return err
	}
	for prob := types.Score(types.MaxScore); prob >= types.MinScore; prob-- {
		if _, err := fmt.Fprintf(w, "%3d ", prob); err != nil {
			return err
		}
		for imp := types.Score(types.MinScore); imp <= types.MaxScore; imp++ {
			cell := "  . "
			if n := layout.CountAt(prob, imp); n > 0 {
				cell = fmt.Sprintf("%3d ", n)
			}
			if _, err := priorityColor(types.CalculatePriority(prob, imp)).Fprint(w, cell); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprint(w, "    "); err != nil {
		return err
	}
	for imp := types.Score(types.MinScore); imp <= types.MaxScore; imp++ {
		if _, err := fmt.Fprintf(w, "%3d ", imp); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n%44s\n\n", "Impact"); err != nil {
		return err
	}

	points := append([]matrix.Point(nil), layout.Points...)
	sort.SliceStable(points, func(i, j int) bool {
		si := int(points[i].Probability) * int(points[i].Impact)
		sj := int(points[j].Probability) * int(points[j].Impact)
		return si > sj
	})
	for _, pt := range points {
		label := priorityColor(pt.Priority).Sprintf(" %-8s ", pt.Priority)
		if _, err := fmt.Fprintf(w, "%s P%-2d I%-2d %s\n", label, pt.Probability, pt.Impact, pt.Title); err != nil {
			return err
		}
	}
	return nil
}
