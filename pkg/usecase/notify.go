package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/slack"
	"github.com/secmon-lab/riskpilot/pkg/utils/async"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
)

// Notifier announces risks that reached critical priority
type Notifier interface {
	NotifyCriticalRisk(ctx context.Context, p *model.Project, r *model.Risk) error
}

// SlackNotifier posts critical risk alerts to a single channel
type SlackNotifier struct {
	slack     slack.Service
	channelID string
	baseURL   string
}

// NewSlackNotifier creates a notifier. baseURL is the public URL of the web
// client and may be empty.
func NewSlackNotifier(svc slack.Service, channelID, baseURL string) *SlackNotifier {
	return &SlackNotifier{
		slack:     svc,
		channelID: channelID,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (n *SlackNotifier) NotifyCriticalRisk(ctx context.Context, p *model.Project, r *model.Risk) error {
	var projectURL string
	if n.baseURL != "" {
		projectURL = n.baseURL + "/projects/" + p.ID.String()
	}

	blocks, text := slack.BuildRiskAlert(p, r, projectURL)
	ts, err := n.slack.PostMessage(ctx, n.channelID, blocks, text)
	if err != nil {
		return goerr.Wrap(err, "failed to post critical risk alert",
			goerr.V(ProjectIDKey, p.ID), goerr.V(RiskIDKey, r.ID), goerr.V("channel_id", n.channelID))
	}

	attrs := []any{"project_id", p.ID, "risk_id", r.ID, "ts", ts}
	if name, err := n.slack.GetChannelName(ctx, n.channelID); err == nil {
		attrs = append(attrs, "channel", name)
	}
	logging.From(ctx).Info("critical risk alert posted", attrs...)
	return nil
}

// escalated reports whether r became critical with this write
func escalated(before, after *model.Risk) bool {
	if after.Priority() != types.PriorityCritical {
		return false
	}
	return before == nil || before.Priority() != types.PriorityCritical
}

func notifyAsync(ctx context.Context, n Notifier, p *model.Project, risks ...*model.Risk) {
	if n == nil || len(risks) == 0 {
		return
	}
	p = model.CopyProject(p)
	copied := make([]*model.Risk, len(risks))
	for i, r := range risks {
		copied[i] = model.CopyRisk(r)
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		for _, r := range copied {
			if err := n.NotifyCriticalRisk(ctx, p, r); err != nil {
				return err
			}
		}
		return nil
	})
}
