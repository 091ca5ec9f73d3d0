package slack

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxTextBytes is the Block Kit limit for a section text
const maxTextBytes = 3000

// truncateToMaxBytes cuts s on a rune boundary so it fits in max bytes
func truncateToMaxBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "…"
	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// BuildRiskAlert renders the message posted when a risk reaches critical
// priority. projectURL may be empty.
func BuildRiskAlert(p *model.Project, r *model.Risk, projectURL string) ([]slack.Block, string) {
	fallback := fmt.Sprintf("Critical risk in %s: %s", p.Name, r.Title)

	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, truncateToMaxBytes(":rotating_light: Critical risk: "+r.Title, 150), true, false),
	)

	var body strings.Builder
	fmt.Fprintf(&body, "*Project:* %s\n", p.Name)
	if projectURL != "" {
		fmt.Fprintf(&body, "*Link:* <%s|open project>\n", projectURL)
	}
	if r.Description != "" {
		body.WriteString("\n")
		body.WriteString(r.Description)
	}
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(body.String(), maxTextBytes), false, false),
		[]*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Probability:* %d/10", r.Probability), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Impact:* %d/10", r.Impact), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Score:* %d (%s)", r.Score(), r.Priority()), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Category:* %s", r.Category), false, false),
		},
		nil,
	)

	blocks := []slack.Block{header, section}

	if r.Assignee != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "Assignee: "+r.Assignee, false, false),
		))
	}

	return blocks, fallback
}
