package llm

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

const systemPrompt = `You are an experienced risk management consultant. You identify project risks and design practical responses.
Always answer with a single JSON value and no other text. Use the same language as the project description.`

func categoryList() string {
	names := make([]string, 0, len(types.AllCategories()))
	for _, c := range types.AllCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func writeProject(sb *strings.Builder, p *model.Project) {
	fmt.Fprintf(sb, "## Project\n\nName: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(sb, "Description: %s\n", p.Description)
	}
	sb.WriteString("\n")
}

func writeRisk(sb *strings.Builder, r *model.Risk) {
	sb.WriteString("## Risk\n\n")
	fmt.Fprintf(sb, "Title: %s\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(sb, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(sb, "Category: %s\n", r.Category)
	fmt.Fprintf(sb, "Probability: %d/10\nImpact: %d/10\nPriority: %s\n\n", r.Probability, r.Impact, r.Priority())
}

// BuildRiskPrompt asks for one new risk. known lists titles the model must
// not repeat.
func BuildRiskPrompt(p *model.Project, known []string, guidance string) string {
	var sb strings.Builder
	writeProject(&sb, p)

	if len(known) > 0 {
		sb.WriteString("## Risks already identified (do not repeat)\n\n")
		for _, title := range known {
			fmt.Fprintf(&sb, "- %s\n", title)
		}
		sb.WriteString("\n")
	}
	if guidance = strings.TrimSpace(guidance); guidance != "" {
		fmt.Fprintf(&sb, "## Additional guidance\n\n%s\n\n", guidance)
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("Identify one new, specific risk for this project. Respond with a JSON object:\n")
	sb.WriteString(`{"title": string, "description": string, "category": string, "probability": integer 1-10, "impact": integer 1-10, "tags": [string]}`)
	fmt.Fprintf(&sb, "\n\ncategory must be one of: %s.\n", categoryList())
	return sb.String()
}

// BuildMitigationPrompt asks for a mitigation strategy for r
func BuildMitigationPrompt(p *model.Project, r *model.Risk) string {
	var sb strings.Builder
	writeProject(&sb, p)
	writeRisk(&sb, r)

	sb.WriteString("## Task\n\n")
	sb.WriteString("Design a mitigation strategy for this risk. Respond with a JSON object:\n")
	sb.WriteString(`{"overview": string, "responsibleRoles": [{"role": string, "responsibilities": [string]}], ` +
		`"timeline": [{"phase": string, "duration": string, "activities": [string]}], "resources": [string], ` +
		`"successMetrics": [string], "costs": [{"item": string, "amount": string}], "challenges": [string]}`)
	sb.WriteString("\n")
	return sb.String()
}

// BuildSolutionsPrompt asks for concrete solutions to r. The mitigation is
// included when present so solutions stay consistent with it.
func BuildSolutionsPrompt(p *model.Project, r *model.Risk) string {
	var sb strings.Builder
	writeProject(&sb, p)
	writeRisk(&sb, r)

	if !r.Mitigation.IsEmpty() && r.Mitigation.Overview != "" {
		fmt.Fprintf(&sb, "## Mitigation strategy\n\n%s\n\n", r.Mitigation.Overview)
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("Propose 2 to 4 concrete solutions for this risk. Respond with a JSON object:\n")
	sb.WriteString(`{"solutions": [{"title": string, "description": string, "steps": [string], ` +
		`"estimatedCost": string, "timeline": string, "effectiveness": "low" | "medium" | "high"}]}`)
	sb.WriteString("\n")
	return sb.String()
}
