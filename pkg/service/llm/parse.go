package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

var (
	fencedBlock  = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")
	jsonStart    = regexp.MustCompile(`[\[{]`)
	leadingScore = regexp.MustCompile(`-?\d+(\.\d+)?`)
)

// ExtractJSON decodes the first JSON object or array found in text. Models
// often wrap JSON in prose or markdown fences.
func ExtractJSON(text string) (any, error) {
	candidates := []string{}
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		for _, loc := range jsonStart.FindAllStringIndex(c, -1) {
			var v any
			dec := json.NewDecoder(strings.NewReader(c[loc[0]:]))
			dec.UseNumber()
			if err := dec.Decode(&v); err == nil {
				return v, nil
			}
		}
	}

	return nil, goerr.Wrap(ErrInvalidResponse, "no JSON found in response", goerr.V("response", truncate(text, 500)))
}

// ParseRisk coerces the first risk found in text. An object with a "risks"
// array or a bare array yields its first element.
func ParseRisk(text string) (*model.Risk, error) {
	v, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	obj, ok := firstObject(v, "risks", "risk")
	if !ok {
		return nil, goerr.Wrap(ErrInvalidResponse, "risk object not found", goerr.V("response", truncate(text, 500)))
	}

	risk := &model.Risk{
		Title:       asString(obj["title"]),
		Description: asString(obj["description"]),
		Category:    types.NormalizeCategory(asString(obj["category"])),
		Probability: asScore(obj["probability"]),
		Impact:      asScore(obj["impact"]),
		Status:      types.RiskStatusOpen,
		Tags:        model.NormalizeTags(asStrings(obj["tags"])),
	}
	risk.Title = cutUTF8(risk.Title, model.MaxNameLength)
	risk.Description = cutUTF8(risk.Description, model.MaxDescriptionLength)
	if len(risk.Tags) > model.MaxTags {
		risk.Tags = risk.Tags[:model.MaxTags]
	}
	if strings.TrimSpace(risk.Title) == "" {
		return nil, goerr.Wrap(ErrInvalidResponse, "risk has no title", goerr.V("response", truncate(text, 500)))
	}
	return risk, nil
}

// ParseMitigation coerces a mitigation strategy. Missing sections become
// empty lists.
func ParseMitigation(text string) (*model.MitigationStrategy, error) {
	v, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	obj, ok := firstObject(v, "mitigation", "mitigationStrategy", "mitigation_strategy")
	if !ok {
		return nil, goerr.Wrap(ErrInvalidResponse, "mitigation object not found", goerr.V("response", truncate(text, 500)))
	}

	m := &model.MitigationStrategy{
		Overview:         asString(pick(obj, "overview", "summary")),
		ResponsibleRoles: []model.ResponsibleRole{},
		Timeline:         []model.TimelinePhase{},
		Resources:        asStrings(pick(obj, "resources", "requiredResources")),
		SuccessMetrics:   asStrings(pick(obj, "successMetrics", "success_metrics", "metrics")),
		Costs:            []model.CostItem{},
		Challenges:       asStrings(pick(obj, "challenges", "implementationChallenges", "implementation_challenges")),
	}

	for _, item := range asObjects(pick(obj, "responsibleRoles", "responsible_roles", "roles")) {
		m.ResponsibleRoles = append(m.ResponsibleRoles, model.ResponsibleRole{
			Role:             asString(item["role"]),
			Responsibilities: asStrings(item["responsibilities"]),
		})
	}
	for _, item := range asObjects(pick(obj, "timeline", "phases")) {
		m.Timeline = append(m.Timeline, model.TimelinePhase{
			Phase:      asString(item["phase"]),
			Duration:   asString(item["duration"]),
			Activities: asStrings(item["activities"]),
		})
	}
	for _, item := range asObjects(pick(obj, "costs", "estimatedCosts", "estimated_costs")) {
		m.Costs = append(m.Costs, model.CostItem{
			Item:   asString(pick(item, "item", "name")),
			Amount: asString(pick(item, "amount", "cost")),
		})
	}

	if m.IsEmpty() {
		return nil, goerr.Wrap(ErrInvalidResponse, "mitigation is empty", goerr.V("response", truncate(text, 500)))
	}
	return m, nil
}

// ParseSolutions coerces a solution list from an array or an object with a
// "solutions" array
func ParseSolutions(text string) ([]model.Solution, error) {
	v, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	switch t := v.(type) {
	case []any:
		items = asObjects(t)
	case map[string]any:
		if list, ok := t["solutions"]; ok {
			items = asObjects(list)
		} else {
			items = []map[string]any{t}
		}
	}

	solutions := make([]model.Solution, 0, len(items))
	for _, item := range items {
		s := model.Solution{
			Title:         asString(item["title"]),
			Description:   asString(item["description"]),
			Steps:         asStrings(pick(item, "steps", "implementationSteps", "implementation_steps")),
			EstimatedCost: asString(pick(item, "estimatedCost", "estimated_cost", "cost")),
			Timeline:      asString(item["timeline"]),
			Effectiveness: asString(item["effectiveness"]),
		}
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		solutions = append(solutions, s)
	}

	if len(solutions) == 0 {
		return nil, goerr.Wrap(ErrInvalidResponse, "no solutions in response", goerr.V("response", truncate(text, 500)))
	}
	return solutions, nil
}

func firstObject(v any, keys ...string) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		for _, key := range keys {
			if inner, ok := t[key]; ok {
				return firstObject(inner)
			}
		}
		return t, true
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

func pick(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		return strings.Join(asStrings(t), "; ")
	default:
		return fmt.Sprint(t)
	}
}

// asStrings accepts an array of scalars or a newline separated string
func asStrings(v any) []string {
	result := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				item = pick(obj, "name", "title", "description", "value")
			}
			if s := asString(item); s != "" {
				result = append(result, s)
			}
		}
	case string:
		for _, line := range strings.Split(t, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
			if line != "" {
				result = append(result, line)
			}
		}
	case nil:
	default:
		if s := asString(t); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func asObjects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	result := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			result = append(result, obj)
		}
	}
	return result
}

// asScore reads numbers, numeric strings and forms like "7/10", rounding and
// clamping into 1-10. Missing values fall back to the middle of the scale.
func asScore(v any) types.Score {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 5
		}
		f = parsed
	case float64:
		f = t
	case string:
		m := leadingScore.FindString(t)
		if m == "" {
			return 5
		}
		parsed, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 5
		}
		f = parsed
	default:
		return 5
	}
	return types.ClampScore(int(math.Round(f)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutUTF8(s, n) + "..."
}

// cutUTF8 shortens s to at most n bytes without splitting a rune
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
