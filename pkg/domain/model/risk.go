package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// Risk is a tracked hazard embedded in exactly one Project
type Risk struct {
	ID          types.RiskID
	ProjectID   types.ProjectID
	Title       string
	Description string
	Category    types.Category
	Probability types.Score
	Impact      types.Score
	Status      types.RiskStatus
	Assignee    string
	Tags        []string
	Mitigation  *MitigationStrategy
	Solutions   []Solution
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Score returns probability × impact
func (r *Risk) Score() int {
	return int(r.Probability) * int(r.Impact)
}

// Priority is always derived from probability and impact
func (r *Risk) Priority() types.Priority {
	return types.CalculatePriority(r.Probability, r.Impact)
}

// Validate checks the user editable fields of the risk
func (r *Risk) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return goerr.Wrap(ErrMissingRequired, "risk title is required", goerr.V(FieldNameKey, "title"))
	}
	if len(r.Title) > MaxNameLength {
		return goerr.Wrap(ErrFieldTooLong, "risk title is too long", goerr.V(FieldNameKey, "title"))
	}
	if len(r.Description) > MaxDescriptionLength {
		return goerr.Wrap(ErrFieldTooLong, "risk description is too long", goerr.V(FieldNameKey, "description"))
	}
	if !r.Category.IsValid() {
		return goerr.Wrap(ErrInvalidCategory, "unknown category", goerr.V(FieldValueKey, r.Category))
	}
	if err := r.Probability.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidScore, "probability out of range", goerr.V(FieldValueKey, int(r.Probability)))
	}
	if err := r.Impact.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidScore, "impact out of range", goerr.V(FieldValueKey, int(r.Impact)))
	}
	if !r.Status.IsValid() {
		return goerr.Wrap(ErrInvalidStatus, "unknown status", goerr.V(FieldValueKey, r.Status))
	}
	if len(r.Tags) > MaxTags {
		return goerr.Wrap(ErrFieldTooLong, "too many tags", goerr.V(FieldNameKey, "tags"))
	}
	return nil
}

// NormalizeTags trims, drops empty and de-duplicates tags preserving order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

// CopyRisk creates a deep copy of a risk
func CopyRisk(r *Risk) *Risk {
	if r == nil {
		return nil
	}
	copied := *r
	if r.Tags != nil {
		copied.Tags = append([]string(nil), r.Tags...)
	}
	copied.Mitigation = r.Mitigation.Copy()
	if r.Solutions != nil {
		copied.Solutions = make([]Solution, len(r.Solutions))
		for i, s := range r.Solutions {
			copied.Solutions[i] = s.Copy()
		}
	}
	return &copied
}
