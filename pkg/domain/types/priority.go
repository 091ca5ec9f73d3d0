package types

import "fmt"

// Priority is the severity tier derived from probability × impact
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Lower bounds (inclusive) of probability × impact for each tier
const (
	CriticalThreshold = 64
	HighThreshold     = 36
	MediumThreshold   = 16
)

// AllPriorities returns priorities from most to least severe
func AllPriorities() []Priority {
	return []Priority{
		PriorityCritical,
		PriorityHigh,
		PriorityMedium,
		PriorityLow,
	}
}

// CalculatePriority derives the priority tier. It is the only way a Priority
// is assigned to a risk.
func CalculatePriority(probability, impact Score) Priority {
	score := int(probability) * int(impact)
	switch {
	case score >= CriticalThreshold:
		return PriorityCritical
	case score >= HighThreshold:
		return PriorityHigh
	case score >= MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Rank orders priorities; higher is more severe
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// RGB returns the display color used by the matrix and reports
func (p Priority) RGB() (int, int, int) {
	switch p {
	case PriorityCritical:
		return 220, 38, 38
	case PriorityHigh:
		return 234, 88, 12
	case PriorityMedium:
		return 234, 179, 8
	default:
		return 22, 163, 74
	}
}

// String returns the string representation of the priority
func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}
