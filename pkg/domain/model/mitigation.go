package model

// MitigationStrategy is a remediation plan attached to a risk. Its content is
// usually generated by an LLM and coerced into this shape.
type MitigationStrategy struct {
	Overview         string
	ResponsibleRoles []ResponsibleRole
	Timeline         []TimelinePhase
	Resources        []string
	SuccessMetrics   []string
	Costs            []CostItem
	Challenges       []string
}

type ResponsibleRole struct {
	Role             string
	Responsibilities []string
}

type TimelinePhase struct {
	Phase      string
	Duration   string
	Activities []string
}

type CostItem struct {
	Item   string
	Amount string
}

// Solution is a concrete remediation option for a risk
type Solution struct {
	Title         string
	Description   string
	Steps         []string
	EstimatedCost string
	Timeline      string
	Effectiveness string
}

// IsEmpty reports whether the strategy carries no content
func (m *MitigationStrategy) IsEmpty() bool {
	return m == nil ||
		(m.Overview == "" && len(m.ResponsibleRoles) == 0 && len(m.Timeline) == 0 &&
			len(m.Resources) == 0 && len(m.SuccessMetrics) == 0 && len(m.Costs) == 0 &&
			len(m.Challenges) == 0)
}

// Copy returns a deep copy, nil for nil
func (m *MitigationStrategy) Copy() *MitigationStrategy {
	if m == nil {
		return nil
	}
	copied := &MitigationStrategy{
		Overview:       m.Overview,
		Resources:      copyStrings(m.Resources),
		SuccessMetrics: copyStrings(m.SuccessMetrics),
		Challenges:     copyStrings(m.Challenges),
	}
	if m.ResponsibleRoles != nil {
		copied.ResponsibleRoles = make([]ResponsibleRole, len(m.ResponsibleRoles))
		for i, r := range m.ResponsibleRoles {
			copied.ResponsibleRoles[i] = ResponsibleRole{Role: r.Role, Responsibilities: copyStrings(r.Responsibilities)}
		}
	}
	if m.Timeline != nil {
		copied.Timeline = make([]TimelinePhase, len(m.Timeline))
		for i, p := range m.Timeline {
			copied.Timeline[i] = TimelinePhase{Phase: p.Phase, Duration: p.Duration, Activities: copyStrings(p.Activities)}
		}
	}
	if m.Costs != nil {
		copied.Costs = append([]CostItem(nil), m.Costs...)
	}
	return copied
}

// Copy returns a deep copy of the solution
func (s Solution) Copy() Solution {
	s.Steps = copyStrings(s.Steps)
	return s
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
