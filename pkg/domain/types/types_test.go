package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

func TestCalculatePriority(t *testing.T) {
	t.Run("threshold boundaries", func(t *testing.T) {
		tests := []struct {
			name        string
			probability types.Score
			impact      types.Score
			want        types.Priority
		}{
			{"64 is critical", 8, 8, types.PriorityCritical},
			{"100 is critical", 10, 10, types.PriorityCritical},
			{"63 is high", 7, 9, types.PriorityHigh},
			{"36 is high", 6, 6, types.PriorityHigh},
			{"35 is medium", 5, 7, types.PriorityMedium},
			{"16 is medium", 4, 4, types.PriorityMedium},
			{"15 is low", 3, 5, types.PriorityLow},
			{"1 is low", 1, 1, types.PriorityLow},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				gt.Value(t, types.CalculatePriority(tt.probability, tt.impact)).Equal(tt.want)
			})
		}
	})

	t.Run("every cell of the grid follows the thresholds", func(t *testing.T) {
		for p := types.MinScore; p <= types.MaxScore; p++ {
			for i := types.MinScore; i <= types.MaxScore; i++ {
				score := p * i
				want := types.PriorityLow
				switch {
				case score >= 64:
					want = types.PriorityCritical
				case score >= 36:
					want = types.PriorityHigh
				case score >= 16:
					want = types.PriorityMedium
				}
				got := types.CalculatePriority(types.Score(p), types.Score(i))
				if got != want {
					t.Errorf("CalculatePriority(%d, %d) = %s, want %s", p, i, got, want)
				}
			}
		}
	})

	t.Run("symmetric in probability and impact", func(t *testing.T) {
		gt.Value(t, types.CalculatePriority(2, 9)).Equal(types.CalculatePriority(9, 2))
	})
}

func TestPriority_Rank(t *testing.T) {
	prev := 5
	for _, p := range types.AllPriorities() {
		gt.Number(t, p.Rank()).Less(prev)
		prev = p.Rank()
	}
	gt.Number(t, types.Priority("unknown").Rank()).Equal(0)
}

func TestScore(t *testing.T) {
	gt.NoError(t, types.Score(1).Validate())
	gt.NoError(t, types.Score(10).Validate())
	gt.Error(t, types.Score(0).Validate())
	gt.Error(t, types.Score(11).Validate())

	gt.Value(t, types.ClampScore(-3)).Equal(types.Score(1))
	gt.Value(t, types.ClampScore(42)).Equal(types.Score(10))
	gt.Value(t, types.ClampScore(7)).Equal(types.Score(7))
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  types.Category
	}{
		{"security", types.CategorySecurity},
		{"  FINANCIAL ", types.CategoryFinancial},
		{"Technical Risk", types.CategoryTechnical},
		{"schedule/timeline", types.CategorySchedule},
		{"weather", types.CategoryOther},
		{"", types.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gt.Value(t, types.NormalizeCategory(tt.input)).Equal(tt.want)
		})
	}
}

func TestParseEnums(t *testing.T) {
	t.Run("risk status", func(t *testing.T) {
		for _, s := range types.AllRiskStatuses() {
			got, err := types.ParseRiskStatus(s.String())
			gt.NoError(t, err)
			gt.Value(t, got).Equal(s)
		}
		_, err := types.ParseRiskStatus("archived")
		gt.Error(t, err)
	})

	t.Run("team role", func(t *testing.T) {
		got, err := types.ParseTeamRole("manager")
		gt.NoError(t, err)
		gt.Value(t, got).Equal(types.TeamRoleManager)

		_, err = types.ParseTeamRole("owner")
		gt.Error(t, err)
	})

	t.Run("category", func(t *testing.T) {
		_, err := types.ParseCategory("Security")
		gt.Error(t, err)
		got, err := types.ParseCategory("security")
		gt.NoError(t, err)
		gt.Value(t, got).Equal(types.CategorySecurity)
	})

	t.Run("ai provider", func(t *testing.T) {
		got, err := types.ParseAIProvider("deepseek")
		gt.NoError(t, err)
		gt.Value(t, got).Equal(types.AIProviderDeepSeek)

		_, err = types.ParseAIProvider("mistral")
		gt.Error(t, err)
	})
}

func TestIDs(t *testing.T) {
	gt.NoError(t, types.NewProjectID().Validate())
	gt.NoError(t, types.NewRiskID().Validate())
	gt.Error(t, types.ProjectID("not-a-uuid").Validate())
	gt.Error(t, types.RiskID("").Validate())
	gt.Value(t, types.NewRiskID()).NotEqual(types.NewRiskID())
}
