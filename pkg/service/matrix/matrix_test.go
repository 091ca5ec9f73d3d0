package matrix_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/service/matrix"
)

func risksInCell(n int, probability, impact types.Score) []*model.Risk {
	risks := make([]*model.Risk, n)
	for i := range risks {
		risks[i] = &model.Risk{
			ID:          types.NewRiskID(),
			Title:       fmt.Sprintf("risk %d", i),
			Probability: probability,
			Impact:      impact,
		}
	}
	return risks
}

func TestPlace_FirstPointAtCellCenter(t *testing.T) {
	p := matrix.New(matrix.WithRand(matrix.NewSeededRand(1)))

	layout := p.Place(risksInCell(1, 10, 1))
	gt.Array(t, layout.Points).Length(1).Required()

	// probability 10 is the top row, impact 1 the left column
	gt.Value(t, layout.Points[0].X).Equal(30.0)
	gt.Value(t, layout.Points[0].Y).Equal(30.0)
	gt.Bool(t, layout.Points[0].Fallback).False()

	cx, cy := p.CellCenter(1, 10)
	gt.Value(t, cx).Equal(570.0)
	gt.Value(t, cy).Equal(570.0)
}

func TestPlace_AcceptedPointsKeepDistance(t *testing.T) {
	for _, n := range []int{2, 5, 13, 30} {
		t.Run(fmt.Sprintf("%d points", n), func(t *testing.T) {
			p := matrix.New(matrix.WithRand(matrix.NewSeededRand(uint64(n))))
			layout := p.Place(risksInCell(n, 5, 5))
			gt.Array(t, layout.Points).Length(n).Required()

			for i, pt := range layout.Points {
				if pt.Fallback {
					continue
				}
				for _, prev := range layout.Points[:i] {
					d := math.Hypot(pt.X-prev.X, pt.Y-prev.Y)
					gt.Bool(t, d > 2*layout.PointRadius).True()
				}
			}
		})
	}
}

func TestPlace_PointsStayInsideCell(t *testing.T) {
	p := matrix.New(matrix.WithRand(matrix.NewSeededRand(7)))
	layout := p.Place(risksInCell(20, 3, 8))

	// impact 8 -> column 7, probability 3 -> row 7
	minX, maxX := 7*layout.CellSize, 8*layout.CellSize
	minY, maxY := 7*layout.CellSize, 8*layout.CellSize
	for _, pt := range layout.Points {
		gt.Bool(t, pt.X >= minX && pt.X <= maxX).True()
		gt.Bool(t, pt.Y >= minY && pt.Y <= maxY).True()
	}
}

func TestPlace_FallbackWhenCellIsFull(t *testing.T) {
	// A radius larger than half the cell leaves no room for a second point
	p := matrix.New(
		matrix.WithPointRadius(40),
		matrix.WithRand(matrix.NewSeededRand(3)),
	)
	layout := p.Place(risksInCell(3, 2, 2))
	gt.Array(t, layout.Points).Length(3).Required()

	gt.Bool(t, layout.Points[0].Fallback).False()
	gt.Bool(t, layout.Points[1].Fallback).True()
	gt.Bool(t, layout.Points[2].Fallback).True()
}

func TestPlace_Deterministic(t *testing.T) {
	risks := risksInCell(25, 9, 9)

	a := matrix.New(matrix.WithRand(matrix.NewSeededRand(42))).Place(risks)
	b := matrix.New(matrix.WithRand(matrix.NewSeededRand(42))).Place(risks)

	gt.Array(t, a.Points).Length(len(b.Points)).Required()
	for i := range a.Points {
		gt.Value(t, a.Points[i].X).Equal(b.Points[i].X)
		gt.Value(t, a.Points[i].Y).Equal(b.Points[i].Y)
	}
}

func TestPlace_CellCountsAndPriority(t *testing.T) {
	risks := append(risksInCell(3, 8, 8), risksInCell(2, 2, 3)...)
	risks = append(risks, &model.Risk{ID: types.NewRiskID(), Probability: 0, Impact: 12}, nil)

	layout := matrix.New(matrix.WithRand(matrix.NewSeededRand(5))).Place(risks)

	gt.Array(t, layout.Points).Length(6)
	gt.Array(t, layout.Cells).Length(3)
	gt.Value(t, layout.CountAt(8, 8)).Equal(3)
	gt.Value(t, layout.CountAt(2, 3)).Equal(2)
	gt.Value(t, layout.CountAt(1, 10)).Equal(1)
	gt.Value(t, layout.CountAt(4, 4)).Equal(0)

	gt.Value(t, layout.Points[0].Priority).Equal(types.PriorityCritical)
	gt.Value(t, layout.Points[3].Priority).Equal(types.PriorityLow)
	gt.Value(t, layout.Points[5].Probability).Equal(types.Score(1))
	gt.Value(t, layout.Points[5].Impact).Equal(types.Score(10))
}
