// Package matrix lays out risks on the 10x10 probability/impact grid.
//
// Coordinates are in canvas units with the origin at the top-left corner.
// Impact grows to the right and probability grows upwards, so the cell for
// probability 10 is the top row.
package matrix

import (
	"math"
	"math/rand/v2"

	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

const (
	// GridSize is the number of cells on each axis
	GridSize = int(types.MaxScore)

	DefaultCellSize    = 60.0
	DefaultPointRadius = 6.0
	DefaultMaxAttempts = 50

	// spreadRatio bounds random candidates to this share of the cell radius
	spreadRatio = 0.4
	// jitterRatio bounds the fallback offset to this share of the point radius
	jitterRatio = 0.5
)

// Rand is the random source used for polar candidates and fallback jitter
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// NewSeededRand returns a deterministic source for tests and reproducible
// reports
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Placer struct {
	cellSize    float64
	pointRadius float64
	maxAttempts int
	rnd         Rand
}

type Option func(*Placer)

func WithCellSize(size float64) Option {
	return func(p *Placer) {
		p.cellSize = size
	}
}

func WithPointRadius(r float64) Option {
	return func(p *Placer) {
		p.pointRadius = r
	}
}

func WithMaxAttempts(n int) Option {
	return func(p *Placer) {
		p.maxAttempts = n
	}
}

func WithRand(r Rand) Option {
	return func(p *Placer) {
		p.rnd = r
	}
}

func New(opts ...Option) *Placer {
	p := &Placer{
		cellSize:    DefaultCellSize,
		pointRadius: DefaultPointRadius,
		maxAttempts: DefaultMaxAttempts,
		rnd:         globalRand{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Point is the rendered position of one risk
type Point struct {
	RiskID      types.RiskID
	Title       string
	Probability types.Score
	Impact      types.Score
	Priority    types.Priority
	X           float64
	Y           float64
	// Fallback is set when no candidate kept the required distance and the
	// point was jittered around the cell center instead
	Fallback bool
}

// Cell is the number of risks sharing one (probability, impact) cell
type Cell struct {
	Probability types.Score
	Impact      types.Score
	Priority    types.Priority
	Count       int
}

type Layout struct {
	CellSize    float64
	PointRadius float64
	Width       float64
	Height      float64
	Points      []Point
	Cells       []Cell
}

// CountAt returns the number of risks in the cell
func (l *Layout) CountAt(probability, impact types.Score) int {
	for _, c := range l.Cells {
		if c.Probability == probability && c.Impact == impact {
			return c.Count
		}
	}
	return 0
}

type cellKey struct {
	probability types.Score
	impact      types.Score
}

// Place computes positions for risks in input order. Scores outside 1-10
// are clamped onto the grid.
func (p *Placer) Place(risks []*model.Risk) *Layout {
	layout := &Layout{
		CellSize:    p.cellSize,
		PointRadius: p.pointRadius,
		Width:       p.cellSize * float64(GridSize),
		Height:      p.cellSize * float64(GridSize),
		Points:      make([]Point, 0, len(risks)),
	}

	placed := make(map[cellKey][]Point)
	var order []cellKey

	for _, risk := range risks {
		if risk == nil {
			continue
		}
		key := cellKey{
			probability: types.ClampScore(int(risk.Probability)),
			impact:      types.ClampScore(int(risk.Impact)),
		}
		if _, ok := placed[key]; !ok {
			order = append(order, key)
		}

		x, y, fallback := p.position(key, placed[key])
		pt := Point{
			RiskID:      risk.ID,
			Title:       risk.Title,
			Probability: key.probability,
			Impact:      key.impact,
			Priority:    types.CalculatePriority(key.probability, key.impact),
			X:           x,
			Y:           y,
			Fallback:    fallback,
		}
		placed[key] = append(placed[key], pt)
		layout.Points = append(layout.Points, pt)
	}

	for _, key := range order {
		layout.Cells = append(layout.Cells, Cell{
			Probability: key.probability,
			Impact:      key.impact,
			Priority:    types.CalculatePriority(key.probability, key.impact),
			Count:       len(placed[key]),
		})
	}

	return layout
}

// CellCenter returns the canvas position of the center of a cell
func (p *Placer) CellCenter(probability, impact types.Score) (float64, float64) {
	col := float64(impact - 1)
	row := float64(GridSize) - float64(probability)
	return (col + 0.5) * p.cellSize, (row + 0.5) * p.cellSize
}

func (p *Placer) position(key cellKey, existing []Point) (float64, float64, bool) {
	cx, cy := p.CellCenter(key.probability, key.impact)
	if len(existing) == 0 {
		return cx, cy, false
	}

	for i, c := range p.candidates(cx, cy) {
		if i >= p.maxAttempts {
			break
		}
		if p.isClear(c[0], c[1], existing) {
			return c[0], c[1], false
		}
	}

	jitter := p.pointRadius * jitterRatio
	x := cx + (p.rnd.Float64()*2-1)*jitter
	y := cy + (p.rnd.Float64()*2-1)*jitter
	return x, y, true
}

// candidates yields the deterministic subdivisions of the cell followed by
// random polar offsets, up to maxAttempts in total
func (p *Placer) candidates(cx, cy float64) [][2]float64 {
	result := make([][2]float64, 0, p.maxAttempts)

	half := p.cellSize / 2
	inner := half - p.pointRadius
	if inner < 0 {
		inner = 0
	}

	for k := 2; k <= 3 && len(result) < p.maxAttempts; k++ {
		step := 2 * inner / float64(k)
		for row := 0; row < k; row++ {
			for col := 0; col < k; col++ {
				x := cx - inner + step*(float64(col)+0.5)
				y := cy - inner + step*(float64(row)+0.5)
				result = append(result, [2]float64{x, y})
			}
		}
	}

	maxOffset := half * spreadRatio
	for len(result) < p.maxAttempts {
		angle := p.rnd.Float64() * 2 * math.Pi
		dist := p.rnd.Float64() * maxOffset
		result = append(result, [2]float64{
			cx + math.Cos(angle)*dist,
			cy + math.Sin(angle)*dist,
		})
	}

	return result
}

func (p *Placer) isClear(x, y float64, existing []Point) bool {
	minDist := 2 * p.pointRadius
	for _, e := range existing {
		if math.Hypot(x-e.X, y-e.Y) <= minDist {
			return false
		}
	}
	return true
}
