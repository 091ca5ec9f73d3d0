package types

import "github.com/m-mizutani/goerr/v2"

const (
	MinScore = 1
	MaxScore = 10
)

// Score is a probability or impact rating in [MinScore, MaxScore]
type Score int

// Validate checks that the score is within range
func (s Score) Validate() error {
	if s < MinScore || s > MaxScore {
		return goerr.New("score must be between 1 and 10", goerr.V("score", int(s)))
	}
	return nil
}

// ClampScore forces v into [MinScore, MaxScore]
func ClampScore(v int) Score {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return Score(v)
	}
}

// Int returns the score as int
func (s Score) Int() int {
	return int(s)
}
