// Package scoring turns detected red flags into a 0-100 risk score and the
// verdict derived from it. Everything here is pure; no LLM calls are made.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"contract-backend/models"
)

var ErrScoreOutOfRange = errors.New("risk score out of range")

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Verdict thresholds, inclusive upper bounds.
const (
	SignMaxScore      = 35
	NegotiateMaxScore = 65
)

// weight describes the diminishing-returns points of one severity: the first
// fullCount flags are worth full points, every further flag is worth extra.
type weight struct {
	fullCount int
	full      int
	extra     int
}

var weights = map[models.Severity]weight{
	models.SeverityHigh:     {fullCount: 2, full: 12, extra: 6},
	models.SeverityModerate: {fullCount: 3, full: 6, extra: 3},
	models.SeverityLow:      {fullCount: 4, full: 2, extra: 1},
}

// Curve parameters: score = base + P/(P+halfPoint)*span.
const (
	curveBase      = 20.0
	curveSpan      = 65.0
	curveHalfPoint = 15.0
)

// Counts holds the number of flags per severity.
type Counts struct {
	High     int
	Moderate int
	Low      int
}

// CountBySeverity partitions flags by severity. A flag with a severity
// outside the closed set is a caller error.
func CountBySeverity(flags []models.RedFlag) (Counts, error) {
	var c Counts
	for i, flag := range flags {
		switch flag.Severity {
		case models.SeverityHigh:
			c.High++
		case models.SeverityModerate:
			c.Moderate++
		case models.SeverityLow:
			c.Low++
		default:
			return Counts{}, fmt.Errorf("red flag %d: %w: %q", i, models.ErrInvalidSeverity, flag.Severity)
		}
	}
	return c, nil
}

// RawPoints sums the diminishing-returns weights of the counts.
func RawPoints(c Counts) int {
	return points(models.SeverityHigh, c.High) +
		points(models.SeverityModerate, c.Moderate) +
		points(models.SeverityLow, c.Low)
}

func points(severity models.Severity, n int) int {
	w := weights[severity]
	if n <= w.fullCount {
		return n * w.full
	}
	return w.fullCount*w.full + (n-w.fullCount)*w.extra
}

// FromPoints applies the saturating curve. Zero points is a zero score; the
// curve approaches but never reaches 85.
func FromPoints(p int) int {
	if p <= 0 {
		return MinScore
	}
	raw := float64(p)
	score := int(math.Round(curveBase + raw/(raw+curveHalfPoint)*curveSpan))
	return clamp(score)
}

// Score computes the risk score of a list of red flags.
func Score(flags []models.RedFlag) (int, error) {
	counts, err := CountBySeverity(flags)
	if err != nil {
		return 0, err
	}
	return FromPoints(RawPoints(counts)), nil
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Classify maps a score to its verdict.
func Classify(score int) (models.Verdict, error) {
	switch {
	case score < MinScore || score > MaxScore:
		return "", fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	case score <= SignMaxScore:
		return models.VerdictSign, nil
	case score <= NegotiateMaxScore:
		return models.VerdictNegotiate, nil
	default:
		return models.VerdictRefuse, nil
	}
}

// Evaluate scores the flags and classifies the result in one step.
func Evaluate(flags []models.RedFlag) (int, models.Verdict, error) {
	score, err := Score(flags)
	if err != nil {
		return 0, "", err
	}
	verdict, err := Classify(score)
	if err != nil {
		return 0, "", err
	}
	return score, verdict, nil
}
