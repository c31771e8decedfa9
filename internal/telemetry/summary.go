package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of run scores.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P90    float64
	Best   int
}

// Summarize computes score statistics. StdDev is zero for fewer than two runs.
func Summarize(scores []int) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	xs := make([]float64, len(scores))
	best := scores[0]
	for i, s := range scores {
		xs[i] = float64(s)
		if s > best {
			best = s
		}
	}
	sort.Float64s(xs)

	sum := Summary{
		Count: len(scores),
		Mean:  stat.Mean(xs, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, xs, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, xs, nil),
		Best:  best,
	}
	if len(xs) > 1 {
		sum.StdDev = stat.StdDev(xs, nil)
	}
	return sum
}
