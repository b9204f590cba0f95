package personality

import "math"

// Estimator turns average score magnitude into a bounded percentage.
// Leniency inflates weak signal on purpose; Floor is the lowest value reported.
type Estimator struct {
	Leniency float64
	Floor    int
}

// Product tuning; kept exactly for parity with published results.
var (
	ConfidenceEstimator = Estimator{Leniency: 1.5, Floor: 65}
	FitEstimator        = Estimator{Leniency: 1.6, Floor: 70}
)

const maxMagnitude = 2.0

func (e Estimator) Estimate(s Scores) int {
	var total float64
	for _, v := range s {
		total += math.Abs(v)
	}
	avg := total / NumDimensions
	adjusted := math.Min(maxMagnitude, avg*e.Leniency)
	pct := int(math.Round(adjusted / maxMagnitude * 100))
	if pct < e.Floor {
		pct = e.Floor
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}
