package tracker

import "math"

// Moments accumulates the running sums needed for mean and spread of a
// stream of values, here EV per decision.
type Moments struct {
	N     int     `json:"n"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sum_sq"`
}

// Add folds v into the sums.
func (m *Moments) Add(v float64) {
	m.N++
	m.Sum += v
	m.SumSq += v * v
}

// Merge folds another set of sums into m.
func (m *Moments) Merge(o Moments) {
	m.N += o.N
	m.Sum += o.Sum
	m.SumSq += o.SumSq
}

// Mean is the arithmetic mean, zero when empty.
func (m Moments) Mean() float64 {
	if m.N == 0 {
		return 0
	}
	return m.Sum / float64(m.N)
}

// Variance is the sample variance.
func (m Moments) Variance() float64 {
	if m.N < 2 {
		return 0
	}
	mean := m.Mean()
	v := (m.SumSq - float64(m.N)*mean*mean) / float64(m.N-1)
	return math.Max(0, v)
}

func (m Moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// StdError is the standard error of the mean.
func (m Moments) StdError() float64 {
	if m.N == 0 {
		return 0
	}
	return m.StdDev() / math.Sqrt(float64(m.N))
}

// ConfidenceInterval95 brackets the mean at 95% confidence.
func (m Moments) ConfidenceInterval95() (float64, float64) {
	mean := m.Mean()
	margin := 1.96 * m.StdError()
	return mean - margin, mean + margin
}
