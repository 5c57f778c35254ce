package predict

import "math"

// Predicted durations are clamped to this range, in minutes.
const (
	minDurationMin = 15
	maxDurationMin = 90
)

// DurationModel is an ordinary least squares fit of game length in minutes.
// When there are too few samples or the system is singular it predicts the
// mean duration.
type DurationModel struct {
	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept"`
	Mean      float64   `json:"mean"`
	Fitted    bool      `json:"fitted"`
}

// FitDuration fits on samples with a positive DurationMin.
func FitDuration(samples []Sample) *DurationModel {
	var xs [][]float64
	var ys []float64
	for _, s := range samples {
		if s.DurationMin > 0 {
			xs = append(xs, s.X)
			ys = append(ys, s.DurationMin)
		}
	}
	m := &DurationModel{}
	if len(ys) == 0 {
		return m
	}
	for _, y := range ys {
		m.Mean += y
	}
	m.Mean /= float64(len(ys))
	m.Intercept = m.Mean

	p := len(xs[0]) + 1
	if len(ys) <= p {
		return m
	}

	// normal equations (XᵀX) b = Xᵀy with a leading intercept column
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p+1)
	}
	row := make([]float64, p)
	for k, x := range xs {
		if len(x) != p-1 {
			return m
		}
		row[0] = 1
		copy(row[1:], x)
		for i := 0; i < p; i++ {
			for j := 0; j < p; j++ {
				a[i][j] += row[i] * row[j]
			}
			a[i][p] += row[i] * ys[k]
		}
	}
	b, ok := solve(a)
	if !ok {
		return m
	}
	m.Intercept = b[0]
	m.Coef = b[1:]
	m.Fitted = true
	return m
}

// solve runs Gauss-Jordan elimination with partial pivoting on an augmented matrix.
func solve(a [][]float64) ([]float64, bool) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-9 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a[i][n] / a[i][i]
	}
	return out, true
}

// Predict returns the expected game length in minutes.
func (m *DurationModel) Predict(x []float64) float64 {
	if !m.Fitted || len(x) != len(m.Coef) {
		return m.Mean
	}
	y := m.Intercept
	for i, c := range m.Coef {
		y += c * x[i]
	}
	return math.Min(math.Max(y, minDurationMin), maxDurationMin)
}
