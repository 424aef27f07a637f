package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// PseudoDiversificationThreshold marks pairs that move together so closely
// that holding both adds little diversification.
const PseudoDiversificationThreshold = 0.8

// NamedSeries is one return series in a correlation analysis.
type NamedSeries struct {
	Name    string
	Returns []float64
}

// PairWarning flags two series whose correlation exceeds the threshold.
type PairWarning struct {
	A, B        string
	Correlation float64
}

// CorrelationMatrix holds pairwise Pearson correlations. Values is square,
// symmetric, and has 1 on the diagonal.
type CorrelationMatrix struct {
	Names                []string
	Values               [][]float64
	AverageCorrelation   float64 // mean of the off-diagonal entries
	DiversificationScore float64 // (1 - AverageCorrelation) * 100
	Warnings             []PairWarning
}

// Get returns the correlation between two named series.
func (m CorrelationMatrix) Get(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, n := range m.Names {
		if n == a {
			ia = i
		}
		if n == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// Correlations builds the matrix across series. Series with fewer than two
// points are dropped. The rest are aligned on their most recent common
// window (the shortest length). Fewer than two usable series gives
// ErrInsufficientData and an empty matrix with a zero score. A constant
// series has correlation 0 with everything but itself.
func Correlations(series []NamedSeries) (CorrelationMatrix, error) {
	var valid []NamedSeries
	minLen := 0
	for _, s := range series {
		if len(s.Returns) < 2 {
			continue
		}
		if minLen == 0 || len(s.Returns) < minLen {
			minLen = len(s.Returns)
		}
		valid = append(valid, s)
	}

	m := CorrelationMatrix{}
	for _, s := range valid {
		m.Names = append(m.Names, s.Name)
	}
	if len(valid) < 2 {
		return m, ErrInsufficientData
	}

	n := len(valid)
	aligned := make([][]float64, n)
	flat := make([]bool, n)
	for i, s := range valid {
		aligned[i] = s.Returns[len(s.Returns)-minLen:]
		flat[i] = StdDev(aligned[i]) == 0
	}

	m.Values = make([][]float64, n)
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}

	var (
		sum   float64
		pairs int
	)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := 0.0
			if !flat[i] && !flat[j] {
				c = stat.Correlation(aligned[i], aligned[j], nil)
			}
			m.Values[i][j] = c
			m.Values[j][i] = c
			sum += c
			pairs++
			if c > PseudoDiversificationThreshold {
				m.Warnings = append(m.Warnings, PairWarning{A: m.Names[i], B: m.Names[j], Correlation: c})
			}
		}
	}
	m.AverageCorrelation = sum / float64(pairs)
	m.DiversificationScore = (1 - m.AverageCorrelation) * 100
	return m, nil
}
