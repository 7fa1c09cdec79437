package sweep

import "github.com/gramsim/gram/internal/model"

// Matrix is a per-condition error matrix: cell (i, j) holds the
// threshold error with mechanism i permanent and mechanism j removed.
type Matrix [model.NumMechanisms][model.NumMechanisms]float64

// Transposed returns the row/column swap of m. The renderer displays
// transposed matrices so the permanent-mechanism axis runs horizontally.
func (m Matrix) Transposed() Matrix {
	var t Matrix
	for i := range m {
		for j := range m[i] {
			t[j][i] = m[i][j]
		}
	}
	return t
}

// BuildMatrices derives one matrix per condition label from results.
// Cells for pairs missing from results keep the zero default rather than
// failing; callers that care should check MissingPairs first. Condition
// labels present in a comparison set but not in conditions are ignored,
// and exactly len(conditions) matrices are produced. A nil conditions
// slice selects model.Conditions.
func BuildMatrices(results Results, conditions []string) map[string]Matrix {
	if conditions == nil {
		conditions = model.Conditions
	}

	matrices := make(map[string]Matrix, len(conditions))
	for _, cond := range conditions {
		var m Matrix
		for key, set := range results {
			if !key.Valid() {
				continue
			}
			if c, ok := set[cond]; ok {
				m[key.Permanent][key.Removed] = c.ThresholdError
			}
		}
		matrices[cond] = m
	}
	return matrices
}
