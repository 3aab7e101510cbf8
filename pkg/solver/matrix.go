package solver

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// matrix wraps github.com/edp1096/sparse the way the teacher's
// pkg/matrix/circuit.go wraps it, trimmed to the real-only, DC case this
// solver needs. It keeps a plain dense shadow copy of G and Z alongside
// the sparse matrix: sparse.Matrix mutates its stored elements in place
// during Factor (LU decomposition overwrites them), so the shadow copy
// is what residual verification reads after solving.
type matrix struct {
	size int
	sp   *sparse.Matrix
	rhs  []float64 // 1-based, length size+1, fed to sp.Solve
	g    [][]float64
	z    []float64
}

func newMatrix(size int) (*matrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
	}
	sp, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("solver: create sparse matrix: %w", err)
	}

	g := make([][]float64, size)
	for i := range g {
		g[i] = make([]float64, size)
	}

	return &matrix{
		size: size,
		sp:   sp,
		rhs:  make([]float64, size+1),
		g:    g,
		z:    make([]float64, size),
	}, nil
}

// add stamps value onto G[i,j], 0-based indices.
func (m *matrix) add(i, j int, value float64) {
	m.sp.GetElement(int64(i+1), int64(j+1)).Real += value
	m.g[i][j] += value
}

// addRHS accumulates value onto Z[i], 0-based index.
func (m *matrix) addRHS(i int, value float64) {
	m.rhs[i+1] += value
	m.z[i] += value
}

// solve factors and solves G*X = Z, returning X (0-based, length size).
func (m *matrix) solve() ([]float64, error) {
	if err := m.sp.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	sol, err := m.sp.Solve(m.rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	x := make([]float64, m.size)
	copy(x, sol[1:m.size+1])
	return x, nil
}

// residual returns G*x - z using the untouched dense shadow copy.
func (m *matrix) residual(x []float64) []float64 {
	r := make([]float64, m.size)
	for i := 0; i < m.size; i++ {
		sum := 0.0
		for j := 0; j < m.size; j++ {
			if m.g[i][j] != 0 {
				sum += m.g[i][j] * x[j]
			}
		}
		r[i] = sum - m.z[i]
	}
	return r
}

func (m *matrix) destroy() {
	m.sp.Destroy()
}
