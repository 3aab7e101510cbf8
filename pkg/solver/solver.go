// Package solver assembles and solves the modified nodal analysis system
// for a circuit, directly from the component model — never by parsing
// the equation package's rendered strings back into numbers (see
// pkg/equation's doc comment). It is grounded on the teacher's
// pkg/matrix/circuit.go (the sparse-matrix wrapper, adapted in matrix.go)
// and pkg/device/{resistor,isource,vsource}.go's stamping style, with the
// stamp signs and indexing taken from spec.md §4.4 and cross-checked
// against original_source/backend/services/circuit_solver.py, which
// differs from the teacher's current-source sign convention.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/DarsenOP/tapece/internal/consts"
	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/xerr"
)

// ErrSingularMatrix is returned (wrapped) when the assembled G matrix
// cannot be factored — a floating subgraph, a shorted voltage source
// loop, or any other numerically singular topology.
var ErrSingularMatrix = xerr.New(xerr.SingularMatrix, "circuit matrix is singular; check for floating nodes or conflicting voltage sources").
	WithSuggestion("verify every node has a DC path to the reference node")

// ComponentResult is the back-substituted voltage, current, and power for
// one component.
type ComponentResult struct {
	Voltage float64 // V(node1) - V(node2)
	Current float64 // node1 -> node2 positive
	Power   float64 // positive: absorbing; negative: supplying
}

// Result is the full solved state of a circuit.
type Result struct {
	NodeVoltages map[int]float64
	Components   map[string]ComponentResult

	// Residual is G*X - Z per matrix row; MaxResidual is its max absolute
	// entry. Tests assert MaxResidual < consts.ResidualTolerance for
	// well-conditioned systems (spec §8, Residual invariant).
	Residual    []float64
	MaxResidual float64

	// PowerBalance is the sum of every component's power; it should be
	// within PowerBalanceTolerance of zero (spec §8, Conservation
	// invariant).
	PowerBalance          float64
	PowerBalanceTolerance float64

	// ConductanceMatrix, CurrentVector, and SolutionVector are the raw
	// assembled G, Z, and solved X, exposed so a presentation layer can
	// show the underlying linear system alongside the per-component
	// results (mirrors circuit_solver.py's matrix_solution payload).
	ConductanceMatrix [][]float64
	CurrentVector     []float64
	SolutionVector    []float64
}

// Solve assembles G*X = Z for c and returns the fully back-substituted
// and verified solution. c must already have its reference node set.
func Solve(c *circuit.Circuit) (*Result, error) {
	nonRef := c.NonReferenceNodes()
	n := len(nonRef)
	index := make(map[int]int, n)
	for i, node := range nonRef {
		index[node] = i
	}

	vsources := c.VoltageSources()
	m := len(vsources)
	vsIndex := make(map[string]int, m)
	for k, vs := range vsources {
		vsIndex[vs.ID()] = k
	}

	size := n + m
	if size == 0 {
		return &Result{NodeVoltages: map[int]float64{c.Reference(): 0}, Components: map[string]ComponentResult{}}, nil
	}

	mat, err := newMatrix(size)
	if err != nil {
		return nil, err
	}
	defer mat.destroy()

	ref := c.Reference()
	for _, comp := range c.Components() {
		n1, n2 := comp.Nodes()
		i, iOK := rowFor(index, n1, ref)
		j, jOK := rowFor(index, n2, ref)

		switch v := comp.(type) {
		case *component.Resistor:
			g := 1.0 / v.Value()
			if iOK {
				mat.add(i, i, g)
			}
			if jOK {
				mat.add(j, j, g)
			}
			if iOK && jOK {
				mat.add(i, j, -g)
				mat.add(j, i, -g)
			}

		case *component.CurrentSource:
			val := v.Value()
			if iOK {
				mat.addRHS(i, -val)
			}
			if jOK {
				mat.addRHS(j, val)
			}

		case *component.VoltageSource:
			k := n + vsIndex[v.ID()]
			if iOK {
				mat.add(k, i, 1)
				mat.add(i, k, 1)
			}
			if jOK {
				mat.add(k, j, -1)
				mat.add(j, k, -1)
			}
			mat.addRHS(k, v.Value())
		}
	}

	x, err := mat.solve()
	if err != nil {
		var xe *xerr.Error
		if errors.As(err, &xe) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}

	resid := mat.residual(x)
	maxResid := 0.0
	for _, r := range resid {
		if a := math.Abs(r); a > maxResid {
			maxResid = a
		}
	}

	voltages := make(map[int]float64, n+1)
	voltages[ref] = 0
	for _, node := range nonRef {
		voltages[node] = clampFinite(x[index[node]])
	}

	results := make(map[string]ComponentResult, len(c.Components()))
	maxV, maxI := 0.0, 0.0
	totalPower := 0.0
	for _, comp := range c.Components() {
		n1, n2 := comp.Nodes()
		vc := voltages[n1] - voltages[n2]

		var ic float64
		switch v := comp.(type) {
		case *component.Resistor:
			ic = vc / v.Value()
		case *component.CurrentSource:
			ic = v.Value()
		case *component.VoltageSource:
			ic = clampFinite(x[n+vsIndex[v.ID()]])
		}

		pc := clampFinite(vc * ic)
		vc = clampFinite(vc)
		ic = clampFinite(ic)

		results[comp.ID()] = ComponentResult{Voltage: vc, Current: ic, Power: pc}
		totalPower += pc
		if a := math.Abs(vc); a > maxV {
			maxV = a
		}
		if a := math.Abs(ic); a > maxI {
			maxI = a
		}
	}

	tolerance := consts.PowerBalanceBaseTolerance * (1 + maxV*maxI)

	return &Result{
		NodeVoltages:          voltages,
		Components:            results,
		Residual:              resid,
		MaxResidual:           maxResid,
		PowerBalance:          totalPower,
		PowerBalanceTolerance: tolerance,
		ConductanceMatrix:     mat.g,
		CurrentVector:         mat.z,
		SolutionVector:        x,
	}, nil
}


// rowFor returns the matrix row/column for node n, or (0, false) if n is
// the reference node (which contributes no row per spec.md §4.4).
func rowFor(index map[int]int, n, ref int) (int, bool) {
	if n == ref {
		return 0, false
	}
	i, ok := index[n]
	return i, ok
}

func clampFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
