// Package equation renders the human-readable KCL and voltage-source
// equations that describe an MNA system. It is grounded on
// original_source/backend/services/equation_builder.py's term-building
// logic and its `\frac{...}` LaTeX-style rendering, reimplemented with
// fmt.Sprintf. This is a presentation concern only: nothing here is ever
// parsed back into a matrix. The solver in pkg/solver assembles G and Z
// directly from the component model instead.
package equation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/topology"
)

// Kind tags the role an Equation plays in the MNA system.
type Kind string

const (
	KindNodeKCL      Kind = "NODE_KCL"
	KindSupernodeKCL Kind = "SUPERNODE_KCL"
	KindVSConstraint Kind = "VS_CONSTRAINT"
)

// Equation is one tagged, rendered equation. Label identifies what the
// equation is about ("Node 3", "Supernode {2,4}"); Text is the whole
// rendered equation, in "... = 0", "V_i = value" or "V_i - V_j = value"
// form.
type Equation struct {
	Kind  Kind
	Label string
	Text  string
}

// Generate emits NodeKCL equations for every regular node, then
// SupernodeKCL equations for every ungrounded supernode, then a
// VSConstraint for every voltage source in insertion order — the order
// spec.md §4.3 fixes for a presentation layer to rely on.
func Generate(c *circuit.Circuit, topo *topology.Topology) []Equation {
	var out []Equation
	out = append(out, regularNodeEquations(c, topo)...)
	out = append(out, ungroundedSupernodeEquations(c, topo)...)
	out = append(out, voltageSourceConstraints(c)...)
	return out
}

func regularNodeEquations(c *circuit.Circuit, topo *topology.Topology) []Equation {
	var out []Equation
	for _, n := range topo.RegularNodes {
		var terms []string
		for _, inc := range c.ComponentsIncidentTo(n) {
			if term, ok := termFor(c, inc.Component, n, inc.Other); ok {
				terms = append(terms, term)
			}
		}
		if len(terms) == 0 {
			continue
		}
		out = append(out, Equation{
			Kind:  KindNodeKCL,
			Label: fmt.Sprintf("Node %d", n),
			Text:  renderSum(terms),
		})
	}
	return out
}

func ungroundedSupernodeEquations(c *circuit.Circuit, topo *topology.Topology) []Equation {
	var out []Equation
	for _, sn := range topo.UngroundedSupernodes {
		boundary := make(map[int]bool, len(sn.Nodes))
		for _, n := range sn.Nodes {
			boundary[n] = true
		}

		var terms []string
		for _, n := range sn.Nodes {
			for _, inc := range c.ComponentsIncidentTo(n) {
				if boundary[inc.Other] {
					continue // internal to the supernode, not a boundary current
				}
				if term, ok := termFor(c, inc.Component, n, inc.Other); ok {
					terms = append(terms, term)
				}
			}
		}
		if len(terms) == 0 {
			continue
		}
		out = append(out, Equation{
			Kind:  KindSupernodeKCL,
			Label: fmt.Sprintf("Supernode {%s}", joinInts(sn.Nodes)),
			Text:  renderSum(terms),
		})
	}
	return out
}

func voltageSourceConstraints(c *circuit.Circuit) []Equation {
	ref := c.Reference()
	var out []Equation
	for _, vs := range c.VoltageSources() {
		n1, n2 := vs.Nodes()
		val := vs.Value()

		var text string
		switch ref {
		case n1:
			text = fmt.Sprintf("V_{%d} = %s", n2, formatValue(-val))
		case n2:
			text = fmt.Sprintf("V_{%d} = %s", n1, formatValue(val))
		default:
			text = fmt.Sprintf("V_{%d} - V_{%d} = %s", n1, n2, formatValue(val))
		}

		out = append(out, Equation{
			Kind:  KindVSConstraint,
			Label: vs.ID(),
			Text:  text,
		})
	}
	return out
}

// termFor renders comp's contribution to the KCL equation written at node
// n (whose other terminal is neighbor). Voltage sources contribute
// nothing here — they are folded into VSConstraint instead — so the
// second return value is false for them.
func termFor(c *circuit.Circuit, comp component.Component, n, neighbor int) (string, bool) {
	switch v := comp.(type) {
	case *component.Resistor:
		if neighbor == c.Reference() {
			return fmt.Sprintf("\\frac{V_{%d}}{%s}", n, formatValue(v.Value())), true
		}
		return fmt.Sprintf("\\frac{V_{%d} - V_{%d}}{%s}", n, neighbor, formatValue(v.Value())), true
	case *component.CurrentSource:
		n1, _ := v.Nodes()
		if n1 == n {
			return formatValue(v.Value()), true
		}
		return fmt.Sprintf("(-%s)", formatValue(v.Value())), true
	case *component.VoltageSource:
		return "", false
	default:
		return "", false
	}
}

// renderSum joins terms with " + " and closes the equation. Negative
// contributions already carry their own parenthesized sign (see
// termFor), so no further folding is needed.
func renderSum(terms []string) string {
	return strings.Join(terms, " + ") + " = 0"
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func joinInts(xs []int) string {
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, x := range sorted {
		parts[i] = fmt.Sprintf("%d", x)
	}
	return strings.Join(parts, ",")
}
