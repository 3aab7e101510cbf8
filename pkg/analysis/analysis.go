// Package analysis builds the human-facing derivation of a solved
// circuit: canonical per-kind component IDs, a method description, and
// narrative solution steps. It is grounded on original_source/backend/
// app.py's build_circuit_analysis, _build_components_list, and the
// _process_*_equation helpers, restructured from Python's string-parsed
// equation post-processing into direct construction from
// pkg/equation.Equation values (no string splitting).
package analysis

import (
	"fmt"
	"sort"

	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/equation"
	"github.com/DarsenOP/tapece/pkg/topology"
)

// CanonicalIDs assigns R1, R2, ..., VS1, ..., CS1, ... to c's components,
// sorted by (kind, node1, node2), keyed by the component's own ID.
func CanonicalIDs(c *circuit.Circuit) map[string]string {
	comps := append([]component.Component(nil), c.Components()...)
	sort.Slice(comps, func(i, j int) bool {
		a, b := comps[i], comps[j]
		if a.Kind() != b.Kind() {
			return a.Kind() < b.Kind()
		}
		an1, an2 := a.Nodes()
		bn1, bn2 := b.Nodes()
		if an1 != bn1 {
			return an1 < bn1
		}
		return an2 < bn2
	})

	counters := map[component.Kind]int{}
	prefixes := map[component.Kind]string{
		component.KindResistor:      "R",
		component.KindVoltageSource: "VS",
		component.KindCurrentSource: "CS",
	}

	out := make(map[string]string, len(comps))
	for _, comp := range comps {
		counters[comp.Kind()]++
		out[comp.ID()] = fmt.Sprintf("%s%d", prefixes[comp.Kind()], counters[comp.Kind()])
	}
	return out
}

// PowerDescription renders power the way
// circuit_solver.py's _get_power_description does.
func PowerDescription(power float64) string {
	switch {
	case power < -1e-12:
		return fmt.Sprintf("Supplying %.6f W", -power)
	case power > 1e-12:
		return fmt.Sprintf("Absorbing %.6f W", power)
	default:
		return "0 W"
	}
}

// ComponentDescriptor is one entry of Analysis.Components.
type ComponentDescriptor struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Value       string `json:"value"`
	Nodes       string `json:"nodes"`
	Description string `json:"description"`
	CurrentFlow string `json:"currentFlow,omitempty"`
	Constraint  string `json:"constraint,omitempty"`
}

// SolutionStep is one narrative step in Analysis.SolutionSteps.
type SolutionStep struct {
	Type        string `json:"type"`
	StepNumber  int    `json:"stepNumber,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Equation    string `json:"equation"`
	Explanation string `json:"explanation"`
	KeyPoint    string `json:"keyPoint"`
}

// Analysis is the full human-facing derivation returned alongside a
// circuit's numerical solution.
type Analysis struct {
	Overview struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Summary  string `json:"summary"`
	} `json:"overview"`

	CircuitStatistics struct {
		TotalNodes        int     `json:"totalNodes"`
		ReferenceNode     int     `json:"referenceNode"`
		NonReferenceNodes []int   `json:"nonReferenceNodes"`
		Supernodes        [][]int `json:"supernodes"`
		Components        struct {
			Resistors      int `json:"resistors"`
			VoltageSources int `json:"voltageSources"`
			CurrentSources int `json:"currentSources"`
			Total          int `json:"total"`
		} `json:"components"`
	} `json:"circuitStatistics"`

	Components []ComponentDescriptor `json:"components"`

	AnalysisMethod struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Steps       []string          `json:"steps"`
		Conventions map[string]string `json:"conventions"`
	} `json:"analysisMethod"`

	SolutionSteps []SolutionStep `json:"solutionSteps"`

	MatrixFormulation struct {
		Description string `json:"description"`
		Equation    string `json:"equation"`
		Explanation string `json:"explanation"`
	} `json:"matrixFormulation"`

	NextSteps struct {
		Description string   `json:"description"`
		Actions     []string `json:"actions"`
	} `json:"nextSteps"`
}

// Build assembles the full analysis for c, given its topology and its
// rendered equations.
func Build(c *circuit.Circuit, topo *topology.Topology, eqs []equation.Equation) Analysis {
	var a Analysis

	a.Overview.Title = "Circuit Analysis Solution"
	a.Overview.Subtitle = "Step-by-Step Node Voltage Method"
	a.Overview.Summary = fmt.Sprintf(
		"This circuit has %d nodes and %d components. "+
			"We'll use Modified Nodal Analysis to solve for %d node voltages and %d voltage source currents.",
		len(c.Nodes()), len(c.Components()), len(c.NonReferenceNodes()), len(c.VoltageSources()))

	a.CircuitStatistics.TotalNodes = len(c.Nodes())
	a.CircuitStatistics.ReferenceNode = c.Reference()
	a.CircuitStatistics.NonReferenceNodes = c.NonReferenceNodes()
	a.CircuitStatistics.Supernodes = supernodeNodeLists(topo)

	for _, comp := range c.Components() {
		switch comp.Kind() {
		case component.KindResistor:
			a.CircuitStatistics.Components.Resistors++
		case component.KindVoltageSource:
			a.CircuitStatistics.Components.VoltageSources++
		case component.KindCurrentSource:
			a.CircuitStatistics.Components.CurrentSources++
		}
	}
	a.CircuitStatistics.Components.Total = len(c.Components())

	a.Components = componentDescriptors(c)

	a.AnalysisMethod.Name = "Node Voltage Method (MNA)"
	a.AnalysisMethod.Description = "We analyze the circuit by applying Kirchhoff's Current Law (KCL) at each " +
		"non-reference node and solving for the node voltages. Voltage sources are handled using Modified " +
		"Nodal Analysis (MNA)."
	a.AnalysisMethod.Steps = []string{
		"Select Node 0 as the reference (ground) node",
		"Identify all non-reference nodes",
		"Find supernodes (nodes connected by voltage sources)",
		"Write KCL equations for all non-reference nodes",
		"Add constraint equations for all voltage sources",
		"Solve the resulting system of linear equations",
	}
	a.AnalysisMethod.Conventions = map[string]string{
		"Resistor":      "Current flows from node1 to node2.",
		"VoltageSource": "Voltage at node1 is higher than node2 (V(node1) - V(node2) = value).",
		"CurrentSource": "Current (value) flows from node1 to node2.",
	}

	a.SolutionSteps = solutionSteps(eqs)

	a.MatrixFormulation.Description = "The system of equations is represented in matrix form (Modified Nodal Analysis):"
	a.MatrixFormulation.Equation = "[G][X] = [Z]"
	a.MatrixFormulation.Explanation = "Where [G] is the MNA matrix, [X] is the solution vector (containing " +
		"unknown node voltages and voltage source currents), and [Z] is the source vector."

	a.NextSteps.Description = "To complete the analysis:"
	a.NextSteps.Actions = []string{
		"Set up the MNA matrix based on all components",
		"Construct the source vector",
		"Solve the linear system for all unknown voltages and currents",
		"Verify the solution satisfies all KCL/KVL equations",
	}

	return a
}

func supernodeNodeLists(topo *topology.Topology) [][]int {
	out := make([][]int, 0, len(topo.Supernodes))
	for _, sn := range topo.Supernodes {
		out = append(out, append([]int(nil), sn.Nodes...))
	}
	return out
}

func componentDescriptors(c *circuit.Circuit) []ComponentDescriptor {
	ids := CanonicalIDs(c)
	comps := append([]component.Component(nil), c.Components()...)
	sort.Slice(comps, func(i, j int) bool { return ids[comps[i].ID()] < ids[comps[j].ID()] })

	out := make([]ComponentDescriptor, 0, len(comps))
	for _, comp := range comps {
		n1, n2 := comp.Nodes()
		id := ids[comp.ID()]

		switch comp.Kind() {
		case component.KindResistor:
			out = append(out, ComponentDescriptor{
				ID:          id,
				Type:        "Resistor",
				Value:       fmt.Sprintf("%g Ω", comp.Value()),
				Nodes:       fmt.Sprintf("%d → %d", n1, n2),
				Description: "Obeys Ohm's Law: V = I × R",
				CurrentFlow: fmt.Sprintf("Current (I=%s) flows from node %d to node %d", id, n1, n2),
			})
		case component.KindVoltageSource:
			out = append(out, ComponentDescriptor{
				ID:          id,
				Type:        "Voltage Source",
				Value:       fmt.Sprintf("%g V", comp.Value()),
				Nodes:       fmt.Sprintf("%d(+) → %d(-)", n1, n2),
				Description: fmt.Sprintf("Maintains constant voltage: V(%d) - V(%d) = %gV", n1, n2, comp.Value()),
				Constraint:  "This source defines a voltage constraint equation.",
			})
		case component.KindCurrentSource:
			out = append(out, ComponentDescriptor{
				ID:          id,
				Type:        "Current Source",
				Value:       fmt.Sprintf("%g A", comp.Value()),
				Nodes:       fmt.Sprintf("%d → %d", n1, n2),
				Description: fmt.Sprintf("Provides constant current: I = %gA", comp.Value()),
				CurrentFlow: fmt.Sprintf("Current flows from node %d to node %d", n1, n2),
			})
		}
	}
	return out
}

func solutionSteps(eqs []equation.Equation) []SolutionStep {
	var steps []SolutionStep
	stepNumber := 1
	for _, eq := range eqs {
		switch eq.Kind {
		case equation.KindNodeKCL:
			steps = append(steps, SolutionStep{
				Type:        "kcl",
				StepNumber:  stepNumber,
				Title:       fmt.Sprintf("Step %d: KCL at %s", stepNumber, eq.Label),
				Description: fmt.Sprintf("Applying Kirchhoff's Current Law at %s - the sum of all currents leaving the node equals zero.", eq.Label),
				Equation:    eq.Text,
				Explanation: fmt.Sprintf("This equation ensures current conservation at %s. We sum all currents leaving the node.", eq.Label),
				KeyPoint:    "Convention: Currents leaving the node are positive, currents entering are negative.",
			})
			stepNumber++
		case equation.KindSupernodeKCL:
			steps = append(steps, SolutionStep{
				Type:        "supernode_kcl",
				StepNumber:  stepNumber,
				Title:       fmt.Sprintf("Step %d: KCL for %s", stepNumber, eq.Label),
				Description: fmt.Sprintf("Applying KCL to the entire %s - the sum of currents leaving the supernode boundary equals zero.", eq.Label),
				Equation:    eq.Text,
				Explanation: "A supernode combines multiple nodes connected by voltage sources. We treat them as a single entity for KCL.",
				KeyPoint:    "We only sum currents flowing from a node inside the supernode to a node outside it.",
			})
			stepNumber++
		case equation.KindVSConstraint:
			steps = append(steps, SolutionStep{
				Type:        "constraint",
				Title:       "Voltage Source Constraint",
				Description: "This equation comes from a voltage source in the circuit.",
				Equation:    eq.Text,
				Explanation: "Voltage sources define fixed potential differences between nodes, providing essential constraints for our system.",
				KeyPoint:    "Each voltage source adds one constraint equation.",
			})
		}
	}
	return steps
}
