// Package circuit holds the aggregate: the component set, the derived
// node set, and the chosen reference node. It mirrors the role of the
// teacher's pkg/circuit package (node/branch bookkeeping around a device
// list) but generalizes it from a SPICE element list to the three-kind
// component union, and adds the topology queries analysis depends on.
package circuit

import (
	"sort"

	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/xerr"
)

// Incidence pairs a component incident to some node n with the terminal
// at the *other* end of it. The component's own Nodes() keep their
// original orientation; Other is a convenience for callers that don't
// care which terminal of c was n.
type Incidence struct {
	Component component.Component
	Other     int
}

// Circuit is the aggregate described by the data model: an unordered set
// of components keyed by ID, a derived node set, and a single reference
// node (default 0). The analyzer and solver only read it; AddComponent and
// SetReference remain callable after SetReference.
type Circuit struct {
	components map[string]component.Component
	order      []string // insertion order; voltage-source branch indexing depends on this
	nodes      map[int]struct{}
	reference  int
}

// New returns an empty circuit with reference node 0.
func New() *Circuit {
	return &Circuit{
		components: make(map[string]component.Component),
		nodes:      map[int]struct{}{0: {}},
		reference:  0,
	}
}

// AddComponent inserts c, updating the node set. Fails with
// xerr.DuplicateComponentId if an equal ID is already present, or
// xerr.SelfLoop if c's terminals coincide (components are expected to
// have already rejected this at construction; this is the aggregate's
// own defense against a hand-built Component value).
func (c *Circuit) AddComponent(comp component.Component) error {
	if _, exists := c.components[comp.ID()]; exists {
		return xerr.Newf(xerr.DuplicateComponentId, "component id %q already present in circuit", comp.ID())
	}
	n1, n2 := comp.Nodes()
	if n1 == n2 {
		return xerr.Newf(xerr.SelfLoop, "component %q terminals must be distinct, got node1=node2=%d", comp.ID(), n1)
	}

	c.components[comp.ID()] = comp
	c.order = append(c.order, comp.ID())
	c.nodes[n1] = struct{}{}
	c.nodes[n2] = struct{}{}
	return nil
}

// SetReference designates n as the reference (ground) node, adding it to
// the node set if it was not already a terminal of any component.
func (c *Circuit) SetReference(n int) {
	c.nodes[n] = struct{}{}
	c.reference = n
}

// Reference returns the current reference node.
func (c *Circuit) Reference() int { return c.reference }

// Nodes returns every node in the circuit (components' terminals plus the
// reference node), sorted ascending.
func (c *Circuit) Nodes() []int {
	out := make([]int, 0, len(c.nodes))
	for n := range c.nodes {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// NonReferenceNodes returns every node except the reference, sorted
// ascending. Downstream solver indexing depends on this order for
// reproducibility (spec: Idempotence invariant).
func (c *Circuit) NonReferenceNodes() []int {
	out := make([]int, 0, len(c.nodes))
	for n := range c.nodes {
		if n != c.reference {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// Components returns every component in insertion order.
func (c *Circuit) Components() []component.Component {
	out := make([]component.Component, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.components[id])
	}
	return out
}

// VoltageSources returns every VoltageSource in insertion order; MNA
// branch-current indexing is defined in terms of this order (spec §4.4).
func (c *Circuit) VoltageSources() []*component.VoltageSource {
	var out []*component.VoltageSource
	for _, id := range c.order {
		if vs, ok := c.components[id].(*component.VoltageSource); ok {
			out = append(out, vs)
		}
	}
	return out
}

// ComponentsIncidentTo returns every component touching n, paired with
// the terminal at its other end. Components appear in insertion order.
func (c *Circuit) ComponentsIncidentTo(n int) []Incidence {
	var out []Incidence
	for _, id := range c.order {
		comp := c.components[id]
		n1, n2 := comp.Nodes()
		switch n {
		case n1:
			out = append(out, Incidence{Component: comp, Other: n2})
		case n2:
			out = append(out, Incidence{Component: comp, Other: n1})
		}
	}
	return out
}

// VoltageSourcesBetween returns every voltage source whose terminals are
// {a,b} in either orientation.
func (c *Circuit) VoltageSourcesBetween(a, b int) []*component.VoltageSource {
	var out []*component.VoltageSource
	for _, id := range c.order {
		vs, ok := c.components[id].(*component.VoltageSource)
		if !ok {
			continue
		}
		n1, n2 := vs.Nodes()
		if (n1 == a && n2 == b) || (n1 == b && n2 == a) {
			out = append(out, vs)
		}
	}
	return out
}
