// Package topology derives the supernode partition of a circuit: the
// connected components of the subgraph induced by voltage-source edges
// alone. It is grounded on github.com/katalvlaran/lvlath's graph.Graph
// and graph.BFS, used the same way that package's own gridgraph component
// finder walks an adjacency structure with repeated BFS from each
// unvisited vertex.
package topology

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/graph"

	"github.com/DarsenOP/tapece/pkg/circuit"
)

// Supernode is a maximal set of two or more nodes joined, directly or
// transitively, by voltage sources.
type Supernode struct {
	Nodes    []int // sorted ascending
	Grounded bool  // true if it contains the circuit's reference node
}

// Topology is the result of analyzing one circuit. RegularNodes are
// non-reference nodes that belong to no supernode.
type Topology struct {
	Supernodes           []Supernode
	GroundedSupernodes   []Supernode
	UngroundedSupernodes []Supernode
	RegularNodes         []int
}

// KCLEquationCount returns |RegularNodes| + |UngroundedSupernodes|, the
// number of KCL equations in the rendered equation set (spec: Equation
// count invariant). The numerical solver does not use it.
func (t *Topology) KCLEquationCount() int {
	return len(t.RegularNodes) + len(t.UngroundedSupernodes)
}

// Analyze builds the voltage-source-only subgraph of c and partitions it
// into supernodes (connected components of size >= 2) and regular nodes
// (everything else, excluding the reference).
func Analyze(c *circuit.Circuit) *Topology {
	g := graph.NewGraph(false, false)
	for _, n := range c.Nodes() {
		g.AddVertex(&graph.Vertex{ID: nodeID(n), Metadata: map[string]interface{}{}})
	}
	for _, vs := range c.VoltageSources() {
		n1, n2 := vs.Nodes()
		g.AddEdge(nodeID(n1), nodeID(n2), 1)
	}

	visited := make(map[string]bool)
	var components [][]int

	for _, n := range c.Nodes() {
		id := nodeID(n)
		if visited[id] {
			continue
		}
		res, err := g.BFS(id, nil)
		if err != nil {
			// Every vertex we iterate was just added to g; BFS can only
			// fail to find a missing start vertex.
			continue
		}
		var comp []int
		for vid := range res.Visited {
			visited[vid] = true
			comp = append(comp, mustNodeFromID(vid))
		}
		sort.Ints(comp)
		components = append(components, comp)
	}

	t := &Topology{}
	regular := make(map[int]bool)
	for _, n := range c.NonReferenceNodes() {
		regular[n] = true
	}

	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		sn := Supernode{Nodes: comp, Grounded: containsInt(comp, c.Reference())}
		t.Supernodes = append(t.Supernodes, sn)
		if sn.Grounded {
			t.GroundedSupernodes = append(t.GroundedSupernodes, sn)
		} else {
			t.UngroundedSupernodes = append(t.UngroundedSupernodes, sn)
		}
		for _, n := range comp {
			delete(regular, n)
		}
	}

	for _, n := range c.NonReferenceNodes() {
		if regular[n] {
			t.RegularNodes = append(t.RegularNodes, n)
		}
	}

	return t
}

func nodeID(n int) string { return strconv.Itoa(n) }

func mustNodeFromID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		panic("topology: non-integer vertex id " + id)
	}
	return n
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
