package equation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/equation"
	"github.com/DarsenOP/tapece/pkg/topology"
)

// Scenario 1 from spec.md §8: a single resistor across a voltage source.
// Node 1 is absorbed into the grounded supernode {0,1}, so no NodeKCL is
// emitted for it; only the VS constraint remains.
func TestGenerate_SingleResistorAcrossVoltageSource(t *testing.T) {
	c := circuit.New()
	vs, err := component.NewVoltageSource(10, 1, 0)
	require.NoError(t, err)
	r, err := component.NewResistor(1000, 1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(vs))
	require.NoError(t, c.AddComponent(r))
	c.SetReference(0)

	topo := topology.Analyze(c)
	eqs := equation.Generate(c, topo)

	require.Len(t, eqs, 1)
	assert.Equal(t, equation.KindVSConstraint, eqs[0].Kind)
	assert.Equal(t, "V_{1} = 10.0", eqs[0].Text)
}

// Scenario 2 from spec.md §8: a series resistor divider. Node 1 is
// grounded (supernode with 0), node 2 is regular.
func TestGenerate_SeriesResistorDivider(t *testing.T) {
	c := circuit.New()
	vs, err := component.NewVoltageSource(12, 1, 0)
	require.NoError(t, err)
	r1, err := component.NewResistor(1000, 1, 2)
	require.NoError(t, err)
	r2, err := component.NewResistor(2000, 2, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(vs))
	require.NoError(t, c.AddComponent(r1))
	require.NoError(t, c.AddComponent(r2))
	c.SetReference(0)

	topo := topology.Analyze(c)
	eqs := equation.Generate(c, topo)

	require.Len(t, eqs, 2)
	assert.Equal(t, equation.KindNodeKCL, eqs[0].Kind)
	assert.Equal(t, "Node 2", eqs[0].Label)
	assert.Equal(t, "\\frac{V_{2} - V_{1}}{1000.0} + \\frac{V_{2}}{2000.0} = 0", eqs[0].Text)

	assert.Equal(t, equation.KindVSConstraint, eqs[1].Kind)
	assert.Equal(t, "V_{1} = 12.0", eqs[1].Text)
}

// Spec scenario 5's topology (see pkg/topology's test of the same
// circuit): VS1 forms grounded supernode {0,1}; VS2 forms ungrounded
// supernode {2,4}; node 3 is regular.
func TestGenerate_UngroundedSupernodeBoundary(t *testing.T) {
	c := circuit.New()
	vs1, _ := component.NewVoltageSource(250, 1, 0)
	vs2, _ := component.NewVoltageSource(4, 4, 2)
	r1, _ := component.NewResistor(50, 1, 3)
	r2, _ := component.NewResistor(10, 3, 2)
	r3, _ := component.NewResistor(10, 4, 3)
	r4, _ := component.NewResistor(40, 4, 0)
	cs1, _ := component.NewCurrentSource(0.2, 2, 0)
	cs2, _ := component.NewCurrentSource(5, 0, 2)
	for _, comp := range []component.Component{vs1, vs2, r1, r2, r3, r4, cs1, cs2} {
		require.NoError(t, c.AddComponent(comp))
	}
	c.SetReference(0)

	topo := topology.Analyze(c)
	eqs := equation.Generate(c, topo)

	var kinds []equation.Kind
	for _, eq := range eqs {
		kinds = append(kinds, eq.Kind)
	}
	// One regular-node KCL (node 3), one supernode KCL ({2,4}), two VS
	// constraints (VS1, VS2), in that order.
	assert.Equal(t, []equation.Kind{
		equation.KindNodeKCL,
		equation.KindSupernodeKCL,
		equation.KindVSConstraint,
		equation.KindVSConstraint,
	}, kinds)
	assert.Equal(t, "Node 3", eqs[0].Label)
	assert.Equal(t, "Supernode {2,4}", eqs[1].Label)
}

func TestGenerate_CurrentSourceSignConvention(t *testing.T) {
	c := circuit.New()
	cs, err := component.NewCurrentSource(2, 1, 0)
	require.NoError(t, err)
	r, err := component.NewResistor(100, 1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(cs))
	require.NoError(t, c.AddComponent(r))
	c.SetReference(0)

	topo := topology.Analyze(c)
	eqs := equation.Generate(c, topo)

	require.Len(t, eqs, 1)
	assert.Equal(t, equation.KindNodeKCL, eqs[0].Kind)
	// Current leaves node 1 toward the reference through the source,
	// and the resistor contributes its own outgoing term.
	assert.Equal(t, "2.0 + \\frac{V_{1}}{100.0} = 0", eqs[0].Text)
}
