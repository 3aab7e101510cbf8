package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/xerr"
)

func TestCircuit_NonReferenceNodes_SortedExcludingReference(t *testing.T) {
	c := circuit.New()
	r1, err := component.NewResistor(1000, 3, 1)
	require.NoError(t, err)
	r2, err := component.NewResistor(2000, 2, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(r1))
	require.NoError(t, c.AddComponent(r2))
	c.SetReference(0)

	assert.Equal(t, []int{1, 2, 3}, c.NonReferenceNodes())
	assert.Equal(t, []int{0, 1, 2, 3}, c.Nodes())
}

func TestCircuit_SetReference_AddsMissingNode(t *testing.T) {
	c := circuit.New()
	r, err := component.NewResistor(100, 5, 6)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(r))
	c.SetReference(99)

	assert.Contains(t, c.Nodes(), 99)
	assert.NotContains(t, c.NonReferenceNodes(), 99)
}

func TestCircuit_AddComponent_RejectsDuplicateID(t *testing.T) {
	c := circuit.New()
	r, err := component.NewResistor(100, 1, 0)
	require.NoError(t, err)
	require.NoError(t, c.AddComponent(r))

	err = c.AddComponent(r)
	require.Error(t, err)
	var xe *xerr.Error
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, xerr.DuplicateComponentId, xe.Code)
}

func TestCircuit_ComponentsIncidentTo(t *testing.T) {
	c := circuit.New()
	r1, _ := component.NewResistor(100, 1, 0)
	r2, _ := component.NewResistor(200, 1, 2)
	require.NoError(t, c.AddComponent(r1))
	require.NoError(t, c.AddComponent(r2))

	inc := c.ComponentsIncidentTo(1)
	require.Len(t, inc, 2)
	assert.Equal(t, 0, inc[0].Other)
	assert.Equal(t, 2, inc[1].Other)
}

func TestCircuit_VoltageSourcesBetween_EitherOrientation(t *testing.T) {
	c := circuit.New()
	vs, _ := component.NewVoltageSource(10, 2, 4)
	require.NoError(t, c.AddComponent(vs))

	assert.Len(t, c.VoltageSourcesBetween(2, 4), 1)
	assert.Len(t, c.VoltageSourcesBetween(4, 2), 1)
	assert.Len(t, c.VoltageSourcesBetween(2, 5), 0)
}

func TestCircuit_VoltageSources_PreserveInsertionOrder(t *testing.T) {
	c := circuit.New()
	vs1, _ := component.NewVoltageSource(1, 1, 0)
	vs2, _ := component.NewVoltageSource(2, 2, 0)
	r, _ := component.NewResistor(100, 1, 2)
	require.NoError(t, c.AddComponent(vs1))
	require.NoError(t, c.AddComponent(r))
	require.NoError(t, c.AddComponent(vs2))

	sources := c.VoltageSources()
	require.Len(t, sources, 2)
	assert.Equal(t, vs1.ID(), sources[0].ID())
	assert.Equal(t, vs2.ID(), sources[1].ID())
}
