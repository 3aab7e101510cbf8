// Package component defines the value objects for the three device kinds
// the solver understands: Resistor, VoltageSource, CurrentSource. Each is
// a small struct embedding a shared base, the same shape the teacher uses
// for its device zoo (BaseDevice + per-kind struct), generalized to a
// closed three-case union instead of an open, registry-driven one.
package component

import (
	"github.com/google/uuid"

	"github.com/DarsenOP/tapece/pkg/xerr"
)

// Kind discriminates the three component variants.
type Kind string

const (
	KindResistor      Kind = "RESISTOR"
	KindVoltageSource Kind = "VOLTAGE_SOURCE"
	KindCurrentSource Kind = "CURRENT_SOURCE"
)

// Component is satisfied by Resistor, VoltageSource, and CurrentSource.
// The solver and the equation generator dispatch with a type switch on
// the concrete type; Kind is the tag used for ordering and labelling
// (canonical IDs, component statistics).
type Component interface {
	ID() string
	Kind() Kind
	Value() float64
	Nodes() (node1, node2 int)
}

type base struct {
	id           string
	value        float64
	node1, node2 int
}

func (b base) ID() string        { return b.id }
func (b base) Value() float64    { return b.value }
func (b base) Nodes() (int, int) { return b.node1, b.node2 }

func newBase(value float64, node1, node2 int) (base, error) {
	if node1 == node2 {
		return base{}, xerr.Newf(xerr.SelfLoop, "component terminals must be distinct nodes, got node1=node2=%d", node1)
	}
	return base{id: uuid.NewString(), value: value, node1: node1, node2: node2}, nil
}

// Resistor models an ohmic element. Convention: positive current flows
// node1 -> node2.
type Resistor struct{ base }

// NewResistor constructs a resistor. Value must be strictly positive;
// non-positive values (including exact short circuits) are rejected at
// this boundary rather than modeled downstream.
func NewResistor(value float64, node1, node2 int) (*Resistor, error) {
	if value <= 0 {
		return nil, xerr.Newf(xerr.NonPositiveResistance, "resistor value must be > 0, got %g", value)
	}
	b, err := newBase(value, node1, node2)
	if err != nil {
		return nil, err
	}
	return &Resistor{b}, nil
}

func (*Resistor) Kind() Kind { return KindResistor }

// VoltageSource constrains V(node1) - V(node2) = Value().
type VoltageSource struct{ base }

// NewVoltageSource constructs an independent DC voltage source. Value may
// be any finite real (including zero or negative).
func NewVoltageSource(value float64, node1, node2 int) (*VoltageSource, error) {
	b, err := newBase(value, node1, node2)
	if err != nil {
		return nil, err
	}
	return &VoltageSource{b}, nil
}

func (*VoltageSource) Kind() Kind { return KindVoltageSource }

// CurrentSource forces Value() amps to flow node1 -> node2.
type CurrentSource struct{ base }

// NewCurrentSource constructs an independent DC current source.
func NewCurrentSource(value float64, node1, node2 int) (*CurrentSource, error) {
	b, err := newBase(value, node1, node2)
	if err != nil {
		return nil, err
	}
	return &CurrentSource{b}, nil
}

func (*CurrentSource) Kind() Kind { return KindCurrentSource }
