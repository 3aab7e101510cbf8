// Package netlist parses and validates the externally driven JSON
// request shape (spec.md §6) into a *circuit.Circuit. It is grounded on
// original_source/backend/app.py's `_build_circuit_model` (the
// COMPONENT_MAP synonym table and required-key checking), generalized
// from Python's duck-typed dict access to a typed decode plus
// github.com/go-playground/validator/v10 struct tags.
package netlist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/component"
	"github.com/DarsenOP/tapece/pkg/xerr"
)

var validate = validator.New()

// typeSynonyms maps every recognized, case-normalized type tag to its
// canonical component kind (spec.md §6).
var typeSynonyms = map[string]component.Kind{
	"RESISTOR":       component.KindResistor,
	"R":              component.KindResistor,
	"VOLTAGE SOURCE": component.KindVoltageSource,
	"VS":             component.KindVoltageSource,
	"VOLTAGE":        component.KindVoltageSource,
	"CURRENT SOURCE": component.KindCurrentSource,
	"CS":             component.KindCurrentSource,
	"CURRENT":        component.KindCurrentSource,
}

type componentInput struct {
	Type  string      `json:"type" validate:"required"`
	Value interface{} `json:"value" validate:"required"`
	NodeA interface{} `json:"nodeA" validate:"required"`
	NodeB interface{} `json:"nodeB" validate:"required"`
}

type request struct {
	Components []componentInput `json:"components" validate:"required,dive"`
}

// Parse decodes and validates a netlist request body, returning a circuit
// with its reference node fixed to 0 (spec.md §6: "Reference node is
// fixed to 0 for the externally driven entry point").
func Parse(body []byte) (*circuit.Circuit, error) {
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, xerr.Newf(xerr.InvalidShape, "request body is not a valid netlist: %v", err).
			WithSuggestion("'components' must be a JSON array of component objects")
	}

	if err := validate.Struct(req); err != nil {
		return nil, translateValidationError(err)
	}

	c := circuit.New()
	for i, in := range req.Components {
		comp, err := buildComponent(i, in)
		if err != nil {
			return nil, err
		}
		if err := c.AddComponent(comp); err != nil {
			return nil, err
		}
	}
	c.SetReference(0)
	return c, nil
}

func buildComponent(index int, in componentInput) (component.Component, error) {
	kind, ok := typeSynonyms[strings.ToUpper(strings.TrimSpace(in.Type))]
	if !ok {
		return nil, xerr.Newf(xerr.UnknownType, "component %d: unknown type %q", index, in.Type).
			WithField("type", index).
			WithSuggestion("use one of RESISTOR/R, VOLTAGE SOURCE/VS/VOLTAGE, CURRENT SOURCE/CS/CURRENT")
	}

	value, err := parseValue(in.Value)
	if err != nil {
		return nil, xerr.Newf(xerr.InvalidValue, "component %d: %v", index, err).WithField("value", index)
	}
	node1, err := parseNode(in.NodeA)
	if err != nil {
		return nil, xerr.Newf(xerr.InvalidValue, "component %d: nodeA %v", index, err).WithField("nodeA", index)
	}
	node2, err := parseNode(in.NodeB)
	if err != nil {
		return nil, xerr.Newf(xerr.InvalidValue, "component %d: nodeB %v", index, err).WithField("nodeB", index)
	}

	var comp component.Component
	switch kind {
	case component.KindResistor:
		comp, err = component.NewResistor(value, node1, node2)
	case component.KindVoltageSource:
		comp, err = component.NewVoltageSource(value, node1, node2)
	case component.KindCurrentSource:
		comp, err = component.NewCurrentSource(value, node1, node2)
	}
	if err != nil {
		if xe, ok := err.(*xerr.Error); ok {
			return nil, xe.WithField("value", index)
		}
		return nil, err
	}
	return comp, nil
}

// parseValue accepts a JSON number or a numeric string, rejecting
// non-finite results (spec.md §6: "rejected if non-finite").
func parseValue(v interface{}) (float64, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("value must be a number or numeric string, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite")
	}
	return f, nil
}

// parseNode accepts an integer, an integral JSON number, or the token
// "GND" (case-insensitive), which maps to node 0 (spec.md §3, §6).
func parseNode(v interface{}) (int, error) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("node %v is not an integer", val)
		}
		return int(val), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if strings.EqualFold(trimmed, "GND") {
			return 0, nil
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("node %q is not an integer or GND", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("node must be an integer, numeric string, or GND, got %T", v)
	}
}

func translateValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return xerr.Newf(xerr.MissingField, "invalid request: %v", err)
	}
	fe := verrs[0]
	return xerr.Newf(xerr.MissingField, "missing required field %q", fe.Field()).
		WithField(fe.Field(), -1)
}
