package matchconf

import (
	"fmt"

	"github.com/0x4d31/matcherd/internal/accessor"
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// templateKind tags a compiled ValueTemplate node.
type templateKind int

const (
	templateLiteral templateKind = iota
	templateString
	templateArray
	templateMap
)

// ValueTemplate is the compiled form of an action payload value. String
// leaves compile to an Accessor; every other Value shape is carried
// through literally or recursed into.
type ValueTemplate struct {
	kind    templateKind
	literal value.Value
	str     accessor.Accessor
	array   []ValueTemplate
	object  map[string]ValueTemplate
}

// CompileValueTemplate walks a decoded JSON value (as produced by
// encoding/json's interface{} unmarshaling) and compiles every string leaf
// as an accessor/interpolator expression.
func CompileValueTemplate(raw any, registry *accessor.Registry) (ValueTemplate, error) {
	switch v := raw.(type) {
	case string:
		a, err := accessor.Compile(v, registry)
		if err != nil {
			return ValueTemplate{}, err
		}
		return ValueTemplate{kind: templateString, str: a}, nil

	case []any:
		elems := make([]ValueTemplate, len(v))
		for i, e := range v {
			vt, err := CompileValueTemplate(e, registry)
			if err != nil {
				return ValueTemplate{}, err
			}
			elems[i] = vt
		}
		return ValueTemplate{kind: templateArray, array: elems}, nil

	case map[string]any:
		obj := make(map[string]ValueTemplate, len(v))
		for k, e := range v {
			vt, err := CompileValueTemplate(e, registry)
			if err != nil {
				return ValueTemplate{}, err
			}
			obj[k] = vt
		}
		return ValueTemplate{kind: templateMap, object: obj}, nil

	default:
		lit, err := value.FromAny(v)
		if err != nil {
			return ValueTemplate{}, err
		}
		return ValueTemplate{kind: templateLiteral, literal: lit}, nil
	}
}

// Render resolves every accessor leaf against ie and rebuilds the literal
// Value tree. A missing or failing accessor aborts the whole render with
// an InterpolatorRenderError.
func (vt ValueTemplate) Render(ie *evalctx.InternalEvent) (value.Value, error) {
	switch vt.kind {
	case templateLiteral:
		return vt.literal, nil

	case templateString:
		// Only an interpolator (literal text around one or more "${...}")
		// renders to a string. A static or expression leaf is the whole
		// string, so it resolves to its exact Value with no coercion,
		// matching the accessor's own Get/Render split.
		if vt.str.Kind() == accessor.KindInterpolator {
			s, err := vt.str.Render(ie)
			if err != nil {
				return value.Value{}, err
			}
			return value.String(s), nil
		}
		v, ok := vt.str.Get(ie)
		if !ok {
			return value.Value{}, &matcherr.InterpolatorRenderError{
				Template: vt.str.Source(),
				Cause:    fmt.Errorf("missing value for %s", vt.str.Source()),
			}
		}
		return v, nil

	case templateArray:
		out := make([]value.Value, len(vt.array))
		for i, e := range vt.array {
			v, err := e.Render(ie)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = v
		}
		return value.Array(out...), nil

	case templateMap:
		out := make(map[string]value.Value, len(vt.object))
		for k, e := range vt.object {
			v, err := e.Render(ie)
			if err != nil {
				return value.Value{}, err
			}
			out[k] = v
		}
		return value.Map(out), nil

	default:
		return value.Null(), nil
	}
}
