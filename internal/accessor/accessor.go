// Package accessor compiles "${...}" value-reference strings into
// resolvers, and renders interpolated templates. An Accessor is a closed
// tagged variant (static / expression / interpolator / custom), matched by
// Kind rather than by interface dispatch.
package accessor

import (
	"fmt"

	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/matcherr"
	"github.com/0x4d31/matcherd/internal/value"
)

// Reserved root identifiers.
const (
	RootEvent     = "event"
	RootVariables = "_variables"
)

// Kind tags the compiled form of an accessor.
type Kind int

const (
	KindStatic Kind = iota
	KindExpression
	KindInterpolator
	KindCustom
)

// Accessor is the compiled form of a "${...}" reference or template
// string.
type Accessor struct {
	kind     Kind
	source   string
	static   value.Value
	path     Path // KindExpression, KindCustom
	segments []segment
	registry *Registry
}

// Compile compiles src into an Accessor. registry supplies any
// engine-registered custom roots; it may be nil if none are needed.
func Compile(src string, registry *Registry) (Accessor, error) {
	segs, sole, err := splitTemplate(src)
	if err != nil {
		return Accessor{}, &matcherr.AccessorBuildError{Expr: src, Cause: err}
	}

	if len(segs) == 0 || (len(segs) == 1 && segs[0].kind == segLiteral) {
		return Accessor{kind: KindStatic, source: src, static: value.String(src), registry: registry}, nil
	}

	if sole {
		p := segs[0].path
		if err := validateRoot(p.Root, registry); err != nil {
			return Accessor{}, &matcherr.AccessorBuildError{Expr: src, Cause: err}
		}
		kind := KindExpression
		if p.Root != RootEvent && p.Root != RootVariables {
			kind = KindCustom
		}
		return Accessor{kind: kind, source: src, path: p, registry: registry}, nil
	}

	// Interpolator: every embedded path's root must still be valid.
	for _, s := range segs {
		if s.kind != segPath {
			continue
		}
		if err := validateRoot(s.path.Root, registry); err != nil {
			return Accessor{}, &matcherr.InterpolatorBuildError{Template: src, Cause: err}
		}
	}
	return Accessor{kind: KindInterpolator, source: src, segments: segs, registry: registry}, nil
}

func validateRoot(root string, registry *Registry) error {
	if root == RootEvent || root == RootVariables {
		return nil
	}
	if _, ok := registry.lookup(root); ok {
		return nil
	}
	return fmt.Errorf("unknown accessor root %q", root)
}

// Source returns the original, uncompiled source string.
func (a Accessor) Source() string { return a.source }

// Roots returns every path root this accessor references: a single root
// for Expression/Custom, one per embedded "${...}" for Interpolator, and
// none for Static. Used by matchconf to enforce that filter operators
// reference only "event.*", never "_variables".
func (a Accessor) Roots() []string {
	switch a.kind {
	case KindExpression, KindCustom:
		return []string{a.path.Root}
	case KindInterpolator:
		var roots []string
		for _, s := range a.segments {
			if s.kind == segPath {
				roots = append(roots, s.path.Root)
			}
		}
		return roots
	default:
		return nil
	}
}

// Kind reports the compiled variant.
func (a Accessor) Kind() Kind { return a.kind }

// Get resolves the Accessor to an exact Value with no coercion. For
// KindInterpolator, Get always returns the rendered
// string as a Value (there is no "exact" underlying value for a mixed
// template); callers that need interpolator semantics should call Render
// instead.
func (a Accessor) Get(ie *evalctx.InternalEvent) (value.Value, bool) {
	switch a.kind {
	case KindStatic:
		return a.static, true
	case KindExpression, KindCustom:
		return resolvePath(a.path, ie, a.registry)
	case KindInterpolator:
		s, err := a.Render(ie)
		if err != nil {
			return value.Value{}, false
		}
		return value.String(s), true
	default:
		return value.Value{}, false
	}
}

// Render resolves the Accessor to its string form.
// A missing value inside an interpolator fails the whole render with
// InterpolatorRenderError; a missing value for a standalone static or
// expression accessor also fails the render (there being no literal text
// to fall back to), reported the same way.
func (a Accessor) Render(ie *evalctx.InternalEvent) (string, error) {
	switch a.kind {
	case KindStatic:
		return a.static.String(), nil
	case KindExpression, KindCustom:
		v, ok := resolvePath(a.path, ie, a.registry)
		if !ok {
			return "", &matcherr.InterpolatorRenderError{
				Template: a.source,
				Cause:    fmt.Errorf("missing value for %s", a.path.String()),
			}
		}
		return v.String(), nil
	case KindInterpolator:
		out := make([]byte, 0, 64)
		for _, seg := range a.segments {
			switch seg.kind {
			case segLiteral:
				out = append(out, seg.literal...)
			case segPath:
				v, ok := resolvePath(seg.path, ie, a.registry)
				if !ok {
					return "", &matcherr.InterpolatorRenderError{
						Template: a.source,
						Cause:    fmt.Errorf("missing value for %s", seg.path.String()),
					}
				}
				out = append(out, v.String()...)
			}
		}
		return string(out), nil
	default:
		return "", &matcherr.InternalSystemError{Msg: "unknown accessor kind"}
	}
}

// resolvePath walks a compiled Path against the current event/vars,
// resolving its root and then each selector in order.
func resolvePath(p Path, ie *evalctx.InternalEvent, registry *Registry) (value.Value, bool) {
	switch p.Root {
	case RootEvent:
		base := ie.Event.AsValue()
		return walkSelectors(base, p.Selectors)

	case RootVariables:
		names := make([]string, len(p.Selectors))
		for i, s := range p.Selectors {
			if s.Kind != SelectorKey {
				// Selectors before the variable name must be keys; an
				// index here is a configuration mistake that resolves to
				// missing at eval time rather than panicking.
				return value.Value{}, false
			}
			names[i] = s.Key
		}
		v, consumed, ok := ie.LookupVar(names)
		if !ok {
			return value.Value{}, false
		}
		remaining := p.Selectors[consumed:]
		return walkSelectors(v, remaining)

	default:
		fn, ok := registry.lookup(p.Root)
		if !ok {
			return value.Value{}, false
		}
		base, ok := fn(ie)
		if !ok {
			return value.Value{}, false
		}
		return walkSelectors(base, p.Selectors)
	}
}

// walkSelectors applies each selector in turn, returning "missing"
// (ok=false) as soon as indexing a non-array, keying a non-map, or
// stepping past the end occurs.
func walkSelectors(base value.Value, sels []Selector) (value.Value, bool) {
	cur := base
	for _, s := range sels {
		switch s.Kind {
		case SelectorKey:
			v, ok := cur.Key(s.Key)
			if !ok {
				return value.Value{}, false
			}
			cur = v
		case SelectorIndex:
			v, ok := cur.Index(s.Index)
			if !ok {
				return value.Value{}, false
			}
			cur = v
		}
	}
	return cur, true
}
