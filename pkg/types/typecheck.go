package types

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotImplemented is the sentinel a reflected binary operation returns
// instead of a promotion error, so the caller can retry with the operands
// swapped (the host language's reflected-operator protocol).
var ErrNotImplemented = errors.New("operation not implemented for these operand types")

// Expected declares the acceptable types for one argument. Exactly one of
// the fields is set. Thunks defer resolution of types that are not yet
// defined at declaration time; a thunk is resolved once and cached.
// ReceiverThunks depend on the receiver's own type parameters (generic
// methods) and are re-evaluated per call.
type Expected struct {
	Types         []*Type
	Thunk         func() []*Type
	ReceiverThunk func(receiver *Value) []*Type

	once   sync.Once
	cached []*Type
}

// ExpectTypes declares a fixed candidate list.
func ExpectTypes(types ...*Type) *Expected {
	return &Expected{Types: types}
}

// ExpectThunk declares a deferred candidate list, resolved once.
func ExpectThunk(fn func() []*Type) *Expected {
	return &Expected{Thunk: fn}
}

// ExpectReceiver declares a candidate list computed from the receiver,
// re-evaluated per call.
func ExpectReceiver(fn func(receiver *Value) []*Type) *Expected {
	return &Expected{ReceiverThunk: fn}
}

func (e *Expected) resolve(receiver *Value) []*Type {
	switch {
	case e.ReceiverThunk != nil:
		return e.ReceiverThunk(receiver)
	case e.Thunk != nil:
		e.once.Do(func() { e.cached = e.Thunk() })
		return e.cached
	default:
		return e.Types
	}
}

// ArgSpec declares one parameter of a checked operation.
type ArgSpec struct {
	Name       string
	Expected   *Expected
	Default    any
	HasDefault bool
}

// CheckArgs binds actual arguments against the declared parameters, applies
// defaults, and promotes every bound argument whose parameter declares
// expected types. Positional arguments bind in declaration order; keyword
// arguments bind by name.
func CheckArgs(funcName string, specs []ArgSpec, args []any, kwargs map[string]any, receiver *Value) (map[string]*Value, error) {
	return checkArgs(funcName, specs, args, kwargs, receiver, false)
}

// CheckArgsReflected is CheckArgs for reflected binary operations: a
// promotion failure yields ErrNotImplemented instead of the aggregated
// error.
func CheckArgsReflected(funcName string, specs []ArgSpec, args []any, kwargs map[string]any, receiver *Value) (map[string]*Value, error) {
	return checkArgs(funcName, specs, args, kwargs, receiver, true)
}

func checkArgs(funcName string, specs []ArgSpec, args []any, kwargs map[string]any, receiver *Value, reflected bool) (map[string]*Value, error) {
	if len(args) > len(specs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", funcName, len(specs), len(args))
	}

	bound := make(map[string]any, len(specs))
	for i, a := range args {
		bound[specs[i].Name] = a
	}
	for name, a := range kwargs {
		spec := findSpec(specs, name)
		if spec == nil {
			return nil, fmt.Errorf("%s has no argument named %q", funcName, name)
		}
		if _, dup := bound[name]; dup {
			return nil, fmt.Errorf("%s: argument %q bound both positionally and by keyword", funcName, name)
		}
		bound[name] = a
	}
	for _, spec := range specs {
		if _, ok := bound[spec.Name]; !ok {
			if !spec.HasDefault {
				return nil, fmt.Errorf("%s: missing required argument %q", funcName, spec.Name)
			}
			bound[spec.Name] = spec.Default
		}
	}

	out := make(map[string]*Value, len(specs))
	for i := range specs {
		spec := &specs[i]
		expected := []*Type{Any}
		if spec.Expected != nil {
			expected = spec.Expected.resolve(receiver)
		}
		promoted, err := Promote(bound[spec.Name], expected, spec.Name, funcName)
		if err != nil {
			if reflected {
				return nil, ErrNotImplemented
			}
			return nil, err
		}
		out[spec.Name] = promoted
	}
	return out, nil
}

func findSpec(specs []ArgSpec, name string) *ArgSpec {
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}
