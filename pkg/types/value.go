package types

import (
	"fmt"

	"github.com/funvibe/graft/pkg/graft"
)

// Value is a proxy value: the immutable pairing of a concrete proxy type, a
// graft, and the deduplicated tuple of parameter proxies the value
// transitively depends on. Values are created purely functionally and never
// mutated after construction.
type Value struct {
	typ    *Type
	graft  *graft.Graft
	params []*Value
	name   string // set only on parameter proxies
}

// FromGraft constructs a value of t directly from an already-valid graft,
// without any interpretation of the data. This is how casts and
// graph-derived results avoid re-validating.
func FromGraft(t *Type, g *graft.Graft, params ...*Value) (*Value, error) {
	if t == nil {
		panic("types.FromGraft: nil type")
	}
	if g == nil {
		panic("types.FromGraft: nil graft")
	}
	if t.IsGeneric() {
		return nil, &GenericInstanceError{Type: t}
	}
	ps := make([]*Value, len(params))
	copy(ps, params)
	return &Value{typ: t, graft: g, params: ps}, nil
}

// Parameter builds a parameter proxy of type t: a value whose graft is a key
// reference to name and whose params tuple contains itself. The
// self-reference is the only thing marking a value as a free parameter.
func Parameter(t *Type, name string) (*Value, error) {
	g, err := graft.Keyref(name)
	if err != nil {
		return nil, err
	}
	v, err := FromGraft(t, g)
	if err != nil {
		return nil, err
	}
	v.name = name
	v.params = []*Value{v}
	return v, nil
}

// FromApply is the standard way every proxy operation produces its result:
// build the application graft over the operands' grafts, then propagate the
// union of their free parameters.
func FromApply(t *Type, function string, args []*Value, kwargs map[string]*Value) (*Value, error) {
	argGrafts := make([]*graft.Graft, len(args))
	operands := make([]*Value, 0, len(args)+len(kwargs))
	for i, a := range args {
		if a == nil {
			panic(fmt.Sprintf("types.FromApply: nil argument at position %d", i))
		}
		argGrafts[i] = a.graft
		operands = append(operands, a)
	}
	var kwargGrafts map[string]*graft.Graft
	if len(kwargs) > 0 {
		kwargGrafts = make(map[string]*graft.Graft, len(kwargs))
		for _, k := range sortedNames(kwargs) {
			a := kwargs[k]
			if a == nil {
				panic(fmt.Sprintf("types.FromApply: nil argument for keyword %q", k))
			}
			kwargGrafts[k] = a.graft
			operands = append(operands, a)
		}
	}

	params, err := MergeParams(operands...)
	if err != nil {
		return nil, err
	}
	g, err := graft.Apply(function, argGrafts, kwargGrafts)
	if err != nil {
		return nil, err
	}
	return FromGraft(t, g, params...)
}

// Cast reinterprets the value as type t with no runtime conversion: the
// graft and parameter tuple carry over unchanged. The caller is responsible
// for data compatibility.
func (v *Value) Cast(t *Type) (*Value, error) {
	return FromGraft(t, v.graft, v.params...)
}

// MergeParams unions the parameter tuples of the given values, preserving
// first-seen order and deduplicating by object identity. Two different
// parameter objects sharing a name are an error: their identity is
// ambiguous.
func MergeParams(vals ...*Value) ([]*Value, error) {
	var merged []*Value
	byName := map[string]*Value{}
	for _, v := range vals {
		if v == nil {
			continue
		}
		for _, p := range v.params {
			if existing, ok := byName[p.name]; ok {
				if existing == p {
					continue
				}
				return nil, &ParameterConflictError{Name: p.name}
			}
			byName[p.name] = p
			merged = append(merged, p)
		}
	}
	return merged, nil
}

// Type returns the value's concrete proxy type.
func (v *Value) Type() *Type {
	return v.typ
}

// Graft returns the value's graft. Value implements graft.Delayed.
func (v *Value) Graft() *graft.Graft {
	return v.graft
}

// Params returns the parameter proxies the value depends on.
func (v *Value) Params() []*Value {
	out := make([]*Value, len(v.params))
	copy(out, v.params)
	return out
}

// IsParameter reports whether v is a parameter proxy.
func (v *Value) IsParameter() bool {
	for _, p := range v.params {
		if p == v {
			return true
		}
	}
	return false
}

// ParamName returns the name of a parameter proxy, "" otherwise.
func (v *Value) ParamName() string {
	return v.name
}

func (v *Value) String() string {
	if v.IsParameter() {
		return fmt.Sprintf("<%s parameter %q>", v.typ, v.name)
	}
	return fmt.Sprintf("<%s proxy>", v.typ)
}

// Host-context guards
//
// The concrete value behind a proxy is unknown until remote execution, so
// host-language truthiness, length, membership and iteration must fail
// loudly rather than silently produce a wrong answer.

// HostBool always fails: a proxy has no host truthiness.
func (v *Value) HostBool() (bool, error) {
	return false, &ProxyContextError{Op: "truth value", Type: v.typ,
		Hint: "compare explicitly and keep the result as a proxy Bool"}
}

// HostLen always fails: use the proxy-side Length operation.
func (v *Value) HostLen() (int, error) {
	return 0, &ProxyContextError{Op: "len", Type: v.typ,
		Hint: "use .Length() for a proxy Int"}
}

// HostContains always fails: use the proxy-side Contains operation.
func (v *Value) HostContains(any) (bool, error) {
	return false, &ProxyContextError{Op: "membership test", Type: v.typ,
		Hint: "use .Contains(item) for a proxy Bool"}
}

// HostIterate always fails: the number of elements is unknown before remote
// execution.
func (v *Value) HostIterate() ([]any, error) {
	return nil, &ProxyContextError{Op: "iteration", Type: v.typ,
		Hint: "operate on the whole collection with proxy operations instead"}
}
