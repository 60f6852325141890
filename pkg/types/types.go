// Package types implements the typed proxy-value layer of the tracing core:
// a registry of proxy type families with interned concrete parameterizations,
// covariant subtype checks, value promotion, and the function tracer that
// converts a host callable into a serializable graft.
//
// A type family is either concrete on its own (Int, Str) or generic: a
// generic family cannot have values until it is parameterized (List[Int]).
// Concrete parameterizations are interned per family, so pointer identity is
// a valid substitute for structural equality.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Param is a type parameter: an int64, float64, bool or string primitive, a
// *Type, or a TupleParam / DictParam nesting of the same. Parameterize
// normalizes smaller integer and float kinds to int64/float64.
type Param any

// TupleParam is an ordered tuple of type parameters.
type TupleParam []Param

// DictItem is one key of a DictParam.
type DictItem struct {
	Key   string
	Param Param
}

// DictParam is an ordered mapping of type parameters. Order is significant:
// no reordering is attempted during subtype checks.
type DictParam []DictItem

// Promoter coerces a host or proxy value into the concrete target type.
// Families register one explicitly; there is no duck-typed probing.
type Promoter func(target *Type, value any) (*Value, error)

// Type describes a proxy type: either a family root or an interned concrete
// parameterization of a generic family. Types are immutable after
// registration and compared by pointer.
type Type struct {
	name    string
	parent  *Type
	generic *Type // family root this concrete type was parameterized from
	params  []Param

	isGeneric bool // family root that requires parameterization

	validate    func(params []Param) error
	subtypeHook func(a, b *Type) bool
	promoter    Promoter

	concrete map[string]*Type // interning table; family roots only
}

// registry is the process-wide family table. It is initialized at package
// init, grows monotonically and never evicts.
type registryService struct {
	mu       sync.RWMutex
	families map[string]*Type
}

var registry = &registryService{families: map[string]*Type{}}

// FamilyOption configures a type family at registration.
type FamilyOption func(*Type)

// WithParent sets the family's supertype family.
func WithParent(p *Type) FamilyOption {
	return func(t *Type) { t.parent = p }
}

// WithValidator installs an extra per-family check over type parameters, run
// after the recursive structural validation.
func WithValidator(fn func(params []Param) error) FamilyOption {
	return func(t *Type) { t.validate = fn }
}

// WithSubtypeHook overrides the per-parameter variance comparison for the
// family (the default is covariant).
func WithSubtypeHook(fn func(a, b *Type) bool) FamilyOption {
	return func(t *Type) { t.subtypeHook = fn }
}

// WithPromoter installs the family's promotion behavior.
func WithPromoter(fn Promoter) FamilyOption {
	return func(t *Type) { t.promoter = fn }
}

// NewFamily registers a type family. A generic family must be parameterized
// before values of it can exist. Registering the same name twice panics:
// families are process-wide singletons created at init.
func NewFamily(name string, generic bool, opts ...FamilyOption) *Type {
	t := &Type{name: name, isGeneric: generic}
	if generic {
		t.concrete = map[string]*Type{}
	}
	for _, opt := range opts {
		opt(t)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, exists := registry.families[name]; exists {
		panic(fmt.Sprintf("types: family %q registered twice", name))
	}
	registry.families[name] = t
	return t
}

// Family returns a registered family root by name.
func Family(name string) (*Type, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	t, ok := registry.families[name]
	return t, ok
}

// Name returns the family name, without parameters.
func (t *Type) Name() string {
	return t.name
}

// IsGeneric reports whether t is an unparameterized generic family root.
func (t *Type) IsGeneric() bool {
	return t.isGeneric && t.generic == nil
}

// IsConcrete reports whether values of t can exist.
func (t *Type) IsConcrete() bool {
	return !t.IsGeneric()
}

// Generic returns the family root t was parameterized from, or t itself for
// family roots.
func (t *Type) Generic() *Type {
	if t.generic != nil {
		return t.generic
	}
	return t
}

// Params returns the bound type parameters, nil for family roots.
func (t *Type) Params() []Param {
	if t.params == nil {
		return nil
	}
	out := make([]Param, len(t.params))
	copy(out, t.params)
	return out
}

// String renders the type with its parameters, e.g. "List[Int]".
func (t *Type) String() string {
	if t.generic == nil {
		return t.name
	}
	parts := make([]string, len(t.params))
	for i, p := range t.params {
		parts[i] = paramString(p)
	}
	return fmt.Sprintf("%s[%s]", t.name, strings.Join(parts, ", "))
}

// Parameterize binds type parameters, transitioning the generic family to a
// concrete type. Interning guarantees the same parameter tuple always yields
// the identical *Type.
func (t *Type) Parameterize(params ...Param) (*Type, error) {
	if t.generic != nil {
		return nil, &NotGenericError{Type: t, Reason: "type parameters are already bound"}
	}
	if !t.isGeneric {
		return nil, &NotGenericError{Type: t, Reason: "family takes no type parameters"}
	}
	if len(params) == 0 {
		return nil, &NotGenericError{Type: t, Reason: "no type parameters given"}
	}

	normalized := make([]Param, len(params))
	for i, p := range params {
		np, err := normalizeParam(p)
		if err != nil {
			return nil, &InvalidTypeParamError{Family: t.name, Index: i, Reason: err.Error()}
		}
		normalized[i] = np
	}
	if t.validate != nil {
		if err := t.validate(normalized); err != nil {
			return nil, &InvalidTypeParamError{Family: t.name, Index: -1, Reason: err.Error()}
		}
	}

	key := paramsKey(normalized)

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if cached, ok := t.concrete[key]; ok {
		return cached, nil
	}
	concrete := &Type{
		name:        t.name,
		parent:      t.parent,
		generic:     t,
		params:      normalized,
		validate:    t.validate,
		subtypeHook: t.subtypeHook,
		promoter:    t.promoter,
	}
	t.concrete[key] = concrete
	return concrete, nil
}

// MustParameterize is Parameterize for statically known-good parameters.
func (t *Type) MustParameterize(params ...Param) *Type {
	concrete, err := t.Parameterize(params...)
	if err != nil {
		panic(err)
	}
	return concrete
}

// normalizeParam validates a parameter recursively and normalizes numeric
// kinds so that equal parameters have equal canonical keys.
func normalizeParam(p Param) (Param, error) {
	switch p := p.(type) {
	case bool, string, int64, float64:
		return p, nil
	case int:
		return int64(p), nil
	case int8:
		return int64(p), nil
	case int16:
		return int64(p), nil
	case int32:
		return int64(p), nil
	case uint8:
		return int64(p), nil
	case uint16:
		return int64(p), nil
	case uint32:
		return int64(p), nil
	case float32:
		return float64(p), nil
	case *Type:
		if p == nil {
			return nil, fmt.Errorf("nil type")
		}
		return p, nil
	case TupleParam:
		out := make(TupleParam, len(p))
		for i, e := range p {
			ne, err := normalizeParam(e)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %v", i, err)
			}
			out[i] = ne
		}
		return out, nil
	case DictParam:
		seen := make(map[string]bool, len(p))
		out := make(DictParam, len(p))
		for i, item := range p {
			if seen[item.Key] {
				return nil, fmt.Errorf("duplicate dict key %q", item.Key)
			}
			seen[item.Key] = true
			np, err := normalizeParam(item.Param)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %v", item.Key, err)
			}
			out[i] = DictItem{Key: item.Key, Param: np}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %T", p)
	}
}

// paramsKey renders a hashable canonical form of a parameter tuple. Dict
// parameters are normalized to their ordered items, which the DictParam
// representation already is.
func paramsKey(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = paramKey(p)
	}
	return strings.Join(parts, ",")
}

func paramKey(p Param) string {
	switch p := p.(type) {
	case *Type:
		return "t:" + p.String()
	case bool:
		return "b:" + strconv.FormatBool(p)
	case int64:
		return "i:" + strconv.FormatInt(p, 10)
	case float64:
		return "f:" + strconv.FormatFloat(p, 'g', -1, 64)
	case string:
		return "s:" + strconv.Quote(p)
	case TupleParam:
		parts := make([]string, len(p))
		for i, e := range p {
			parts[i] = paramKey(e)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case DictParam:
		parts := make([]string, len(p))
		for i, item := range p {
			parts[i] = strconv.Quote(item.Key) + ":" + paramKey(item.Param)
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		// normalizeParam rejects everything else before keys are computed.
		panic(fmt.Sprintf("types: unkeyable parameter %T", p))
	}
}

func paramString(p Param) string {
	switch p := p.(type) {
	case *Type:
		return p.String()
	case string:
		return strconv.Quote(p)
	case TupleParam:
		parts := make([]string, len(p))
		for i, e := range p {
			parts[i] = paramString(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case DictParam:
		parts := make([]string, len(p))
		for i, item := range p {
			parts[i] = fmt.Sprintf("%q: %s", item.Key, paramString(item.Param))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", p)
	}
}

// sortedNames returns map keys in sorted order.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
