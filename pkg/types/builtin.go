package types

import (
	"fmt"

	"github.com/funvibe/graft/internal/config"
	"github.com/funvibe/graft/pkg/graft"
)

// Built-in proxy type families. Registered once at package init; the
// registry never evicts.
var (
	Any   = NewFamily(config.AnyTypeName, false, WithPromoter(promoteAny))
	None  = NewFamily(config.NoneTypeName, false, WithParent(Any), WithPromoter(promoteNone))
	Bool  = NewFamily(config.BoolTypeName, false, WithParent(Any), WithPromoter(promoteBool))
	Int   = NewFamily(config.IntTypeName, false, WithParent(Any), WithPromoter(promoteInt))
	Float = NewFamily(config.FloatTypeName, false, WithParent(Any), WithPromoter(promoteFloat))
	Str   = NewFamily(config.StrTypeName, false, WithParent(Any), WithPromoter(promoteStr))

	List = NewFamily(config.ListTypeName, true, WithParent(Any),
		WithValidator(validateList), WithPromoter(promoteList))
	Dict = NewFamily(config.DictTypeName, true, WithParent(Any),
		WithValidator(validateDict))
	Tuple = NewFamily(config.TupleTypeName, true, WithParent(Any),
		WithValidator(validateTuple))
)

func validateList(params []Param) error {
	if len(params) != 1 {
		return fmt.Errorf("List takes exactly one type parameter, got %d", len(params))
	}
	if _, ok := params[0].(*Type); !ok {
		return fmt.Errorf("List element parameter must be a proxy type, got %T", params[0])
	}
	return nil
}

func validateDict(params []Param) error {
	if len(params) != 2 {
		return fmt.Errorf("Dict takes key and value type parameters, got %d", len(params))
	}
	key, ok := params[0].(*Type)
	if !ok {
		return fmt.Errorf("Dict key parameter must be a proxy type, got %T", params[0])
	}
	if key.Generic() != Str && key.Generic() != Int {
		return fmt.Errorf("Dict keys must be Str or Int, got %s", key)
	}
	if _, ok := params[1].(*Type); !ok {
		return fmt.Errorf("Dict value parameter must be a proxy type, got %T", params[1])
	}
	return nil
}

func validateTuple(params []Param) error {
	for i, p := range params {
		if _, ok := p.(*Type); !ok {
			return fmt.Errorf("Tuple parameter %d must be a proxy type, got %T", i, p)
		}
	}
	return nil
}

// literalValue wraps a JSON literal in a value of t. Panics only on literals
// that cannot fail validation by construction.
func literalValue(t *Type, v any) *Value {
	g, err := graft.Value(v)
	if err != nil {
		panic(err)
	}
	val, err := FromGraft(t, g)
	if err != nil {
		panic(err)
	}
	return val
}

// NewInt wraps a host integer as a proxy Int.
func NewInt(i int64) *Value { return literalValue(Int, i) }

// NewFloat wraps a host float as a proxy Float.
func NewFloat(f float64) *Value { return literalValue(Float, f) }

// NewStr wraps a host string as a proxy Str.
func NewStr(s string) *Value { return literalValue(Str, s) }

// NewBool wraps a host bool as a proxy Bool.
func NewBool(b bool) *Value { return literalValue(Bool, b) }

// NewNone is the proxy null value.
func NewNone() *Value { return literalValue(None, nil) }

// NewList promotes each item to elem and builds a proxy List[elem].
func NewList(elem *Type, items ...any) (*Value, error) {
	t, err := List.Parameterize(elem)
	if err != nil {
		return nil, err
	}
	vals := make([]*Value, len(items))
	for i, item := range items {
		v, err := Promote(item, []*Type{elem}, fmt.Sprintf("item %d", i), "NewList")
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return FromApply(t, config.ListFuncName, vals, nil)
}

// NewDict promotes entries and builds a proxy Dict[Str, val]. Entry order in
// the graft follows sorted keys.
func NewDict(val *Type, entries map[string]any) (*Value, error) {
	t, err := Dict.Parameterize(Str, val)
	if err != nil {
		return nil, err
	}
	kwargs := make(map[string]*Value, len(entries))
	for _, k := range sortedNames(entries) {
		v, err := Promote(entries[k], []*Type{val}, k, "NewDict")
		if err != nil {
			return nil, err
		}
		kwargs[k] = v
	}
	return FromApply(t, config.DictFuncName, nil, kwargs)
}

// NewTuple builds a proxy Tuple over already-proxy items.
func NewTuple(items ...*Value) (*Value, error) {
	params := make([]Param, len(items))
	for i, item := range items {
		params[i] = item.Type()
	}
	t, err := Tuple.Parameterize(params...)
	if err != nil {
		return nil, err
	}
	return FromApply(t, config.TupleFuncName, items, nil)
}

// Promoters

func promoteAny(target *Type, value any) (*Value, error) {
	if v, ok := value.(*Value); ok {
		return v.Cast(target)
	}
	g, err := graft.Value(value)
	if err != nil {
		return nil, err
	}
	return FromGraft(target, g)
}

func promoteNone(target *Type, value any) (*Value, error) {
	if value == nil {
		return literalValue(target, nil), nil
	}
	return nil, fmt.Errorf("only nil promotes to %s, got %T", target, value)
}

func promoteBool(target *Type, value any) (*Value, error) {
	if b, ok := value.(bool); ok {
		return literalValue(target, b), nil
	}
	return nil, fmt.Errorf("cannot promote %T to %s", value, target)
}

func promoteInt(target *Type, value any) (*Value, error) {
	switch v := value.(type) {
	case int:
		return literalValue(target, int64(v)), nil
	case int64:
		return literalValue(target, v), nil
	case float64, float32:
		return nil, fmt.Errorf("refusing lossy promotion of %T to %s", value, target)
	default:
		return nil, fmt.Errorf("cannot promote %T to %s", value, target)
	}
}

func promoteFloat(target *Type, value any) (*Value, error) {
	switch v := value.(type) {
	case float64:
		return literalValue(target, v), nil
	case float32:
		return literalValue(target, float64(v)), nil
	case int:
		return literalValue(target, float64(v)), nil
	case int64:
		return literalValue(target, float64(v)), nil
	case *Value:
		// Widening a proxy Int is a pure re-typing of the same graft.
		if v.Type().Generic() == Int {
			return v.Cast(target)
		}
		return nil, fmt.Errorf("cannot promote proxy %s to %s", v.Type(), target)
	default:
		return nil, fmt.Errorf("cannot promote %T to %s", value, target)
	}
}

func promoteStr(target *Type, value any) (*Value, error) {
	if s, ok := value.(string); ok {
		return literalValue(target, s), nil
	}
	return nil, fmt.Errorf("cannot promote %T to %s", value, target)
}

func promoteList(target *Type, value any) (*Value, error) {
	elem := target.Params()[0].(*Type)
	switch v := value.(type) {
	case []any:
		vals := make([]*Value, len(v))
		for i, item := range v {
			promoted, err := Promote(item, []*Type{elem}, fmt.Sprintf("item %d", i), "List promotion")
			if err != nil {
				return nil, err
			}
			vals[i] = promoted
		}
		return FromApply(target, config.ListFuncName, vals, nil)
	case *Value:
		return nil, fmt.Errorf("cannot promote proxy %s to %s", v.Type(), target)
	default:
		return nil, fmt.Errorf("cannot promote %T to %s", value, target)
	}
}
