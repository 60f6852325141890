package types

import (
	"fmt"

	"github.com/funvibe/graft/internal/config"
)

// Proxy operations. Each operation promotes its operands against declared
// expected types and produces its result through FromApply, so ordinary host
// code over proxy values builds up a graft as a side effect of execution.

// numericExpected accepts Int first, Float second: an operand promotable to
// both lands on Int (first match wins).
var numericExpected = ExpectTypes(Int, Float)

// Add builds x + y. Int + Int stays Int; any Float operand widens the
// result.
func (v *Value) Add(other any) (*Value, error) {
	return v.arith("Add", config.AddFuncName, other)
}

// Sub builds x - y with Add's typing rule.
func (v *Value) Sub(other any) (*Value, error) {
	return v.arith("Sub", config.SubFuncName, other)
}

// Mul builds x * y with Add's typing rule.
func (v *Value) Mul(other any) (*Value, error) {
	return v.arith("Mul", config.MulFuncName, other)
}

// Div builds x / y; division is always Float.
func (v *Value) Div(other any) (*Value, error) {
	self, err := Promote(v, []*Type{Float}, "self", "Div")
	if err != nil {
		return nil, err
	}
	bound, err := CheckArgs("Div", []ArgSpec{{Name: "other", Expected: ExpectTypes(Float)}},
		[]any{other}, nil, v)
	if err != nil {
		return nil, err
	}
	return FromApply(Float, config.DivFuncName, []*Value{self, bound["other"]}, nil)
}

func (v *Value) arith(op, wireFn string, other any) (*Value, error) {
	if v.typ.Generic() != Int && v.typ.Generic() != Float {
		return nil, fmt.Errorf("%s is not defined for %s", op, v.typ)
	}
	bound, err := CheckArgs(op, []ArgSpec{{Name: "other", Expected: numericExpected}},
		[]any{other}, nil, v)
	if err != nil {
		return nil, err
	}
	rhs := bound["other"]
	result := Int
	if v.typ.Generic() == Float || rhs.Type().Generic() == Float {
		result = Float
	}
	return FromApply(result, wireFn, []*Value{v, rhs}, nil)
}

// AddReflected is Add in reflected-operator mode: a promotion failure yields
// ErrNotImplemented so the dispatcher can retry with the operands swapped.
func (v *Value) AddReflected(other any) (*Value, error) {
	if v.typ.Generic() != Int && v.typ.Generic() != Float {
		return nil, ErrNotImplemented
	}
	bound, err := CheckArgsReflected("Add", []ArgSpec{{Name: "other", Expected: numericExpected}},
		[]any{other}, nil, v)
	if err != nil {
		return nil, err
	}
	rhs := bound["other"]
	result := Int
	if v.typ.Generic() == Float || rhs.Type().Generic() == Float {
		result = Float
	}
	return FromApply(result, config.AddFuncName, []*Value{v, rhs}, nil)
}

// Concat builds string concatenation.
func (v *Value) Concat(other any) (*Value, error) {
	if v.typ.Generic() != Str {
		return nil, fmt.Errorf("Concat is not defined for %s", v.typ)
	}
	bound, err := CheckArgs("Concat", []ArgSpec{{Name: "other", Expected: ExpectTypes(Str)}},
		[]any{other}, nil, v)
	if err != nil {
		return nil, err
	}
	return FromApply(Str, config.ConcatFuncName, []*Value{v, bound["other"]}, nil)
}

// elementType resolves the receiver's element type parameter; used as a
// receiver-dependent expected type for generic container methods.
func elementType(receiver *Value) []*Type {
	params := receiver.Type().Params()
	if len(params) == 1 {
		if t, ok := params[0].(*Type); ok {
			return []*Type{t}
		}
	}
	return []*Type{Any}
}

// GetItem builds container indexing. Lists index by Int and yield their
// element type; Dicts index by their key type and yield their value type.
func (v *Value) GetItem(key any) (*Value, error) {
	switch v.typ.Generic() {
	case List:
		bound, err := CheckArgs("GetItem", []ArgSpec{{Name: "index", Expected: ExpectTypes(Int)}},
			[]any{key}, nil, v)
		if err != nil {
			return nil, err
		}
		elem := v.typ.Params()[0].(*Type)
		return FromApply(elem, config.GetItemFuncName, []*Value{v, bound["index"]}, nil)

	case Dict:
		keyType := v.typ.Params()[0].(*Type)
		valType := v.typ.Params()[1].(*Type)
		bound, err := CheckArgs("GetItem", []ArgSpec{{Name: "key",
			Expected: ExpectReceiver(func(*Value) []*Type { return []*Type{keyType} })}},
			[]any{key}, nil, v)
		if err != nil {
			return nil, err
		}
		return FromApply(valType, config.GetItemFuncName, []*Value{v, bound["key"]}, nil)

	default:
		return nil, fmt.Errorf("GetItem is not defined for %s", v.typ)
	}
}

// Contains builds a proxy membership test over a List.
func (v *Value) Contains(item any) (*Value, error) {
	if v.typ.Generic() != List {
		return nil, fmt.Errorf("Contains is not defined for %s", v.typ)
	}
	bound, err := CheckArgs("Contains", []ArgSpec{{Name: "item", Expected: ExpectReceiver(elementType)}},
		[]any{item}, nil, v)
	if err != nil {
		return nil, err
	}
	return FromApply(Bool, config.ContainsFuncName, []*Value{v, bound["item"]}, nil)
}

// Length builds a proxy length for Lists, Dicts and Strs.
func (v *Value) Length() (*Value, error) {
	switch v.typ.Generic() {
	case List, Dict, Str:
		return FromApply(Int, config.LengthFuncName, []*Value{v}, nil)
	default:
		return nil, fmt.Errorf("Length is not defined for %s", v.typ)
	}
}
