package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/funvibe/graft/internal/config"
	"github.com/funvibe/graft/pkg/graft"
)

// Function is the generic family of traced callables, parameterized by
// positional argument types, an optional ordered dict of named argument
// types, and the return type last:
//
//	Function[Int, Int, Float]                        (x: Int, y: Int) -> Float
//	Function[DictParam{{"x", Int}, {"y", Int}}, Int] (x: Int, y: Int) -> Int
//
// Subtyping is contravariant in each argument type and covariant in the
// return type. Arguments align structurally as one ordered sequence: an
// argument the supertype takes by name must be taken by the same name, in
// the same position, by the subtype.
var Function = NewFamily(config.FunctionTypeName, true, WithParent(Any),
	WithValidator(validateFunction), WithSubtypeHook(functionSubtype))

// sigArg is one argument of a function signature; Name is "" for purely
// positional arguments.
type sigArg struct {
	Name string
	Type *Type
}

func validateFunction(params []Param) error {
	if len(params) == 0 {
		return fmt.Errorf("Function needs at least a return type")
	}
	if _, ok := params[len(params)-1].(*Type); !ok {
		return fmt.Errorf("Function return parameter must be a proxy type, got %T", params[len(params)-1])
	}
	sawNamed := false
	for i, p := range params[:len(params)-1] {
		switch p := p.(type) {
		case *Type:
			if sawNamed {
				return fmt.Errorf("positional argument type at %d after named arguments", i)
			}
		case DictParam:
			if sawNamed {
				return fmt.Errorf("Function takes at most one named-argument dict")
			}
			sawNamed = true
			for _, item := range p {
				if _, ok := item.Param.(*Type); !ok {
					return fmt.Errorf("named argument %q must be a proxy type, got %T", item.Key, item.Param)
				}
			}
		default:
			return fmt.Errorf("Function argument parameter %d must be a proxy type or named-argument dict, got %T", i, p)
		}
	}
	return nil
}

// signatureParts splits a concrete Function type into its aligned argument
// sequence and return type.
func signatureParts(t *Type) (args []sigArg, ret *Type) {
	params := t.Params()
	ret = params[len(params)-1].(*Type)
	for _, p := range params[:len(params)-1] {
		switch p := p.(type) {
		case *Type:
			args = append(args, sigArg{Type: p})
		case DictParam:
			for _, item := range p {
				args = append(args, sigArg{Name: item.Key, Type: item.Param.(*Type)})
			}
		}
	}
	return args, ret
}

// Signature renders a concrete Function type for human comparison, e.g.
// "(Int, y: Int) -> Float". Non-Function types render as their String.
func Signature(t *Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Generic() != Function || t.IsGeneric() {
		return t.String()
	}
	args, ret := signatureParts(t)
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			parts[i] = fmt.Sprintf("%s: %s", a.Name, a.Type)
		} else {
			parts[i] = a.Type.String()
		}
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
}

// functionSubtype: a <: b iff each of b's argument types is a subtype of
// a's (contravariance: a accepts everything b accepts) and a's return type
// is a subtype of b's.
func functionSubtype(a, b *Type) bool {
	aArgs, aRet := signatureParts(a)
	bArgs, bRet := signatureParts(b)
	if len(aArgs) != len(bArgs) {
		return false
	}
	for i := range aArgs {
		if bArgs[i].Name != "" && aArgs[i].Name != bArgs[i].Name {
			return false
		}
		if !Subtype(bArgs[i].Type, aArgs[i].Type) {
			return false
		}
	}
	return Subtype(aRet, bRet)
}

// FunctionOf is sugar for parameterizing Function with positional argument
// types, named argument types, and a return type.
func FunctionOf(positional []*Type, named DictParam, ret *Type) (*Type, error) {
	params := make([]Param, 0, len(positional)+2)
	for _, t := range positional {
		params = append(params, t)
	}
	if len(named) > 0 {
		params = append(params, named)
	}
	params = append(params, ret)
	return Function.Parameterize(params...)
}

var valueType = reflect.TypeOf((*Value)(nil))

// FromCallable converts a host callable into a typed proxy Function by
// executing it once against placeholder parameters.
//
// fn must be a non-variadic func whose inputs and single output are *Value,
// with arity matching ft's argument types; Go has no default arguments, so
// the remaining tracer contract is arity alone. Positional arguments are
// named arg_0, arg_1, ...; named arguments take their declared names.
//
// The callable runs exactly once, straight-line. Every proxy operation it
// performs builds up the graft as a side effect of ordinary execution; no
// AST or bytecode inspection is involved. A callable that ignores its inputs
// is indistinguishable from a constant: its graft simply depends on no
// parameter. The result is promoted to ft's return type and wrapped as a
// function-shaped graft abstracting over the parameter names.
func FromCallable(ft *Type, fn any) (*Value, error) {
	if ft == nil || ft.Generic() != Function || ft.IsGeneric() {
		return nil, &TracerError{Func: "FromCallable", Reason: fmt.Sprintf("%s is not a concrete Function type", ft)}
	}
	args, ret := signatureParts(ft)

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &TracerError{Func: "FromCallable", Reason: fmt.Sprintf("callable must be a func, got %T", fn)}
	}
	rt := fv.Type()
	if rt.IsVariadic() {
		return nil, &TracerError{Func: "FromCallable", Reason: "variadic callables cannot be traced"}
	}
	if rt.NumIn() != len(args) {
		return nil, &TracerError{Func: "FromCallable",
			Reason: fmt.Sprintf("callable takes %d arguments, signature %s declares %d", rt.NumIn(), Signature(ft), len(args))}
	}
	for i := 0; i < rt.NumIn(); i++ {
		if rt.In(i) != valueType {
			return nil, &TracerError{Func: "FromCallable",
				Reason: fmt.Sprintf("argument %d must be *types.Value, got %s", i, rt.In(i))}
		}
	}
	if rt.NumOut() != 1 || rt.Out(0) != valueType {
		return nil, &TracerError{Func: "FromCallable", Reason: "callable must return exactly one *types.Value"}
	}

	names := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			names[i] = a.Name
		} else {
			names[i] = fmt.Sprintf("arg_%d", i)
		}
	}

	var traced *Value
	var traceErr error
	trace := func() {
		ins := make([]reflect.Value, len(args))
		synthesized := make([]*Value, len(args))
		for i, a := range args {
			p, err := Parameter(a.Type, names[i])
			if err != nil {
				traceErr = err
				return
			}
			synthesized[i] = p
			ins[i] = reflect.ValueOf(p)
		}

		outs := fv.Call(ins)
		result, _ := outs[0].Interface().(*Value)
		if result == nil {
			traceErr = &TracerError{Func: "FromCallable", Reason: "callable returned nil"}
			return
		}
		promoted, err := Promote(result, []*Type{ret}, "return", "FromCallable")
		if err != nil {
			traceErr = err
			return
		}

		fg, err := graft.Function(promoted.Graft(), names...)
		if err != nil {
			traceErr = err
			return
		}
		// Parameters synthesized here are now bound by the function graft;
		// anything else the result closed over stays free.
		var outer []*Value
		for _, p := range promoted.Params() {
			bound := false
			for _, s := range synthesized {
				if p == s {
					bound = true
					break
				}
			}
			if !bound {
				outer = append(outer, p)
			}
		}
		traced, traceErr = FromGraft(ft, fg, outer...)
	}

	// Inside a consistent scope each trace opens a nested boundary with a
	// fixed seed, so tracing the same logic twice yields byte-identical
	// grafts regardless of what was allocated in between.
	if graft.InConsistentScope() {
		graft.ConsistentGUIDs(0, trace)
	} else {
		trace()
	}
	if traceErr != nil {
		return nil, traceErr
	}
	return traced, nil
}

// FromFunction converts an existing Function value to the signature ft.
// A structurally compatible signature is a no-op cast; an incompatible one
// is a SignatureError rendering both signatures.
func FromFunction(ft *Type, v *Value) (*Value, error) {
	if ft == nil || ft.Generic() != Function || ft.IsGeneric() {
		return nil, &TracerError{Func: "FromFunction", Reason: fmt.Sprintf("%s is not a concrete Function type", ft)}
	}
	if v.Type().Generic() != Function {
		return nil, &TracerError{Func: "FromFunction", Reason: fmt.Sprintf("value is %s, not a Function", v.Type())}
	}
	if !Subtype(v.Type(), ft) {
		return nil, &SignatureError{Expected: ft, Actual: v.Type()}
	}
	return v.Cast(ft)
}

// FromObject inverts tracing: given an already-built proxy expression that
// depends on named parameters, it synthesizes a Function whose argument
// types are the parameters' own proxy types.
func FromObject(expr *Value) (*Value, error) {
	params := expr.Params()
	named := make(DictParam, len(params))
	names := make([]string, len(params))
	for i, p := range params {
		named[i] = DictItem{Key: p.ParamName(), Param: p.Type()}
		names[i] = p.ParamName()
	}
	ft, err := FunctionOf(nil, named, expr.Type())
	if err != nil {
		return nil, err
	}
	fg, err := graft.Function(expr.Graft(), names...)
	if err != nil {
		return nil, err
	}
	return FromGraft(ft, fg)
}
