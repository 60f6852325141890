// Package interp is a trivial reference interpreter for grafts. It exists to
// close the loop in tests: a traced graft, parametrized with concrete value
// grafts, must evaluate to the value the traced code would have produced.
// The real engine evaluating grafts is a remote service outside this module.
package interp

import (
	"fmt"

	"github.com/funvibe/graft/internal/config"
	"github.com/funvibe/graft/pkg/graft"
)

// Builtin is a wire function implementation.
type Builtin func(args []any, kwargs map[string]any) (any, error)

// Interpreter evaluates grafts against a table of wire functions.
type Interpreter struct {
	builtins map[string]Builtin
}

// New returns an interpreter with the standard wire function table.
func New() *Interpreter {
	ip := &Interpreter{builtins: map[string]Builtin{}}
	registerStd(ip)
	return ip
}

// Register installs or replaces a wire function.
func (ip *Interpreter) Register(name string, fn Builtin) {
	ip.builtins[name] = fn
}

// Closure is the runtime value of a function-shaped graft: the graft plus
// the environment it was defined in.
type Closure struct {
	graft *graft.Graft
	env   *environment
}

// environment resolves identifiers through a chain of scopes.
type environment struct {
	ip       *Interpreter
	graft    *graft.Graft
	bindings map[string]any
	outer    *environment
	memo     map[string]any
}

// Eval evaluates a graft. bindings supplies values for free keys. A
// function-shaped graft evaluates to a *Closure.
func (ip *Interpreter) Eval(g *graft.Graft, bindings map[string]any) (any, error) {
	env := &environment{ip: ip, graft: g, bindings: bindings, memo: map[string]any{}}
	if g.IsFunction() {
		return &Closure{graft: g, env: env}, nil
	}
	return env.resolve(g.Returns())
}

// Apply calls a closure with positional arguments.
func (ip *Interpreter) Apply(c *Closure, args ...any) (any, error) {
	params := c.graft.Parameters()
	if len(args) != len(params) {
		return nil, fmt.Errorf("closure takes %d arguments, got %d", len(params), len(args))
	}
	bound := make(map[string]any, len(args))
	for i, p := range params {
		bound[p] = args[i]
	}
	env := &environment{ip: ip, graft: c.graft, bindings: bound, outer: c.env, memo: map[string]any{}}
	return env.resolve(c.graft.Returns())
}

func (env *environment) resolve(id string) (any, error) {
	if v, ok := env.memo[id]; ok {
		return v, nil
	}
	if n, ok := env.graft.Node(id); ok {
		v, err := env.eval(n)
		if err != nil {
			return nil, err
		}
		env.memo[id] = v
		return v, nil
	}
	if v, ok := env.bindings[id]; ok {
		return v, nil
	}
	if env.outer != nil {
		return env.outer.resolve(id)
	}
	return nil, fmt.Errorf("unbound identifier %q", id)
}

func (env *environment) eval(n graft.Node) (any, error) {
	switch n := n.(type) {
	case graft.ValueNode:
		return n.Value, nil
	case graft.KeyRefNode:
		return env.resolve(n.Key)
	case graft.FuncNode:
		return &Closure{graft: n.Graft, env: env}, nil
	case graft.ApplyNode:
		return env.apply(n)
	default:
		return nil, fmt.Errorf("unknown node kind %T", n)
	}
}

func (env *environment) apply(n graft.ApplyNode) (any, error) {
	args := make([]any, len(n.Args))
	for i, id := range n.Args {
		v, err := env.resolve(id)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	var kwargs map[string]any
	if len(n.Kwargs) > 0 {
		kwargs = make(map[string]any, len(n.Kwargs))
		for k, id := range n.Kwargs {
			v, err := env.resolve(id)
			if err != nil {
				return nil, err
			}
			kwargs[k] = v
		}
	}

	// The function position is a local identifier (closure value) or a wire
	// function name.
	if _, local := env.graft.Node(n.Function); local {
		fv, err := env.resolve(n.Function)
		if err != nil {
			return nil, err
		}
		c, ok := fv.(*Closure)
		if !ok {
			return nil, fmt.Errorf("identifier %q is not callable (%T)", n.Function, fv)
		}
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("closures take positional arguments only")
		}
		return env.ip.Apply(c, args...)
	}
	builtin, ok := env.ip.builtins[n.Function]
	if !ok {
		return nil, fmt.Errorf("unknown wire function %q", n.Function)
	}
	return builtin(args, kwargs)
}

func registerStd(ip *Interpreter) {
	ip.Register(config.AddFuncName, numericOp("add", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }))
	ip.Register(config.SubFuncName, numericOp("sub", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }))
	ip.Register(config.MulFuncName, numericOp("mul", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }))
	ip.Register(config.DivFuncName, divide)

	ip.Register(config.ConcatFuncName, func(args []any, _ map[string]any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("concat takes 2 arguments, got %d", len(args))
		}
		a, aok := args[0].(string)
		b, bok := args[1].(string)
		if !aok || !bok {
			return nil, fmt.Errorf("concat takes strings, got %T and %T", args[0], args[1])
		}
		return a + b, nil
	})

	ip.Register(config.ListFuncName, func(args []any, _ map[string]any) (any, error) {
		out := make([]any, len(args))
		copy(out, args)
		return out, nil
	})
	ip.Register(config.TupleFuncName, func(args []any, _ map[string]any) (any, error) {
		out := make([]any, len(args))
		copy(out, args)
		return out, nil
	})
	ip.Register(config.DictFuncName, func(args []any, kwargs map[string]any) (any, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("dict takes keyword arguments only")
		}
		out := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			out[k] = v
		}
		return out, nil
	})

	ip.Register(config.GetItemFuncName, getItem)

	ip.Register(config.ContainsFuncName, func(args []any, _ map[string]any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("contains takes 2 arguments, got %d", len(args))
		}
		list, ok := args[0].([]any)
		if !ok {
			return nil, fmt.Errorf("contains takes a list, got %T", args[0])
		}
		for _, e := range list {
			if e == args[1] {
				return true, nil
			}
		}
		return false, nil
	})

	ip.Register(config.LengthFuncName, func(args []any, _ map[string]any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("length takes 1 argument, got %d", len(args))
		}
		switch v := args[0].(type) {
		case []any:
			return int64(len(v)), nil
		case map[string]any:
			return int64(len(v)), nil
		case string:
			return int64(len(v)), nil
		default:
			return nil, fmt.Errorf("length: unsupported type %T", v)
		}
	})
}

func numericOp(name string, iop func(a, b int64) int64, fop func(a, b float64) float64) Builtin {
	return func(args []any, _ map[string]any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", name, len(args))
		}
		if a, b, ok := bothInt(args[0], args[1]); ok {
			return iop(a, b), nil
		}
		a, aok := toFloat(args[0])
		b, bok := toFloat(args[1])
		if !aok || !bok {
			return nil, fmt.Errorf("%s takes numbers, got %T and %T", name, args[0], args[1])
		}
		return fop(a, b), nil
	}
}

func divide(args []any, _ map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("div takes 2 arguments, got %d", len(args))
	}
	a, aok := toFloat(args[0])
	b, bok := toFloat(args[1])
	if !aok || !bok {
		return nil, fmt.Errorf("div takes numbers, got %T and %T", args[0], args[1])
	}
	if b == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	return a / b, nil
}

func getItem(args []any, _ map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("getitem takes 2 arguments, got %d", len(args))
	}
	switch c := args[0].(type) {
	case []any:
		i, ok := asInt(args[1])
		if !ok {
			return nil, fmt.Errorf("list index must be an integer, got %T", args[1])
		}
		if i < 0 || i >= int64(len(c)) {
			return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(c))
		}
		return c[i], nil
	case map[string]any:
		k, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("dict key must be a string, got %T", args[1])
		}
		v, present := c[k]
		if !present {
			return nil, fmt.Errorf("key %q not found", k)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("getitem: unsupported container %T", c)
	}
}

func asInt(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func bothInt(a, b any) (int64, int64, bool) {
	x, xok := asInt(a)
	y, yok := asInt(b)
	return x, y, xok && yok
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
