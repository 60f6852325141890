package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/funvibe/graft/pkg/graft"
)

func graftValue(t *testing.T, v any) (*graft.Graft, error) {
	t.Helper()
	return graft.Value(v)
}

func mustParam(t *testing.T, typ *Type, name string) *Value {
	t.Helper()
	p, err := Parameter(typ, name)
	if err != nil {
		t.Fatalf("Parameter(%s, %q): %v", typ, name, err)
	}
	return p
}

func TestParameterIsSelfReferential(t *testing.T) {
	p := mustParam(t, Int, "x")
	if !p.IsParameter() {
		t.Fatal("parameter proxy does not report IsParameter")
	}
	if p.ParamName() != "x" {
		t.Errorf("ParamName = %q, want x", p.ParamName())
	}
	params := p.Params()
	if len(params) != 1 || params[0] != p {
		t.Errorf("params = %v, want the proxy itself", params)
	}
}

func TestParameterGraftIsKeyref(t *testing.T) {
	p := mustParam(t, Int, "x")
	free := p.Graft().FreeKeys()
	if len(free) != 1 || free[0] != "x" {
		t.Errorf("free keys = %v, want [x]", free)
	}
}

func TestValueNotParameter(t *testing.T) {
	v := NewInt(1)
	if v.IsParameter() {
		t.Error("literal value reports IsParameter")
	}
	if len(v.Params()) != 0 {
		t.Errorf("literal value params = %v, want none", v.Params())
	}
}

func TestFromApplyPropagatesParams(t *testing.T) {
	x := mustParam(t, Int, "x")
	y := mustParam(t, Int, "y")

	sum, err := FromApply(Int, "add", []*Value{x, y}, nil)
	if err != nil {
		t.Fatalf("FromApply: %v", err)
	}
	params := sum.Params()
	if len(params) != 2 || params[0] != x || params[1] != y {
		t.Fatalf("params = %v, want [x y] in first-seen order", params)
	}

	// A second application over the same operands must not duplicate.
	prod, err := FromApply(Int, "mul", []*Value{sum, x}, nil)
	if err != nil {
		t.Fatalf("FromApply: %v", err)
	}
	if got := prod.Params(); len(got) != 2 {
		t.Errorf("params after reuse = %v, want deduplicated [x y]", got)
	}
}

func TestMergeParamsConflict(t *testing.T) {
	a := mustParam(t, Int, "x")
	b := mustParam(t, Int, "x")

	var conflict *ParameterConflictError
	if _, err := MergeParams(a, b); !errors.As(err, &conflict) {
		t.Fatalf("merging distinct parameters named x: error = %v, want ParameterConflictError", err)
	}
	if conflict.Name != "x" {
		t.Errorf("conflict name = %q, want x", conflict.Name)
	}

	// The same object twice is fine.
	merged, err := MergeParams(a, a)
	if err != nil {
		t.Fatalf("MergeParams: %v", err)
	}
	if len(merged) != 1 || merged[0] != a {
		t.Errorf("merged = %v, want [a]", merged)
	}
}

func TestCastKeepsGraftAndParams(t *testing.T) {
	x := mustParam(t, Int, "x")
	widened, err := x.Cast(Float)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if widened.Type() != Float {
		t.Errorf("type = %s, want Float", widened.Type())
	}
	if widened.Graft() != x.Graft() {
		t.Error("cast replaced the graft")
	}
	if ps := widened.Params(); len(ps) != 1 || ps[0] != x {
		t.Errorf("params = %v, want the original parameter", ps)
	}
}

func TestFromGraftRejectsGeneric(t *testing.T) {
	g, err := graftValue(t, int64(1))
	if err != nil {
		t.Fatal(err)
	}
	var gi *GenericInstanceError
	if _, err := FromGraft(Dict, g); !errors.As(err, &gi) {
		t.Errorf("FromGraft on generic Dict: error = %v, want GenericInstanceError", err)
	}
}

func TestHostContextGuards(t *testing.T) {
	v := NewInt(1)

	var pc *ProxyContextError
	if _, err := v.HostBool(); !errors.As(err, &pc) {
		t.Errorf("HostBool error = %v, want ProxyContextError", err)
	}
	if _, err := v.HostLen(); !errors.As(err, &pc) {
		t.Errorf("HostLen error = %v, want ProxyContextError", err)
	}
	if _, err := v.HostContains(1); !errors.As(err, &pc) {
		t.Errorf("HostContains error = %v, want ProxyContextError", err)
	}
	if _, err := v.HostIterate(); !errors.As(err, &pc) {
		t.Errorf("HostIterate error = %v, want ProxyContextError", err)
	}
}

func TestNewListGraft(t *testing.T) {
	var v *Value
	graft.ConsistentGUIDs(0, func() {
		var err error
		v, err = NewList(Int, int64(1), int64(2))
		if err != nil {
			t.Fatalf("NewList: %v", err)
		}
	})
	if v.Type() != List.MustParameterize(Int) {
		t.Errorf("type = %s, want List[Int]", v.Type())
	}
	data, err := json.Marshal(v.Graft())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	app, ok := wire[wire["returns"].(string)].([]any)
	if !ok || app[0] != "list" {
		t.Errorf("returned node = %v, want a list application", wire)
	}
}

func TestNewDictAndTuple(t *testing.T) {
	d, err := NewDict(Int, map[string]any{"a": int64(1), "b": int64(2)})
	if err != nil {
		t.Fatalf("NewDict: %v", err)
	}
	if d.Type() != Dict.MustParameterize(Str, Int) {
		t.Errorf("dict type = %s, want Dict[Str, Int]", d.Type())
	}

	tup, err := NewTuple(NewInt(1), NewStr("x"))
	if err != nil {
		t.Fatalf("NewTuple: %v", err)
	}
	if tup.Type() != Tuple.MustParameterize(Int, Str) {
		t.Errorf("tuple type = %s, want Tuple[Int, Str]", tup.Type())
	}
}
