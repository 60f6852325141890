package graft_test

import (
	"testing"

	"github.com/funvibe/graft/internal/interp"
	"github.com/funvibe/graft/pkg/graft"
)

// These tests close the loop the core exists for: a graft built from
// primitives, fed through Parametrize, must evaluate to the value the
// expression denotes.

func value(t *testing.T, v any) *graft.Graft {
	t.Helper()
	g, err := graft.Value(v)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func keyref(t *testing.T, name string) *graft.Graft {
	t.Helper()
	g, err := graft.Keyref(name)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestParametrizeEvaluates(t *testing.T) {
	body, err := graft.Apply("add", []*graft.Graft{keyref(t, "x"), keyref(t, "y")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	bound, err := graft.Parametrize(body, map[string]*graft.Graft{
		"x": value(t, int64(3)),
		"y": value(t, int64(4)),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := interp.New().Eval(bound, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != int64(7) {
		t.Errorf("eval = %v, want 7", got)
	}
}

func TestFunctionApplicationEvaluates(t *testing.T) {
	body, err := graft.Apply("mul", []*graft.Graft{keyref(t, "a"), keyref(t, "b")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	fg, err := graft.Function(body, "a", "b")
	if err != nil {
		t.Fatal(err)
	}

	applied, err := graft.Apply(fg, []*graft.Graft{value(t, int64(6)), value(t, int64(7))}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := interp.New().Eval(applied, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != int64(42) {
		t.Errorf("eval = %v, want 42", got)
	}
}

func TestMergeValuesEvaluates(t *testing.T) {
	merged, err := graft.MergeValues(value(t, int64(1)), value(t, "two"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := interp.New().Eval(merged, nil)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 2 || list[0] != int64(1) || list[1] != "two" {
		t.Errorf("eval = %v, want [1 two]", got)
	}
}

func TestEvalWithBindings(t *testing.T) {
	g, err := graft.Apply("sub", []*graft.Graft{keyref(t, "x"), value(t, int64(1))}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := interp.New().Eval(g, map[string]any{"x": int64(10)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != int64(9) {
		t.Errorf("eval = %v, want 9", got)
	}

	if _, err := interp.New().Eval(g, nil); err == nil {
		t.Error("evaluating with unbound key succeeded, want error")
	}
}
