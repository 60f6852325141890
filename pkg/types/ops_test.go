package types

import (
	"errors"
	"testing"
)

func TestArithTyping(t *testing.T) {
	x := mustParam(t, Int, "x")
	f := mustParam(t, Float, "f")

	tests := []struct {
		name string
		got  func() (*Value, error)
		want *Type
	}{
		{name: "int+int", got: func() (*Value, error) { return x.Add(int64(1)) }, want: Int},
		{name: "int+float", got: func() (*Value, error) { return x.Add(2.5) }, want: Float},
		{name: "float+int", got: func() (*Value, error) { return f.Add(int64(1)) }, want: Float},
		{name: "int-int", got: func() (*Value, error) { return x.Sub(int64(1)) }, want: Int},
		{name: "int*int", got: func() (*Value, error) { return x.Mul(x) }, want: Int},
		{name: "div always float", got: func() (*Value, error) { return x.Div(int64(2)) }, want: Float},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.got()
			if err != nil {
				t.Fatalf("op: %v", err)
			}
			if v.Type() != tt.want {
				t.Errorf("result type = %s, want %s", v.Type(), tt.want)
			}
		})
	}
}

func TestArithUndefinedReceiver(t *testing.T) {
	s := NewStr("hi")
	if _, err := s.Add(int64(1)); err == nil {
		t.Error("Add on Str succeeded, want error")
	}
}

func TestAddPropagatesParams(t *testing.T) {
	x := mustParam(t, Int, "x")
	y := mustParam(t, Int, "y")
	sum, err := x.Add(y)
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Params(); len(got) != 2 {
		t.Errorf("params = %v, want both operands' parameters", got)
	}
}

func TestAddReflected(t *testing.T) {
	x := mustParam(t, Int, "x")
	if _, err := x.AddReflected("nope"); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("error = %v, want ErrNotImplemented", err)
	}
	if _, err := NewStr("s").AddReflected(int64(1)); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("non-numeric receiver error = %v, want ErrNotImplemented", err)
	}
	v, err := x.AddReflected(int64(1))
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != Int {
		t.Errorf("result type = %s, want Int", v.Type())
	}
}

func TestConcat(t *testing.T) {
	s := mustParam(t, Str, "s")
	joined, err := s.Concat("!")
	if err != nil {
		t.Fatal(err)
	}
	if joined.Type() != Str {
		t.Errorf("type = %s, want Str", joined.Type())
	}
	if _, err := s.Concat(int64(1)); err == nil {
		t.Error("Concat with Int succeeded, want error")
	}
	if _, err := NewInt(1).Concat("x"); err == nil {
		t.Error("Concat on Int receiver succeeded, want error")
	}
}

func TestGetItem(t *testing.T) {
	list := mustParam(t, List.MustParameterize(Str), "xs")
	item, err := list.GetItem(int64(0))
	if err != nil {
		t.Fatal(err)
	}
	if item.Type() != Str {
		t.Errorf("list item type = %s, want element type Str", item.Type())
	}
	if _, err := list.GetItem("zero"); err == nil {
		t.Error("indexing a list by Str succeeded, want error")
	}

	dict := mustParam(t, Dict.MustParameterize(Str, Int), "d")
	val, err := dict.GetItem("k")
	if err != nil {
		t.Fatal(err)
	}
	if val.Type() != Int {
		t.Errorf("dict value type = %s, want Int", val.Type())
	}
	if _, err := NewInt(1).GetItem(int64(0)); err == nil {
		t.Error("GetItem on Int succeeded, want error")
	}
}

func TestContains(t *testing.T) {
	list := mustParam(t, List.MustParameterize(Int), "xs")
	has, err := list.Contains(int64(3))
	if err != nil {
		t.Fatal(err)
	}
	if has.Type() != Bool {
		t.Errorf("type = %s, want Bool", has.Type())
	}
	if _, err := list.Contains("three"); err == nil {
		t.Error("Contains with mismatched element type succeeded, want error")
	}
}

func TestLength(t *testing.T) {
	for _, v := range []*Value{
		mustParam(t, List.MustParameterize(Int), "xs"),
		mustParam(t, Dict.MustParameterize(Str, Int), "d"),
		mustParam(t, Str, "s"),
	} {
		n, err := v.Length()
		if err != nil {
			t.Fatalf("Length of %s: %v", v.Type(), err)
		}
		if n.Type() != Int {
			t.Errorf("Length type = %s, want Int", n.Type())
		}
	}
	if _, err := NewInt(1).Length(); err == nil {
		t.Error("Length of Int succeeded, want error")
	}
}
