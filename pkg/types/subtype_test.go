package types

import "testing"

func TestSubtype(t *testing.T) {
	listInt := List.MustParameterize(Int)
	listFloat := List.MustParameterize(Float)
	listAny := List.MustParameterize(Any)
	listListInt := List.MustParameterize(listInt)
	dictStrInt := Dict.MustParameterize(Str, Int)

	tests := []struct {
		name string
		a, b *Type
		want bool
	}{
		{name: "reflexive concrete", a: Int, b: Int, want: true},
		{name: "reflexive parameterized", a: listInt, b: listInt, want: true},
		{name: "family parent", a: Int, b: Any, want: true},
		{name: "no downcast", a: Any, b: Int, want: false},
		{name: "siblings unrelated", a: Int, b: Str, want: false},
		{name: "int not float", a: Int, b: Float, want: false},

		{name: "covariant element", a: listInt, b: listAny, want: true},
		{name: "covariance not reversed", a: listAny, b: listInt, want: false},
		{name: "unrelated elements", a: listInt, b: listFloat, want: false},
		{name: "nested covariance", a: listListInt, b: List.MustParameterize(listAny), want: true},

		{name: "concrete under generic root", a: listInt, b: List, want: true},
		{name: "generic root not concrete", a: List, b: listInt, want: false},
		{name: "parameterized under Any", a: listInt, b: Any, want: true},
		{name: "dict under Any", a: dictStrInt, b: Any, want: true},

		{name: "different generic families", a: listInt, b: dictStrInt, want: false},
		{name: "dict covariant value", a: dictStrInt, b: Dict.MustParameterize(Str, Any), want: true},
		{name: "dict key position", a: dictStrInt, b: Dict.MustParameterize(Int, Int), want: false},

		{name: "tuple elementwise", a: Tuple.MustParameterize(Int, Str), b: Tuple.MustParameterize(Any, Str), want: true},
		{name: "tuple arity", a: Tuple.MustParameterize(Int), b: Tuple.MustParameterize(Int, Int), want: false},

		{name: "nil lhs", a: nil, b: Any, want: false},
		{name: "nil rhs", a: Int, b: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subtype(tt.a, tt.b); got != tt.want {
				t.Errorf("Subtype(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSubtypeTransitive(t *testing.T) {
	// List[List[Int]] <: List[List[Any]] <: List[Any] does not hold in the
	// last step (List[Any] vs Any element), but the chain through Any does.
	listInt := List.MustParameterize(Int)
	if !Subtype(listInt, List.MustParameterize(Any)) || !Subtype(List.MustParameterize(Any), Any) {
		t.Fatal("chain steps failed")
	}
	if !Subtype(listInt, Any) {
		t.Fatal("transitivity through Any failed")
	}
}
