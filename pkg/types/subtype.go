package types

// Subtype reports whether a is a subtype of b.
//
// Family roots relate through their parent chain. A generic family root
// accepts any concrete parameterization of itself or of a sub-family. Two
// concrete types of the same family compare parameter-wise, covariantly by
// default; a family may override the comparison with a SubtypeHook (Function
// uses this for contravariant arguments).
func Subtype(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	if !familyUnder(a.Generic(), b.Generic()) {
		return false
	}
	// b still generic: any parameterization of a sub-family is accepted.
	if b.IsGeneric() {
		return true
	}
	// a generic, b concrete: an unparameterized family is never a subtype
	// of a specific parameterization.
	if a.IsGeneric() {
		return false
	}
	if a.Generic() != b.Generic() {
		// Related through the parent chain but of different families: only
		// an unparameterized family root (e.g. Any) accepts a.
		return b.generic == nil && !b.isGeneric
	}
	if hook := b.Generic().subtypeHook; hook != nil {
		return hook(a, b)
	}
	return paramsSubtype(a.params, b.params)
}

// familyUnder walks a's parent chain looking for b.
func familyUnder(a, b *Type) bool {
	for f := a; f != nil; f = f.parent {
		if f == b {
			return true
		}
	}
	return false
}

// paramsSubtype compares parameter tuples covariantly, position by position.
func paramsSubtype(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !paramSubtype(a[i], b[i]) {
			return false
		}
	}
	return true
}

// paramSubtype compares one parameter pair: proxy types recursively via
// Subtype, primitives by equality, tuples and dicts structurally. Dict order
// is significant; no reordering is attempted.
func paramSubtype(a, b Param) bool {
	switch a := a.(type) {
	case *Type:
		bt, ok := b.(*Type)
		return ok && Subtype(a, bt)
	case TupleParam:
		bt, ok := b.(TupleParam)
		if !ok || len(a) != len(bt) {
			return false
		}
		for i := range a {
			if !paramSubtype(a[i], bt[i]) {
				return false
			}
		}
		return true
	case DictParam:
		bd, ok := b.(DictParam)
		if !ok || len(a) != len(bd) {
			return false
		}
		for i := range a {
			if a[i].Key != bd[i].Key || !paramSubtype(a[i].Param, bd[i].Param) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
