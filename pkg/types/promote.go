package types

import "fmt"

// Promote coerces value into the first candidate type that accepts it.
//
// A value already an instance of some candidate (its type a subtype of the
// candidate) is returned unchanged. Otherwise candidates are tried in order
// through their family's Promoter; the first success wins — promotion order
// is the caller-controlled overload-resolution rule, not unification. If
// every candidate fails, the returned PromotionError enumerates each
// candidate's specific failure, naming the argument and calling function.
func Promote(value any, candidates []*Type, argName, funcName string) (*Value, error) {
	if len(candidates) == 0 {
		panic(fmt.Sprintf("types.Promote: no candidate types for argument %q of %s", argName, funcName))
	}

	if v, ok := value.(*Value); ok {
		for _, cand := range candidates {
			if Subtype(v.typ, cand) {
				return v, nil
			}
		}
	}

	attempts := make([]PromotionAttempt, 0, len(candidates))
	for _, cand := range candidates {
		promoted, err := promoteOne(value, cand)
		if err == nil {
			return promoted, nil
		}
		attempts = append(attempts, PromotionAttempt{Target: cand, Err: err})
	}
	return nil, &PromotionError{Arg: argName, Func: funcName, Value: value, Attempts: attempts}
}

func promoteOne(value any, target *Type) (*Value, error) {
	if target.IsGeneric() {
		return nil, &GenericInstanceError{Type: target}
	}
	if p := target.Generic().promoter; p != nil {
		return p(target, value)
	}
	// No promoter registered: the only zero-conversion path is a cast
	// within the same family.
	if v, ok := value.(*Value); ok && v.typ.Generic() == target.Generic() {
		return v.Cast(target)
	}
	return nil, fmt.Errorf("%s has no promoter", target)
}
