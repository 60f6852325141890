package types

import (
	"fmt"
	"strings"
)

// NotGenericError indicates parameterization of a type that cannot take
// parameters, or re-parameterization of an already concrete type.
type NotGenericError struct {
	Type   *Type
	Reason string
}

func (e *NotGenericError) Error() string {
	return fmt.Sprintf("cannot parameterize %s: %s", e.Type, e.Reason)
}

// InvalidTypeParamError indicates a malformed type parameter. Index is -1
// when the family's own validator rejected the whole tuple.
type InvalidTypeParamError struct {
	Family string
	Index  int
	Reason string
}

func (e *InvalidTypeParamError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid type parameters for %s: %s", e.Family, e.Reason)
	}
	return fmt.Sprintf("invalid type parameter %d for %s: %s", e.Index, e.Family, e.Reason)
}

// GenericInstanceError indicates an attempt to construct a value of an
// unparameterized generic family.
type GenericInstanceError struct {
	Type *Type
}

func (e *GenericInstanceError) Error() string {
	return fmt.Sprintf("cannot instantiate generic %s: bind its type parameters first", e.Type)
}

// ParameterConflictError indicates two distinct parameter objects sharing a
// name in one merged value: their identity is ambiguous. Give the parameters
// distinct names, or reuse the same parameter object.
type ParameterConflictError struct {
	Name string
}

func (e *ParameterConflictError) Error() string {
	return fmt.Sprintf("two different parameters named %q: rename one or reuse the same parameter object", e.Name)
}

// ProxyContextError indicates a proxy value used in a host-language context
// that needs the concrete value (truthiness, length, iteration, membership),
// which is unknown until remote execution.
type ProxyContextError struct {
	Op   string
	Type *Type
	Hint string
}

func (e *ProxyContextError) Error() string {
	return fmt.Sprintf("%s of a proxy %s is not knowable before remote execution; %s", e.Op, e.Type, e.Hint)
}

// PromotionAttempt records one failed candidate during promotion.
type PromotionAttempt struct {
	Target *Type
	Err    error
}

// PromotionError aggregates every candidate's failure when a value could not
// be promoted to any of them.
type PromotionError struct {
	Arg      string
	Func     string
	Value    any
	Attempts []PromotionAttempt
}

func (e *PromotionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot promote argument %q of %s (got %T):", e.Arg, e.Func, e.Value)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Target, a.Err)
	}
	return b.String()
}

// SignatureError indicates incompatible Function signatures during cast or
// construction.
type SignatureError struct {
	Expected *Type
	Actual   *Type
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("incompatible function signatures:\n  expected %s\n  got      %s",
		Signature(e.Expected), Signature(e.Actual))
}

// TracerError indicates a callable that violates the tracing contract,
// reported before any tracing side effects occur.
type TracerError struct {
	Func   string
	Reason string
}

func (e *TracerError) Error() string {
	return fmt.Sprintf("cannot trace %s: %s", e.Func, e.Reason)
}
