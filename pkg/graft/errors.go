package graft

import "fmt"

// InvalidLiteralError indicates a value that cannot be represented as a JSON
// literal inside a value node.
type InvalidLiteralError struct {
	Value  any
	Reason string
}

func (e *InvalidLiteralError) Error() string {
	return fmt.Sprintf("invalid graft literal %v (%T): %s", e.Value, e.Value, e.Reason)
}

// InvalidKeyError indicates an identifier that cannot be used as a node key
// or key reference.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid graft identifier %q", e.Key)
}

// NotAFunctionError indicates a value-shaped graft used where a
// function-shaped graft is required.
type NotAFunctionError struct {
	Op string
}

func (e *NotAFunctionError) Error() string {
	return fmt.Sprintf("%s: graft is not function-shaped", e.Op)
}

// ParameterError indicates an invalid parameter list for a function-shaped
// graft.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid function parameter %q: %s", e.Name, e.Reason)
}

// SubstitutionError indicates a Parametrize binding that cannot be applied.
type SubstitutionError struct {
	Name   string
	Reason string
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("cannot substitute %q: %s", e.Name, e.Reason)
}

// DecodeError indicates malformed wire-format input.
type DecodeError struct {
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed graft: %s", e.Reason)
	}
	return fmt.Sprintf("malformed graft node %q: %s", e.Key, e.Reason)
}
