package config

// FormatVersion is the graft wire-format version. Bump only on incompatible
// changes to the JSON encoding.
const FormatVersion = 1

// ReturnsKey and ParametersKey are the reserved keys in the graft wire format.
// Node identifiers must never collide with them.
const (
	ReturnsKey    = "returns"
	ParametersKey = "parameters"
)

// ScopeSeparator joins a scope prefix to a key-reference name in IsolateKeys
// (e.g. "scope_1.x").
const ScopeSeparator = "."

// GUIDPrefixLen is the number of hex characters of the allocator epoch kept in
// each generated identifier.
const GUIDPrefixLen = 8

// Wire function names: the builtin identifiers apply nodes may reference.
// These are the vocabulary shared with the remote engine and the reference
// interpreter; they are data, not host-language functions.
const (
	AddFuncName      = "add"
	SubFuncName      = "sub"
	MulFuncName      = "mul"
	DivFuncName      = "div"
	ConcatFuncName   = "concat"
	ListFuncName     = "list"
	DictFuncName     = "dict"
	TupleFuncName    = "tuple"
	GetItemFuncName  = "getitem"
	ContainsFuncName = "contains"
	LengthFuncName   = "length"
)

// Built-in proxy type names
const (
	AnyTypeName      = "Any"
	BoolTypeName     = "Bool"
	IntTypeName      = "Int"
	FloatTypeName    = "Float"
	StrTypeName      = "Str"
	NoneTypeName     = "NoneType"
	ListTypeName     = "List"
	DictTypeName     = "Dict"
	TupleTypeName    = "Tuple"
	FunctionTypeName = "Function"
)
