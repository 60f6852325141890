package graft

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/funvibe/graft/internal/config"
)

// Value wraps a JSON-representable literal as a single value node.
func Value(v any) (*Graft, error) {
	if err := validateLiteral(v); err != nil {
		return nil, err
	}
	id := GUID()
	return &Graft{
		nodes: map[string]Node{id: ValueNode{Value: v}},
		ret:   id,
	}, nil
}

// Keyref produces a graft whose return is a key reference: a symbolic
// placeholder for the named free variable.
func Keyref(name string) (*Graft, error) {
	if !validIdentifier(name) {
		return nil, &InvalidKeyError{Key: name}
	}
	return &Graft{nodes: map[string]Node{}, ret: name}, nil
}

// Apply builds a function application. function is either a wire function
// name (string) or a *Graft: a function-shaped graft is inlined by binding
// its parameters to the arguments; a value-shaped graft is applied through
// its return node (higher-order application).
//
// The argument grafts' node namespaces are merged; identifiers from
// independently built subgrafts are treated as opaque and re-keyed on
// collision.
func Apply(function any, args []*Graft, kwargs map[string]*Graft) (*Graft, error) {
	for i, a := range args {
		if a == nil {
			panic(fmt.Sprintf("graft.Apply: nil argument graft at position %d", i))
		}
	}
	for k, a := range kwargs {
		if a == nil {
			panic(fmt.Sprintf("graft.Apply: nil argument graft for keyword %q", k))
		}
	}

	switch fn := function.(type) {
	case string:
		if fn == "" {
			return nil, &InvalidKeyError{Key: fn}
		}
		return applyNamed(fn, args, kwargs)

	case *Graft:
		if fn == nil {
			panic("graft.Apply: nil function graft")
		}
		if fn.IsFunction() {
			return applyInline(fn, args, kwargs)
		}
		// Higher-order: the function position references the graft's
		// return node (typically a FuncNode or a key reference).
		nodes := map[string]Node{}
		rename := mergeInto(nodes, fn)
		g, err := applyNamedInto(nodes, renamed(fn.ret, rename), args, kwargs)
		if err != nil {
			return nil, err
		}
		return g, nil

	default:
		panic(fmt.Sprintf("graft.Apply: function must be a string or *Graft, got %T", function))
	}
}

// applyNamed merges the argument grafts into a fresh namespace and appends an
// apply node referencing fn by name.
func applyNamed(fn string, args []*Graft, kwargs map[string]*Graft) (*Graft, error) {
	return applyNamedInto(map[string]Node{}, fn, args, kwargs)
}

func applyNamedInto(nodes map[string]Node, fn string, args []*Graft, kwargs map[string]*Graft) (*Graft, error) {
	argIDs := make([]string, len(args))
	for i, a := range args {
		argIDs[i] = embedArg(nodes, a)
	}
	var kwargIDs map[string]string
	if len(kwargs) > 0 {
		kwargIDs = make(map[string]string, len(kwargs))
		for _, k := range sortedKwargNames(kwargs) {
			kwargIDs[k] = embedArg(nodes, kwargs[k])
		}
	}
	id := GUID()
	nodes[id] = ApplyNode{Function: fn, Args: argIDs, Kwargs: kwargIDs}
	return &Graft{nodes: nodes, ret: id}, nil
}

// applyInline feeds arguments into a function-shaped graft's body: the body's
// free keys are first namespaced so embedding cannot capture caller
// identifiers, then Parametrize binds each parameter to its argument.
func applyInline(fn *Graft, args []*Graft, kwargs map[string]*Graft) (*Graft, error) {
	params := fn.Parameters()
	if len(args) > len(params) {
		return nil, fmt.Errorf("graft application: got %d positional arguments, function takes %d", len(args), len(params))
	}

	subs := make(map[string]*Graft, len(params))
	for i, a := range args {
		subs[params[i]] = a
	}
	for name, a := range kwargs {
		if _, bound := subs[name]; bound {
			return nil, &SubstitutionError{Name: name, Reason: "bound both positionally and by keyword"}
		}
		found := false
		for _, p := range params {
			if p == name {
				found = true
				break
			}
		}
		if !found {
			return nil, &SubstitutionError{Name: name, Reason: "function has no such parameter"}
		}
		subs[name] = a
	}
	if len(subs) != len(params) {
		return nil, fmt.Errorf("graft application: %d of %d parameters bound", len(subs), len(params))
	}

	scope := "scope_" + GUID()
	isolated := IsolateKeys(fn, scope, params...)
	body := &Graft{nodes: isolated.nodes, ret: isolated.ret} // strip function shape
	return Parametrize(body, subs)
}

// embedArg merges an argument graft into nodes and returns the identifier
// standing for the argument. Function-shaped arguments are embedded as
// first-class FuncNode values.
func embedArg(nodes map[string]Node, a *Graft) string {
	if a.IsFunction() {
		id := GUID()
		nodes[id] = FuncNode{Graft: a}
		return id
	}
	rename := mergeInto(nodes, a)
	return renamed(a.ret, rename)
}

// MergeValues structurally merges independent value grafts into one graft
// whose return is an aggregate list node over their individual returns.
func MergeValues(grafts ...*Graft) (*Graft, error) {
	nodes := map[string]Node{}
	ids := make([]string, len(grafts))
	for i, g := range grafts {
		if g == nil {
			panic(fmt.Sprintf("graft.MergeValues: nil graft at position %d", i))
		}
		ids[i] = embedArg(nodes, g)
	}
	id := GUID()
	nodes[id] = ApplyNode{Function: config.ListFuncName, Args: ids}
	return &Graft{nodes: nodes, ret: id}, nil
}

// Function wraps a value-shaped body graft as function-shaped, abstracting
// over the named parameters. Parameters that the body never references are
// permitted: a traced callable that ignores its inputs is indistinguishable
// from a constant.
func Function(body *Graft, params ...string) (*Graft, error) {
	return FunctionWithFirst("", body, params...)
}

// FunctionWithFirst is Function with a pinned start for the deterministic
// identifier range: when firstGUID and the body's node identifiers were
// allocated in consistent mode, the body's identifiers are renumbered into a
// contiguous, reproducible block starting at firstGUID.
func FunctionWithFirst(firstGUID string, body *Graft, params ...string) (*Graft, error) {
	if body == nil {
		panic("graft.Function: nil body")
	}
	if body.IsFunction() {
		return nil, fmt.Errorf("graft.Function: body is already function-shaped")
	}

	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if !validIdentifier(p) {
			return nil, &ParameterError{Name: p, Reason: "not a valid identifier"}
		}
		if seen[p] {
			return nil, &ParameterError{Name: p, Reason: "duplicate parameter name"}
		}
		seen[p] = true
		if _, defined := body.nodes[p]; defined {
			return nil, &ParameterError{Name: p, Reason: "collides with a node defined in the body"}
		}
	}

	nodes := body.nodes
	ret := body.ret
	if first, ok := consistentID(firstGUID); ok {
		nodes, ret = renumberFrom(body, first)
	}

	ps := make([]string, len(params))
	copy(ps, params)
	return &Graft{nodes: copyNodes(nodes), ret: ret, params: ps}, nil
}

// renumberFrom maps the body's consistent-mode identifiers onto a contiguous
// block starting at first, preserving their relative order. Identifiers not
// allocated in consistent mode are left alone.
func renumberFrom(body *Graft, first uint64) (map[string]Node, string) {
	type numbered struct {
		id string
		n  uint64
	}
	var numeric []numbered
	for id := range body.nodes {
		if n, ok := consistentID(id); ok {
			numeric = append(numeric, numbered{id: id, n: n})
		}
	}
	sort.Slice(numeric, func(i, j int) bool { return numeric[i].n < numeric[j].n })

	rename := make(map[string]string, len(numeric))
	for i, e := range numeric {
		rename[e.id] = fmt.Sprintf("%d", first+uint64(i))
	}
	nodes := make(map[string]Node, len(body.nodes))
	for id, n := range body.nodes {
		nodes[renamed(id, rename)] = rewriteNode(n, rename, body.nodes)
	}
	return nodes, renamed(body.ret, rename)
}

// IsolateKeys rewrites the graft's free keys so they are namespaced to scope
// ("scope.key"), preventing accidental capture when the graft is embedded
// inside another. Keys listed in exclude, and the parameters of a
// function-shaped graft, are left untouched.
func IsolateKeys(g *Graft, scope string, exclude ...string) *Graft {
	if g == nil {
		panic("graft.IsolateKeys: nil graft")
	}
	skip := make(map[string]bool, len(exclude)+len(g.params))
	for _, k := range exclude {
		skip[k] = true
	}
	for _, p := range g.params {
		skip[p] = true
	}

	rename := map[string]string{}
	for _, k := range g.FreeKeys() {
		if !skip[k] {
			rename[k] = scope + config.ScopeSeparator + k
		}
	}
	if len(rename) == 0 {
		return g
	}

	nodes := make(map[string]Node, len(g.nodes))
	for id, n := range g.nodes {
		nodes[id] = rewriteNode(n, rename, g.nodes)
	}
	return &Graft{nodes: nodes, ret: renamed(g.ret, rename), params: g.params}
}

// Parametrize binds free key references to replacement grafts. Each binding
// defines a node under the parameter's own name: either a reference to the
// substituted expression's return node or, for function-shaped replacements,
// an embedded FuncNode. Binding a parameter of a function-shaped graft
// removes it from the parameter list.
func Parametrize(g *Graft, subs map[string]*Graft) (*Graft, error) {
	if g == nil {
		panic("graft.Parametrize: nil graft")
	}
	nodes := copyNodes(g.nodes)

	for _, name := range sortedKwargNames(subs) {
		sub := subs[name]
		if sub == nil {
			panic(fmt.Sprintf("graft.Parametrize: nil substitution for %q", name))
		}
		if !validIdentifier(name) {
			return nil, &InvalidKeyError{Key: name}
		}
		if _, defined := nodes[name]; defined {
			return nil, &SubstitutionError{Name: name, Reason: "identifier is already defined in the graft"}
		}
		if sub.IsFunction() {
			nodes[name] = FuncNode{Graft: sub}
			continue
		}
		rename := mergeInto(nodes, sub)
		nodes[name] = KeyRefNode{Key: renamed(sub.ret, rename)}
	}

	params := g.params
	if params != nil {
		kept := make([]string, 0, len(params))
		for _, p := range params {
			if _, bound := subs[p]; !bound {
				kept = append(kept, p)
			}
		}
		params = kept
	}
	return &Graft{nodes: nodes, ret: g.ret, params: params}, nil
}

// mergeInto merges g's nodes into dst, re-keying any identifier that
// collides with a structurally different definition. It returns the rename
// map applied to g's identifiers.
func mergeInto(dst map[string]Node, g *Graft) map[string]string {
	rename := map[string]string{}
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if existing, ok := dst[id]; ok && !nodeEqual(existing, g.nodes[id]) {
			rename[id] = GUID()
		}
	}
	for _, id := range ids {
		dst[renamed(id, rename)] = rewriteNode(g.nodes[id], rename, g.nodes)
	}
	return rename
}

func renamed(id string, rename map[string]string) string {
	if to, ok := rename[id]; ok {
		return to
	}
	return id
}

// rewriteNode maps identifiers inside a node definition through rename.
// local is the namespace the node was defined in: only references resolving
// there are subject to renaming of defined identifiers, while free-key
// renames (ids absent from local) always apply. Nested function grafts are
// rewritten recursively, with their own definitions and parameters shadowing
// outer renames.
func rewriteNode(n Node, rename map[string]string, local map[string]Node) Node {
	rw := func(id string) string {
		return renamed(id, rename)
	}
	switch n := n.(type) {
	case KeyRefNode:
		return KeyRefNode{Key: rw(n.Key)}
	case ApplyNode:
		out := ApplyNode{Function: n.Function}
		if _, localFn := local[n.Function]; localFn {
			out.Function = rw(n.Function)
		}
		out.Args = make([]string, len(n.Args))
		for i, a := range n.Args {
			out.Args[i] = rw(a)
		}
		if n.Kwargs != nil {
			out.Kwargs = make(map[string]string, len(n.Kwargs))
			for k, a := range n.Kwargs {
				out.Kwargs[k] = rw(a)
			}
		}
		return out
	case FuncNode:
		inner := n.Graft
		// Shadowing: identifiers the nested graft defines or binds itself
		// are not subject to the outer rename.
		shadowed := map[string]string{}
		for from, to := range rename {
			if !inner.boundAndDefined(from) {
				shadowed[from] = to
			}
		}
		if len(shadowed) == 0 {
			return n
		}
		nodes := make(map[string]Node, len(inner.nodes))
		for id, in := range inner.nodes {
			nodes[id] = rewriteNode(in, shadowed, inner.nodes)
		}
		ret := inner.ret
		if _, defined := inner.nodes[ret]; !defined {
			ret = renamed(ret, shadowed)
		}
		return FuncNode{Graft: &Graft{nodes: nodes, ret: ret, params: inner.params}}
	default:
		return n
	}
}

func nodeEqual(a, b Node) bool {
	return reflect.DeepEqual(a, b)
}

func copyNodes(nodes map[string]Node) map[string]Node {
	out := make(map[string]Node, len(nodes))
	for k, v := range nodes {
		out[k] = v
	}
	return out
}

func sortedKwargNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// validateLiteral checks that v is JSON-representable: nil, bool, string,
// integer, float, or nested []any / map[string]any of the same.
func validateLiteral(v any) error {
	switch v := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return nil
	case []any:
		for i, e := range v {
			if err := validateLiteral(e); err != nil {
				return &InvalidLiteralError{Value: v, Reason: fmt.Sprintf("element %d: %v", i, err)}
			}
		}
		return nil
	case map[string]any:
		for k, e := range v {
			if err := validateLiteral(e); err != nil {
				return &InvalidLiteralError{Value: v, Reason: fmt.Sprintf("key %q: %v", k, err)}
			}
		}
		return nil
	default:
		return &InvalidLiteralError{Value: v, Reason: "not JSON-representable"}
	}
}
