// Package graft implements the graft intermediate representation: a
// JSON-serializable expression graph built up by symbolic tracing.
//
// A graft is a directed acyclic graph keyed by string identifiers. Node
// definitions are literals (ValueNode), function applications (ApplyNode),
// references to other identifiers (KeyRefNode), or embedded function-shaped
// subgrafts (FuncNode). One identifier is designated the return node. A graft
// that additionally carries an ordered list of parameter names is
// function-shaped: it represents a lambda rather than a value.
//
// An identifier that is referenced but not defined by any node is a free key.
// Free keys stand for named parameters bound either by an enclosing
// function-shaped graft or by Parametrize.
//
// Grafts are immutable after construction. All construction primitives copy
// their inputs and never share node maps between instances.
package graft

import (
	"sort"

	"github.com/funvibe/graft/internal/config"
)

// Node is a single definition inside a graft.
type Node interface {
	node()
}

// ValueNode holds a JSON-representable literal: nil, bool, int64, float64,
// string, or nested []any / map[string]any of the same.
type ValueNode struct {
	Value any
}

// KeyRefNode aliases another identifier: either a node defined elsewhere in
// the graft or a free key of an enclosing scope.
type KeyRefNode struct {
	Key string
}

// ApplyNode represents "call Function with these already-evaluated arguments".
// Function is either a wire function name known to the engine or the
// identifier of a FuncNode in the same graft. Args and Kwargs hold
// identifiers, not values.
type ApplyNode struct {
	Function string
	Args     []string
	Kwargs   map[string]string
}

// FuncNode embeds a function-shaped graft as a first-class value.
type FuncNode struct {
	Graft *Graft
}

func (ValueNode) node()  {}
func (KeyRefNode) node() {}
func (ApplyNode) node()  {}
func (FuncNode) node()   {}

// Graft is an immutable expression graph. The zero value is not valid; use
// the construction primitives.
type Graft struct {
	nodes  map[string]Node
	ret    string
	params []string // non-nil iff function-shaped
}

// Returns reports the identifier of the return node.
func (g *Graft) Returns() string {
	return g.ret
}

// IsFunction reports whether the graft is function-shaped.
func (g *Graft) IsFunction() bool {
	return g.params != nil
}

// Parameters returns the ordered parameter names of a function-shaped graft,
// or nil for a value-shaped one.
func (g *Graft) Parameters() []string {
	if g.params == nil {
		return nil
	}
	out := make([]string, len(g.params))
	copy(out, g.params)
	return out
}

// Node looks up a node definition by identifier.
func (g *Graft) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Keys returns the defined identifiers in sorted order.
func (g *Graft) Keys() []string {
	keys := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len reports the number of defined nodes.
func (g *Graft) Len() int {
	return len(g.nodes)
}

// IsFunctionGraft reports whether g is a non-nil function-shaped graft.
func IsFunctionGraft(g *Graft) bool {
	return g != nil && g.IsFunction()
}

// Delayed is implemented by proxy values that carry a graft. Host code uses
// IsDelayed to branch tracing logic on whether a value is already symbolic.
type Delayed interface {
	Graft() *Graft
}

// IsDelayed reports whether x is a proxy value carrying a graft.
func IsDelayed(x any) bool {
	_, ok := x.(Delayed)
	return ok
}

// references collects every identifier the graft refers to: the return id,
// apply arguments, key-reference targets, and apply function positions that
// resolve to local nodes. Wire function names (the usual function position)
// are not references.
func (g *Graft) references() map[string]bool {
	refs := map[string]bool{g.ret: true}
	for _, n := range g.nodes {
		switch n := n.(type) {
		case KeyRefNode:
			refs[n.Key] = true
		case ApplyNode:
			if _, ok := g.nodes[n.Function]; ok {
				refs[n.Function] = true
			}
			for _, a := range n.Args {
				refs[a] = true
			}
			for _, a := range n.Kwargs {
				refs[a] = true
			}
		}
	}
	return refs
}

// FreeKeys returns the identifiers referenced but not defined by g, excluding
// the parameters a function-shaped graft binds itself. Sorted.
func (g *Graft) FreeKeys() []string {
	bound := make(map[string]bool, len(g.params))
	for _, p := range g.params {
		bound[p] = true
	}
	var free []string
	for ref := range g.references() {
		if _, defined := g.nodes[ref]; !defined && !bound[ref] {
			free = append(free, ref)
		}
	}
	sort.Strings(free)
	return free
}

// boundAndDefined reports whether id resolves inside g: to a defined node or
// to a parameter the graft abstracts over.
func (g *Graft) boundAndDefined(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return true
	}
	for _, p := range g.params {
		if p == id {
			return true
		}
	}
	return false
}

// validIdentifier rejects identifiers that would collide with the reserved
// wire-format keys.
func validIdentifier(id string) bool {
	return id != "" && id != config.ReturnsKey && id != config.ParametersKey
}
