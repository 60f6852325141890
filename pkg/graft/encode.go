package graft

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/graft/internal/config"
)

// Wire format
//
// A graft encodes as a JSON object of identifier -> node definition, plus the
// reserved "returns" key and, for function-shaped grafts, "parameters".
// Node definitions:
//
//   null / bool / number        value node (unambiguous literal)
//   {"quote": <json>}           value node (string, list or dict literal)
//   "<identifier>"              key reference
//   ["fn", "id"..., {"k":"id"}] function application; trailing object holds
//                               keyword arguments
//   {... "returns": ...}        embedded function-shaped graft
//
// Strings, lists and dicts are quoted because bare strings mean references
// and bare arrays mean applications.

const quoteKey = "quote"

// MarshalJSON encodes the graft in wire format. Key order is sorted, so
// grafts built under ConsistentGUIDs marshal byte-identically.
func (g *Graft) MarshalJSON() ([]byte, error) {
	m, err := g.wireMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (g *Graft) wireMap() (map[string]any, error) {
	m := make(map[string]any, len(g.nodes)+2)
	for id, n := range g.nodes {
		if !validIdentifier(id) {
			return nil, &InvalidKeyError{Key: id}
		}
		w, err := nodeWire(n)
		if err != nil {
			return nil, err
		}
		m[id] = w
	}
	m[config.ReturnsKey] = g.ret
	if g.params != nil {
		params := make([]any, len(g.params))
		for i, p := range g.params {
			params[i] = p
		}
		m[config.ParametersKey] = params
	}
	return m, nil
}

func nodeWire(n Node) (any, error) {
	switch n := n.(type) {
	case ValueNode:
		if err := validateLiteral(n.Value); err != nil {
			return nil, err
		}
		switch n.Value.(type) {
		case string, []any, map[string]any:
			return map[string]any{quoteKey: n.Value}, nil
		default:
			return n.Value, nil
		}
	case KeyRefNode:
		return n.Key, nil
	case ApplyNode:
		w := make([]any, 0, len(n.Args)+2)
		w = append(w, n.Function)
		for _, a := range n.Args {
			w = append(w, a)
		}
		if len(n.Kwargs) > 0 {
			kw := make(map[string]any, len(n.Kwargs))
			for k, a := range n.Kwargs {
				kw[k] = a
			}
			w = append(w, kw)
		}
		return w, nil
	case FuncNode:
		return n.Graft.wireMap()
	default:
		return nil, fmt.Errorf("unknown node kind %T", n)
	}
}

// Decode parses wire-format JSON into a graft.
func Decode(data []byte) (*Graft, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Reason: err.Error()}
	}
	return decodeWire(raw)
}

// UnmarshalJSON implements json.Unmarshaler for the transport boundary.
func (g *Graft) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*g = *decoded
	return nil
}

func decodeWire(raw map[string]any) (*Graft, error) {
	ret, ok := raw[config.ReturnsKey].(string)
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("missing or non-string %q key", config.ReturnsKey)}
	}

	var params []string
	if p, present := raw[config.ParametersKey]; present {
		list, ok := p.([]any)
		if !ok {
			return nil, &DecodeError{Reason: fmt.Sprintf("%q must be a list", config.ParametersKey)}
		}
		params = make([]string, len(list))
		for i, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, &DecodeError{Reason: fmt.Sprintf("parameter %d is not a string", i)}
			}
			params[i] = s
		}
	}

	nodes := make(map[string]Node, len(raw))
	for id, def := range raw {
		if id == config.ReturnsKey || id == config.ParametersKey {
			continue
		}
		if !validIdentifier(id) {
			return nil, &DecodeError{Key: id, Reason: "invalid identifier"}
		}
		n, err := decodeNode(id, def)
		if err != nil {
			return nil, err
		}
		nodes[id] = n
	}
	return &Graft{nodes: nodes, ret: ret, params: params}, nil
}

func decodeNode(id string, def any) (Node, error) {
	switch def := def.(type) {
	case nil, bool:
		return ValueNode{Value: def}, nil
	case json.Number:
		return ValueNode{Value: decodeNumber(def)}, nil
	case string:
		return KeyRefNode{Key: def}, nil
	case []any:
		return decodeApply(id, def)
	case map[string]any:
		if quoted, ok := def[quoteKey]; ok && len(def) == 1 {
			lit, err := decodeLiteral(quoted)
			if err != nil {
				return nil, &DecodeError{Key: id, Reason: err.Error()}
			}
			return ValueNode{Value: lit}, nil
		}
		if _, ok := def[config.ReturnsKey]; ok {
			inner, err := decodeWire(def)
			if err != nil {
				return nil, &DecodeError{Key: id, Reason: err.Error()}
			}
			if !inner.IsFunction() {
				return nil, &DecodeError{Key: id, Reason: "embedded graft is not function-shaped"}
			}
			return FuncNode{Graft: inner}, nil
		}
		return nil, &DecodeError{Key: id, Reason: "object is neither a quoted literal nor an embedded graft"}
	default:
		return nil, &DecodeError{Key: id, Reason: fmt.Sprintf("unsupported definition type %T", def)}
	}
}

func decodeApply(id string, def []any) (Node, error) {
	if len(def) == 0 {
		return nil, &DecodeError{Key: id, Reason: "empty application"}
	}
	fn, ok := def[0].(string)
	if !ok {
		return nil, &DecodeError{Key: id, Reason: "application function position is not a string"}
	}
	n := ApplyNode{Function: fn}

	rest := def[1:]
	if len(rest) > 0 {
		if kw, ok := rest[len(rest)-1].(map[string]any); ok {
			n.Kwargs = make(map[string]string, len(kw))
			for k, v := range kw {
				s, ok := v.(string)
				if !ok {
					return nil, &DecodeError{Key: id, Reason: fmt.Sprintf("keyword argument %q is not an identifier", k)}
				}
				n.Kwargs[k] = s
			}
			rest = rest[:len(rest)-1]
		}
	}
	n.Args = make([]string, len(rest))
	for i, a := range rest {
		s, ok := a.(string)
		if !ok {
			return nil, &DecodeError{Key: id, Reason: fmt.Sprintf("argument %d is not an identifier", i)}
		}
		n.Args[i] = s
	}
	return n, nil
}

// decodeLiteral normalizes a quoted literal: json.Number becomes int64 when
// integral, float64 otherwise.
func decodeLiteral(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		return decodeNumber(v), nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			lit, err := decodeLiteral(e)
			if err != nil {
				return nil, err
			}
			out[i] = lit
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			lit, err := decodeLiteral(e)
			if err != nil {
				return nil, err
			}
			out[k] = lit
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %T", v)
	}
}

func decodeNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

// EncodeYAML renders the graft as YAML for human inspection. The wire format
// proper is JSON; YAML output is a debugging surface only.
func EncodeYAML(g *Graft) ([]byte, error) {
	m, err := g.wireMap()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(m)
}
