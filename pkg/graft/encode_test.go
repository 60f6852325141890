package graft

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshalWireShapes(t *testing.T) {
	var g *Graft
	ConsistentGUIDs(0, func() {
		x := mustKeyref(t, "x")
		lit := mustValue(t, "hello")
		applied, err := Apply("concat", []*Graft{x, lit}, nil)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		g, err = Function(applied, "x")
		if err != nil {
			t.Fatalf("Function: %v", err)
		}
	})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if wire["returns"] != "1" {
		t.Errorf("returns = %v, want the apply node id", wire["returns"])
	}
	params, ok := wire["parameters"].([]any)
	if !ok || len(params) != 1 || params[0] != "x" {
		t.Errorf("parameters = %v, want [x]", wire["parameters"])
	}
	// String literal quoted, not a bare string (bare strings are references).
	lit, ok := wire["0"].(map[string]any)
	if !ok || lit["quote"] != "hello" {
		t.Errorf("literal node = %v, want quoted string", wire["0"])
	}
	app, ok := wire["1"].([]any)
	if !ok || app[0] != "concat" || app[1] != "x" || app[2] != "0" {
		t.Errorf("apply node = %v, want [concat x 0]", wire["1"])
	}
}

func TestMarshalNumbersBare(t *testing.T) {
	g := mustValue(t, 7)
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`:7`)) {
		t.Errorf("number literal not bare in %s", data)
	}
	if bytes.Contains(data, []byte("quote")) {
		t.Errorf("number literal was quoted: %s", data)
	}
}

func TestRoundTrip(t *testing.T) {
	var g *Graft
	ConsistentGUIDs(0, func() {
		items, err := MergeValues(mustValue(t, 1), mustValue(t, "two"), mustValue(t, []any{true, nil}))
		if err != nil {
			t.Fatalf("MergeValues: %v", err)
		}
		inner, err := Function(mustKeyref(t, "a"), "a")
		if err != nil {
			t.Fatal(err)
		}
		g, err = Apply("map", []*Graft{inner, items}, map[string]*Graft{"n": mustValue(t, 3)})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
	})

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	again, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("round trip not stable:\n  %s\n  %s", data, again)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{`},
		{name: "missing returns", data: `{"0": 1}`},
		{name: "non-string returns", data: `{"returns": 3}`},
		{name: "bad parameters", data: `{"returns": "x", "parameters": "x"}`},
		{name: "non-string parameter", data: `{"returns": "x", "parameters": [3]}`},
		{name: "empty apply", data: `{"0": [], "returns": "0"}`},
		{name: "non-string function", data: `{"0": [3], "returns": "0"}`},
		{name: "non-string arg", data: `{"0": ["add", 3, "x"], "returns": "0"}`},
		{name: "unknown object", data: `{"0": {"a": 1}, "returns": "0"}`},
		{name: "value-shaped embed", data: `{"0": {"1": 2, "returns": "1"}, "returns": "0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Errorf("Decode(%s) succeeded, want error", tt.data)
			}
		})
	}
}

func TestDecodeNumbers(t *testing.T) {
	g, err := Decode([]byte(`{"0": 3, "1": 2.5, "returns": "0"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v := g.nodes["0"].(ValueNode).Value; v != int64(3) {
		t.Errorf("integral number = %v (%T), want int64(3)", v, v)
	}
	if v := g.nodes["1"].(ValueNode).Value; v != 2.5 {
		t.Errorf("float number = %v (%T), want 2.5", v, v)
	}
}

func TestEncodeYAML(t *testing.T) {
	g, err := Apply("add", []*Graft{mustKeyref(t, "x"), mustValue(t, 1)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := EncodeYAML(g)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	if !strings.Contains(string(out), "returns:") {
		t.Errorf("yaml output missing returns key:\n%s", out)
	}
}

func TestDigest(t *testing.T) {
	var a, b, c *Graft
	ConsistentGUIDs(0, func() {
		a = mustValue(t, 1)
	})
	ConsistentGUIDs(0, func() {
		b = mustValue(t, 1)
	})
	ConsistentGUIDs(0, func() {
		c = mustValue(t, 2)
	})

	da, err := Digest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := Digest(b)
	if err != nil {
		t.Fatal(err)
	}
	dc, err := Digest(c)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("identical grafts, different digests: %s vs %s", da, db)
	}
	if da == dc {
		t.Errorf("different grafts, same digest %s", da)
	}
	if len(da) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(da))
	}
}
