package graft

import (
	"encoding/json"
	"testing"
)

func FuzzDecode(f *testing.F) {
	f.Add([]byte(`{"0": 1, "returns": "0"}`))
	f.Add([]byte(`{"0": {"quote": "hi"}, "returns": "0"}`))
	f.Add([]byte(`{"0": ["add", "x", "y", {"k": "x"}], "returns": "0"}`))
	f.Add([]byte(`{"0": {"1": "a", "returns": "1", "parameters": ["a"]}, "returns": "0"}`))
	f.Add([]byte(`{"returns": "x"}`))
	f.Add([]byte(`not json`))

	f.Fuzz(func(t *testing.T, data []byte) {
		g, err := Decode(data)
		if err != nil {
			return
		}
		// Anything that decodes must re-encode and decode again stably.
		out, err := json.Marshal(g)
		if err != nil {
			t.Fatalf("decoded graft failed to marshal: %v", err)
		}
		if _, err := Decode(out); err != nil {
			t.Fatalf("re-encoded graft failed to decode: %v\n%s", err, out)
		}
	})
}
