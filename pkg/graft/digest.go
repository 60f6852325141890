package graft

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Digest returns the blake3 hash of the graft's canonical JSON encoding,
// as lowercase hex. Two grafts with equal structure and identifiers share a
// digest, which combined with ConsistentGUIDs gives content-addressable
// identity for identical traces.
func Digest(g *Graft) (string, error) {
	data, err := g.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
