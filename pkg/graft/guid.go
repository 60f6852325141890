package graft

import (
	"encoding/binary"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/funvibe/graft/internal/config"
)

// epoch is a per-process random prefix distinguishing this allocator's
// identifiers from those of any other process that may contribute subgraphs.
var epoch = uuid.NewString()[:config.GUIDPrefixLen]

var seq atomic.Uint64

var (
	// scopeMu serializes outermost consistent scopes so two concurrent
	// deterministic traces cannot interleave counter values.
	scopeMu sync.Mutex

	// stateMu guards the deterministic-mode fields.
	stateMu  sync.Mutex
	det      bool
	detNext  uint64
	detDepth int
)

// GUID returns a fresh identifier. In the default mode identifiers are
// process-unique and safe to allocate from any goroutine. Inside a
// ConsistentGUIDs scope allocation becomes a deterministic decimal counter.
func GUID() string {
	stateMu.Lock()
	if det {
		n := detNext
		detNext++
		stateMu.Unlock()
		return strconv.FormatUint(n, 10)
	}
	stateMu.Unlock()
	return epoch + "-" + strconv.FormatUint(seq.Add(1), 36)
}

// ConsistentGUIDs runs fn with deterministic identifier allocation starting
// at seed, so tracing the same logic twice yields byte-identical grafts.
//
// Scopes nest: an inner scope restores the outer scope's counter on exit,
// including when fn panics. Outermost scopes taken from different goroutines
// serialize against each other.
func ConsistentGUIDs(seed uint64, fn func()) {
	stateMu.Lock()
	nested := detDepth > 0
	stateMu.Unlock()

	if !nested {
		scopeMu.Lock()
		defer scopeMu.Unlock()
	}

	stateMu.Lock()
	detDepth++
	prevDet, prevNext := det, detNext
	det, detNext = true, seed
	stateMu.Unlock()

	defer func() {
		stateMu.Lock()
		det, detNext = prevDet, prevNext
		detDepth--
		stateMu.Unlock()
	}()

	fn()
}

// InConsistentScope reports whether identifier allocation is currently
// deterministic. Tracers use this to decide whether to open a nested
// reproducible boundary for a function body.
func InConsistentScope() bool {
	stateMu.Lock()
	defer stateMu.Unlock()
	return det
}

// SeedFromContent derives a deterministic allocation seed from arbitrary
// content, for content-addressable tracing: identical inputs yield identical
// seeds and therefore identical grafts under ConsistentGUIDs.
func SeedFromContent(data []byte) uint64 {
	sum := blake3.Sum256(data)
	return binary.BigEndian.Uint64(sum[:8])
}

// consistentID reports whether id looks like an identifier allocated in
// deterministic mode, and its counter value.
func consistentID(id string) (uint64, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	return n, err == nil
}
