package dag

import (
	"hash/fnv"
	"math"
	"unsafe"
)

// FoldingSetNodeID is a content fingerprint assembled from a sequence of
// integer/pointer/string/float/bool additions, compared by raw-bit equality;
// its hash is FNV-1a over its 32-bit word sequence.
//
// Hashing a raw pointer would make the fingerprint depend on heap layout and
// defeat byte-for-byte determinism across runs, so fingerprint (node.go)
// instead folds in each operand node's stable, monotonically-assigned
// Node.id via AddUint32 — the same content-addressing semantics, without the
// address nondeterminism.
type FoldingSetNodeID struct {
	words []uint32
}

func (id *FoldingSetNodeID) AddInteger(v int64) {
	id.words = append(id.words, uint32(uint64(v)), uint32(uint64(v)>>32))
}

func (id *FoldingSetNodeID) AddUint32(v uint32) {
	id.words = append(id.words, v)
}

func (id *FoldingSetNodeID) AddFloat(v float32) {
	id.words = append(id.words, math.Float32bits(v))
}

func (id *FoldingSetNodeID) AddBoolean(v bool) {
	if v {
		id.words = append(id.words, 1)
	} else {
		id.words = append(id.words, 0)
	}
}

func (id *FoldingSetNodeID) AddString(s string) {
	id.words = append(id.words, uint32(len(s)))
	for len(s) > 0 {
		n := 4
		if len(s) < 4 {
			n = len(s)
		}
		var buf [4]byte
		copy(buf[:], s[:n])
		id.words = append(id.words, uint32(buf[0])|uint32(buf[1])<<8|uint32(buf[2])<<16|uint32(buf[3])<<24)
		s = s[n:]
	}
}

// Bytes returns the raw word sequence reinterpreted as bytes, used as the
// uniquing table's map key: exact equality on Bytes() is exact equality on
// the fingerprint, with no possibility of a hash collision mis-uniquing two
// distinct nodes.
func (id *FoldingSetNodeID) Bytes() string {
	if len(id.words) == 0 {
		return ""
	}
	b := (*[1 << 30]byte)(unsafe.Pointer(&id.words[0]))[: len(id.words)*4 : len(id.words)*4]
	return string(b)
}

// Hash computes the FNV-1a hash over the word sequence. Two fingerprints that
// compare equal by Bytes() always hash equal.
func (id *FoldingSetNodeID) Hash() uint32 {
	h := fnv.New32a()
	for _, w := range id.words {
		var buf [4]byte
		buf[0] = byte(w)
		buf[1] = byte(w >> 8)
		buf[2] = byte(w >> 16)
		buf[3] = byte(w >> 24)
		_, _ = h.Write(buf[:])
	}
	return h.Sum32()
}
