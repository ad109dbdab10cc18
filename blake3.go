// Package blake3 implements the core of BLAKE3: a keyed, extendable-output
// cryptographic hash that partitions input into 1 KiB chunks, hashes each
// chunk as a sub-Merkle-tree leaf, and combines chunk chaining values
// through a binary parent tree whose root produces arbitrary-length output.
//
// The [Hasher] is a strictly sequential, allocation-free state machine: one
// chunk state plus a lazily-merged stack of chaining values. See
// hazmat/compress for the compression kernel, hazmat/chunkstate for the
// chunk/parent building blocks, and hazmat/wide for the batched leaf hasher.
package blake3

import (
	"math/bits"

	"github.com/BLAKE3-team/BLAKE3/hazmat/chunkstate"
	"github.com/BLAKE3-team/BLAKE3/hazmat/compress"
	"github.com/BLAKE3-team/BLAKE3/hazmat/wide"
	"github.com/BLAKE3-team/BLAKE3/internal/dispatch"
)

// Size is the default output size in bytes, used by [Hasher.Sum] and
// [Hasher.Size]. Finalize and FinalizeSeek accept any output length.
const Size = compress.OutLen

// Hasher is an incremental BLAKE3 instance. The zero value is not usable;
// construct one with [New], [NewKeyed], or [NewDeriveKey].
type Hasher struct {
	key        [8]uint32
	chunk      chunkstate.State
	cvStack    [compress.MaxDepth + 1][compress.OutLen]byte
	cvStackLen int
}

func newBase(key [8]uint32, flags byte) *Hasher {
	h := &Hasher{key: key}
	h.chunk.Reset(key, flags, 0)
	return h
}

// New returns a Hasher for plain, unkeyed hashing.
func New() *Hasher {
	return newBase(compress.IV, 0)
}

// NewKeyed returns a Hasher for MAC use with the given 32-byte key.
func NewKeyed(key []byte) (*Hasher, error) {
	if len(key) != compress.KeyLen {
		return nil, ErrInvalidKeyLength
	}
	var kb [compress.KeyLen]byte
	copy(kb[:], key)
	return newBase(compress.WordsToKey(&kb), compress.FlagKeyedHash), nil
}

// NewDeriveKey returns a Hasher for KDF use with the given context string.
// The context should be a hard-coded, globally unique, application-specific
// identifier; it is not a secret.
func NewDeriveKey(context string) *Hasher {
	ctxHasher := newBase(compress.IV, compress.FlagDeriveKeyContext)
	_, _ = ctxHasher.Write([]byte(context))
	var ctxKey [compress.KeyLen]byte
	ctxHasher.Finalize(ctxKey[:])
	return newBase(compress.WordsToKey(&ctxKey), compress.FlagDeriveKeyMaterial)
}

// Reset returns the Hasher to its post-construction state, preserving its
// mode and key.
func (h *Hasher) Reset() {
	h.chunk.Reset(h.key, h.chunk.Flags, 0)
	h.cvStackLen = 0
}

// needsMerge reports whether the stack holds more unmerged chaining values
// than the popcount of the total number of chunks hashed so far demands.
func (h *Hasher) needsMerge(totalChunks uint64) bool {
	return h.cvStackLen > bits.OnesCount64(totalChunks)
}

// mergeParent pops the top two stack entries and pushes their parent CV.
func (h *Hasher) mergeParent() {
	top := h.cvStackLen - 2
	out := chunkstate.ParentOutput(h.cvStack[top], h.cvStack[top+1], h.key, h.chunk.Flags)
	h.cvStack[top] = out.ChainingValue()
	h.cvStackLen--
}

// pushChunkCV merges the stack down to satisfy the popcount invariant for
// chunkCounter, then pushes cv.
func (h *Hasher) pushChunkCV(cv [compress.OutLen]byte, chunkCounter uint64) {
	for h.needsMerge(chunkCounter) {
		h.mergeParent()
	}
	if h.cvStackLen >= len(h.cvStack) {
		panic("blake3: chaining value stack overflow")
	}
	h.cvStack[h.cvStackLen] = cv
	h.cvStackLen++
}

// Write absorbs message bytes. It always returns len(p), nil.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)

	// If we already have a partial chunk, or this is the very first chunk
	// and it might be the whole input (and thus the root), route bytes into
	// the chunk state first. Deferring the flush here is what lets a
	// one-chunk input stay a single chunk rather than a degenerate parent.
	isFirstChunk := h.chunk.ChunkCounter == 0
	maybeRoot := isFirstChunk && h.chunk.Len() == 0 && len(p) == compress.ChunkLen
	if maybeRoot || h.chunk.Len() > 0 {
		take := compress.ChunkLen - h.chunk.Len()
		if take > len(p) {
			take = len(p)
		}
		h.chunk.Update(p[:take])
		p = p[take:]

		if len(p) == 0 {
			return n, nil
		}

		out := h.chunk.Output()
		cv := out.ChainingValue()
		h.pushChunkCV(cv, h.chunk.ChunkCounter)
		h.chunk.Reset(h.key, h.chunk.Flags, h.chunk.ChunkCounter+1)
	}

	// Hash as many whole chunks as possible without buffering, batching up
	// to the dispatcher's advised degree per call. None of these chunks can
	// be the root: we already know there's more input, or there was a
	// partial chunk before this one.
	degree := dispatch.Degree()
	var chunkBuf [compress.MaxSIMDDegree][]byte
	var outBuf [compress.MaxSIMDDegree * compress.OutLen]byte
	for len(p) >= compress.ChunkLen {
		chunks := chunkBuf[:0]
		for len(p) >= compress.ChunkLen && len(chunks) < degree {
			chunks = append(chunks, p[:compress.ChunkLen])
			p = p[compress.ChunkLen:]
		}

		out := outBuf[:len(chunks)*compress.OutLen]
		wide.HashMany(chunks, compress.BlocksPerChunk, h.key, h.chunk.ChunkCounter, true,
			h.chunk.Flags, compress.FlagChunkStart, compress.FlagChunkEnd, out)

		for i := range chunks {
			var cv [compress.OutLen]byte
			copy(cv[:], out[i*compress.OutLen:(i+1)*compress.OutLen])
			h.pushChunkCV(cv, h.chunk.ChunkCounter)
			h.chunk.ChunkCounter++
		}
	}

	// Whatever's left is less than a full chunk. Do a redundant merge pass
	// now (pushChunkCV already merges, but this keeps the stack free of
	// unmerged pairs so Finalize doesn't have to special-case it) and
	// buffer the tail.
	if len(p) > 0 {
		for h.needsMerge(h.chunk.ChunkCounter) {
			h.mergeParent()
		}
		h.chunk.Update(p)
	}

	return n, nil
}

// rootOutput assembles the pending root compression without mutating h, so
// it may be called repeatedly.
func (h *Hasher) rootOutput() chunkstate.Output {
	if h.cvStackLen == 0 {
		return h.chunk.Output()
	}

	var output chunkstate.Output
	var cvsRemaining int
	if h.chunk.Len() > 0 {
		cvsRemaining = h.cvStackLen
		output = h.chunk.Output()
	} else {
		// There are always at least 2 CVs in the stack in this case.
		cvsRemaining = h.cvStackLen - 2
		output = chunkstate.ParentOutput(h.cvStack[cvsRemaining], h.cvStack[cvsRemaining+1], h.key, h.chunk.Flags)
	}

	for cvsRemaining > 0 {
		cvsRemaining--
		left := h.cvStack[cvsRemaining]
		right := output.ChainingValue()
		output = chunkstate.ParentOutput(left, right, h.key, h.chunk.Flags)
	}

	return output
}

// Finalize writes len(out) bytes of output. It does not mutate h: it may be
// called any number of times, interleaved with further [Hasher.Write]
// calls, each seeing the input absorbed so far.
func (h *Hasher) Finalize(out []byte) {
	output := h.rootOutput()
	output.Stream(0, 0, out)
}

// FinalizeSeek writes len(out) bytes of output starting at byte offset seek
// in BLAKE3's extendable output stream. Like Finalize, it does not mutate h.
func (h *Hasher) FinalizeSeek(seek uint64, out []byte) {
	startBlock := seek / compress.BlockLen
	within := int(seek % compress.BlockLen)
	output := h.rootOutput()
	output.Stream(startBlock, within, out)
}

// Sum appends the 32-byte hash of the data absorbed so far to b and returns
// the resulting slice. It satisfies hash.Hash and does not change h.
func (h *Hasher) Sum(b []byte) []byte {
	var out [Size]byte
	h.Finalize(out[:])
	return append(b, out[:]...)
}

// Size returns the default output size in bytes (32). Finalize and
// FinalizeSeek are not limited to this length.
func (h *Hasher) Size() int { return Size }

// BlockSize returns the compression function's block size in bytes.
func (h *Hasher) BlockSize() int { return compress.BlockLen }
