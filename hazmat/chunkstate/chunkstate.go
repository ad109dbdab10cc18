// Package chunkstate implements the BLAKE3 chunk state machine (accumulating
// up to sixteen blocks into a chunk and emitting a 32-byte chaining value)
// and the parent compressor (combining two child chaining values into one).
//
// Both produce an [Output]: a transient record representing "one pending
// final compression", which either yields a 32-byte chaining value or, when
// it is the root, an arbitrary-length XOF stream.
package chunkstate

import "github.com/BLAKE3-team/BLAKE3/hazmat/compress"

// State accumulates input bytes into a single chunk. Exactly one State is
// live at a time per hasher; it is reset (not reallocated) between chunks.
type State struct {
	CV               [8]uint32
	ChunkCounter     uint64
	Buf              [compress.BlockLen]byte
	BufLen           int
	BlocksCompressed int
	Flags            byte
}

// New returns a State ready to accumulate the chunk at the given counter.
func New(key [8]uint32, flags byte, counter uint64) *State {
	s := &State{}
	s.Reset(key, flags, counter)
	return s
}

// Reset reinitializes the state for a new chunk at the given counter,
// retaining the key and base flags.
func (s *State) Reset(key [8]uint32, flags byte, counter uint64) {
	s.CV = key
	s.ChunkCounter = counter
	s.Buf = [compress.BlockLen]byte{}
	s.BufLen = 0
	s.BlocksCompressed = 0
	s.Flags = flags
}

// Len returns the number of message bytes absorbed into this chunk so far.
func (s *State) Len() int {
	return compress.BlockLen*s.BlocksCompressed + s.BufLen
}

// maybeStartFlag returns CHUNK_START if no block of this chunk has been
// compressed yet, or 0 otherwise.
func (s *State) maybeStartFlag() byte {
	if s.BlocksCompressed == 0 {
		return compress.FlagChunkStart
	}
	return 0
}

// Update absorbs input into the chunk, compressing full blocks as they
// accumulate. The final ≤64 bytes of the chunk always remain buffered (never
// compressed in place) so that Output can attach CHUNK_END to them; this is
// why the fill loop below uses a strict ">" rather than ">=".
func (s *State) Update(input []byte) {
	if s.BufLen > 0 {
		take := compress.BlockLen - s.BufLen
		if take > len(input) {
			take = len(input)
		}
		copy(s.Buf[s.BufLen:], input[:take])
		s.BufLen += take
		input = input[take:]

		if len(input) > 0 {
			s.compressBuf()
		}
	}

	for len(input) > compress.BlockLen {
		var block [compress.BlockLen]byte
		copy(block[:], input[:compress.BlockLen])
		compress.InPlace(&s.CV, &block, compress.BlockLen, s.ChunkCounter, s.Flags|s.maybeStartFlag())
		s.BlocksCompressed++
		input = input[compress.BlockLen:]
	}

	take := copy(s.Buf[s.BufLen:], input)
	s.BufLen += take
}

// compressBuf compresses the full buffered block in place and clears it.
func (s *State) compressBuf() {
	compress.InPlace(&s.CV, &s.Buf, compress.BlockLen, s.ChunkCounter, s.Flags|s.maybeStartFlag())
	s.BlocksCompressed++
	s.BufLen = 0
	s.Buf = [compress.BlockLen]byte{}
}

// Output returns the pending final compression for this chunk: the buffered
// tail block with CHUNK_START (if this is the chunk's only block) and
// CHUNK_END set. It does not mutate the chunk state.
func (s *State) Output() Output {
	flags := s.Flags | s.maybeStartFlag() | compress.FlagChunkEnd
	return Output{
		InputCV:  s.CV,
		Block:    s.Buf,
		BlockLen: uint8(s.BufLen),
		Counter:  s.ChunkCounter,
		Flags:    flags,
	}
}

// Output is the "pending final compression" produced by either a chunk or a
// parent node. It is created, read via [Output.ChainingValue] or
// [Output.Stream], and discarded within the same call.
type Output struct {
	InputCV  [8]uint32
	Block    [compress.BlockLen]byte
	BlockLen uint8
	Counter  uint64
	Flags    byte
}

// ChainingValue compresses the output into a 32-byte chaining value. It does
// not mutate the output.
func (o *Output) ChainingValue() [32]byte {
	cv := o.InputCV
	compress.InPlace(&cv, &o.Block, o.BlockLen, o.Counter, o.Flags)
	return compress.CVToBytes(&cv)
}

// Stream writes len(out) bytes of root XOF output, ORing ROOT into the
// output's flags, starting startBlock*64 + within bytes into the infinite
// output stream. It does not mutate the output, and may be called
// repeatedly at any offset (idempotent, seekable finalization).
func (o *Output) Stream(startBlock uint64, within int, out []byte) {
	cv := o.InputCV
	blockCounter := startBlock
	flags := o.Flags | compress.FlagRoot
	var wide [64]byte
	for len(out) > 0 {
		compress.XOF(&cv, &o.Block, o.BlockLen, blockCounter, flags, &wide)
		src := wide[:]
		if within > 0 {
			src = src[within:]
			within = 0
		}
		n := copy(out, src)
		out = out[n:]
		blockCounter++
	}
}

// ParentOutput builds the pending compression for a parent node from its two
// child chaining values, using key as the input chaining value and flags as
// the hasher's base flags (PARENT is added here).
func ParentOutput(leftCV, rightCV [32]byte, key [8]uint32, flags byte) Output {
	var block [compress.BlockLen]byte
	copy(block[:32], leftCV[:])
	copy(block[32:], rightCV[:])
	return Output{
		InputCV:  key,
		Block:    block,
		BlockLen: compress.BlockLen,
		Counter:  0,
		Flags:    flags | compress.FlagParent,
	}
}
