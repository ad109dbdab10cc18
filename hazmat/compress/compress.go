// Package compress implements the BLAKE3 compression function: a fixed
// seven-round ARX permutation over a 16-word state that consumes a 64-byte
// block and an 8-word chaining value.
//
// This is the portable reference kernel. It has no SIMD-accelerated
// counterpart in this repository; the wide hasher in [github.com/BLAKE3-team/BLAKE3/hazmat/wide]
// calls it block by block for every chunk regardless of the batching degree chosen by
// [github.com/BLAKE3-team/BLAKE3/internal/dispatch], so its output is the
// single source of truth for every code path.
package compress

import "encoding/binary"

const (
	// BlockLen is the size in bytes of a compression input block.
	BlockLen = 64

	// OutLen is the size in bytes of a chaining value.
	OutLen = 32

	// KeyLen is the size in bytes of a BLAKE3 key.
	KeyLen = 32

	// ChunkLen is the number of message bytes in a full chunk.
	ChunkLen = 1024

	// BlocksPerChunk is the number of blocks in a full chunk.
	BlocksPerChunk = ChunkLen / BlockLen

	// MaxDepth is the maximum depth of the chunk tree (2^54 chunks). The tree
	// assembler's stack holds up to MaxDepth+1 unmerged chaining values.
	MaxDepth = 54

	// MaxSIMDDegree is the largest batching degree any wide-hasher dispatch
	// decision may return.
	MaxSIMDDegree = 16
)

// Flags are the 8-bit domain-separation bits ORed into a block's effective
// flags. A block's effective flags are the hasher's base flags ORed with
// per-position bits (chunk-start, chunk-end, parent, root).
const (
	FlagChunkStart         byte = 1 << 0
	FlagChunkEnd           byte = 1 << 1
	FlagParent             byte = 1 << 2
	FlagRoot               byte = 1 << 3
	FlagKeyedHash          byte = 1 << 4
	FlagDeriveKeyContext   byte = 1 << 5
	FlagDeriveKeyMaterial  byte = 1 << 6
)

// IV holds the standard BLAKE3 initialization vector, both the words used
// unkeyed as the hasher's key and the lower half reused inside every
// compression call.
var IV = [8]uint32{
	0x6A09E667, 0xBB67AE85, 0x3C6EF372, 0xA54FF53A,
	0x510E527F, 0x9B05688C, 0x1F83D9AB, 0x5BE0CD19,
}

// msgSchedule is S[round][i]: the message-word index used for position i of
// the given round's eight G calls.
var msgSchedule = [7][16]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{2, 6, 3, 10, 7, 0, 4, 13, 1, 11, 12, 5, 9, 14, 15, 8},
	{3, 4, 10, 12, 13, 2, 7, 14, 6, 5, 9, 0, 11, 15, 8, 1},
	{10, 7, 12, 9, 14, 3, 13, 15, 4, 0, 11, 2, 5, 8, 1, 6},
	{12, 13, 9, 11, 15, 10, 14, 8, 7, 2, 5, 3, 0, 1, 6, 4},
	{9, 14, 11, 5, 8, 12, 15, 1, 13, 3, 0, 10, 2, 6, 4, 7},
	{11, 15, 5, 0, 1, 9, 8, 6, 14, 10, 2, 12, 3, 4, 7, 13},
}

func rotr32(w uint32, c uint) uint32 {
	return (w >> c) | (w << (32 - c))
}

// g applies one quarter-round of the ARX mixing function to state indices
// a, b, c, d using message words x and y.
func g(state *[16]uint32, a, b, c, d int, x, y uint32) {
	state[a] = state[a] + state[b] + x
	state[d] = rotr32(state[d]^state[a], 16)
	state[c] = state[c] + state[d]
	state[b] = rotr32(state[b]^state[c], 12)

	state[a] = state[a] + state[b] + y
	state[d] = rotr32(state[d]^state[a], 8)
	state[c] = state[c] + state[d]
	state[b] = rotr32(state[b]^state[c], 7)
}

// round applies g to the four columns, then the four diagonals, selecting
// message words via the schedule for the given round.
func round(state *[16]uint32, msg *[16]uint32, round int) {
	s := &msgSchedule[round]

	g(state, 0, 4, 8, 12, msg[s[0]], msg[s[1]])
	g(state, 1, 5, 9, 13, msg[s[2]], msg[s[3]])
	g(state, 2, 6, 10, 14, msg[s[4]], msg[s[5]])
	g(state, 3, 7, 11, 15, msg[s[6]], msg[s[7]])

	g(state, 0, 5, 10, 15, msg[s[8]], msg[s[9]])
	g(state, 1, 6, 11, 12, msg[s[10]], msg[s[11]])
	g(state, 2, 7, 8, 13, msg[s[12]], msg[s[13]])
	g(state, 3, 4, 9, 14, msg[s[14]], msg[s[15]])
}

// loadBlockWords reads block as 16 little-endian 32-bit words.
func loadBlockWords(block *[BlockLen]byte) (msg [16]uint32) {
	for i := range msg {
		msg[i] = binary.LittleEndian.Uint32(block[4*i : 4*i+4])
	}
	return msg
}

// compressPre initializes the 16-word state and runs all seven rounds.
func compressPre(cv *[8]uint32, block *[BlockLen]byte, blockLen uint8, counter uint64, flags byte) [16]uint32 {
	msg := loadBlockWords(block)

	state := [16]uint32{
		cv[0], cv[1], cv[2], cv[3], cv[4], cv[5], cv[6], cv[7],
		IV[0], IV[1], IV[2], IV[3],
		uint32(counter), uint32(counter >> 32),
		uint32(blockLen), uint32(flags),
	}

	for r := 0; r < 7; r++ {
		round(&state, &msg, r)
	}
	return state
}

// InPlace compresses block into cv, replacing it with the new chaining
// value. block_len must not exceed BlockLen; that is a caller bug, not a
// runtime error.
func InPlace(cv *[8]uint32, block *[BlockLen]byte, blockLen uint8, counter uint64, flags byte) {
	state := compressPre(cv, block, blockLen, counter, flags)
	for i := 0; i < 8; i++ {
		cv[i] = state[i] ^ state[i+8]
	}
}

// XOF compresses block against cv (left unmodified) and writes the full
// 64-byte extended output, reversible and suitable for streaming by
// incrementing counter.
func XOF(cv *[8]uint32, block *[BlockLen]byte, blockLen uint8, counter uint64, flags byte, out *[64]byte) {
	state := compressPre(cv, block, blockLen, counter, flags)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(out[4*i:4*i+4], state[i]^state[i+8])
	}
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(out[32+4*i:32+4*i+4], state[i+8]^cv[i])
	}
}

// WordsToKey loads a 32-byte key or IV as 8 little-endian words.
func WordsToKey(b *[KeyLen]byte) (key [8]uint32) {
	for i := range key {
		key[i] = binary.LittleEndian.Uint32(b[4*i : 4*i+4])
	}
	return key
}

// CVToBytes stores an 8-word chaining value as 32 little-endian bytes.
func CVToBytes(cv *[8]uint32) (b [OutLen]byte) {
	for i, w := range cv {
		binary.LittleEndian.PutUint32(b[4*i:4*i+4], w)
	}
	return b
}

// BytesToCV loads 32 bytes as an 8-word chaining value.
func BytesToCV(b *[OutLen]byte) (cv [8]uint32) {
	for i := range cv {
		cv[i] = binary.LittleEndian.Uint32(b[4*i : 4*i+4])
	}
	return cv
}
