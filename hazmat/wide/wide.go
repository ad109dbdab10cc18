// Package wide implements the BLAKE3 "wide hasher" contract: hashing N
// independent, equal-length chunks of input in parallel, producing N
// chaining values.
//
// This is the seam a SIMD-accelerated kernel would occupy, batching several
// chunks' compressions across vector lanes. No vector kernel is implemented
// here: only the portable degree-1 fallback exists, and it is always
// correct regardless of the batching degree
// [github.com/BLAKE3-team/BLAKE3/internal/dispatch] advises the caller to
// use, since every degree funnels into the same per-chunk compression calls.
package wide

import "github.com/BLAKE3-team/BLAKE3/hazmat/compress"

// HashMany hashes len(inputs) independent chunks, each exactly blocks*64
// bytes long, writing OutLen bytes of chaining value per chunk to out (which
// must be len(inputs)*compress.OutLen bytes).
//
// If increment counter is set, the chunk at inputs[i] uses counter+i;
// otherwise every chunk uses counter unchanged (the parent-hashing case).
// flagsStart is ORed into the first block of each chunk's flags, flagsEnd
// into the last; base flags apply to every block.
func HashMany(inputs [][]byte, blocks int, key [8]uint32, counter uint64, incrementCounter bool, flags, flagsStart, flagsEnd byte, out []byte) {
	for i, input := range inputs {
		c := counter
		if incrementCounter {
			c = counter + uint64(i)
		}
		cv := hashOne(input, blocks, key, c, flags, flagsStart, flagsEnd)
		b := compress.CVToBytes(&cv)
		copy(out[i*compress.OutLen:], b[:])
	}
}

// hashOne compresses a single chunk of blocks*64 bytes sequentially,
// applying flagsStart to the first block and flagsEnd to the last.
func hashOne(input []byte, blocks int, key [8]uint32, counter uint64, flags, flagsStart, flagsEnd byte) [8]uint32 {
	cv := key
	blockFlags := flags | flagsStart

	for blocks > 0 {
		if blocks == 1 {
			blockFlags |= flagsEnd
		}

		var block [compress.BlockLen]byte
		copy(block[:], input[:compress.BlockLen])
		compress.InPlace(&cv, &block, compress.BlockLen, counter, blockFlags)

		input = input[compress.BlockLen:]
		blocks--
		blockFlags = flags
	}

	return cv
}
