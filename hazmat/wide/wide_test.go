package wide

import (
	"bytes"
	"testing"

	"github.com/BLAKE3-team/BLAKE3/hazmat/compress"
)

func ptn(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// TestHashManyMatchesSequentialChunkState checks that HashMany's batched CVs
// agree with compressing each chunk one block at a time, for a range of
// batch sizes standing in for the degrees the dispatcher could advise.
func TestHashManyMatchesSequentialChunkState(t *testing.T) {
	key := compress.IV

	for _, degree := range []int{1, 2, 4, 8, 16} {
		chunks := make([][]byte, degree)
		for i := range chunks {
			chunks[i] = ptn(compress.ChunkLen)
			// vary content per chunk so a degree>1 bug that aliases inputs
			// would be caught.
			chunks[i][0] = byte(i)
		}

		out := make([]byte, degree*compress.OutLen)
		HashMany(chunks, compress.BlocksPerChunk, key, 100, true,
			0, compress.FlagChunkStart, compress.FlagChunkEnd, out)

		for i, chunk := range chunks {
			want := sequentialChunkCV(chunk, key, uint64(100+i))
			got := out[i*compress.OutLen : (i+1)*compress.OutLen]
			if !bytes.Equal(got, want[:]) {
				t.Fatalf("degree=%d chunk=%d: mismatch", degree, i)
			}
		}
	}
}

func TestHashManyWithoutCounterIncrement(t *testing.T) {
	left := ptn(compress.BlockLen * 2)
	right := ptn(compress.BlockLen * 2)
	right[0] = 0xff

	out := make([]byte, 2*compress.OutLen)
	HashMany([][]byte{left, right}, 2, compress.IV, 42, false,
		compress.FlagParent, 0, 0, out)

	wantLeft := sequentialBlocks(left, 2, compress.IV, 42, compress.FlagParent, 0, 0)
	wantRight := sequentialBlocks(right, 2, compress.IV, 42, compress.FlagParent, 0, 0)

	if !bytes.Equal(out[:compress.OutLen], wantLeft[:]) {
		t.Fatal("left chunk used the wrong counter")
	}
	if !bytes.Equal(out[compress.OutLen:], wantRight[:]) {
		t.Fatal("right chunk used the wrong counter")
	}
}

func sequentialChunkCV(chunk []byte, key [8]uint32, counter uint64) [compress.OutLen]byte {
	return sequentialBlocks(chunk, compress.BlocksPerChunk, key, counter, 0, compress.FlagChunkStart, compress.FlagChunkEnd)
}

func sequentialBlocks(data []byte, blocks int, key [8]uint32, counter uint64, flags, flagsStart, flagsEnd byte) [compress.OutLen]byte {
	cv := key
	blockFlags := flags | flagsStart
	for blocks > 0 {
		if blocks == 1 {
			blockFlags |= flagsEnd
		}
		var block [compress.BlockLen]byte
		copy(block[:], data[:compress.BlockLen])
		compress.InPlace(&cv, &block, compress.BlockLen, counter, blockFlags)
		data = data[compress.BlockLen:]
		blocks--
		blockFlags = flags
	}
	return compress.CVToBytes(&cv)
}
