//go:build amd64 && !purego

package dispatch

import "github.com/klauspost/cpuid/v2"

var degree = 1

func init() {
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F) && cpuid.CPU.Has(cpuid.AVX512VL):
		degree = 16
	case cpuid.CPU.Has(cpuid.AVX2):
		degree = 8
	case cpuid.CPU.Has(cpuid.SSE4):
		degree = 4
	default:
		degree = 1
	}
}
