//go:build arm64 && !purego

package dispatch

import "github.com/klauspost/cpuid/v2"

var degree = 1

func init() {
	if cpuid.CPU.Has(cpuid.ASIMD) {
		degree = 4
	}
}
