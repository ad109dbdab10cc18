// Package dispatch chooses, once at process start, how many chunks the wide
// hasher should batch together per call.
//
// A single package-level value is set from cpuid in an arch-specific init()
// and never mutated again. Degree does not select between different
// kernels — there is only the portable one — it only controls batching
// granularity, so a wrong guess costs throughput, never correctness.
package dispatch

// Degree returns the number of chunks the wide hasher should batch together
// per call: one of 1, 2, 4, 8, or 16. It is safe to call concurrently.
func Degree() int {
	return degree
}
