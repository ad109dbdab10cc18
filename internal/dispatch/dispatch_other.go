//go:build (!amd64 && !arm64) || purego

package dispatch

// degree stays at the portable, always-correct fallback on architectures
// with no faster batching kernel wired in.
var degree = 1
