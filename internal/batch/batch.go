// Package batch provides fixed-size chunking for rate-limited API work.
package batch

import "iter"

// Chunks yields successive slices of at most size items, paired with the
// zero-based batch index. The yielded slices alias the input. A size of
// zero or less is treated as one.
func Chunks[T any](items []T, size int) iter.Seq2[int, []T] {
	if size <= 0 {
		size = 1
	}
	return func(yield func(int, []T) bool) {
		for i, start := 0, 0; start < len(items); i, start = i+1, start+size {
			end := start + size
			if end > len(items) {
				end = len(items)
			}
			if !yield(i, items[start:end]) {
				return
			}
		}
	}
}

// Count reports how many chunks Chunks will yield for the given inputs.
func Count(total, size int) int {
	if total <= 0 {
		return 0
	}
	if size <= 0 {
		size = 1
	}
	return (total + size - 1) / size
}
