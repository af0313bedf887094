package etl

import "iter"

// Batches yields consecutive chunks of at most size items, paired with the
// chunk's index. The sequence is lazy and can be ranged over repeatedly.
// A non-positive size yields everything as a single chunk.
func Batches[T any](items []T, size int) iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		if len(items) == 0 {
			return
		}
		if size <= 0 {
			size = len(items)
		}
		for i, n := 0, 0; i < len(items); i, n = i+size, n+1 {
			end := min(i+size, len(items))
			if !yield(n, items[i:end:end]) {
				return
			}
		}
	}
}
