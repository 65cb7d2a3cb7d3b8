// Package testutil holds test helpers shared across package boundaries:
// a chunked-feed harness that exercises the parser's incremental-input
// invariant (spec §8, "same final state regardless of partition") and a
// handful of golden message fixtures reused by multiple _test.go files.
package testutil

// Partitions splits data into n non-empty, in-order slices covering every
// byte exactly once, used to feed a parser byte-range-at-a-time and
// compare the result against a single one-shot Commit. n <= 0 or n >
// len(data) is clamped to len(data) (one byte per partition).
func Partitions(data []byte, n int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	if n <= 0 || n > len(data) {
		n = len(data)
	}
	out := make([][]byte, 0, n)
	base := len(data) / n
	rem := len(data) % n
	pos := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		out = append(out, data[pos:pos+size])
		pos += size
	}
	return out
}

// AllSplitPoints returns, for every byte offset 1..len(data)-1, the
// two-way partition of data at that offset — used to sweep every
// possible split point a TCP read could produce for a short message.
func AllSplitPoints(data []byte) [][2][]byte {
	var out [][2][]byte
	for i := 1; i < len(data); i++ {
		out = append(out, [2][]byte{data[:i], data[i:]})
	}
	return out
}
