// Summaries over a pair of integer sequences.

package aggregate

// Sum of |left[i] - right[i]| over aligned indices.  Both sequences must already be sorted
// ascending, that is the caller's job.  If the lengths differ then only the common prefix is
// paired.

func Distance(left, right []uint32) uint64 {
	n := min(len(left), len(right))
	var sum uint64
	for i := 0; i < n; i++ {
		x, y := left[i], right[i]
		if x > y {
			sum += uint64(x - y)
		} else {
			sum += uint64(y - x)
		}
	}
	return sum
}

// Number of occurrences of each value in xs.

func Frequencies(xs []uint32) map[uint32]uint64 {
	freq := make(map[uint32]uint64)
	for _, x := range xs {
		freq[x]++
	}
	return freq
}

// Sum over left of v * (number of occurrences of v in right).  Order of either sequence does not
// matter.

func SimilarityScore(left, right []uint32) uint64 {
	freq := Frequencies(right)
	var score uint64
	for _, v := range left {
		score += uint64(v) * freq[v]
	}
	return score
}
