package textutil

// SequenceRatio returns the Ratcliff/Obershelp similarity of a and b in [0,1]:
// 2*M / T where M is the number of matched runes and T the total rune count.
// Two empty strings are identical (1.0).
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ra, rb)) / float64(total)
}

// SimilarAtLeast reports whether SequenceRatio(a, b) >= threshold.
// Cheap upper bounds are checked first so most dissimilar pairs never reach the full match.
func SimilarAtLeast(a, b string, threshold float64) bool {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return true
	}

	// Length bound
	shorter := len(ra)
	if len(rb) < shorter {
		shorter = len(rb)
	}
	if 2.0*float64(shorter)/float64(total) < threshold {
		return false
	}

	// Multiset bound
	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	common := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			common++
		}
	}
	if 2.0*float64(common)/float64(total) < threshold {
		return false
	}

	return 2.0*float64(matchingRunes(ra, rb))/float64(total) >= threshold
}

// matchingRunes sums the sizes of the recursively found longest common blocks
func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	index := make(map[rune][]int, len(b))
	for j, r := range b {
		index[r] = append(index[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, index, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}

	return matched
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] inside the given bounds,
// preferring the earliest block on ties.
func longestMatch(a []rune, index map[rune][]int, alo, ahi, blo, bhi int) (int, int, int) {
	bestI, bestJ, bestK := alo, blo, 0
	lengths := map[int]int{}

	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range index[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestK {
				bestI, bestJ, bestK = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}

	return bestI, bestJ, bestK
}
