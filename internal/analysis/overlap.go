package analysis

import "sort"

// OverlapResult is the similarity between two weighted tag sets.
type OverlapResult struct {
	Score  float64
	Shared []string
}

// Overlap scores two tag-weight maps with a weighted Jaccard (Ruzicka) index
// over per-set normalised weights: sum(min) / sum(max). The score is in [0,1]
// and symmetric. Shared lists the tags present in both maps, heaviest
// combined raw weight first. Non-positive weights are ignored.
func Overlap(a, b map[string]int) OverlapResult {
	totalA, totalB := positiveSum(a), positiveSum(b)
	if totalA == 0 || totalB == 0 {
		return OverlapResult{Shared: []string{}}
	}

	// Walk the union in name order so floating point sums do not depend
	// on argument order or map iteration.
	union := make([]string, 0, len(a)+len(b))
	for name, w := range a {
		if w > 0 {
			union = append(union, name)
		}
	}
	for name, w := range b {
		if w > 0 && a[name] <= 0 {
			union = append(union, name)
		}
	}
	sort.Strings(union)

	var minSum, maxSum float64
	shared := []string{}
	for _, name := range union {
		wa := normalised(a[name], totalA)
		wb := normalised(b[name], totalB)
		if wa < wb {
			minSum += wa
			maxSum += wb
		} else {
			minSum += wb
			maxSum += wa
		}
		if wa > 0 && wb > 0 {
			shared = append(shared, name)
		}
	}

	sort.SliceStable(shared, func(i, j int) bool {
		return a[shared[i]]+b[shared[i]] > a[shared[j]]+b[shared[j]]
	})

	if maxSum == 0 {
		return OverlapResult{Shared: shared}
	}
	return OverlapResult{Score: minSum / maxSum, Shared: shared}
}

func positiveSum(m map[string]int) int {
	total := 0
	for _, w := range m {
		if w > 0 {
			total += w
		}
	}
	return total
}

func normalised(w, total int) float64 {
	if w <= 0 {
		return 0
	}
	return float64(w) / float64(total)
}
