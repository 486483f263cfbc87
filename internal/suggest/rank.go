package suggest

import "sort"

// Merge combines candidate lists keyed by app id. A duplicate replaces the
// kept entry only when its score is strictly higher. excludeID is never kept.
// Output order is first appearance.
func Merge(excludeID int, lists ...[]*Candidate) []*Candidate {
	index := make(map[int]int)
	var out []*Candidate
	for _, list := range lists {
		for _, c := range list {
			if c == nil || c.AppID == excludeID {
				continue
			}
			if i, ok := index[c.AppID]; ok {
				if c.Score > out[i].Score {
					out[i] = c
				}
				continue
			}
			index[c.AppID] = len(out)
			out = append(out, c)
		}
	}
	if out == nil {
		out = []*Candidate{}
	}
	return out
}

// Rank orders candidates same-developer first, then indie first, then by
// score descending, and truncates to limit. The input slice is reordered.
func Rank(cands []*Candidate, limit int) []*Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if sa, sb := a.Source == SourceSameDeveloper, b.Source == SourceSameDeveloper; sa != sb {
			return sa
		}
		if a.IsIndie != b.IsIndie {
			return a.IsIndie
		}
		return a.Score > b.Score
	})
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	return cands
}
