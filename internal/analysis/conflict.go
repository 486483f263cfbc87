package analysis

import "strings"

// TagPair is two tags that should not be recommended across each other.
type TagPair struct {
	A, B string
}

// ConflictTable is a curated, symmetric set of incompatible tag pairs.
// Lookups ignore case. A nil table has no conflicts.
type ConflictTable struct {
	pairs map[[2]string]struct{}
}

func NewConflictTable(pairs ...TagPair) *ConflictTable {
	t := &ConflictTable{pairs: make(map[[2]string]struct{}, len(pairs))}
	for _, p := range pairs {
		t.pairs[pairKey(p.A, p.B)] = struct{}{}
	}
	return t
}

// DefaultConflicts is the tone table shipped with the worker.
func DefaultConflicts() *ConflictTable {
	return NewConflictTable(
		TagPair{"Relaxing", "Horror"},
		TagPair{"Relaxing", "Survival Horror"},
		TagPair{"Relaxing", "Psychological Horror"},
		TagPair{"Cozy", "Horror"},
		TagPair{"Cozy", "Gore"},
		TagPair{"Wholesome", "Gore"},
		TagPair{"Wholesome", "Horror"},
		TagPair{"Family Friendly", "Gore"},
		TagPair{"Family Friendly", "Nudity"},
		TagPair{"Family Friendly", "Sexual Content"},
		TagPair{"Cute", "Psychological Horror"},
		TagPair{"Casual", "Souls-like"},
	)
}

// Len returns the number of pairs in the table.
func (t *ConflictTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.pairs)
}

// Conflicts reports whether a and b form a curated pair, in either order.
func (t *ConflictTable) Conflicts(a, b string) bool {
	if t == nil {
		return false
	}
	_, ok := t.pairs[pairKey(a, b)]
	return ok
}

// HasVibeConflict reports whether any source tag conflicts with any target tag.
func (t *ConflictTable) HasVibeConflict(sourceTop, targetTop []string) bool {
	if t.Len() == 0 {
		return false
	}
	for _, s := range sourceTop {
		for _, c := range targetTop {
			if t.Conflicts(s, c) {
				return true
			}
		}
	}
	return false
}

func pairKey(a, b string) [2]string {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
