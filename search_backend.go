package unicodeindex

import "sort"

// linearSearch walks adjacent checkpoint pairs from the start of the text.
type linearSearch struct{}

func (linearSearch) Name() string { return "linear" }

func (linearSearch) Bracket(s *checkpointStore, target int) (int, bool) {
	for i := 0; i+1 < len(s.chars); i++ {
		if s.chars[i] < target && target <= s.chars[i+1] {
			return i, true
		}
	}
	return 0, false
}

// binarySearch bisects the character indices, which are sorted by construction.
type binarySearch struct{}

func (binarySearch) Name() string { return "binary" }

func (binarySearch) Bracket(s *checkpointStore, target int) (int, bool) {
	j := sort.SearchInts(s.chars, target) // first j with chars[j] >= target
	if j == 0 || j >= len(s.chars) {
		return 0, false
	}
	return j - 1, true
}
