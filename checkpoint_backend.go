package unicodeindex

// checkpointSearch locates the checkpoint pair bracketing a 1-based target
// position.
type checkpointSearch interface {
	// Bracket returns the smallest i with chars[i] < target <= chars[i+1].
	// It returns false if the target is beyond the last checkpoint.
	Bracket(s *checkpointStore, target int) (int, bool)
	Name() string
}

// SearchStrategy selects how the checkpoint cache is searched.
type SearchStrategy int

const (
	// BinarySearch bisects the checkpoint list, O(log n) in the number of checkpoints.
	BinarySearch SearchStrategy = iota
	// LinearSearch scans the checkpoint list from the start of the text.
	LinearSearch
)

func (strategy SearchStrategy) String() string {
	return strategy.backend().Name()
}

func (strategy SearchStrategy) backend() checkpointSearch {
	if strategy == LinearSearch {
		return linearSearch{}
	}
	return binarySearch{}
}

// CacheStats reports on the state of the checkpoint cache.
type CacheStats struct {
	Strategy     string // name of the search strategy
	Checkpoints  int    // number of checkpoints, including the start-of-text sentinel
	CoveredBytes int    // byte offset of the last checkpoint
	CoveredChars int    // character index of the last checkpoint
	Size         int    // size of the buffer in bytes
	Exhausted    bool   // the cache has been extended up to the end of the buffer
	TotalChars   int    // number of characters in the buffer, if Exhausted
}

// Coverage is the share of the buffer up to the last checkpoint.
func (s CacheStats) Coverage() float64 {
	if s.Size == 0 {
		return 1
	}
	return float64(s.CoveredBytes) / float64(s.Size)
}
