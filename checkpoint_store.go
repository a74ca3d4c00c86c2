package unicodeindex

import "fmt"

const initialCheckpointSlots = 64

// Checkpoint records that the character with index CharIndex starts at byte
// ByteOffset. Apart from the sentinel (0, 0), checkpoints mark the first
// character of a line, i.e., the byte after a line feed.
type Checkpoint struct {
	ByteOffset int
	CharIndex  int
}

func (cp Checkpoint) String() string {
	return fmt.Sprintf("(%d,%d)", cp.ByteOffset, cp.CharIndex)
}

// checkpointStore is an append-only list of checkpoints, strictly increasing
// in both coordinates. Coordinates are kept in two parallel slices, which lets
// search backends work on the character indices alone.
type checkpointStore struct {
	bytes []int // will grow with demand
	chars []int // will grow with demand
}

// newCheckpointStore creates a store holding the start-of-text sentinel.
func newCheckpointStore() *checkpointStore {
	s := &checkpointStore{
		bytes: make([]int, 1, initialCheckpointSlots),
		chars: make([]int, 1, initialCheckpointSlots),
	}
	return s
}

// Len returns the number of checkpoints, including the sentinel.
func (s *checkpointStore) Len() int {
	return len(s.chars)
}

// At returns checkpoint #i.
func (s *checkpointStore) At(i int) Checkpoint {
	return Checkpoint{ByteOffset: s.bytes[i], CharIndex: s.chars[i]}
}

// Last returns the checkpoint furthest into the text.
func (s *checkpointStore) Last() Checkpoint {
	return s.At(len(s.chars) - 1)
}

// Append adds a checkpoint behind the last one. Checkpoints not strictly
// increasing in both coordinates violate the store invariant.
func (s *checkpointStore) Append(cp Checkpoint) {
	last := s.Last()
	assert(cp.ByteOffset > last.ByteOffset && cp.CharIndex > last.CharIndex,
		fmt.Sprintf("checkpoint %v does not follow %v", cp, last))
	s.bytes = append(s.bytes, cp.ByteOffset)
	s.chars = append(s.chars, cp.CharIndex)
}

// Snapshot returns a copy of all checkpoints in order.
func (s *checkpointStore) Snapshot() []Checkpoint {
	cps := make([]Checkpoint, len(s.chars))
	for i := range cps {
		cps[i] = s.At(i)
	}
	return cps
}
