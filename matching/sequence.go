package matching

import "sync/atomic"

// Sequence issues unique, monotonically increasing order IDs. The engine
// owns its sequence so independent engine instances never share id
// streams; deterministic tests can inject their own implementation.
type Sequence interface {
	Next() uint64
}

// NewSequence creates a new Sequence starting from 1.
func NewSequence() Sequence {
	return new(sequence)
}

type sequence struct {
	last atomic.Uint64
}

func (s *sequence) Next() uint64 {
	return s.last.Add(1)
}
