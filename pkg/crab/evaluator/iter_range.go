package evaluator

import "sync"

// rangeState is the cursor every handle on a range shares.
type rangeState struct {
	mu    sync.Mutex
	dir   Direction
	low   int64
	high  int64
	index int64
}

// RangeIter counts between two integers. Positive ranges yield low, low+1,
// ... while below high; negative ranges yield high, high-1, ... while above
// low. All handles share one cursor.
type RangeIter struct {
	baseIter
	state *rangeState
}

// NewRangeIter creates a range from a towards b. If a < b it counts up over
// [a, b); otherwise it counts down over (b, a].
func NewRangeIter(a, b int64) *RangeIter {
	s := &rangeState{low: a, high: b, dir: Positive}
	if a >= b {
		s.low, s.high, s.dir = b, a, Negative
	}
	return &RangeIter{state: s}
}

func (r *RangeIter) Kind() IterKind { return IterHandle }

func (r *RangeIter) Acquire() Iter { return r }

func (r *RangeIter) Next() (Value, bool) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	v, ok := r.state.at(r.state.index)
	if ok {
		r.state.index++
	}
	return v, ok
}

func (r *RangeIter) GetIndexed(i int) (Value, bool) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return r.state.at(int64(i))
}

func (s *rangeState) at(i int64) (Value, bool) {
	if i < 0 {
		return nil, false
	}
	switch s.dir {
	case Positive:
		if s.low+i < s.high {
			return &Integer{Value: s.low + i}, true
		}
	case Negative:
		if s.high-i > s.low {
			return &Integer{Value: s.high - i}, true
		}
	}
	return nil, false
}

// reverse flips direction and rewinds. The bounds shift by one so that the
// reversed range yields the same numbers in the opposite order.
func (s *rangeState) reverse() {
	s.dir = s.dir.flip()
	s.index = 0
	if s.dir == Positive {
		s.low++
		s.high++
	} else {
		s.low--
		s.high--
	}
}

func (r *RangeIter) snapshot() *rangeState {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return &rangeState{dir: r.state.dir, low: r.state.low, high: r.state.high, index: r.state.index}
}

func (r *RangeIter) Rewind() bool {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.index = 0
	return true
}

func (r *RangeIter) Rewound() (Iter, bool) {
	s := r.snapshot()
	s.index = 0
	return &RangeIter{state: s}, true
}

func (r *RangeIter) Reverse() bool {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.reverse()
	return true
}

func (r *RangeIter) Reversed() (Iter, bool) {
	s := r.snapshot()
	s.reverse()
	return &RangeIter{state: s}, true
}

func (r *RangeIter) Remaining() (int, bool) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	n := r.state.high - r.state.low - r.state.index
	if n < 0 {
		n = 0
	}
	return int(n), true
}

func (r *RangeIter) Pos() (int, bool) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return int(r.state.index), true
}
