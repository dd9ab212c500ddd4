package evaluator

// IterKind says what acquiring a new handle on an iter means.
type IterKind int

const (
	// IterOwner iters give each handle its own cursor over shared data.
	IterOwner IterKind = iota
	// IterHandle iters share one cursor between all handles.
	IterHandle
	// IterConsuming iters can be read once.
	IterConsuming
)

func (k IterKind) String() string {
	switch k {
	case IterOwner:
		return "owner"
	case IterHandle:
		return "handle"
	case IterConsuming:
		return "consuming"
	}
	return "unknown"
}

// Direction is the order an iter walks its elements in.
type Direction int

const (
	Positive Direction = iota
	Negative
)

func (d Direction) flip() Direction {
	if d == Positive {
		return Negative
	}
	return Positive
}

// Iter is the protocol every iterator implements. Exhaustion is sticky: once
// Next reports false it keeps doing so until the iter is rewound. Reverse
// always rewinds.
type Iter interface {
	Next() (Value, bool)
	GetIndexed(i int) (Value, bool)
	Kind() IterKind
	Acquire() Iter

	// Rewind resets the cursor in place; Rewound returns a rewound copy.
	Rewind() bool
	Rewound() (Iter, bool)
	// Reverse flips direction in place; Reversed returns a reversed copy.
	Reverse() bool
	Reversed() (Iter, bool)

	Remaining() (int, bool)
	Pos() (int, bool)
}

// baseIter supplies the unsupported answer for optional operations.
type baseIter struct{}

func (baseIter) GetIndexed(int) (Value, bool) { return nil, false }
func (baseIter) Rewind() bool                 { return false }
func (baseIter) Rewound() (Iter, bool)        { return nil, false }
func (baseIter) Reverse() bool                { return false }
func (baseIter) Reversed() (Iter, bool)       { return nil, false }
func (baseIter) Remaining() (int, bool)       { return 0, false }
func (baseIter) Pos() (int, bool)             { return 0, false }

// toIter coerces v for iteration: arrays get a fresh array iter and iterators
// pass through.
func toIter(v Value) (*Iterator, bool) {
	switch v := v.(type) {
	case *Iterator:
		return v, true
	case *Array:
		return NewIterator(NewArrayIter(v.Elements)), true
	}
	return nil, false
}

// collect drains it into a slice.
func collect(it *Iterator) []Value {
	var out []Value
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
