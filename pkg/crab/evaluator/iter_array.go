package evaluator

// ArrayIter walks a snapshot of an array's elements. Each handle owns its
// cursor; the elements are shared.
type ArrayIter struct {
	baseIter
	elements []Value
	index    int
	dir      Direction
}

// NewArrayIter creates an iter over elements, front to back.
func NewArrayIter(elements []Value) *ArrayIter {
	return &ArrayIter{elements: elements}
}

func (a *ArrayIter) Kind() IterKind { return IterOwner }

func (a *ArrayIter) Next() (Value, bool) {
	v, ok := a.GetIndexed(a.index)
	if ok {
		a.index++
	} else {
		a.index = len(a.elements)
	}
	return v, ok
}

func (a *ArrayIter) GetIndexed(i int) (Value, bool) {
	if i < 0 || i >= len(a.elements) {
		return nil, false
	}
	if a.dir == Negative {
		i = len(a.elements) - 1 - i
	}
	return a.elements[i].Clone(), true
}

func (a *ArrayIter) Acquire() Iter {
	clone := *a
	return &clone
}

func (a *ArrayIter) Rewind() bool {
	a.index = 0
	return true
}

func (a *ArrayIter) Rewound() (Iter, bool) {
	clone := *a
	clone.index = 0
	return &clone, true
}

func (a *ArrayIter) Reverse() bool {
	a.dir = a.dir.flip()
	a.index = 0
	return true
}

func (a *ArrayIter) Reversed() (Iter, bool) {
	clone := *a
	clone.Reverse()
	return &clone, true
}

func (a *ArrayIter) Remaining() (int, bool) {
	return len(a.elements) - a.index, true
}

func (a *ArrayIter) Pos() (int, bool) {
	return a.index, true
}
