package evaluator

// MapIter applies a function to each element of an inner iterator. The
// function is called as fn(elem, extra...).
type MapIter struct {
	baseIter
	rt     *Runtime
	inner  *Iterator
	action Callable
	extra  []Value
}

// NewMapIter maps action over inner.
func NewMapIter(rt *Runtime, inner *Iterator, action Callable, extra []Value) *MapIter {
	return &MapIter{rt: rt, inner: inner, action: action, extra: extra}
}

func (m *MapIter) Kind() IterKind { return IterHandle }

func (m *MapIter) apply(v Value) Value {
	args := make([]Value, 0, len(m.extra)+1)
	args = append(args, v)
	for _, e := range m.extra {
		args = append(args, e.Clone())
	}
	return m.action.Call(m.rt, args)
}

func (m *MapIter) Next() (Value, bool) {
	v, ok := m.inner.Next()
	if !ok {
		return nil, false
	}
	return m.apply(v), true
}

func (m *MapIter) GetIndexed(i int) (Value, bool) {
	var (
		v  Value
		ok bool
	)
	m.inner.with(func(it Iter) { v, ok = it.GetIndexed(i) })
	if !ok {
		return nil, false
	}
	return m.apply(v), true
}

func (m *MapIter) with(inner *Iterator) *MapIter {
	return &MapIter{rt: m.rt, inner: inner, action: m.action, extra: m.extra}
}

func (m *MapIter) Acquire() Iter {
	inner := m.inner.Clone().(*Iterator)
	if inner == m.inner {
		return m
	}
	return m.with(inner)
}

func (m *MapIter) Rewind() bool {
	var ok bool
	m.inner.with(func(it Iter) { ok = it.Rewind() })
	return ok
}

func (m *MapIter) Rewound() (Iter, bool) {
	var (
		inner Iter
		ok    bool
	)
	m.inner.with(func(it Iter) { inner, ok = it.Rewound() })
	if !ok {
		return nil, false
	}
	return m.with(NewIterator(inner)), true
}

func (m *MapIter) Reverse() bool {
	var ok bool
	m.inner.with(func(it Iter) { ok = it.Reverse() })
	return ok
}

func (m *MapIter) Reversed() (Iter, bool) {
	var (
		inner Iter
		ok    bool
	)
	m.inner.with(func(it Iter) { inner, ok = it.Reversed() })
	if !ok {
		return nil, false
	}
	return m.with(NewIterator(inner)), true
}

func (m *MapIter) Remaining() (int, bool) {
	var (
		n  int
		ok bool
	)
	m.inner.with(func(it Iter) { n, ok = it.Remaining() })
	return n, ok
}

func (m *MapIter) Pos() (int, bool) {
	var (
		n  int
		ok bool
	)
	m.inner.with(func(it Iter) { n, ok = it.Pos() })
	return n, ok
}
