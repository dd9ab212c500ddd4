package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Thread is the handle spawn returns.
type Thread struct {
	ID  uuid.UUID
	Raw bool

	done    chan struct{}
	result  Value
	failure any
}

func (t *Thread) Type() ValueType { return THREAD_VAL }
func (t *Thread) Inspect() string { return "Thread(" + t.ID.String() + ")" }
func (t *Thread) Clone() Value    { return t }

// errThreadFailed carries a thread's panic through the errgroup.
type errThreadFailed struct {
	thread *Thread
}

func (e *errThreadFailed) Error() string {
	return fmt.Sprintf("thread %s failed: %v", e.thread.ID, e.thread.failure)
}

func registerThreads(r *Registry) {
	r.Register("sleep", func(_ *Runtime, args []Value) Value {
		arity("sleep", args, 1, 1)
		time.Sleep(time.Duration(expectInt("sleep", args[0])) * time.Millisecond)
		return NONE
	})

	r.Register("spawn", func(rt *Runtime, args []Value) Value {
		arity("spawn", args, 1, -1)
		return rt.spawn(expectCallable("spawn", args[0]), args[1:], false)
	})

	r.Register("raw_spawn", func(rt *Runtime, args []Value) Value {
		arity("raw_spawn", args, 1, -1)
		return rt.spawn(expectCallable("raw_spawn", args[0]), args[1:], true)
	})

	// join waits for every handle. One handle yields its result; several
	// yield an array in argument order.
	r.Register("join", func(_ *Runtime, args []Value) Value {
		arity("join", args, 1, -1)
		threads := make([]*Thread, len(args))
		for i, a := range args {
			t, ok := a.(*Thread)
			if !ok {
				typeMismatch("join", "thread", a)
			}
			if t.Raw {
				fail("STATE-0005", map[string]any{"ID": t.ID.String()})
			}
			threads[i] = t
		}

		if len(threads) == 1 {
			return threads[0].wait()
		}

		if err := joinAll(threads); err != nil {
			var failed *errThreadFailed
			if errors.As(err, &failed) {
				panic(failed.thread.failure)
			}
			panic(err)
		}

		results := make([]Value, len(threads))
		for i, t := range threads {
			results[i] = t.result
		}
		return &Array{Elements: results}
	})
}

// joinAll waits for every thread. Each waiter reports only after the
// waiters before it have passed, so the error returned belongs to the first
// failed thread in argument order; a failure cancels the waiters after it.
func joinAll(threads []*Thread) error {
	g, ctx := errgroup.WithContext(context.Background())
	prev := make(chan struct{})
	close(prev)
	for _, t := range threads {
		before, passed := prev, make(chan struct{})
		prev = passed
		g.Go(func() error {
			select {
			case <-before:
			case <-ctx.Done():
				return nil
			}
			select {
			case <-t.done:
			case <-ctx.Done():
				return nil
			}
			if t.failure != nil {
				return &errThreadFailed{thread: t}
			}
			close(passed)
			return nil
		})
	}
	return g.Wait()
}

// spawn runs fn(args...) on its own goroutine.
func (rt *Runtime) spawn(fn Callable, args []Value, raw bool) *Thread {
	t := &Thread{ID: uuid.New(), Raw: raw, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.failure = r
				if raw {
					rt.reportThreadFailure(t)
				}
			}
		}()
		t.result = fn.Call(rt, args)
	}()
	return t
}

func (rt *Runtime) reportThreadFailure(t *Thread) {
	err, ok := t.failure.(error)
	if !ok {
		err = fmt.Errorf("%v", t.failure)
	}
	if tl, ok := rt.Logger.(ThreadLogger); ok {
		tl.LogThreadFailure(t.ID.String(), err)
		return
	}
	rt.Logger.LogLine(fmt.Sprintf("thread %s: %v", t.ID, err))
}

// wait blocks until t finishes and re-raises its failure.
func (t *Thread) wait() Value {
	<-t.done
	if t.failure != nil {
		panic(t.failure)
	}
	return t.result
}
