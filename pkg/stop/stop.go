// Package stop implements a pattern for shutting down a group of background
// services once a benchmark run has finished.
package stop

import (
	"sync"
)

// Channel is used to return zero or more errors asynchronously. Call Done()
// once to pass errors to the Channel.
type Channel chan []error

// Result is a receive-only version of Channel. Call Wait() once to receive any
// returned errors.
type Result <-chan []error

// Done sends the non-nil errors, if any, and closes the Channel. It should be
// called exactly once.
func (ch Channel) Done(errs ...error) {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) > 0 {
		ch <- nonNil
	}
	close(ch)
}

// Result converts a Channel to a Result.
func (ch Channel) Result() Result {
	return (<-chan []error)(ch)
}

// Wait blocks until Done() is called on the underlying Channel and returns any
// errors. It should be called exactly once.
func (r Result) Wait() []error {
	return <-r
}

// Stopper is implemented by anything that runs in the background and must
// be shut down.
type Stopper interface {
	// Stop returns immediately and performs the shutdown in a separate
	// goroutine. The Result is closed on a clean shutdown.
	Stop() Result
}

// Group is a collection of Stoppers that can be stopped all at once.
type Group struct {
	stoppers []Stopper
	sync.Mutex
}

// NewGroup allocates a new Group.
func NewGroup() *Group {
	return &Group{}
}

// Add appends a Stopper to the Group.
func (g *Group) Add(s Stopper) {
	g.Lock()
	defer g.Unlock()

	g.stoppers = append(g.stoppers, s)
}

// Stop stops all members of the Group concurrently and collects their
// errors.
func (g *Group) Stop() Result {
	g.Lock()
	defer g.Unlock()

	waits := make([]Result, 0, len(g.stoppers))
	for _, s := range g.stoppers {
		w := s.Stop()
		if w == nil {
			panic("received a nil chan from Stop")
		}
		waits = append(waits, w)
	}

	whenDone := make(Channel)
	go func() {
		var errs []error
		for _, w := range waits {
			errs = append(errs, w.Wait()...)
		}
		whenDone.Done(errs...)
	}()

	return whenDone.Result()
}
