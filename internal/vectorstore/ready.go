package vectorstore

import "sync"

// ReadyGuard serializes one-time backend bootstrap. The first caller runs the
// setup function; concurrent callers block until it finishes. Success is
// memoized for the process lifetime, failure is not, so a later call retries
// the bootstrap instead of caching the error.
type ReadyGuard struct {
	mu   sync.Mutex
	done bool
}

// Do runs fn unless a previous call already succeeded.
func (g *ReadyGuard) Do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	g.done = true
	return nil
}
