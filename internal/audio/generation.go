package audio

import "sync"

// Generation is the load tag a backend stamps on events raised from native
// callbacks.
type Generation struct {
	mu  sync.Mutex
	gen uint64
}

// Current returns the tag for events raised now.
func (g *Generation) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// Replace runs swap, which must tear down the old media and install the new
// one, and only then advances to gen. Events the old media raises while it is
// being stopped keep the old tag and are discarded as stale. When swap fails
// the tag is left unchanged.
func (g *Generation) Replace(gen uint64, swap func() error) error {
	if err := swap(); err != nil {
		return err
	}
	g.mu.Lock()
	g.gen = gen
	g.mu.Unlock()
	return nil
}
