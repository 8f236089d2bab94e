package audio

import "sync"

// Null is an output that plays nothing but acknowledges every request as a
// real backend would. It backs `audio.backend = "null"` for headless use.
type Null struct {
	mu     sync.Mutex
	gen    uint64
	loaded bool
	disp   *Dispatcher
}

// NewNull returns a ready Null output.
func NewNull() *Null {
	return &Null{disp: NewDispatcher(16)}
}

func (n *Null) SetListener(fn Listener) { n.disp.SetListener(fn) }

func (n *Null) Load(gen uint64, url string) error {
	n.mu.Lock()
	n.gen, n.loaded = gen, true
	n.mu.Unlock()
	n.disp.Post(Event{Kind: EventReady, Gen: gen})
	return nil
}

func (n *Null) Play() error {
	n.mu.Lock()
	gen, loaded := n.gen, n.loaded
	n.mu.Unlock()
	if !loaded {
		return ErrNothingLoaded
	}
	n.disp.Post(Event{Kind: EventPlaying, Gen: gen})
	return nil
}

func (n *Null) Pause() {
	n.mu.Lock()
	gen, loaded := n.gen, n.loaded
	n.mu.Unlock()
	if loaded {
		n.disp.Post(Event{Kind: EventPaused, Gen: gen})
	}
}

func (n *Null) Seek(float64)  {}
func (n *Null) SetVolume(int) {}

func (n *Null) Stop() {
	n.mu.Lock()
	n.loaded = false
	n.mu.Unlock()
}

func (n *Null) Close() error {
	n.disp.Close()
	return nil
}
