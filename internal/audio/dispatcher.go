package audio

import "sync"

// Dispatcher delivers events to a Listener from one goroutine, in the order
// they were posted. Post never blocks, so it is safe to call from native
// callbacks and from inside output methods.
type Dispatcher struct {
	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.RWMutex
	listener Listener
	dropped  int
}

// NewDispatcher starts a dispatcher with the given queue size.
func NewDispatcher(buffer int) *Dispatcher {
	d := &Dispatcher{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// SetListener replaces the event receiver.
func (d *Dispatcher) SetListener(fn Listener) {
	d.mu.Lock()
	d.listener = fn
	d.mu.Unlock()
}

// Post queues ev. It reports false when the queue is full and the event was
// dropped.
func (d *Dispatcher) Post(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.events <- ev:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		return false
	}
}

// Dropped returns the number of events lost to a full queue.
func (d *Dispatcher) Dropped() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropped
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case ev := <-d.events:
			d.mu.RLock()
			fn := d.listener
			d.mu.RUnlock()
			if fn != nil {
				fn(ev)
			}
		}
	}
}

// Close stops delivery and waits for the dispatch goroutine. Queued events
// are discarded.
func (d *Dispatcher) Close() {
	select {
	case <-d.done:
		return
	default:
		close(d.done)
	}
	d.wg.Wait()
}
