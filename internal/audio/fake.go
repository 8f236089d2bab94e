package audio

import "sync"

// Load records one call to Fake.Load.
type Load struct {
	Gen uint64
	URL string
}

// Fake is an in-memory Output for tests. It records every call and never
// emits events on its own; tests drive it with Emit and the helpers below.
type Fake struct {
	mu       sync.Mutex
	listener Listener

	Loads   []Load
	Plays   int
	Pauses  int
	Stops   int
	Seeks   []float64
	Volume  int
	Volumes []int
	Closed  bool

	// PlayErr, when set, is returned from Play.
	PlayErr error
	// LoadErr, when set, is returned from Load.
	LoadErr error

	// SeekNeedsPlay drops seeks issued after a Load and before the next Play,
	// like libVLC does for media that has not started.
	SeekNeedsPlay bool
	DroppedSeeks  []float64
	started       bool
}

// NewFake returns an empty fake output.
func NewFake() *Fake {
	return &Fake{Volume: -1}
}

func (f *Fake) SetListener(fn Listener) {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
}

func (f *Fake) Load(gen uint64, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.Loads = append(f.Loads, Load{Gen: gen, URL: url})
	f.started = false
	return nil
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Plays++
	if f.PlayErr == nil {
		f.started = true
	}
	return f.PlayErr
}

func (f *Fake) Pause() {
	f.mu.Lock()
	f.Pauses++
	f.mu.Unlock()
}

func (f *Fake) Seek(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SeekNeedsPlay && !f.started {
		f.DroppedSeeks = append(f.DroppedSeeks, seconds)
		return
	}
	f.Seeks = append(f.Seeks, seconds)
}

func (f *Fake) SetVolume(percent int) {
	f.mu.Lock()
	f.Volume = percent
	f.Volumes = append(f.Volumes, percent)
	f.mu.Unlock()
}

func (f *Fake) Stop() {
	f.mu.Lock()
	f.Stops++
	f.started = false
	f.mu.Unlock()
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Emit delivers ev to the listener synchronously.
func (f *Fake) Emit(ev Event) {
	f.mu.Lock()
	fn := f.listener
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// LastLoad returns the most recent Load call.
func (f *Fake) LastLoad() (Load, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Loads) == 0 {
		return Load{}, false
	}
	return f.Loads[len(f.Loads)-1], true
}

// Gen returns the generation of the most recent load, or 0.
func (f *Fake) Gen() uint64 {
	l, _ := f.LastLoad()
	return l.Gen
}

// Ready reports the current load as ready with the given duration.
func (f *Fake) Ready(duration float64) {
	f.Emit(Event{Kind: EventReady, Gen: f.Gen(), Duration: duration})
}

// Playing reports the current load as playing.
func (f *Fake) Playing() { f.Emit(Event{Kind: EventPlaying, Gen: f.Gen()}) }

// Fail reports an error for the current load.
func (f *Fake) Fail(err error) { f.Emit(Event{Kind: EventError, Gen: f.Gen(), Err: err}) }

// Progress reports the playback position for the current load.
func (f *Fake) Progress(position, duration float64) {
	f.Emit(Event{Kind: EventProgress, Gen: f.Gen(), Position: position, Duration: duration})
}

// Counts returns the number of play and pause calls so far.
func (f *Fake) Counts() (plays, pauses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Plays, f.Pauses
}

// LastSeek returns the most recent seek target.
func (f *Fake) LastSeek() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Seeks) == 0 {
		return 0, false
	}
	return f.Seeks[len(f.Seeks)-1], true
}
