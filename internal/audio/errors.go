package audio

import "errors"

// ErrNothingLoaded is returned by Play when no media has been loaded.
var ErrNothingLoaded = errors.New("no media loaded")
