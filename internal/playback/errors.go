package playback

import "errors"

var errLiveEnded = errors.New("live stream ended")

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
