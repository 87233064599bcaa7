package audio

import "errors"

// ErrDeviceUnavailable is returned when no audio output can be opened. It is
// recoverable: run without sound and pace on the wall clock.
var ErrDeviceUnavailable = errors.New("audio device unavailable")
