package audio

import "errors"

var ErrAlreadyCapturing = errors.New("audio: already capturing")

// Sink receives captured PCM at the device's natural cadence. The buffer is
// only valid for the duration of the call.
type Sink interface {
	OnAudio(buf []byte)
}

type Capture interface {
	Start() error
	Stop() error
	RegisterSink(sink Sink)
}
