package session

import (
	"log/slog"
	"sync/atomic"
)

const sendFailureLogEvery = 500

type Stats struct {
	ForwardedPackets int64
	ForwardedBytes   int64
	SendFailures     int64
}

// forwarder is the sink registered with the capture device. It sends each
// buffer as one datagram while the session is running and drops it
// otherwise.
type forwarder struct {
	controller *Controller

	packets  atomic.Int64
	bytes    atomic.Int64
	failures atomic.Int64
}

func (f *forwarder) OnAudio(buf []byte) {
	dst := f.controller.destination.Load()
	if dst == nil {
		return
	}
	if err := f.controller.socket.SendTo(buf, *dst); err != nil {
		n := f.failures.Add(1)
		if n == 1 || n%sendFailureLogEvery == 0 {
			slog.Warn("failed to send audio datagram", "error", err, "destination", dst.String(), "total_failures", n)
		}
		return
	}
	f.packets.Add(1)
	f.bytes.Add(int64(len(buf)))
}

func (f *forwarder) stats() Stats {
	return Stats{
		ForwardedPackets: f.packets.Load(),
		ForwardedBytes:   f.bytes.Load(),
		SendFailures:     f.failures.Load(),
	}
}

func (f *forwarder) resetStats() {
	f.packets.Store(0)
	f.bytes.Store(0)
	f.failures.Store(0)
}
