package pipeline

import (
	"context"
	"errors"
	"net/netip"
)

var ErrNotConnected = errors.New("pipeline: control channel is not connected")

// Handler receives what the remote pipeline pushes to the satellite.
type Handler interface {
	// Start is called once the remote side has accepted a run and chosen
	// where the audio should be sent.
	Start(addr netip.Addr, port uint16)
	HandleEvent(ctx context.Context, rec Record)
}

type Client interface {
	Connect(ctx context.Context) error
	RequestStart(ctx context.Context) error
	NotifyStop(ctx context.Context) error
	// Serve reads from the control channel until the connection drops or ctx
	// is canceled.
	Serve(ctx context.Context, handler Handler) error
	Close() error
}
