package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/foxseedlab/voicesatellite/internal/audio"
	"github.com/foxseedlab/voicesatellite/internal/notify"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
	"github.com/foxseedlab/voicesatellite/internal/transport"
)

const (
	ErrorCodeNotConnected    = "not-connected"
	ErrorMessageNotConnected = "Could not request start."
)

var ErrSetupFailed = errors.New("voice session setup failed")

type State int

const (
	StateIdle State = iota
	StateRequesting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

type Options struct {
	IPv6Enabled bool
	// StopOnRunEnd tears the session down when the pipeline reports run-end.
	StopOnRunEnd bool
}

// Controller owns the single voice session of the process.
type Controller struct {
	opts     Options
	capture  audio.Capture
	pipeline pipeline.Client
	socket   transport.Socket

	dispatcher *Dispatcher
	forwarder  *forwarder

	mu    sync.Mutex
	state State

	// destination is nil whenever the session is not running.
	destination atomic.Pointer[netip.AddrPort]
}

func NewController(opts Options, capture audio.Capture, opener transport.Opener, pc pipeline.Client, triggers notify.Triggers) (*Controller, error) {
	family := transport.FamilyIPv4
	if opts.IPv6Enabled {
		family = transport.FamilyIPv6
	}
	sock, err := opener.Open(family)
	if err != nil {
		slog.Error("could not create datagram socket", "error", err, "family", family.String())
		return nil, fmt.Errorf("%w: create socket: %v", ErrSetupFailed, err)
	}
	if err := sock.SetReuseAddress(true); err != nil {
		slog.Warn("socket unable to set reuse address; continuing", "error", err)
	}
	if err := sock.SetNonblocking(true); err != nil {
		slog.Error("socket unable to set nonblocking mode", "error", err)
		_ = sock.Close()
		return nil, fmt.Errorf("%w: set nonblocking: %v", ErrSetupFailed, err)
	}

	c := &Controller{
		opts:       opts,
		capture:    capture,
		pipeline:   pc,
		socket:     sock,
		dispatcher: NewDispatcher(triggers),
	}
	c.forwarder = &forwarder{controller: c}
	capture.RegisterSink(c.forwarder)
	slog.Info("voice session initialized", "family", family.String(), "stop_on_run_end", opts.StopOnRunEnd)
	return c, nil
}

// RequestStart asks the remote pipeline to begin a run. The session only
// starts forwarding once the pipeline answers through Start.
func (c *Controller) RequestStart(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		slog.Info("start requested while session is active; ignoring", "session_state", state.String())
		return
	}
	c.state = StateRequesting
	c.mu.Unlock()

	slog.Debug("requesting pipeline start")
	if err := c.pipeline.RequestStart(ctx); err != nil {
		c.mu.Lock()
		if c.state == StateRequesting {
			c.state = StateIdle
		}
		c.mu.Unlock()
		slog.Warn("could not request pipeline start", "error", err)
		c.dispatcher.triggers.Error(ErrorCodeNotConnected, ErrorMessageNotConnected)
	}
}

// Start implements pipeline.Handler.
func (c *Controller) Start(addr netip.Addr, port uint16) {
	slog.Debug("starting voice session", "address", addr.String(), "port", port)
	addr = addr.Unmap()
	if !c.supportsAddress(addr) {
		slog.Warn("unknown address family; start aborted", "address", addr.String(), "ipv6_enabled", c.opts.IPv6Enabled)
		c.abortStart()
		return
	}
	if port == 0 {
		slog.Warn("pipeline sent no audio port; start aborted", "address", addr.String())
		c.abortStart()
		return
	}

	dst := netip.AddrPortFrom(addr, port)
	c.mu.Lock()
	wasRunning := c.state == StateRunning
	c.destination.Store(&dst)
	c.state = StateRunning
	c.mu.Unlock()

	if wasRunning {
		slog.Info("voice session destination updated", "destination", dst.String())
		return
	}
	c.forwarder.resetStats()
	if err := c.capture.Start(); err != nil && !errors.Is(err, audio.ErrAlreadyCapturing) {
		slog.Error("failed to start audio capture", "error", err)
		c.SignalStop(context.Background())
		return
	}
	slog.Info("voice session running", "destination", dst.String())
}

// abortStart drops a pending request. A running session keeps its
// destination.
func (c *Controller) abortStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRequesting {
		c.state = StateIdle
	}
}

// SignalStop tears the session down. It is safe to call in any state.
func (c *Controller) SignalStop(ctx context.Context) {
	slog.Debug("signaling stop")
	if err := c.capture.Stop(); err != nil {
		slog.Warn("failed to stop audio capture", "error", err)
	}

	c.mu.Lock()
	prev := c.state
	c.state = StateIdle
	c.destination.Store(nil)
	c.mu.Unlock()

	if prev == StateIdle {
		return
	}
	if err := c.pipeline.NotifyStop(ctx); err != nil {
		slog.Warn("failed to notify pipeline of stop", "error", err)
	}
	stats := c.forwarder.stats()
	slog.Info("voice session stopped",
		"previous_state", prev.String(),
		"forwarded_packets", stats.ForwardedPackets,
		"forwarded_bytes", stats.ForwardedBytes,
		"send_failures", stats.SendFailures)
}

// HandleEvent implements pipeline.Handler.
func (c *Controller) HandleEvent(ctx context.Context, rec pipeline.Record) {
	ev := pipeline.Decode(rec)
	c.dispatcher.Dispatch(ev)
	if _, ok := ev.(pipeline.RunEnd); ok && c.opts.StopOnRunEnd {
		c.SignalStop(ctx)
	}
}

func (c *Controller) Running() bool {
	return c.destination.Load() != nil
}

// Destination returns the zero AddrPort while the session is not running.
func (c *Controller) Destination() netip.AddrPort {
	if dst := c.destination.Load(); dst != nil {
		return *dst
	}
	return netip.AddrPort{}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Stats() Stats {
	return c.forwarder.stats()
}

// Shutdown releases the socket. It is called by the injector at process
// teardown.
func (c *Controller) Shutdown() error {
	c.SignalStop(context.Background())
	return c.socket.Close()
}

func (c *Controller) supportsAddress(addr netip.Addr) bool {
	if addr.Is4() {
		return true
	}
	return addr.Is6() && c.opts.IPv6Enabled
}
