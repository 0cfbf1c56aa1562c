//go:build !unix

package transport

import (
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/transport"
)

const sendDeadline = 5 * time.Millisecond

type udpSocket struct {
	conn *net.UDPConn
}

func newUDPSocket(conn *net.UDPConn, _ transport.Family) (transport.Socket, error) {
	return &udpSocket{conn: conn}, nil
}

func (s *udpSocket) SetReuseAddress(_ bool) error {
	return errors.ErrUnsupported
}

// The runtime poller already keeps the descriptor nonblocking; SendTo bounds
// each write with a short deadline instead.
func (s *udpSocket) SetNonblocking(_ bool) error {
	return nil
}

func (s *udpSocket) SendTo(b []byte, dst netip.AddrPort) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(sendDeadline)); err != nil {
		return err
	}
	_, err := s.conn.WriteToUDPAddrPort(b, dst)
	return err
}

func (s *udpSocket) Close() error {
	return s.conn.Close()
}
