//go:build unix

package transport

import (
	"fmt"
	"net"
	"net/netip"
	"syscall"

	"github.com/foxseedlab/voicesatellite/internal/transport"
	"golang.org/x/sys/unix"
)

type udpSocket struct {
	conn   *net.UDPConn
	raw    syscall.RawConn
	family transport.Family
}

func newUDPSocket(conn *net.UDPConn, family transport.Family) (transport.Socket, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("get syscall conn: %w", err)
	}
	return &udpSocket{conn: conn, raw: raw, family: family}, nil
}

func (s *udpSocket) SetReuseAddress(enable bool) error {
	return s.control(func(fd int) error {
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, boolToInt(enable))
	})
}

func (s *udpSocket) SetNonblocking(enable bool) error {
	return s.control(func(fd int) error {
		return unix.SetNonblock(fd, enable)
	})
}

// SendTo issues a single sendto(2). When the socket buffer is full the
// datagram is dropped and EAGAIN is returned instead of waiting.
func (s *udpSocket) SendTo(b []byte, dst netip.AddrPort) error {
	sa, err := s.sockaddr(dst)
	if err != nil {
		return err
	}
	var sendErr error
	if err := s.raw.Write(func(fd uintptr) bool {
		sendErr = unix.Sendto(int(fd), b, 0, sa)
		return true
	}); err != nil {
		return err
	}
	return sendErr
}

func (s *udpSocket) Close() error {
	return s.conn.Close()
}

func (s *udpSocket) control(fn func(fd int) error) error {
	var opErr error
	if err := s.raw.Control(func(fd uintptr) {
		opErr = fn(int(fd))
	}); err != nil {
		return err
	}
	return opErr
}

func (s *udpSocket) sockaddr(dst netip.AddrPort) (unix.Sockaddr, error) {
	addr := dst.Addr()
	if s.family == transport.FamilyIPv6 {
		return &unix.SockaddrInet6{Port: int(dst.Port()), Addr: addr.As16()}, nil
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return nil, fmt.Errorf("ipv4 socket cannot send to %s", dst)
	}
	return &unix.SockaddrInet4{Port: int(dst.Port()), Addr: addr.As4()}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
