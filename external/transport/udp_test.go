package transport

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/foxseedlab/voicesatellite/internal/transport"
)

func listenLoopback(t *testing.T, network, addr string) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP(network, net.UDPAddrFromAddrPort(netip.MustParseAddrPort(addr)))
	if err != nil {
		t.Skipf("loopback %s unavailable: %v", network, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readDatagram(t *testing.T, conn *net.UDPConn) []byte {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	buf := make([]byte, 2048)
	n, _, err := conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		t.Fatalf("failed to read datagram: %v", err)
	}
	return buf[:n]
}

func TestUDPOpener_SendsIPv4Datagram(t *testing.T) {
	peer := listenLoopback(t, "udp4", "127.0.0.1:0")

	sock, err := NewUDPOpener().Open(transport.FamilyIPv4)
	if err != nil {
		t.Fatalf("failed to open socket: %v", err)
	}
	defer func() { _ = sock.Close() }()
	if err := sock.SetNonblocking(true); err != nil {
		t.Fatalf("failed to set nonblocking: %v", err)
	}

	dst := peer.LocalAddr().(*net.UDPAddr).AddrPort()
	if err := sock.SendTo([]byte("pcm-frame"), dst); err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	if got := string(readDatagram(t, peer)); got != "pcm-frame" {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestUDPOpener_DualStackReachesIPv4Peer(t *testing.T) {
	peer := listenLoopback(t, "udp4", "127.0.0.1:0")

	sock, err := NewUDPOpener().Open(transport.FamilyIPv6)
	if err != nil {
		t.Skipf("ipv6 socket unavailable: %v", err)
	}
	defer func() { _ = sock.Close() }()

	dst := peer.LocalAddr().(*net.UDPAddr).AddrPort()
	if err := sock.SendTo([]byte("mapped"), dst); err != nil {
		t.Skipf("dual-stack send unsupported here: %v", err)
	}
	if got := string(readDatagram(t, peer)); got != "mapped" {
		t.Fatalf("unexpected payload: %q", got)
	}
}
