package transport

import (
	"fmt"
	"net"

	"github.com/foxseedlab/voicesatellite/internal/transport"
)

type UDPOpener struct{}

func NewUDPOpener() transport.Opener {
	return UDPOpener{}
}

// Open binds an ephemeral local port. The socket is only used for sending.
func (UDPOpener) Open(family transport.Family) (transport.Socket, error) {
	network := "udp4"
	laddr := &net.UDPAddr{IP: net.IPv4zero}
	if family == transport.FamilyIPv6 {
		network = "udp"
		laddr = &net.UDPAddr{IP: net.IPv6unspecified}
	}
	conn, err := net.ListenUDP(network, laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", network, err)
	}
	return newUDPSocket(conn, family)
}
