package transport

import "net/netip"

type Family int

const (
	FamilyIPv4 Family = iota
	// FamilyIPv6 opens a dual-stack socket that can also reach IPv4 peers.
	FamilyIPv6
)

func (f Family) String() string {
	if f == FamilyIPv6 {
		return "ipv6"
	}
	return "ipv4"
}

type Socket interface {
	SetReuseAddress(enable bool) error
	SetNonblocking(enable bool) error
	SendTo(b []byte, dst netip.AddrPort) error
	Close() error
}

type Opener interface {
	Open(family Family) (Socket, error)
}
