package wire

import (
	"net/netip"
)

// IPv4 writes a netip.Addr as a little-endian u32 — the dotted-quad
// octets in reverse order relative to network byte order (spec §4.1).
func (e *Encoder) IPv4(addr netip.Addr) {
	a4 := addr.As4()
	e.Raw([]byte{a4[3], a4[2], a4[1], a4[0]})
}

func (d *Decoder) IPv4() (netip.Addr, error) {
	b, err := d.Raw(4)
	if err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom4([4]byte{b[3], b[2], b[1], b[0]}), nil
}

// IPv6 writes 16 raw bytes in network order (spec §4.1).
func (e *Encoder) IPv6(addr netip.Addr) {
	b := addr.As16()
	e.Raw(b[:])
}

func (d *Decoder) IPv6() (netip.Addr, error) {
	b, err := d.Raw(16)
	if err != nil {
		return netip.Addr{}, err
	}
	var a [16]byte
	copy(a[:], b)
	return netip.AddrFrom16(a), nil
}
