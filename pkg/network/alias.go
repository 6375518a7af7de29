// pkg/network/alias.go

package network

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
)

// Alias is a secondary address to bind to an interface.
type Alias struct {
	IP     netip.Addr
	Prefix int
}

// ParseAlias validates ip and prefix. An IP given in CIDR form keeps its own prefix.
func ParseAlias(ip string, prefix int) (Alias, error) {
	ip = strings.TrimSpace(ip)
	if p, err := netip.ParsePrefix(ip); err == nil {
		return Alias{IP: p.Addr(), Prefix: p.Bits()}, nil
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return Alias{}, nyx_err.NewValidationError(fmt.Sprintf("invalid alias ip %q: %v", ip, err))
	}
	if addr.Zone() != "" {
		return Alias{}, nyx_err.NewValidationError(fmt.Sprintf("alias ip %q must not carry a zone", ip))
	}
	if prefix < 0 || prefix > addr.BitLen() {
		return Alias{}, nyx_err.NewValidationError(
			fmt.Sprintf("alias prefix /%d out of range for %s (0-%d)", prefix, ip, addr.BitLen()))
	}
	return Alias{IP: addr, Prefix: prefix}, nil
}

// String renders IP/PREFIX, the form ip(8) and nmcli expect.
func (a Alias) String() string {
	return netip.PrefixFrom(a.IP, a.Prefix).String()
}

// nmcliProperty is the connection property holding addresses of a's family.
func (a Alias) nmcliProperty() string {
	if a.IP.Is4() {
		return "ipv4.addresses"
	}
	return "ipv6.addresses"
}
