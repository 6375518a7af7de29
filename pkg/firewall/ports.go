// pkg/firewall/ports.go

package firewall

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
)

// Port is a single port or an inclusive range with its protocol.
type Port struct {
	From, To int
	Proto    string
}

// ParsePort accepts N, N/proto, N-M and N-M/proto. The protocol defaults to tcp.
func ParsePort(spec string) (Port, error) {
	spec = strings.TrimSpace(spec)
	num, proto, hasProto := strings.Cut(spec, "/")
	if !hasProto {
		proto = "tcp"
	}
	proto = strings.ToLower(proto)
	switch proto {
	case "tcp", "udp", "sctp", "dccp":
	default:
		return Port{}, invalidPort(spec, "unknown protocol "+proto)
	}

	lo, hi, isRange := strings.Cut(num, "-")
	from, err := strconv.Atoi(lo)
	if err != nil {
		return Port{}, invalidPort(spec, "not a number")
	}
	to := from
	if isRange {
		if to, err = strconv.Atoi(hi); err != nil {
			return Port{}, invalidPort(spec, "range end is not a number")
		}
	}
	if from < 1 || to > 65535 || from > to {
		return Port{}, invalidPort(spec, "outside 1-65535")
	}
	return Port{From: from, To: to, Proto: proto}, nil
}

// ParsePorts parses every spec, failing on the first invalid one.
func ParsePorts(specs []string) ([]Port, error) {
	ports := make([]Port, 0, len(specs))
	for _, s := range specs {
		p, err := ParsePort(s)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func invalidPort(spec, why string) error {
	return nyx_err.NewValidationError(fmt.Sprintf("invalid firewall port %q: %s", spec, why))
}

// String renders firewalld syntax: 443/tcp, 9000-9010/udp.
func (p Port) String() string {
	if p.From == p.To {
		return fmt.Sprintf("%d/%s", p.From, p.Proto)
	}
	return fmt.Sprintf("%d-%d/%s", p.From, p.To, p.Proto)
}

// UFW renders ufw syntax, which uses a colon for ranges.
func (p Port) UFW() string {
	if p.From == p.To {
		return fmt.Sprintf("%d/%s", p.From, p.Proto)
	}
	return fmt.Sprintf("%d:%d/%s", p.From, p.To, p.Proto)
}
