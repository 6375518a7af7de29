//go:build linux

package network

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/vishvananda/netlink"
)

// NetlinkDetector reads the main routing table over netlink.
type NetlinkDetector struct{}

func (NetlinkDetector) DefaultInterface(ctx context.Context) (string, error) {
	for _, family := range []int{netlink.FAMILY_V4, netlink.FAMILY_V6} {
		routes, err := netlink.RouteList(nil, family)
		if err != nil {
			return "", cerr.Wrap(err, "list routes")
		}
		for _, r := range routes {
			if !isDefault(r) {
				continue
			}
			index := r.LinkIndex
			if index == 0 && len(r.MultiPath) > 0 {
				index = r.MultiPath[0].LinkIndex
			}
			if index == 0 {
				continue
			}
			link, err := netlink.LinkByIndex(index)
			if err != nil {
				return "", cerr.Wrapf(err, "resolve link index %d", index)
			}
			return link.Attrs().Name, nil
		}
	}
	return "", cerr.New("no default route in the main table")
}

func isDefault(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0 && r.Dst.IP.IsUnspecified()
}
