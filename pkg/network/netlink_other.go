//go:build !linux

package network

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// NetlinkDetector is only available on linux.
type NetlinkDetector struct{}

func (NetlinkDetector) DefaultInterface(context.Context) (string, error) {
	return "", cerr.New("netlink is not supported on this platform")
}
