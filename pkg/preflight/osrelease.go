// pkg/preflight/osrelease.go

package preflight

import (
	"bufio"
	"io"
	"strings"
)

// OSReleaseInfo is the subset of /etc/os-release nyx cares about.
type OSReleaseInfo struct {
	ID         string
	IDLike     string
	VersionID  string
	PrettyName string
}

// ParseOSRelease reads KEY=value lines, unquoting values.
func ParseOSRelease(r io.Reader) (*OSReleaseInfo, error) {
	info := &OSReleaseInfo{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		switch key {
		case "ID":
			info.ID = value
		case "ID_LIKE":
			info.IDLike = value
		case "VERSION_ID":
			info.VersionID = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}
	return info, scanner.Err()
}

// IsRHELFamily reports whether ID or ID_LIKE names a RHEL-compatible distribution.
func (o *OSReleaseInfo) IsRHELFamily() bool {
	ids := append([]string{o.ID}, strings.Fields(o.IDLike)...)
	for _, id := range ids {
		switch strings.ToLower(id) {
		case "rhel", "fedora", "centos", "rocky", "almalinux", "ol":
			return true
		}
	}
	return false
}
