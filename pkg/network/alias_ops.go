// pkg/network/alias_ops.go

package network

import (
	"context"
	"net/netip"
	"strings"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HasEphemeral reports whether alias.IP is already bound to iface.
func HasEphemeral(ctx context.Context, runner execute.Runner, iface string, alias Alias) (bool, error) {
	out, err := runner.Run(ctx, execute.Options{
		Command: "ip",
		Args:    []string{"-o", "addr", "show", "dev", iface},
	})
	if err != nil {
		return false, cerr.Wrapf(err, "list addresses on %s", iface)
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+1 < len(fields); i++ {
			if fields[i] != "inet" && fields[i] != "inet6" {
				continue
			}
			if p, err := netip.ParsePrefix(fields[i+1]); err == nil && p.Addr() == alias.IP {
				if p.Bits() != alias.Prefix {
					otelzap.Ctx(ctx).Warn("Alias IP present with a different prefix",
						zap.String("present", p.String()), zap.String("wanted", alias.String()))
				}
				return true, nil
			}
		}
	}
	return false, nil
}

// AddEphemeral binds alias to iface for the running system. It returns
// false when the address was already present.
func AddEphemeral(ctx context.Context, runner execute.Runner, iface string, alias Alias) (bool, error) {
	present, err := HasEphemeral(ctx, runner, iface, alias)
	if err != nil {
		return false, err
	}
	if present {
		otelzap.Ctx(ctx).Info("Alias already bound", zap.String("alias", alias.String()), zap.String("interface", iface))
		return false, nil
	}
	if _, err := runner.Run(ctx, execute.Options{
		Command: "ip",
		Args:    []string{"addr", "add", alias.String(), "dev", iface},
	}); err != nil {
		return false, cerr.Wrapf(err, "add %s to %s", alias, iface)
	}
	otelzap.Ctx(ctx).Info("Alias bound", zap.String("alias", alias.String()), zap.String("interface", iface))
	return true, nil
}

// HasPersistent reports whether the connection profile already lists alias.
func HasPersistent(ctx context.Context, runner execute.Runner, conn string, alias Alias) (bool, error) {
	out, err := runner.Run(ctx, execute.Options{
		Command: "nmcli",
		Args:    []string{"-g", alias.nmcliProperty(), "connection", "show", conn},
	})
	if err != nil {
		return false, cerr.Wrapf(err, "read %s of %s", alias.nmcliProperty(), conn)
	}
	for _, entry := range strings.Split(out, ",") {
		entry = strings.ReplaceAll(strings.TrimSpace(entry), `\:`, ":")
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil && p.Addr() == alias.IP {
			return true, nil
		}
		if a, err := netip.ParseAddr(entry); err == nil && a == alias.IP {
			return true, nil
		}
	}
	return false, nil
}

// AddPersistent appends alias to the connection profile so it survives reboot.
func AddPersistent(ctx context.Context, runner execute.Runner, conn string, alias Alias) (bool, error) {
	present, err := HasPersistent(ctx, runner, conn, alias)
	if err != nil {
		return false, err
	}
	if present {
		otelzap.Ctx(ctx).Info("Alias already persisted", zap.String("alias", alias.String()), zap.String("connection", conn))
		return false, nil
	}
	if _, err := runner.Run(ctx, execute.Options{
		Command: "nmcli",
		Args:    []string{"connection", "modify", conn, "+" + alias.nmcliProperty(), alias.String()},
	}); err != nil {
		return false, cerr.Wrapf(err, "persist %s on %s", alias, conn)
	}
	otelzap.Ctx(ctx).Info("Alias persisted", zap.String("alias", alias.String()), zap.String("connection", conn))
	return true, nil
}

// EphemeralRollback is the command that removes an ephemeral alias.
func EphemeralRollback(iface string, alias Alias) string {
	return execute.Quote("ip", "addr", "del", alias.String(), "dev", iface)
}

// PersistentRollback is the command that removes a persisted alias.
func PersistentRollback(conn string, alias Alias) string {
	return execute.Quote("nmcli", "connection", "modify", conn, "-"+alias.nmcliProperty(), alias.String())
}
