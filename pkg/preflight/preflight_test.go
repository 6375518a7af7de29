package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/config"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rockyRelease = `NAME="Rocky Linux"
VERSION="9.3 (Blue Onyx)"
ID="rocky"
ID_LIKE="rhel centos fedora"
VERSION_ID="9.3"
PRETTY_NAME="Rocky Linux 9.3 (Blue Onyx)"
`

const ubuntuRelease = `ID=ubuntu
ID_LIKE=debian
VERSION_ID="22.04"
`

func checkerWith(t *testing.T, release string) *Checker {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(release), 0644))
	return &Checker{
		Geteuid:       func() int { return 0 },
		LookPath:      func(name string) (string, error) { return "/usr/bin/" + name, nil },
		OSReleasePath: path,
	}
}

func TestParseOSRelease(t *testing.T) {
	t.Parallel()
	info, err := ParseOSRelease(strings.NewReader(rockyRelease))
	require.NoError(t, err)
	assert.Equal(t, "rocky", info.ID)
	assert.Equal(t, "9.3", info.VersionID)
	assert.Equal(t, "Rocky Linux 9.3 (Blue Onyx)", info.PrettyName)
	assert.True(t, info.IsRHELFamily())

	info, err = ParseOSRelease(strings.NewReader(ubuntuRelease))
	require.NoError(t, err)
	assert.False(t, info.IsRHELFamily())
}

func TestRequireRoot(t *testing.T) {
	t.Parallel()
	c := checkerWith(t, rockyRelease)
	require.NoError(t, c.RequireRoot(context.Background()))

	c.Geteuid = func() int { return 1000 }
	err := c.RequireRoot(context.Background())
	require.Error(t, err)
	assert.True(t, nyx_err.IsExpectedUserError(err))
	assert.Contains(t, err.Error(), "euid 1000")
	assert.Equal(t, nyx_err.CategoryPermission, nyx_err.CategoryOf(err))
}

func TestCheckOS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		release string
		min     string
		strict  bool
		wantErr bool
	}{
		{name: "supported", release: rockyRelease, min: "8"},
		{name: "too old lenient", release: rockyRelease, min: "10"},
		{name: "too old strict", release: rockyRelease, min: "10", strict: true, wantErr: true},
		{name: "wrong family strict", release: ubuntuRelease, min: "8", strict: true, wantErr: true},
		{name: "wrong family lenient", release: ubuntuRelease, min: "8"},
		{name: "no minimum", release: rockyRelease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := checkerWith(t, tt.release)
			info, err := c.CheckOS(context.Background(), tt.min, tt.strict)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, 2, nyx_err.GetExitCode(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, info)
		})
	}
}

func TestCheckOSMissingFile(t *testing.T) {
	t.Parallel()
	c := checkerWith(t, rockyRelease)
	c.OSReleasePath = filepath.Join(t.TempDir(), "missing")

	info, err := c.CheckOS(context.Background(), "8", false)
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = c.CheckOS(context.Background(), "8", true)
	require.Error(t, err)
}

func TestRequireToolsAggregates(t *testing.T) {
	t.Parallel()
	c := checkerWith(t, rockyRelease)
	c.LookPath = func(name string) (string, error) {
		if name == "nmcli" || name == "dnf" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	err := c.RequireTools(context.Background(), []string{"ip", "nmcli", "systemctl", "dnf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nmcli is required")
	assert.Contains(t, err.Error(), "dnf is required")
	assert.Contains(t, err.Error(), "NetworkManager")
	assert.NotContains(t, err.Error(), "ip is required")

	require.NoError(t, c.RequireTools(context.Background(), []string{"ip"}))
}

func TestRequiredTools(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{SELinuxMode: "unchanged"}
	assert.Equal(t, []string{"ip", "nmcli", "systemctl", "dnf", "rpm"}, RequiredTools(cfg))

	cfg.SELinuxMode = "permissive"
	cfg.Installer.Enabled = true
	tools := RequiredTools(cfg)
	assert.Contains(t, tools, "setenforce")
	assert.Contains(t, tools, "bash")
}

func TestRequireInstallerURL(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	require.NoError(t, RequireInstallerURL(context.Background(), cfg))

	cfg.Installer.Enabled = true
	err := RequireInstallerURL(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, nyx_err.IsExpectedUserError(err))

	cfg.Installer.URL = "https://downloads.example.test/install.sh"
	require.NoError(t, RequireInstallerURL(context.Background(), cfg))
}
