package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	return p
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "provision"}
	cli.AddStringFlag(cmd, "alias-ip", "", "", "alias", "alias.ip")
	cli.AddBoolFlag(cmd, "skip-firewall", "", false, "skip", "skip_firewall")
	return cmd
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	c, used, err := Load(nil, LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, shared.DefaultInstallerConfigDir, c.InstallerConfigDir)
	assert.Equal(t, shared.DefaultService, c.Service)
	assert.Equal(t, 24, c.Alias.Prefix)
	assert.Equal(t, 30*time.Minute, c.Installer.Timeout)
	assert.Equal(t, shared.DefaultFirewallPorts, c.Firewall.Ports)
	assert.Equal(t, "permissive", c.SELinuxMode)
	assert.Equal(t, filepath.Join(shared.DefaultInstallerConfigDir, "license.key"), c.LicenseDest())
	assert.Equal(t, c.LicenseDest(), c.PatchValue())
	assert.False(t, c.AliasEnabled())
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "nyx.yaml", `
alias:
  ip: 10.0.0.5
  prefix: 16
firewall:
  ports: [443, "9000-9010/udp"]
installer:
  timeout: 5m
service: from-file
`)
	t.Setenv("NYX_SERVICE", "from-env")
	t.Setenv("NYX_SKIP_FIREWALL", "true")

	cmd := testCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--alias-ip", "192.168.10.20"}))

	c, used, err := Load(cmd, LoadOptions{ConfigFile: file})
	require.NoError(t, err)
	assert.Equal(t, file, used)
	assert.Equal(t, "192.168.10.20", c.Alias.IP, "flag beats file")
	assert.Equal(t, 16, c.Alias.Prefix, "file beats default")
	assert.Equal(t, "from-env", c.Service, "env beats file")
	assert.True(t, c.SkipFirewall, "env beats unset flag default")
	assert.Equal(t, []string{"443", "9000-9010/udp"}, c.Firewall.Ports)
	assert.Equal(t, 5*time.Minute, c.Installer.Timeout)
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "nyx.yaml", "service: cwd-service\n")

	c, used, err := Load(nil, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "cwd-service", c.Service)
	assert.NotEmpty(t, used)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := isolate(t)
	file := writeFile(t, dir, "nyx.yaml", "licence:\n  path: /tmp/x\n")

	_, _, err := Load(nil, LoadOptions{ConfigFile: file})
	require.Error(t, err)
	assert.Equal(t, 2, nyx_err.GetExitCode(err))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := isolate(t)
	tests := map[string]string{
		"selinux mode": "selinux_mode: relaxed\n",
		"alias ip":     "alias:\n  ip: not-an-ip\n",
		"port spec":    "firewall:\n  ports: [\"https\"]\n",
		"sha256":       "license:\n  sha256: abc\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			file := writeFile(t, dir, "bad.yaml", content)
			_, _, err := Load(nil, LoadOptions{ConfigFile: file})
			require.Error(t, err)
			assert.Equal(t, 2, nyx_err.GetExitCode(err))
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, _, err := Load(nil, LoadOptions{ConfigFile: filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "NYX_LICENSE_URL=https://licenses.example.test/key\nNYX_NON_INTERACTIVE=true\n")
	t.Cleanup(func() {
		os.Unsetenv("NYX_LICENSE_URL")
		os.Unsetenv("NYX_NON_INTERACTIVE")
	})

	c, _, err := Load(nil, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://licenses.example.test/key", c.License.URL)
	assert.True(t, c.NonInteractive)
}

func TestPatchFilePath(t *testing.T) {
	t.Parallel()
	c := &Config{InstallerConfigDir: "/etc/opt/agent", ConfigPatch: PatchConfig{File: "agent.conf"}}
	assert.Equal(t, "/etc/opt/agent/agent.conf", c.PatchFilePath())

	c.ConfigPatch.File = "/srv/agent.ini"
	assert.Equal(t, "/srv/agent.ini", c.PatchFilePath())

	c.ConfigPatch.File = ""
	assert.Empty(t, c.PatchFilePath())
}
