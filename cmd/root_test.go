package cmd

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/nyx/cmd/provision"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	RegisterCommands()

	for _, path := range [][]string{
		{"provision"},
		{"inspect", "network"},
		{"inspect", "config"},
		{"inspect", "logs"},
		{"show", "network"},
		{"rollback", "hints"},
		{"undo", "hints"},
		{"version"},
	} {
		found, _, err := RootCmd.Find(path)
		require.NoError(t, err, path)
		assert.NotEqual(t, RootCmd, found, path)
	}
}

func TestProvisionFlagsCarryConfigKeys(t *testing.T) {
	flags := provision.ProvisionCmd.Flags()
	for flag, key := range map[string]string{
		"license-path":    "license.path",
		"alias-ip":        "alias.ip",
		"installer-url":   "installer.url",
		"port":            "firewall.ports",
		"non-interactive": "non_interactive",
		"state-dir":       "state_dir",
	} {
		f := flags.Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, key, cli.KeyFor(f), flag)
	}
}
