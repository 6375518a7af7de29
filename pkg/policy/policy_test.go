package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() map[string]interface{} {
	return map[string]interface{}{
		"license_path":            "",
		"license_url":             "https://licenses.example.test/key",
		"license_sha256":          "",
		"alias_ip":                "10.0.0.5",
		"alias_prefix":            24,
		"installer_enabled":       true,
		"installer_url":           "https://downloads.example.test/install.sh",
		"installer_sha256":        "",
		"firewall_ports":          []interface{}{"443/tcp", "9000-9010/udp"},
		"skip_firewall":           false,
		"non_interactive":         false,
		"selinux_mode":            "permissive",
		"allow_insecure_download": false,
		"require_checksum":        false,
		"service":                 "agent",
	}
}

func TestEvaluateAllowsDefaults(t *testing.T) {
	t.Parallel()
	denials, err := Evaluate(context.Background(), baseInput(), "")
	require.NoError(t, err)
	assert.Empty(t, denials)
}

func TestEvaluateDenials(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		want   string
	}{
		{
			name:   "plain http license",
			mutate: func(in map[string]interface{}) { in["license_url"] = "http://licenses.example.test/key" },
			want:   "license url",
		},
		{
			name:   "plain http installer",
			mutate: func(in map[string]interface{}) { in["installer_url"] = "http://downloads.example.test/install.sh" },
			want:   "installer url",
		},
		{
			name:   "loopback alias",
			mutate: func(in map[string]interface{}) { in["alias_ip"] = "127.0.0.9" },
			want:   "alias ip 127.0.0.9",
		},
		{
			name:   "multicast alias",
			mutate: func(in map[string]interface{}) { in["alias_ip"] = "239.1.1.1" },
			want:   "alias ip 239.1.1.1",
		},
		{
			name: "checksum required",
			mutate: func(in map[string]interface{}) {
				in["require_checksum"] = true
			},
			want: "license.sha256 is empty",
		},
		{
			name:   "port out of range",
			mutate: func(in map[string]interface{}) { in["firewall_ports"] = []interface{}{"70000/tcp"} },
			want:   `"70000/tcp"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := baseInput()
			tt.mutate(in)
			denials, err := Evaluate(context.Background(), in, "")
			require.NoError(t, err)
			require.NotEmpty(t, denials)
			joined := ""
			for _, d := range denials {
				joined += d + "\n"
			}
			assert.Contains(t, joined, tt.want)
		})
	}
}

func TestEvaluateInsecureAllowed(t *testing.T) {
	t.Parallel()
	in := baseInput()
	in["license_url"] = "http://licenses.example.test/key"
	in["allow_insecure_download"] = true

	denials, err := Evaluate(context.Background(), in, "")
	require.NoError(t, err)
	assert.Empty(t, denials)
}

func TestEvaluateSkipFirewallIgnoresPorts(t *testing.T) {
	t.Parallel()
	in := baseInput()
	in["firewall_ports"] = []interface{}{"0/tcp"}
	in["skip_firewall"] = true

	denials, err := Evaluate(context.Background(), in, "")
	require.NoError(t, err)
	assert.Empty(t, denials)
}

func TestEvaluateExtraPolicy(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "site.rego")
	require.NoError(t, os.WriteFile(file, []byte(`package nyx.provision

import rego.v1

deny contains "service must not be sshd" if input.service == "sshd"
`), 0600))

	in := baseInput()
	in["service"] = "sshd"
	denials, err := Evaluate(context.Background(), in, file)
	require.NoError(t, err)
	assert.Equal(t, []string{"service must not be sshd"}, denials)
}

func TestEvaluateBrokenPolicy(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "broken.rego")
	require.NoError(t, os.WriteFile(file, []byte("package nyx.provision\n\ndeny {"), 0600))

	_, err := Evaluate(context.Background(), baseInput(), file)
	require.Error(t, err)
	assert.Equal(t, 2, nyx_err.GetExitCode(err))
}

func TestEnforce(t *testing.T) {
	t.Parallel()
	require.NoError(t, Enforce(context.Background(), baseInput(), ""))

	in := baseInput()
	in["alias_ip"] = "::1"
	err := Enforce(context.Background(), in, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias ip ::1")
	assert.Equal(t, 2, nyx_err.GetExitCode(err))
}
