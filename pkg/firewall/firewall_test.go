package firewall

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute/executetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		spec    string
		want    string
		ufw     string
		wantErr bool
	}{
		{spec: "443", want: "443/tcp", ufw: "443/tcp"},
		{spec: "8443/TCP", want: "8443/tcp", ufw: "8443/tcp"},
		{spec: "9000-9010/udp", want: "9000-9010/udp", ufw: "9000:9010/udp"},
		{spec: "0/tcp", wantErr: true},
		{spec: "70000", wantErr: true},
		{spec: "10-5/tcp", wantErr: true},
		{spec: "https", wantErr: true},
		{spec: "443/icmp", wantErr: true},
	}
	for _, tt := range tests {
		p, err := ParsePort(tt.spec)
		if tt.wantErr {
			assert.Error(t, err, tt.spec)
			continue
		}
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.want, p.String())
		assert.Equal(t, tt.ufw, p.UFW())
	}
}

func TestParsePorts(t *testing.T) {
	t.Parallel()
	ports, err := ParsePorts([]string{"443", "53/udp"})
	require.NoError(t, err)
	assert.Len(t, ports, 2)

	_, err = ParsePorts([]string{"443", "bogus"})
	require.Error(t, err)
}

func TestDetect(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner()
	has := func(names ...string) func(string) bool {
		return func(n string) bool {
			for _, name := range names {
				if n == name {
					return true
				}
			}
			return false
		}
	}

	assert.Equal(t, "firewalld", Detect(context.Background(), runner, has("firewall-cmd", "ufw")).Name())
	assert.Equal(t, "ufw", Detect(context.Background(), runner, has("ufw")).Name())
	assert.Nil(t, Detect(context.Background(), runner, has()))
}

func TestFirewalldAllowPorts(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		On("firewall-cmd --state", "running").
		On("firewall-cmd --permanent --query-port=443/tcp", "yes").
		Fail("firewall-cmd --permanent --query-port=8443/tcp", errors.New("no"))

	ports, err := ParsePorts([]string{"443/tcp", "8443/tcp"})
	require.NoError(t, err)

	fw := &Firewalld{Runner: runner}
	added, err := fw.AllowPorts(context.Background(), ports)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "8443/tcp", added[0].String())

	assert.False(t, runner.Ran("firewall-cmd --permanent --add-port=443/tcp"))
	assert.True(t, runner.Ran("firewall-cmd --permanent --add-port=8443/tcp"))
	assert.True(t, runner.Ran("firewall-cmd --reload"))
	assert.False(t, runner.RanPrefix("systemctl"))
	assert.Equal(t, "firewall-cmd --permanent --remove-port=8443/tcp && firewall-cmd --reload", fw.RemoveCommand(added[0]))
}

func TestFirewalldStartsService(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		Fail("firewall-cmd --state", errors.New("not running"))

	ports, _ := ParsePorts([]string{"443"})
	added, err := (&Firewalld{Runner: runner}).AllowPorts(context.Background(), ports)
	require.NoError(t, err)
	assert.Len(t, added, 1)
	assert.True(t, runner.Ran("systemctl enable --now firewalld"))
}

func TestFirewalldNothingToDo(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		On("firewall-cmd --state", "running").
		On("firewall-cmd --permanent --query-port=443/tcp", "yes")

	ports, _ := ParsePorts([]string{"443"})
	added, err := (&Firewalld{Runner: runner}).AllowPorts(context.Background(), ports)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.False(t, runner.Ran("firewall-cmd --reload"))
}

func TestFirewalldAddFails(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		On("firewall-cmd --state", "running").
		Fail("firewall-cmd --permanent --add-port=443/tcp", errors.New("INVALID_PORT"))

	ports, _ := ParsePorts([]string{"443"})
	_, err := (&Firewalld{Runner: runner}).AllowPorts(context.Background(), ports)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_PORT")
}

const ufwStatus = `Status: active

To                         Action      From
--                         ------      ----
22/tcp                     ALLOW       Anywhere
443/tcp                    ALLOW       Anywhere
`

func TestUFWAllowPorts(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().On("ufw status", ufwStatus)

	ports, _ := ParsePorts([]string{"443/tcp", "9000-9010/udp"})
	u := &UFW{Runner: runner}
	assert.True(t, u.Available(context.Background()))

	added, err := u.AllowPorts(context.Background(), ports)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.True(t, runner.Ran("ufw allow 9000:9010/udp"))
	assert.False(t, runner.Ran("ufw allow 443/tcp"))
	assert.True(t, runner.Ran("ufw reload"))
	assert.Equal(t, "ufw delete allow 9000:9010/udp", u.RemoveCommand(added[0]))
}
