package packages

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute/executetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureInstallsOnlyMissing(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		On("rpm -q curl", "curl-7.76.1-26.el9.x86_64").
		Fail("rpm -q firewalld", errors.New("package firewalld is not installed")).
		Fail("rpm -q NetworkManager", errors.New("package NetworkManager is not installed"))

	installed, err := Ensure(context.Background(), runner, []string{"curl", "firewalld", "NetworkManager"})
	require.NoError(t, err)
	assert.Equal(t, []string{"firewalld", "NetworkManager"}, installed)
	assert.True(t, runner.Ran("dnf install -y firewalld NetworkManager"))
}

func TestEnsureNothingMissing(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner()

	installed, err := Ensure(context.Background(), runner, []string{"curl"})
	require.NoError(t, err)
	assert.Empty(t, installed)
	assert.False(t, runner.RanPrefix("dnf"))
}

func TestEnsureDnfFailure(t *testing.T) {
	t.Parallel()
	runner := executetest.NewFakeRunner().
		Fail("rpm -q curl", errors.New("not installed")).
		Fail("dnf install -y curl", errors.New("no repositories available"))

	_, err := Ensure(context.Background(), runner, []string{"curl"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repositories available")
}
