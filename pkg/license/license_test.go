package license

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Download(ctx context.Context, url, dest string, perm os.FileMode) (*httpclient.Result, error) {
	args := m.Called(ctx, url, dest, perm)
	res, _ := args.Get(0).(*httpclient.Result)
	return res, args.Error(1)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func setup(t *testing.T) (src, dest string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "incoming.key")
	require.NoError(t, os.WriteFile(src, []byte("KEY-1"), 0644))
	return src, filepath.Join(dir, "etc", "agent", "license.key")
}

func TestInstallFromPath(t *testing.T) {
	t.Parallel()
	src, dest := setup(t)

	res, err := Install(context.Background(), nil, Source{Path: src, SHA256: digest("KEY-1")}, dest)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, res.Backup)
	assert.Equal(t, digest("KEY-1"), res.SHA256)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestInstallIdempotent(t *testing.T) {
	t.Parallel()
	src, dest := setup(t)

	_, err := Install(context.Background(), nil, Source{Path: src}, dest)
	require.NoError(t, err)
	res, err := Install(context.Background(), nil, Source{Path: src}, dest)
	require.NoError(t, err)
	assert.False(t, res.Changed)
}

func TestInstallReplacesWithBackup(t *testing.T) {
	t.Parallel()
	src, dest := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	require.NoError(t, os.WriteFile(dest, []byte("OLD"), 0600))

	res, err := Install(context.Background(), nil, Source{Path: src}, dest)
	require.NoError(t, err)
	require.NotEmpty(t, res.Backup)
	old, err := os.ReadFile(res.Backup)
	require.NoError(t, err)
	assert.Equal(t, "OLD", string(old))
}

func TestInstallChecksumMismatchLeavesDestination(t *testing.T) {
	t.Parallel()
	src, dest := setup(t)

	_, err := Install(context.Background(), nil, Source{Path: src, SHA256: digest("other")}, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, nyx_err.ErrChecksumMismatch)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInstallNoSource(t *testing.T) {
	t.Parallel()
	_, dest := setup(t)
	_, err := Install(context.Background(), nil, Source{}, dest)
	require.Error(t, err)
	assert.True(t, nyx_err.IsExpectedUserError(err))
}

func TestInstallPrefersPath(t *testing.T) {
	t.Parallel()
	src, dest := setup(t)
	fetcher := &mockFetcher{}

	_, err := Install(context.Background(), fetcher, Source{Path: src, URL: "https://licenses.example.test/key"}, dest)
	require.NoError(t, err)
	fetcher.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInstallDownloadFailure(t *testing.T) {
	t.Parallel()
	_, dest := setup(t)
	fetcher := &mockFetcher{}
	fetcher.On("Download", mock.Anything, "https://licenses.example.test/key", mock.Anything, os.FileMode(0600)).
		Return(nil, nyx_err.NewNetworkError("failed to download", errors.New("connection refused")))

	_, err := Install(context.Background(), fetcher, Source{URL: "https://licenses.example.test/key"}, dest)
	require.Error(t, err)
	assert.Equal(t, nyx_err.CategoryNetwork, nyx_err.CategoryOf(err))
	fetcher.AssertExpectations(t)
}

func TestInstallFromURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("REMOTE-KEY"))
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	dl, err := httpclient.NewDownloader(cfg)
	require.NoError(t, err)

	_, dest := setup(t)
	res, err := Install(context.Background(), dl, Source{URL: srv.URL, SHA256: digest("REMOTE-KEY")}, dest)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, srv.URL, res.Origin)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "REMOTE-KEY", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging file removed")
}
