package configpatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

func write(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		in       string
		sep      string
		want     string
		changed  bool
		appended bool
	}{
		{
			name:    "replace active line",
			in:      "server = a\nlicense_file = /old\nport = 1\n",
			want:    "server = a\nlicense_file = /etc/opt/agent/license.key\nport = 1\n",
			changed: true,
		},
		{
			name:    "uncomment commented line",
			in:      "# license_file = /example\nport = 1\n",
			want:    "license_file = /etc/opt/agent/license.key\nport = 1\n",
			changed: true,
		},
		{
			name:    "active wins over commented",
			in:      "#license_file=/x\nlicense_file: /old\n",
			want:    "#license_file=/x\nlicense_file = /etc/opt/agent/license.key\n",
			changed: true,
		},
		{
			name:     "append when absent",
			in:       "port = 1",
			want:     "port = 1\nlicense_file = /etc/opt/agent/license.key\n",
			changed:  true,
			appended: true,
		},
		{
			name: "already set is a no-op",
			in:   "license_file=/etc/opt/agent/license.key\n",
			want: "license_file=/etc/opt/agent/license.key\n",
		},
		{
			name:    "prefix key is not matched",
			in:      "license_file_backup = /x\n",
			want:    "license_file_backup = /x\nlicense_file = /etc/opt/agent/license.key\n",
			changed: true, appended: true,
		},
		{
			name:    "custom separator",
			in:      "SELINUX=enforcing\nSELINUXTYPE=targeted\n",
			sep:     "=",
			want:    "SELINUX=permissive\nSELINUXTYPE=targeted\n",
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := write(t, tt.in, 0640)
			key, value := "license_file", "/etc/opt/agent/license.key"
			if tt.sep == "=" {
				key, value = "SELINUX", "permissive"
			}

			res, err := Set(path, key, value, Options{Separator: tt.sep, Now: fixedNow})
			require.NoError(t, err)
			assert.Equal(t, tt.changed, res.Changed)
			assert.Equal(t, tt.appended, res.Appended)
			assert.Equal(t, tt.want, read(t, path))

			if tt.changed {
				assert.Equal(t, path+".nyx-20260301_123000.bak", res.Backup)
				assert.Equal(t, tt.in, read(t, res.Backup))
			} else {
				assert.Empty(t, res.Backup)
			}
		})
	}
}

func TestSetPreservesMode(t *testing.T) {
	t.Parallel()
	path := write(t, "a = 1\n", 0640)
	_, err := Set(path, "a", "2", Options{NoBackup: true})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestSetMissingFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "agent.conf")

	_, err := Set(path, "a", "1", Options{})
	require.Error(t, err)

	res, err := Set(path, "a", "1", Options{CreateIfMissing: true})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Empty(t, res.Backup)
	assert.Equal(t, "a = 1\n", read(t, path))
}

func TestSetIdempotent(t *testing.T) {
	t.Parallel()
	path := write(t, "port = 1\n", 0644)

	first, err := Set(path, "license_file", "/k", Options{NoBackup: true})
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := Set(path, "license_file", "/k", Options{NoBackup: true})
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, "port = 1\nlicense_file = /k\n", read(t, path))
}

func TestGet(t *testing.T) {
	t.Parallel()
	path := write(t, "# license_file = /commented\nlicense_file: /active\n", 0644)

	v, ok, err := Get(path, "license_file")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/active", v)

	_, ok, err = Get(path, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
