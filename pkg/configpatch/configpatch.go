// pkg/configpatch/configpatch.go

// Package configpatch sets a single `key = value` line in a flat config file
// (INI-like, shell-style or colon-separated), the way an operator would with
// sed, but idempotently and with a backup.
package configpatch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
)

// Options tune how the line is rendered and what happens around the write.
type Options struct {
	Separator       string // rendered between key and value; default " = "
	CreateIfMissing bool
	NoBackup        bool
	Now             func() time.Time
}

// Result describes what Set did.
type Result struct {
	Path     string
	Changed  bool
	Appended bool
	Created  bool
	Previous string // the replaced line, if any
	Backup   string // backup path, if one was written
}

func linePattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*(#\s*)?` + regexp.QuoteMeta(key) + `\s*(=|:|\s|$)`)
}

// Set makes path contain exactly one effective `key<sep>value` line.
// An active line wins over a commented one; a commented line is
// uncommented in place; otherwise the line is appended.
func Set(path, key, value string, opts Options) (*Result, error) {
	if key == "" {
		return nil, cerr.New("configpatch: empty key")
	}
	sep := opts.Separator
	if sep == "" {
		sep = " = "
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	res := &Result{Path: path}
	want := key + sep + value

	mode := os.FileMode(shared.FilePermStandard)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
	case os.IsNotExist(err) && opts.CreateIfMissing:
		res.Created = true
		if err := os.MkdirAll(filepath.Dir(path), shared.DirPermStandard); err != nil {
			return nil, cerr.Wrapf(err, "create directory for %s", path)
		}
	default:
		return nil, cerr.Wrapf(err, "read %s", path)
	}

	lines := splitLines(data)
	re := linePattern(key)
	active, commented := -1, -1
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] == "" && active < 0 {
			active = i
		}
		if m[1] != "" && commented < 0 {
			commented = i
		}
	}

	switch {
	case active >= 0:
		if currentValue(lines[active], key) == value {
			return res, nil
		}
		res.Previous = lines[active]
		lines[active] = want
	case commented >= 0:
		res.Previous = lines[commented]
		lines[commented] = want
	default:
		res.Appended = true
		lines = append(lines, want)
	}
	res.Changed = true

	if !res.Created && !opts.NoBackup {
		res.Backup = fmt.Sprintf("%s.nyx-%s.bak", path, now().Format("20060102_150405"))
		if err := os.WriteFile(res.Backup, data, mode); err != nil {
			return nil, cerr.Wrapf(err, "write backup %s", res.Backup)
		}
	}

	out := []byte(strings.Join(lines, "\n") + "\n")
	if err := nyx_io.AtomicWriteFile(path, out, mode); err != nil {
		return nil, cerr.Wrapf(err, "write %s", path)
	}
	return res, nil
}

// Get returns the value of the active key line, if present.
func Get(path, key string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	re := linePattern(key)
	for _, line := range splitLines(data) {
		if m := re.FindStringSubmatch(line); m != nil && m[1] == "" {
			return currentValue(line, key), true, nil
		}
	}
	return "", false, nil
}

func currentValue(line, key string) string {
	rest := strings.TrimSpace(line)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, key))
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimSpace(rest[1:])
	}
	return rest
}

func splitLines(data []byte) []string {
	data = bytes.TrimRight(data, "\n")
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\n")
}
