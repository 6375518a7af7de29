package undo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Action types recorded during a run.
const (
	TypePackages   = "packages"
	TypeSELinux    = "selinux"
	TypeAliasIP    = "alias_ip"
	TypeAliasNM    = "alias_nm"
	TypeFirewall   = "firewall"
	TypeLicense    = "license"
	TypeInstaller  = "installer"
	TypeConfigEdit = "config_edit"
	TypeService    = "service"
)

// Action is one host change and the command that reverses it.
type Action struct {
	Type       string    `yaml:"type"`
	Target     string    `yaml:"target"`
	Detail     string    `yaml:"detail,omitempty"`
	BackupPath string    `yaml:"backup_path,omitempty"`
	Rollback   string    `yaml:"rollback,omitempty"`
	At         time.Time `yaml:"at"`
}

// Log is the ordered record of a single provisioning run.
type Log struct {
	RunID     string    `yaml:"run_id"`
	Host      string    `yaml:"host"`
	StartedAt time.Time `yaml:"started_at"`
	Actions   []Action  `yaml:"actions"`

	mu sync.Mutex
}

// NewLog starts a log with a fresh run id.
func NewLog() *Log {
	host, _ := os.Hostname()
	return &Log{RunID: uuid.NewString(), Host: host, StartedAt: time.Now().UTC()}
}

// Record appends an action.
func (l *Log) Record(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	l.Actions = append(l.Actions, a)
}

// Hints lists rollback guidance newest first, the order changes must be undone in.
func (l *Log) Hints() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	hints := make([]string, 0, len(l.Actions))
	for i := len(l.Actions) - 1; i >= 0; i-- {
		a := l.Actions[i]
		switch {
		case a.Rollback != "":
			hints = append(hints, fmt.Sprintf("%s (%s): %s", a.Type, a.Target, a.Rollback))
		case a.BackupPath != "":
			hints = append(hints, fmt.Sprintf("%s (%s): cp -p %s %s", a.Type, a.Target, a.BackupPath, a.Target))
		default:
			hints = append(hints, fmt.Sprintf("%s (%s): no automatic rollback; %s", a.Type, a.Target, orDefault(a.Detail, "review manually")))
		}
	}
	return hints
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Save writes <dir>/<timestamp>.yaml and refreshes <dir>/latest.yaml.
func (l *Log) Save(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = ActionLogDir()
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(dir, l.StartedAt.Format("2006-01-02T15-04-05")+"-"+l.RunID[:8]+".yaml")
	if err := nyx_io.WriteYAML(ctx, path, l, shared.FilePermOwnerReadWrite); err != nil {
		return "", cerr.Wrap(err, "write action log")
	}
	if err := nyx_io.WriteYAML(ctx, filepath.Join(dir, "latest.yaml"), l, shared.FilePermOwnerReadWrite); err != nil {
		return path, cerr.Wrap(err, "update latest action log")
	}
	return path, nil
}

// LoadLatest reads <dir>/latest.yaml.
func LoadLatest(ctx context.Context, dir string) (*Log, error) {
	if dir == "" {
		dir = ActionLogDir()
	}
	l := &Log{}
	if err := nyx_io.ReadYAML(ctx, filepath.Join(dir, "latest.yaml"), l); err != nil {
		return nil, err
	}
	return l, nil
}

// ActionLogDir picks the first usable action log directory.
func ActionLogDir() string {
	candidates := []string{shared.NyxStateDir}
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		candidates = append(candidates, filepath.Join(state, shared.NyxID, "actions"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local", "state", shared.NyxID, "actions"))
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0755); err == nil {
			return dir
		}
	}
	return "./nyx-actions"
}
