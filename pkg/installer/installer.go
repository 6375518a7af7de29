// pkg/installer/installer.go

package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Fetcher downloads a URL to a path.
type Fetcher interface {
	Download(ctx context.Context, url, dest string, perm os.FileMode) (*httpclient.Result, error)
}

// Confirmer asks the operator to approve an action.
type Confirmer interface {
	Confirm(ctx context.Context, action string) error
}

// Options describe one installer run.
type Options struct {
	URL            string
	SHA256         string
	Args           []string
	Timeout        time.Duration
	PreviewLines   int
	NonInteractive bool
}

// Installer fetches, previews, confirms and runs a remote script.
type Installer struct {
	Runner  execute.Runner
	Fetcher Fetcher
	Confirm Confirmer
	Out     io.Writer // preview destination
}

// Result describes a completed installer run.
type Result struct {
	URL     string
	SHA256  string
	Preview *Preview
	Output  string
}

// Fetch downloads the script to a fresh temp file and verifies its checksum.
// The caller removes the returned path.
func (i *Installer) Fetch(ctx context.Context, opts Options) (string, string, error) {
	tmp, err := os.CreateTemp("", "nyx-installer-*.sh")
	if err != nil {
		return "", "", cerr.Wrap(err, "create installer temp file")
	}
	path := tmp.Name()
	_ = tmp.Close()

	res, err := i.Fetcher.Download(ctx, opts.URL, path, shared.FilePermOwnerRWX)
	if err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	if err := httpclient.VerifySHA256(ctx, "installer "+opts.URL, res.SHA256, opts.SHA256); err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	return path, res.SHA256, nil
}

// Run executes the whole gate: fetch, preview, confirm, execute.
func (i *Installer) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := otelzap.Ctx(ctx)

	path, sum, err := i.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	res := &Result{URL: opts.URL, SHA256: sum}

	preview, err := Inspect(ctx, path, opts.PreviewLines)
	if err != nil {
		return res, err
	}
	res.Preview = preview
	if i.Out != nil {
		_, _ = fmt.Fprintln(i.Out, preview.Render())
	}
	logger.Info("Installer inspected",
		zap.String("url", shared.SanitizeForLogging(opts.URL)),
		zap.String("sha256", sum),
		zap.Int("lines", preview.TotalLines),
		zap.Strings("commands", preview.Commands),
		zap.Strings("notable", preview.Notable))

	if opts.NonInteractive {
		logger.Info("Non-interactive mode, installer runs without confirmation")
	} else if err := i.Confirm.Confirm(ctx, "run the installer from "+opts.URL); err != nil {
		return res, err
	}

	args := append([]string{path}, opts.Args...)
	out, err := i.Runner.Run(ctx, execute.Options{
		Command: "bash",
		Args:    args,
		Timeout: opts.Timeout,
		Stream:  true,
	})
	res.Output = out
	if err != nil {
		return res, cerr.Wrap(err, "installer failed")
	}
	logger.Info("Installer finished", zap.String("url", shared.SanitizeForLogging(opts.URL)))
	return res, nil
}
