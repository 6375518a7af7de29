// pkg/license/license.go

package license

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_io"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Fetcher downloads a URL to a path. *httpclient.Downloader satisfies it.
type Fetcher interface {
	Download(ctx context.Context, url, dest string, perm os.FileMode) (*httpclient.Result, error)
}

// Source is where the license comes from.
type Source struct {
	Path   string
	URL    string
	SHA256 string
}

// Result describes the installed license.
type Result struct {
	Dest    string
	Origin  string
	SHA256  string
	Changed bool
	Backup  string // previous license, when one was replaced
}

// Install places the license at dest with mode 0600. A local path wins
// over a URL. The checksum, when given, is verified before dest is touched.
func Install(ctx context.Context, fetcher Fetcher, src Source, dest string) (*Result, error) {
	logger := otelzap.Ctx(ctx)

	if src.Path == "" && src.URL == "" {
		return nil, nyx_err.NewExpectedError(ctx, nyx_err.NewValidationError(
			"no license source configured",
			"Set license.path to a local file or license.url to download one"))
	}
	if src.Path != "" && src.URL != "" {
		logger.Warn("Both license.path and license.url are set; using the local file",
			zap.String("path", src.Path), zap.String("url", shared.SanitizeForLogging(src.URL)))
	}

	if err := os.MkdirAll(filepath.Dir(dest), shared.DirPermStandard); err != nil {
		return nil, nyx_err.NewFilesystemError("cannot create "+filepath.Dir(dest), err)
	}

	var (
		data   []byte
		origin string
	)
	if src.Path != "" {
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, nyx_err.NewExpectedError(ctx, nyx_err.NewFilesystemError("cannot read license file "+src.Path, err))
		}
		data, origin = b, src.Path
	} else {
		b, err := download(ctx, fetcher, src.URL, dest)
		if err != nil {
			return nil, err
		}
		data, origin = b, src.URL
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if err := httpclient.VerifySHA256(ctx, "license "+origin, digest, src.SHA256); err != nil {
		return nil, err
	}
	res := &Result{Dest: dest, Origin: origin, SHA256: digest}

	existing, err := os.ReadFile(dest)
	switch {
	case err == nil && bytes.Equal(existing, data):
		logger.Info("License already installed", zap.String("path", dest))
		if err := os.Chmod(dest, shared.FilePermOwnerReadWrite); err != nil {
			logger.Warn("Cannot tighten license permissions", zap.String("path", dest), zap.Error(err))
		}
		return res, nil
	case err == nil:
		res.Backup = fmt.Sprintf("%s.nyx-%s.bak", dest, time.Now().Format("20060102_150405"))
		if err := os.WriteFile(res.Backup, existing, shared.FilePermOwnerReadWrite); err != nil {
			return nil, cerr.Wrapf(err, "back up existing license to %s", res.Backup)
		}
	case !os.IsNotExist(err):
		return nil, cerr.Wrapf(err, "read existing license %s", dest)
	}

	if err := nyx_io.AtomicWriteFile(dest, data, shared.FilePermOwnerReadWrite); err != nil {
		return nil, nyx_err.NewFilesystemError("cannot write license to "+dest, err)
	}
	res.Changed = true
	logger.Info("License installed",
		zap.String("path", dest), zap.String("origin", origin), zap.String("sha256", digest))
	return res, nil
}

// download stages the file beside dest so a bad checksum never replaces it.
func download(ctx context.Context, fetcher Fetcher, url, dest string) ([]byte, error) {
	staging := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".nyx-download")
	defer os.Remove(staging)

	if _, err := fetcher.Download(ctx, url, staging, shared.FilePermOwnerReadWrite); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(staging)
	if err != nil {
		return nil, cerr.Wrap(err, "read downloaded license")
	}
	return data, nil
}
