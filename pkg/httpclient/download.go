// pkg/httpclient/download.go

package httpclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/telemetry"
	"github.com/cenkalti/backoff/v4"
	cerr "github.com/cockroachdb/errors"
	"github.com/sony/gobreaker"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result describes a completed download.
type Result struct {
	Path   string
	SHA256 string
	Bytes  int64
}

// Downloader fetches URLs to disk with retries behind a circuit breaker.
type Downloader struct {
	Client  *http.Client
	Config  *Config
	breaker *gobreaker.CircuitBreaker
}

// NewDownloader validates cfg (nil means DefaultConfig) and builds a Downloader.
func NewDownloader(cfg *Config) (*Downloader, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := DefaultClient()
	if cfg.CAFile != "" {
		c, err := NewClient(cfg.CAFile)
		if err != nil {
			return nil, cerr.Wrap(err, "failed to build TLS config")
		}
		client = c
	}

	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 6
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "download",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("Circuit breaker state changed",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Downloader{Client: client, Config: cfg, breaker: breaker}, nil
}

// statusError is a non-2xx response.
type statusError struct {
	URL  string
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *statusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// Download streams url into dest (mode perm) and returns its SHA-256.
// dest is replaced atomically; a failed download leaves it untouched.
func (d *Downloader) Download(ctx context.Context, url, dest string, perm os.FileMode) (*Result, error) {
	logger := otelzap.Ctx(ctx)
	ctx, span := telemetry.Start(ctx, "httpclient.Download", attribute.String("url", url))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.Config.Timeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, nyx_err.NewFilesystemError("cannot create directory for "+dest, err)
	}

	attempts := 0
	var res *Result
	op := func() error {
		attempts++
		out, err := d.breaker.Execute(func() (interface{}, error) {
			return d.fetchOnce(ctx, url, dest, perm)
		})
		if err != nil {
			var se *statusError
			if cerr.As(err, &se) && !se.retryable() {
				return backoff.Permanent(err)
			}
			if cerr.Is(err, gobreaker.ErrOpenState) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		res = out.(*Result)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("Download attempt failed, retrying",
			zap.String("url", shared.SanitizeForLogging(url)), zap.Int("attempt", attempts), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(op, d.policy(ctx), notify); err != nil {
		span.RecordError(err)
		return nil, nyx_err.NewNetworkError(
			fmt.Sprintf("failed to download %s after %d attempt(s)", url, attempts), err,
			"Check the URL and that this host can reach it (proxy, DNS, firewall)")
	}

	logger.Info("Download complete",
		zap.String("url", shared.SanitizeForLogging(url)), zap.String("path", res.Path),
		zap.Int64("bytes", res.Bytes), zap.String("sha256", res.SHA256))
	return res, nil
}

func (d *Downloader) policy(ctx context.Context) backoff.BackOff {
	rc := d.Config.RetryConfig
	if rc == nil {
		rc = DefaultConfig().RetryConfig
	}
	eb := backoff.NewExponentialBackOff()
	if rc.InitialDelay > 0 {
		eb.InitialInterval = rc.InitialDelay
	}
	if rc.MaxDelay > 0 {
		eb.MaxInterval = rc.MaxDelay
	}
	if rc.Multiplier > 0 {
		eb.Multiplier = rc.Multiplier
	}
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(rc.MaxRetries)), ctx)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, dest string, perm os.FileMode) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(cerr.Wrapf(err, "build request for %s", url))
	}
	if d.Config.UserAgent != "" {
		req.Header.Set("User-Agent", d.Config.UserAgent)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{URL: url, Code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".nyx-download-*")
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, cerr.Wrapf(err, "read body of %s", url)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return nil, cerr.Newf("short body from %s: got %d of %d bytes", url, n, resp.ContentLength)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return nil, backoff.Permanent(err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, backoff.Permanent(err)
	}
	tmpPath = ""

	return &Result{Path: dest, SHA256: hex.EncodeToString(h.Sum(nil)), Bytes: n}, nil
}
