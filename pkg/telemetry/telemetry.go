// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// EnvToggle enables span export when set to "on", "1" or "true".
const EnvToggle = "NYX_TELEMETRY"

var (
	mu       sync.RWMutex
	tracer   trace.Tracer
	shutdown = func(context.Context) error { return nil }
)

// Init configures OpenTelemetry; call this early in main().
// Spans go to a JSONL file when enabled, otherwise to a noop provider.
func Init(service string) error {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		setTracer(tp.Tracer(service), nil)
		return nil
	}

	telemetryFile := shared.NyxTelemetry
	if err := os.MkdirAll(filepath.Dir(telemetryFile), 0755); err != nil {
		home, _ := os.UserHomeDir()
		telemetryFile = filepath.Join(home, ".nyx", "telemetry.jsonl")
		if err := os.MkdirAll(filepath.Dir(telemetryFile), 0755); err != nil {
			return cerr.Wrap(err, "failed to create telemetry directory")
		}
	}

	file, err := os.OpenFile(telemetryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		file.Close()
		return cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("service.version", shared.Version),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	setTracer(tp.Tracer(service), func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		_ = file.Close()
		return err
	})
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	fn := shutdown
	mu.RUnlock()
	return fn(ctx)
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t == nil {
		t = otel.Tracer(shared.NyxID)
	}
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsEnabled reports whether span export was requested via NYX_TELEMETRY.
func IsEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvToggle))) {
	case "on", "1", "true", "yes":
		return true
	default:
		return false
	}
}

// TruncateArgs keeps argument strings attached to spans bounded.
func TruncateArgs(args []string) string {
	full := strings.Join(args, " ")
	if len(full) > 256 {
		return full[:256] + "..."
	}
	return full
}

func setTracer(t trace.Tracer, fn func(context.Context) error) {
	mu.Lock()
	defer mu.Unlock()
	tracer = t
	if fn != nil {
		shutdown = fn
	} else {
		shutdown = func(context.Context) error { return nil }
	}
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
