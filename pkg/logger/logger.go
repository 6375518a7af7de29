// pkg/logger/logger.go

package logger

import (
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	log *zap.Logger
	mu  sync.RWMutex
)

// L returns the process logger, or nil before initialization.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger installs l as the package logger and as the zap and otelzap globals,
// so otelzap.Ctx(ctx) resolves to the same cores.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// GetLogger returns the process logger, building the console fallback on first use.
func GetLogger() *zap.Logger {
	if l := L(); l != nil {
		return l
	}
	fallback := NewFallbackLogger()
	SetLogger(fallback)
	return fallback
}

// Sync flushes any buffered log entries. Call before the process exits.
func Sync() error {
	l := L()
	if l == nil {
		return nil
	}
	return l.Sync()
}
