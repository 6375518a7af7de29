/* pkg/nyx_io/yaml.go */

package nyx_io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML marshals in and writes it to filePath with the given mode.
func WriteYAML(ctx context.Context, filePath string, in interface{}, perm os.FileMode) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Writing YAML file", zap.String("path", filePath))

	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
	}

	if err := AtomicWriteFile(filePath, data, perm); err != nil {
		logger.Error("Failed to write YAML file", zap.String("path", filePath), zap.Error(err))
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	logger.Debug("YAML file written", zap.String("path", filePath), zap.Int("size", len(data)))
	return nil
}

// ReadYAML reads a YAML file into out.
func ReadYAML(ctx context.Context, filePath string, out interface{}) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Reading YAML file", zap.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		logger.Error("Failed to unmarshal YAML", zap.String("path", filePath), zap.Error(err))
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}
