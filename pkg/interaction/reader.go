// pkg/interaction/reader.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type lineResult struct {
	text string
	err  error
}

// ReadLine writes label to out and returns a trimmed line from reader.
// It returns ctx.Err() as soon as ctx is cancelled; the pending read is
// abandoned and reader must not be used again.
func ReadLine(ctx context.Context, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Prompting user for input", zap.String("label", label))

	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprint(out, label+": ")

	lines := make(chan lineResult, 1)
	go func() {
		text, err := reader.ReadString('\n')
		lines <- lineResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(out)
		logger.Info("Prompt cancelled", zap.String("label", label), zap.Error(ctx.Err()))
		return "", ctx.Err()
	case res := <-lines:
		if res.err != nil && !(res.err == io.EOF && res.text != "") {
			logger.Debug("Failed to read user input", zap.Error(res.err))
			return "", res.err
		}
		value := strings.TrimSpace(res.text)
		logger.Debug("User input received", zap.String("value", value))
		return value, nil
	}
}
