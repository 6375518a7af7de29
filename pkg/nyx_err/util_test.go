package nyx_err

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name          string
		output        string
		maxCandidates int
		want          string
	}{
		{name: "empty output", output: "", maxCandidates: 3, want: "No output provided."},
		{name: "whitespace only", output: "   \n\n   ", maxCandidates: 3, want: "No output provided."},
		{name: "single error line", output: "Error: connection refused", maxCandidates: 3, want: "Error: connection refused"},
		{
			name:          "multiple error lines truncated",
			output:        "Info: starting\nError: connection failed\nFailed to connect\nPanic: unexpected state",
			maxCandidates: 2,
			want:          "Error: connection failed - Failed to connect",
		},
		{name: "no keywords falls back to first line", output: "\n  hello\nworld", maxCandidates: 2, want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractSummary(ctx, tt.output, tt.maxCandidates))
		})
	}
}

func TestExpectedError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	assert.Nil(t, NewExpectedError(ctx, nil))

	base := errors.New("must be root")
	err := NewExpectedError(ctx, base)
	assert.True(t, IsExpectedUserError(err))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, "must be root", err.Error())
	assert.False(t, IsExpectedUserError(base))
}

func TestWrapStepError(t *testing.T) {
	t.Parallel()
	assert.Nil(t, WrapStepError("license", nil))

	base := errors.New("checksum mismatch")
	err := WrapStepError("license", base)
	assert.True(t, errors.Is(err, base))
	assert.Contains(t, err.Error(), "step license")
}
