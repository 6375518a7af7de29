package interaction

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrompter(input string, interactive bool) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Prompter{In: strings.NewReader(input), Out: out, Interactive: interactive}, out
}

func TestNormalizeYesNoInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in         string
		answer, ok bool
	}{
		{"y", true, true},
		{" YES ", true, true},
		{"n", false, true},
		{"No", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		answer, ok := NormalizeYesNoInput(tt.in)
		assert.Equal(t, tt.answer, answer, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestPromptYesNo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
		wantErr    bool
	}{
		{name: "explicit yes", input: "yes\n", want: true},
		{name: "explicit no", input: "n\n", defaultYes: true, want: false},
		{name: "empty uses default", input: "\n", defaultYes: true, want: true},
		{name: "garbage uses default", input: "perhaps\n", want: false},
		{name: "no trailing newline", input: "y", want: true},
		{name: "eof", input: "", defaultYes: false, want: false, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, out := newPrompter(tt.input, true)
			got, err := p.PromptYesNo(context.Background(), "Continue", tt.defaultYes)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Continue [")
		})
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		p, _ := newPrompter("y\n", true)
		require.NoError(t, p.Confirm(context.Background(), "run installer"))
	})

	t.Run("declined", func(t *testing.T) {
		p, out := newPrompter("\n", true)
		err := p.Confirm(context.Background(), "run installer")
		require.Error(t, err)
		assert.Equal(t, 130, nyx_err.GetExitCode(err))
		assert.Contains(t, out.String(), "[y/N]")
	})

	t.Run("not a terminal", func(t *testing.T) {
		p, out := newPrompter("y\n", false)
		err := p.Confirm(context.Background(), "run installer")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotTTY))
		assert.True(t, nyx_err.IsExpectedUserError(err))
		assert.Empty(t, out.String())
	})
}

func TestConfirmReturnsOnCancel(t *testing.T) {
	t.Parallel()

	in, w := io.Pipe()
	defer w.Close()
	p := &Prompter{In: in, Out: &bytes.Buffer{}, Interactive: true}

	tests := []struct {
		name   string
		cancel func(context.CancelFunc)
	}{
		{name: "already cancelled", cancel: func(c context.CancelFunc) { c() }},
		{name: "cancelled while waiting", cancel: func(c context.CancelFunc) {
			time.AfterFunc(50*time.Millisecond, c)
		}},
	}
	for _, tt := range tests {
		ctx, cancel := context.WithCancel(context.Background())
		tt.cancel(cancel)

		done := make(chan error, 1)
		go func() { done <- p.Confirm(ctx, "run installer") }()

		select {
		case err := <-done:
			require.Error(t, err, tt.name)
			assert.Equal(t, 130, nyx_err.GetExitCode(err), tt.name)
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: Confirm did not return after the context was cancelled", tt.name)
		}
		cancel()
	}
}

func TestReadLineCancelled(t *testing.T) {
	t.Parallel()
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ReadLine(ctx, bufio.NewReader(in), io.Discard, "Answer")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
