// Package executetest provides a scripted execute.Runner for tests.
package executetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/execute"
)

// Response is the scripted outcome for a command line.
type Response struct {
	Output string
	Err    error
}

// FakeRunner records every invocation and answers from Responses, keyed by
// the full command line ("ip -o addr show dev eth0"). Unknown commands
// succeed with empty output unless Strict is set.
type FakeRunner struct {
	mu        sync.Mutex
	Responses map[string]Response
	Calls     []execute.Options
	Strict    bool
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Responses: map[string]Response{}}
}

// On scripts the output for a command line.
func (f *FakeRunner) On(cmdline, output string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[cmdline] = Response{Output: output}
	return f
}

// Fail scripts a failure for a command line.
func (f *FakeRunner) Fail(cmdline string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[cmdline] = Response{Err: err}
	return f
}

func (f *FakeRunner) Run(_ context.Context, opts execute.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, opts)

	key := execute.CommandString(opts.Command, opts.Args...)
	if resp, ok := f.Responses[key]; ok {
		return resp.Output, resp.Err
	}
	if f.Strict {
		return "", fmt.Errorf("unexpected command: %s", key)
	}
	return "", nil
}

// CommandLines returns every recorded invocation as a command line.
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, execute.CommandString(c.Command, c.Args...))
	}
	return out
}

// Ran reports whether a command line was invoked.
func (f *FakeRunner) Ran(cmdline string) bool {
	for _, c := range f.CommandLines() {
		if c == cmdline {
			return true
		}
	}
	return false
}

// RanPrefix reports whether any invocation starts with prefix.
func (f *FakeRunner) RanPrefix(prefix string) bool {
	for _, c := range f.CommandLines() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
