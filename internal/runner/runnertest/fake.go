// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Response is the scripted outcome for a command prefix.
type Response struct {
	Stdout string
	Err    error
}

// Fake answers Run calls from a table keyed by the joined argument list.
// The longest registered prefix wins.
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{responses: make(map[string]Response)}
}

// On registers a response for commands whose args start with prefix.
func (f *Fake) On(prefix string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = resp
	return f
}

// Run records the call and returns the matching scripted response.
func (f *Fake) Run(_ context.Context, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), args...))

	joined := strings.Join(args, " ")
	best := ""
	found := false
	for prefix := range f.responses {
		if strings.HasPrefix(joined, prefix) && len(prefix) >= len(best) {
			best = prefix
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("runnertest: no response for %q", joined)
	}
	resp := f.responses[best]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return []byte(resp.Stdout), nil
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsWithPrefix returns the recorded invocations starting with prefix.
func (f *Fake) CallsWithPrefix(prefix string) [][]string {
	var out [][]string
	for _, c := range f.Calls() {
		if strings.HasPrefix(strings.Join(c, " "), prefix) {
			out = append(out, c)
		}
	}
	return out
}
