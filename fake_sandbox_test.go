package ptc

import (
	"context"
	"sync"
	"time"

	"github.com/sandboxptc/ptc/sandbox"
)

// fakeSandbox is an in-memory stand-in for a real sandbox provider, used to
// drive the orchestrator end to end without ever executing a command. Its
// file map plays the role of the shared filesystem described in section 4.5:
// dispatchTool writes tool responses into it, and a test's script function
// plays the part of the in-sandbox runtime, reading/writing the same paths.
type fakeSandbox struct {
	mu      sync.Mutex
	files   map[string][]byte
	killed  bool
	killCnt int

	script func(sb *fakeSandbox, cmd *fakeCommand, opts sandbox.RunOptions)
}

func newFakeSandbox(script func(sb *fakeSandbox, cmd *fakeCommand, opts sandbox.RunOptions)) *fakeSandbox {
	return &fakeSandbox{files: make(map[string][]byte), script: script}
}

func (s *fakeSandbox) Files() sandbox.FileWriter     { return s }
func (s *fakeSandbox) Commands() sandbox.CommandRunner { return s }

func (s *fakeSandbox) Write(ctx context.Context, path string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(content))
	copy(cp, content)
	s.files[path] = cp
	return nil
}

func (s *fakeSandbox) Read(ctx context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[path]
	if !ok {
		return nil, errNotFound(path)
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp, nil
}

func (s *fakeSandbox) snapshot(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[path]
	return content, ok
}

func (s *fakeSandbox) waitForFile(path string, timeout time.Duration) ([]byte, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if content, ok := s.snapshot(path); ok {
			return content, true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return nil, false
}

func (s *fakeSandbox) Run(ctx context.Context, cmd string, opts sandbox.RunOptions) (sandbox.Command, error) {
	c := &fakeCommand{killCh: make(chan struct{}), doneCh: make(chan sandbox.ExitResult, 1)}
	go s.script(s, c, opts)
	return c, nil
}

func (s *fakeSandbox) Kill(ctx context.Context) error {
	s.mu.Lock()
	s.killed = true
	s.killCnt++
	s.mu.Unlock()
	return nil
}

// fakeCommand is the Command handle a fakeSandbox hands back from Run. Its
// script decides when (and with what) doneCh resolves; Kill only signals the
// script to stop early, mirroring a real provider's best-effort termination.
type fakeCommand struct {
	killOnce sync.Once
	killCh   chan struct{}
	doneCh   chan sandbox.ExitResult
}

func (c *fakeCommand) Wait(ctx context.Context) (sandbox.ExitResult, error) {
	select {
	case r := <-c.doneCh:
		return r, nil
	case <-ctx.Done():
		return sandbox.ExitResult{}, ctx.Err()
	}
}

func (c *fakeCommand) Kill(ctx context.Context) error {
	c.killOnce.Do(func() { close(c.killCh) })
	return nil
}

// fakeProvider hands out a single fakeSandbox per Create call, all sharing
// the same script so a test can describe one execution's fake runtime
// behavior in one place.
type fakeProvider struct {
	mu       sync.Mutex
	created  []*fakeSandbox
	script   func(sb *fakeSandbox, cmd *fakeCommand, opts sandbox.RunOptions)
	failWith error
}

func (p *fakeProvider) Create(ctx context.Context, opts sandbox.CreateOptions) (sandbox.Sandbox, error) {
	if p.failWith != nil {
		return nil, p.failWith
	}
	sb := newFakeSandbox(p.script)
	p.mu.Lock()
	p.created = append(p.created, sb)
	p.mu.Unlock()
	return sb, nil
}

func (p *fakeProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.created)
}

type notFoundError string

func (e notFoundError) Error() string { return "no such file: " + string(e) }

func errNotFound(path string) error { return notFoundError(path) }
