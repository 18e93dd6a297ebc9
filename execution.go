package ptc

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExecutionResult is the public outcome of one Execute call: a tagged union
// of a JSON-serializable Result or a human-readable Error.
type ExecutionResult struct {
	Success bool
	Result  any
	Error   string
}

// newExecutionID returns a per-execution identifier combining a monotonic
// timestamp with a random suffix, matching the rationale that "monotonic
// time + random suffix is sufficient" for requestId uniqueness.
func newExecutionID() string {
	return fmt.Sprintf("exec-%d-%s", time.Now().UnixNano(), uuid.NewString())
}

// execution holds all mutable state for one in-flight Execute call: the
// rolling stdout buffer, the tool-call counter, and the single-assignment
// outcome. It is created at Execute entry and discarded before return;
// never shared across calls or reused.
type execution struct {
	id string

	mu            sync.Mutex
	stdoutBuf     string
	stderrBuf     string
	toolCallCount int
	resolved      bool

	resultOnce sync.Once
	resultCh   chan ExecutionResult
}

func newExecution(id string) *execution {
	return &execution{id: id, resultCh: make(chan ExecutionResult, 1)}
}

// resolve performs the single allowed assignment of the execution's
// outcome; subsequent calls are no-ops, matching the "single-assignment
// outcome slot" invariant.
func (e *execution) resolve(res ExecutionResult) {
	e.resultOnce.Do(func() {
		e.resultCh <- res
	})
}

// markResolvedLocked records, under the execution's lock, that a terminating
// sentinel has been consumed. Callers must hold e.mu.
func (e *execution) markResolvedLocked() {
	e.resolved = true
}
