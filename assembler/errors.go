package assembler

import (
	"fmt"

	"github.com/sandboxptc/ptc/toolerrors"
)

// AssemblyError wraps any failure that occurs before a sandbox is ever
// created: sanitization or structural validation of the agent-authored
// source. The orchestrator returns these directly as {success:false, error}
// without provisioning anything.
type AssemblyError struct {
	Cause error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed: %s", e.Cause.Error())
}

func (e *AssemblyError) Unwrap() error { return e.Cause }

// ToolError converts the assembly failure into a toolerrors.ToolError
// tagged KindAssembly, so callers that distinguish error kinds by type
// (rather than by parsing the message) can do so without losing the
// underlying cause chain.
func (e *AssemblyError) ToolError() *toolerrors.ToolError {
	te := toolerrors.NewWithCause(e.Error(), e.Cause)
	te.Kind = toolerrors.KindAssembly
	return te
}
