// Package sandbox declares the contract the orchestrator needs from an
// external sandbox provider. The provider itself is out of scope (§1): any
// implementation that can create an ephemeral, network-isolated execution
// environment and stream a command's stdout/stderr satisfies this contract.
package sandbox

import "context"

// Provider creates and destroys ephemeral sandboxes.
type Provider interface {
	// Create provisions a fresh sandbox and returns a handle to it. The
	// returned Sandbox is never shared across Executions.
	Create(ctx context.Context, opts CreateOptions) (Sandbox, error)
}

// CreateOptions carries provider-specific provisioning parameters. It is
// intentionally sparse; a real provider may ignore fields it doesn't need or
// require additional out-of-band configuration (credentials, image name).
type CreateOptions struct {
	// Labels attach provider-agnostic metadata (execution ID, tool names)
	// useful for provider-side logging and quota accounting.
	Labels map[string]string
}

// Sandbox is one ephemeral execution environment: a filesystem plus the
// ability to run commands against it.
type Sandbox interface {
	// Files exposes read/write access to the sandbox filesystem.
	Files() FileWriter
	// Commands launches processes inside the sandbox.
	Commands() CommandRunner
	// Kill tears down the sandbox. Safe to call multiple times; safe to
	// call even if a command is still running.
	Kill(ctx context.Context) error
}

// FileWriter reads and writes files inside a sandbox.
type FileWriter interface {
	Write(ctx context.Context, path string, content []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
}

// RunOptions configures a command launch.
type RunOptions struct {
	// Background, when true, returns immediately with a live Command
	// whose output streams via the callbacks below as it is produced.
	Background bool
	OnStdout   func(chunk []byte)
	OnStderr   func(chunk []byte)
}

// CommandRunner launches processes inside a sandbox.
type CommandRunner interface {
	Run(ctx context.Context, cmd string, opts RunOptions) (Command, error)
}

// Command is a handle to a running (or finished) sandbox process.
type Command interface {
	// Wait blocks until the command exits and returns its result.
	Wait(ctx context.Context) (ExitResult, error)
	// Kill terminates the command if still running. Safe to call after
	// the command has already exited.
	Kill(ctx context.Context) error
}

// ExitResult carries a finished command's exit status.
type ExitResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
