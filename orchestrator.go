package ptc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandboxptc/ptc/assembler"
	"github.com/sandboxptc/ptc/cachekey"
	"github.com/sandboxptc/ptc/classify"
	"github.com/sandboxptc/ptc/hooks"
	"github.com/sandboxptc/ptc/protocol"
	"github.com/sandboxptc/ptc/sandbox"
	"github.com/sandboxptc/ptc/schema"
	"github.com/sandboxptc/ptc/store"
	"github.com/sandboxptc/ptc/telemetry"
	"github.com/sandboxptc/ptc/toolerrors"
)

// Execute assembles code, provisions a sandbox, runs it to completion, and
// returns the outcome. It never returns a Go error: every failure mode
// collapses into ExecutionResult.Error, per the public API contract.
func (c *Client) Execute(ctx context.Context, code string) ExecutionResult {
	execID := newExecutionID()
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "ptc.execute")
	defer span.End()

	tools := c.catalog.List()
	files, err := assembler.Assemble(code, tools)
	if err != nil {
		// Step 1: assembly failures never provision a sandbox.
		msg := err.Error()
		var asmErr *assembler.AssemblyError
		if errors.As(err, &asmErr) {
			msg = asmErr.ToolError().Error()
		}
		return c.finish(ctx, execID, started, 0, ExecutionResult{Success: false, Error: msg})
	}

	c.publish(ctx, hooks.Event{Type: hooks.ExecutionStarted, ExecutionID: execID})
	c.logger.Info(ctx, "execution started", "executionId", execID)

	sb, err := c.provider.Create(ctx, sandbox.CreateOptions{Labels: map[string]string{"executionId": execID}})
	if err != nil {
		return c.finish(ctx, execID, started, 0, ExecutionResult{
			Success: false,
			Error:   toolerrors.NewKind(toolerrors.KindSandbox, fmt.Sprintf("sandbox provisioning failed: %s", err)).Error(),
		})
	}
	defer c.teardown(ctx, sb, execID)

	if err := c.writeProgramFiles(ctx, sb, files); err != nil {
		return c.finish(ctx, execID, started, 0, ExecutionResult{
			Success: false,
			Error:   toolerrors.NewKind(toolerrors.KindSandbox, fmt.Sprintf("sandbox provisioning failed: %s", err)).Error(),
		})
	}

	exec := newExecution(execID)

	_, _, mainPath := assembler.Paths()
	cmd, err := sb.Commands().Run(ctx, runCommand(mainPath), sandbox.RunOptions{
		Background: true,
		OnStdout:   c.onStdout(ctx, sb, exec),
		OnStderr:   c.onStderr(exec),
	})
	if err != nil {
		return c.finish(ctx, execID, started, 0, ExecutionResult{
			Success: false,
			Error:   toolerrors.NewKind(toolerrors.KindSandbox, fmt.Sprintf("sandbox provisioning failed: %s", err)).Error(),
		})
	}

	// Step 6: background command awaiter, concurrent with stdout
	// consumption and tool dispatch on the same goroutine-based event
	// loop analogue.
	go func() {
		exit, waitErr := cmd.Wait(context.Background())
		exec.mu.Lock()
		alreadyResolved := exec.resolved
		exec.mu.Unlock()
		if alreadyResolved {
			return
		}
		if waitErr != nil {
			exec.resolve(ExecutionResult{Success: false, Error: fmt.Sprintf("sandbox command error: %s", waitErr)})
			return
		}
		combined := exec.stderrBuf + "\n" + exec.stdoutBuf
		if exit.ExitCode != 0 {
			exec.resolve(ExecutionResult{Success: false, Error: classify.Classify(combined)})
			return
		}
		// Zero exit but neither terminating sentinel observed.
		preview := exec.stdoutBuf
		if len(preview) > 1024 {
			preview = preview[:1024]
		}
		exec.resolve(ExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("execution finished without a result; stdout: %s", preview),
		})
	}()

	// Step 7: host timeout races the completion future.
	var result ExecutionResult
	select {
	case result = <-exec.resultCh:
	case <-time.After(c.timeout):
		_ = cmd.Kill(context.Background())
		result = ExecutionResult{
			Success: false,
			Error: toolerrors.NewKind(toolerrors.KindTimeout,
				fmt.Sprintf("Execution timed out after %dms", c.timeout.Milliseconds())).Error(),
		}
	case <-ctx.Done():
		_ = cmd.Kill(context.Background())
		result = ExecutionResult{Success: false, Error: ctx.Err().Error()}
	}

	// Step 8: the command is always killed before the deferred sandbox
	// teardown, whatever the outcome; this is what stops a command that
	// exceeded the recursion limit.
	_ = cmd.Kill(context.Background())

	exec.mu.Lock()
	count := exec.toolCallCount
	exec.mu.Unlock()

	return c.finish(ctx, execID, started, count, result)
}

func (c *Client) finish(ctx context.Context, execID string, started time.Time, toolCalls int, result ExecutionResult) ExecutionResult {
	c.publish(ctx, hooks.Event{
		Type:        hooks.ExecutionCompleted,
		ExecutionID: execID,
		Success:     result.Success,
		Message:     result.Error,
	})
	c.metrics.RecordTimer("ptc.execution_duration", time.Since(started))
	c.metrics.IncCounter("ptc.executions", 1, "success", fmt.Sprintf("%t", result.Success))
	if rec := (store.Record{
		ExecutionID:   execID,
		StartedAt:     started,
		CompletedAt:   time.Now(),
		ToolCallCount: toolCalls,
		Success:       result.Success,
		Error:         result.Error,
	}); c.recorder != nil {
		if err := c.recorder.Record(ctx, rec); err != nil {
			c.logger.Warn(ctx, "execution record failed", "executionId", execID, "error", err.Error())
		}
	}
	return result
}

func (c *Client) writeProgramFiles(ctx context.Context, sb sandbox.Sandbox, files assembler.Files) error {
	indexPath, runtimePath, mainPath := assembler.Paths()
	writes := map[string]string{
		indexPath:                         files.Index,
		runtimePath:                       files.Runtime,
		mainPath:                          files.Main,
		protocol.CachePath(assembler.Ext): "{}",
	}
	for path, content := range writes {
		if err := sb.Files().Write(ctx, path, []byte(content)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// runCommand returns the shell command used to launch the assembled entry
// file. Any sandbox runner able to execute TypeScript satisfies this.
func runCommand(mainPath string) string {
	return "npx tsx " + mainPath
}

func (c *Client) onStdout(ctx context.Context, sb sandbox.Sandbox, exec *execution) func([]byte) {
	return func(chunk []byte) {
		exec.mu.Lock()
		if exec.resolved {
			exec.mu.Unlock()
			return
		}
		exec.stdoutBuf += string(chunk)
		events, remainder := extractSentinels(exec.stdoutBuf)
		// Consumed sentinel lines are stripped so they never re-trigger;
		// ordinary output stays in the buffer for the no-sentinel paths
		// (classification on non-zero exit, stdout preview on zero exit).
		var kept strings.Builder
		for _, line := range strings.SplitAfter(exec.stdoutBuf[:len(exec.stdoutBuf)-len(remainder)], "\n") {
			if _, isSentinel := parseSentinelLine(strings.TrimSuffix(line, "\n")); !isSentinel {
				kept.WriteString(line)
			}
		}
		exec.stdoutBuf = kept.String() + remainder
		for _, ev := range events {
			if exec.resolved {
				break
			}
			switch ev.kind {
			case sentinelToolRequest:
				exec.toolCallCount++
				if exec.toolCallCount > c.maxRecursionLimit {
					exec.markResolvedLocked()
					exec.mu.Unlock()
					c.metrics.IncCounter("ptc.recursion_limit_hit", 1)
					exec.resolve(ExecutionResult{
						Success: false,
						Error: toolerrors.NewKind(toolerrors.KindRecursionLimit,
							fmt.Sprintf("maximum iteration limit (%d) reached", c.maxRecursionLimit)).Error(),
					})
					return
				}
				reqID := ev.requestID
				// Tool dispatch does not block stdout parsing: it runs on
				// its own goroutine, independent of this callback.
				go c.dispatchTool(ctx, sb, exec, reqID)
			case sentinelFinal:
				exec.markResolvedLocked()
				exec.mu.Unlock()
				var result any
				if strings.TrimSpace(ev.payload) != "" {
					if err := json.Unmarshal([]byte(ev.payload), &result); err != nil {
						exec.resolve(ExecutionResult{Success: false, Error: "malformed final result payload: " + err.Error()})
						return
					}
				}
				exec.resolve(ExecutionResult{Success: true, Result: result})
				return
			case sentinelError:
				exec.markResolvedLocked()
				exec.mu.Unlock()
				var payload protocol.ErrorPayload
				msg := "code execution failed"
				if err := json.Unmarshal([]byte(ev.payload), &payload); err == nil && payload.Message != "" {
					msg = payload.Message
				}
				exec.resolve(ExecutionResult{Success: false, Error: msg})
				return
			}
		}
		exec.mu.Unlock()
	}
}

func (c *Client) onStderr(exec *execution) func([]byte) {
	return func(chunk []byte) {
		exec.mu.Lock()
		exec.stderrBuf += string(chunk)
		exec.mu.Unlock()
	}
}

// dispatchTool services one tool request: read the request file, validate
// its arguments, invoke the tool, and write a response file. It never
// panics the caller; any internal failure still produces an error response
// so the in-sandbox poll loop does not hang for its full 60s budget.
func (c *Client) dispatchTool(ctx context.Context, sb sandbox.Sandbox, exec *execution, requestID string) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "ptc.tool_dispatch")
	defer span.End()

	reqPath := protocol.RequestPath(requestID)
	raw, err := sb.Files().Read(ctx, reqPath)
	if err != nil {
		c.writeToolResponse(ctx, sb, requestID, protocol.FailureResponse(requestID,
			fmt.Sprintf("failed to read tool request %s: %s", requestID, err)))
		return
	}

	var req protocol.ToolRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.writeToolResponse(ctx, sb, requestID, protocol.FailureResponse(requestID,
			fmt.Sprintf("malformed tool request: %s", err)))
		return
	}

	c.publish(ctx, hooks.Event{Type: hooks.ToolDispatched, ExecutionID: exec.id, Tool: req.Tool, RequestID: requestID})

	tool, ok := c.catalog.ByName(req.Tool)
	if !ok {
		c.completeToolCall(ctx, sb, exec, requestID, req.Tool, "", started, protocol.FailureResponse(requestID,
			fmt.Sprintf("unknown tool %q; available tools: %s", req.Tool, strings.Join(c.catalog.Names(), ", "))))
		return
	}

	if failures, err := tool.ValidateArgs(req.Args); err != nil {
		c.completeToolCall(ctx, sb, exec, requestID, req.Tool, "", started, protocol.FailureResponse(requestID,
			fmt.Sprintf("validation error for tool %q: %s", req.Tool, err)))
		return
	} else if len(failures) > 0 {
		c.completeToolCall(ctx, sb, exec, requestID, req.Tool, "", started, protocol.FailureResponse(requestID,
			formatValidationFailures(req.Tool, failures)))
		return
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.completeToolCall(ctx, sb, exec, requestID, req.Tool, "", started, protocol.FailureResponse(requestID,
				fmt.Sprintf("tool %q rate limited: %s", req.Tool, err)))
			return
		}
	}

	var args any
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &args); err != nil {
			c.completeToolCall(ctx, sb, exec, requestID, req.Tool, "", started, protocol.FailureResponse(requestID,
				fmt.Sprintf("malformed arguments for tool %q: %s", req.Tool, err)))
			return
		}
	}

	// Recompute the cache key host-side for observability only; the value
	// reported by the sandbox in req.CacheKey is never trusted for
	// correctness, only the recomputed one is logged and published.
	var cacheKey string
	if key, err := cachekey.Key(req.Tool, args); err == nil {
		cacheKey = key
		c.logger.Debug(ctx, "tool dispatched", "tool", req.Tool, "requestId", requestID, "cacheKey", key)
	}

	result, err := tool.Invoke(ctx, args)
	if err != nil {
		toolErr := toolerrors.NewKind(toolerrors.KindToolCall,
			fmt.Sprintf("Tool %q execution failed: %s", req.Tool, err))
		c.completeToolCall(ctx, sb, exec, requestID, req.Tool, cacheKey, started, protocol.FailureResponse(requestID, toolErr.Error()))
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		c.completeToolCall(ctx, sb, exec, requestID, req.Tool, cacheKey, started, protocol.FailureResponse(requestID,
			fmt.Sprintf("Tool %q produced a non-serializable result: %s", req.Tool, err)))
		return
	}

	c.completeToolCall(ctx, sb, exec, requestID, req.Tool, cacheKey, started, protocol.SuccessResponse(requestID, resultJSON))
}

func (c *Client) completeToolCall(ctx context.Context, sb sandbox.Sandbox, exec *execution, requestID, toolName, cacheKey string, started time.Time, resp protocol.ToolResponse) {
	c.writeToolResponse(ctx, sb, requestID, resp)
	c.metrics.RecordTimer("ptc.tool_duration", time.Since(started), "tool", toolName)
	c.metrics.IncCounter("ptc.tool_calls", 1, "tool", toolName, "success", fmt.Sprintf("%t", resp.Success))
	c.publish(ctx, hooks.Event{
		Type:        hooks.ToolCompleted,
		ExecutionID: exec.id,
		Tool:        toolName,
		RequestID:   requestID,
		Success:     resp.Success,
		Message:     resp.Error,
		Telemetry: &telemetry.ToolTelemetry{
			Tool:       toolName,
			DurationMs: time.Since(started).Milliseconds(),
			CacheKey:   cacheKey,
		},
	})
}

func (c *Client) writeToolResponse(ctx context.Context, sb sandbox.Sandbox, requestID string, resp protocol.ToolResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error(ctx, "failed to marshal tool response", "requestId", requestID, "error", err.Error())
		return
	}
	if err := sb.Files().Write(ctx, protocol.ResponsePath(requestID), payload); err != nil {
		c.logger.Error(ctx, "failed to write tool response", "requestId", requestID, "error", err.Error())
	}
}

func (c *Client) teardown(ctx context.Context, sb sandbox.Sandbox, execID string) {
	killCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sb.Kill(killCtx); err != nil {
		// Teardown errors never override the execution result.
		c.logger.Warn(ctx, "sandbox teardown failed", "executionId", execID, "error", err.Error())
	}
}

func (c *Client) publish(ctx context.Context, event hooks.Event) {
	if c.bus == nil {
		return
	}
	for _, err := range c.bus.Publish(ctx, event) {
		c.logger.Warn(ctx, "hook subscriber error", "error", err.Error())
	}
}

func formatValidationFailures(tool string, failures []schema.Failure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation error for tool %q:", tool)
	for _, f := range failures {
		fmt.Fprintf(&b, " %s: %s;", f.Path, f.Message)
	}
	return b.String()
}
