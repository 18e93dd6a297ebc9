// Package ptc implements a Programmatic Tool Calling host: a trusted
// orchestrator that lets an agent express a multi-tool workflow as a single
// piece of source code, executes it inside an isolated sandbox, and
// services tool invocations on the host.
package ptc

import (
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/sandboxptc/ptc/catalog"
	"github.com/sandboxptc/ptc/hooks"
	"github.com/sandboxptc/ptc/sandbox"
	"github.com/sandboxptc/ptc/store"
	"github.com/sandboxptc/ptc/store/inmem"
	"github.com/sandboxptc/ptc/telemetry"
)

func defaultRecorder() store.Recorder {
	return inmem.New()
}

const (
	// DefaultMaxRecursionLimit bounds the number of tool-call sentinels an
	// execution may emit before it is killed.
	DefaultMaxRecursionLimit = 100
	// DefaultTimeoutMs bounds total host-side execution wall-clock time.
	DefaultTimeoutMs = 30000
)

// Options configures a Client.
type Options struct {
	// Tools is the tool collection exposed to every execution. Required.
	Tools []catalog.Spec
	// Provider creates and destroys sandboxes. Required.
	Provider sandbox.Provider

	// MaxRecursionLimit caps dispatched tool calls per execution. Defaults
	// to DefaultMaxRecursionLimit when zero.
	MaxRecursionLimit int
	// TimeoutMs caps total execution wall-clock time. Defaults to
	// DefaultTimeoutMs when zero.
	TimeoutMs int

	// ToolRateLimiter, when set, is consulted before each tool dispatch to
	// bound the rate of real tool invocations independent of the
	// recursion limit.
	ToolRateLimiter *rate.Limiter

	// Logger, Metrics, and Tracer default to no-ops when nil.
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Tracer  telemetry.Tracer

	// Hooks, when set, receives lifecycle events for every execution. A
	// bus is always created internally even if this is nil, so callers
	// may also retrieve it via Client.Hooks to register subscribers after
	// construction.
	Hooks *hooks.Bus

	// Recorder persists a ledger entry per execution. Defaults to an
	// in-memory recorder when nil.
	Recorder store.Recorder
}

// Client is a configured PTC host ready to execute agent-authored source
// against its tool catalog.
type Client struct {
	catalog           *catalog.Catalog
	provider          sandbox.Provider
	maxRecursionLimit int
	timeout           time.Duration
	limiter           *rate.Limiter

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer
	bus     *hooks.Bus

	recorder store.Recorder
}

// New constructs a Client from Options.
func New(opts Options) (*Client, error) {
	if opts.Provider == nil {
		return nil, errors.New("ptc: sandbox provider is required")
	}
	cat, err := catalog.New(opts.Tools...)
	if err != nil {
		return nil, err
	}

	maxRecursion := opts.MaxRecursionLimit
	if maxRecursion == 0 {
		maxRecursion = DefaultMaxRecursionLimit
	}
	timeoutMs := opts.TimeoutMs
	if timeoutMs == 0 {
		timeoutMs = DefaultTimeoutMs
	}

	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.NewNoopTracer()
	}
	bus := opts.Hooks
	if bus == nil {
		bus = hooks.NewBus()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = defaultRecorder()
	}

	return &Client{
		catalog:           cat,
		provider:          opts.Provider,
		maxRecursionLimit: maxRecursion,
		timeout:           time.Duration(timeoutMs) * time.Millisecond,
		limiter:           opts.ToolRateLimiter,
		logger:            logger,
		metrics:           metrics,
		tracer:            tracer,
		bus:               bus,
		recorder:          recorder,
	}, nil
}

// CatalogText renders prompt-facing text describing every registered tool,
// for injection into the agent's system prompt.
func (c *Client) CatalogText() string {
	return c.catalog.CatalogText()
}

// Hooks returns the client's lifecycle event bus so callers may register
// additional subscribers (a stream sink, a test probe) after construction.
func (c *Client) Hooks() *hooks.Bus {
	return c.bus
}
