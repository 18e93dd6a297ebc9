// Package catalog implements the Tool Catalog (C2): it normalizes a
// heterogeneous tool collection into an ordered, indexed list of ToolInfo
// records and renders the prompt-facing catalog text.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sandboxptc/ptc/schema"
)

// Invoke is the opaque async function a tool exposes: args in, result or
// error out. Arguments and result travel as already-validated Go values
// (decoded JSON), matching the ToolRequest/ToolResponse wire shape.
type Invoke func(ctx context.Context, args any) (any, error)

// ToolInfo is the normalized descriptor of one tool, per the data model.
type ToolInfo struct {
	Name         string
	Description  string
	InputSchema  schema.Schema
	OutputSchema *schema.Schema
	invoke       Invoke
}

// Invoke calls the underlying tool implementation.
func (t ToolInfo) Invoke(ctx context.Context, args any) (any, error) {
	return t.invoke(ctx, args)
}

// Tool is the bare shape most callers supply: a tool without an explicit
// wrapper-provided output schema.
type Tool struct {
	Name        string
	Description string
	InputSchema schema.Schema
	Invoke      Invoke
}

// ToolWithOutput wraps a Tool to additionally declare an output schema.
type ToolWithOutput struct {
	Tool         Tool
	OutputSchema schema.Schema
}

// Spec is anything New can normalize into a ToolInfo: either a bare Tool or
// a ToolWithOutput wrapper.
type Spec interface {
	toToolInfo() (ToolInfo, error)
}

func (t Tool) toToolInfo() (ToolInfo, error) {
	if t.Name == "" {
		return ToolInfo{}, fmt.Errorf("tool missing name")
	}
	if t.Invoke == nil {
		return ToolInfo{}, fmt.Errorf("tool %q missing invoke function", t.Name)
	}
	return ToolInfo{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
		invoke:      t.Invoke,
	}, nil
}

func (w ToolWithOutput) toToolInfo() (ToolInfo, error) {
	info, err := w.Tool.toToolInfo()
	if err != nil {
		return ToolInfo{}, err
	}
	out := w.OutputSchema
	info.OutputSchema = &out
	return info, nil
}

// Catalog is the normalized, indexed set of tools exposed to one execution.
type Catalog struct {
	ordered []ToolInfo
	byName  map[string]ToolInfo
}

// New normalizes specs into a Catalog. Construction fails if any two tools
// share a name.
func New(specs ...Spec) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]ToolInfo, len(specs))}
	for _, s := range specs {
		info, err := s.toToolInfo()
		if err != nil {
			return nil, err
		}
		if _, exists := c.byName[info.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", info.Name)
		}
		c.byName[info.Name] = info
		c.ordered = append(c.ordered, info)
	}
	return c, nil
}

// ByName looks up a tool by name. The second return value reports whether
// it was found.
func (c *Catalog) ByName(name string) (ToolInfo, bool) {
	info, ok := c.byName[name]
	return info, ok
}

// List returns all tools in registration order.
func (c *Catalog) List() []ToolInfo {
	out := make([]ToolInfo, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Names returns the sorted list of tool names, used when reporting an
// unknown-tool error so the agent can see what is actually available.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CatalogText renders prompt-facing text describing every tool: name,
// projected input/output types, and description.
func (c *Catalog) CatalogText() string {
	var b strings.Builder
	for _, t := range c.ordered {
		inType := schema.Project(t.InputSchema)
		outType := "any"
		if t.OutputSchema != nil {
			outType = schema.Project(*t.OutputSchema)
		}
		fmt.Fprintf(&b, "async function %s(input: %s): Promise<%s>", t.Name, inType, outType)
		if t.Description != "" {
			fmt.Fprintf(&b, " // %s", t.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ValidateArgs validates raw JSON args against the tool's input schema.
func (t ToolInfo) ValidateArgs(argsJSON json.RawMessage) ([]schema.Failure, error) {
	return schema.ValidateJSON(t.InputSchema, argsJSON)
}
