// Package assembler implements the Code Assembler (C3): it sanitizes
// agent-authored source, checks structural well-formedness, and emits the
// three sandbox files (stubs, runtime, entry) the orchestrator writes into
// the sandbox.
package assembler

import (
	"strings"
	"text/template"

	"github.com/sandboxptc/ptc/catalog"
	"github.com/sandboxptc/ptc/protocol"
	"github.com/sandboxptc/ptc/schema"
)

// Ext is the file extension used for generated sandbox files. TypeScript is
// the surface language the stub signatures, runtime, and entry wrapper are
// emitted in; any sandbox runner able to execute TypeScript (or transpile
// it to JavaScript first) satisfies the contract in section 1.
const Ext = "ts"

// Files holds the three generated sandbox file contents, keyed by the path
// they must be written to under protocol.BaseDir.
type Files struct {
	Index   string // index.<ext>
	Runtime string // runtime.<ext>
	Main    string // main.<ext>
}

// Paths returns the sandbox-relative paths for Index, Runtime, and Main in
// that order.
func Paths() (index, runtime, main string) {
	base := protocol.BaseDir
	return base + "/index." + Ext, base + "/runtime." + Ext, base + "/main." + Ext
}

// Assemble sanitizes source, checks brace balance, and renders the three
// sandbox files against tools. It never touches a sandbox; a caller that
// receives an error must not provision one.
func Assemble(source string, tools []catalog.ToolInfo) (Files, error) {
	clean := sanitize(source)

	if err := checkBalancedBraces(clean); err != nil {
		return Files{}, &AssemblyError{Cause: err}
	}

	index, err := renderStubs(tools)
	if err != nil {
		return Files{}, &AssemblyError{Cause: err}
	}
	runtime, err := renderRuntime()
	if err != nil {
		return Files{}, &AssemblyError{Cause: err}
	}
	main, err := renderMain(clean, tools)
	if err != nil {
		return Files{}, &AssemblyError{Cause: err}
	}

	return Files{Index: index, Runtime: runtime, Main: main}, nil
}

type stubToolView struct {
	Name       string
	InputType  string
	OutputType string
}

func renderStubs(tools []catalog.ToolInfo) (string, error) {
	views := make([]stubToolView, len(tools))
	for i, t := range tools {
		outType := "any"
		if t.OutputSchema != nil {
			outType = schema.Project(*t.OutputSchema)
		}
		views[i] = stubToolView{
			Name:       t.Name,
			InputType:  schema.Project(t.InputSchema),
			OutputType: outType,
		}
	}
	return execTemplate(stubTemplate, struct{ Tools []stubToolView }{Tools: views})
}

func renderRuntime() (string, error) {
	return execTemplate(runtimeTemplate, struct {
		RequestsDir     string
		ResponsesDir    string
		CacheFile       string
		RequestSentinel string
	}{
		RequestsDir:     protocol.RequestsDir,
		ResponsesDir:    protocol.ResponsesDir,
		CacheFile:       protocol.CachePath(Ext),
		RequestSentinel: protocol.ToolRequestSentinel,
	})
}

func renderMain(body string, tools []catalog.ToolInfo) (string, error) {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return execTemplate(mainTemplate, struct {
		ToolNames     string
		Body          string
		FinalSentinel string
		ErrorSentinel string
	}{
		ToolNames:     strings.Join(names, ", "),
		Body:          indentBody(body),
		FinalSentinel: protocol.FinalSentinel,
		ErrorSentinel: protocol.ErrorSentinel,
	})
}

func indentBody(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func execTemplate(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
