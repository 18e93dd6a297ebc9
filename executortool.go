package ptc

import (
	"context"
	"errors"

	"github.com/sandboxptc/ptc/catalog"
	"github.com/sandboxptc/ptc/schema"
)

// ExecutorToolName is the name under which CreateExecutorTool exposes a
// Client as an ordinary tool.
const ExecutorToolName = "ptc_executor"

// CreateExecutorTool exposes client.Execute as a named tool accepting
// {code: non-empty string}, so a PTC client can itself be registered as a
// tool for a further-outer agent (an outer Catalog built from tools that
// include this one).
func CreateExecutorTool(client *Client) catalog.Tool {
	return catalog.Tool{
		Name:        ExecutorToolName,
		Description: "Executes a piece of source code against the registered tool catalog inside an isolated sandbox and returns its result.",
		InputSchema: schema.Obj(map[string]schema.Schema{
			"code": schema.Str(),
		}, "code"),
		Invoke: func(ctx context.Context, args any) (any, error) {
			obj, ok := args.(map[string]any)
			if !ok {
				return nil, errors.New("ptc_executor: expected an object argument with a \"code\" field")
			}
			code, _ := obj["code"].(string)
			if code == "" {
				return nil, errors.New("ptc_executor: \"code\" must be a non-empty string")
			}
			result := client.Execute(ctx, code)
			if !result.Success {
				return nil, errors.New(result.Error)
			}
			return result.Result, nil
		},
	}
}
