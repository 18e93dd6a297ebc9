// Command demo wires a PTC Client to an Anthropic-backed agent loop. It
// illustrates the "agent framework" collaborator named out of scope by the
// specification: the loop submits one user message, and if the model
// replies with a ptc_executor tool call, forwards the generated code to
// Client.Execute and feeds the result back.
//
// This command is a minimal illustration, not a production agent runtime;
// real deployments own their own planning loop and call ptc.Client.Execute
// directly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/sandboxptc/ptc"
	"github.com/sandboxptc/ptc/catalog"
	"github.com/sandboxptc/ptc/schema"
)

func main() {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}

	weatherTool := catalog.Tool{
		Name:        "get_weather",
		Description: "Returns the current weather for a city.",
		InputSchema: schema.Obj(map[string]schema.Schema{
			"city": schema.Str(),
		}, "city"),
		Invoke: func(ctx context.Context, args any) (any, error) {
			obj, _ := args.(map[string]any)
			city, _ := obj["city"].(string)
			return map[string]any{"city": city, "weather": "sunny"}, nil
		},
	}

	// A real deployment supplies a sandbox.Provider backed by ephemeral,
	// network-isolated VMs; localProvider runs the program as a plain child
	// process so the demo works on a developer machine with npx available.
	client, err := ptc.New(ptc.Options{
		Tools:    []catalog.Spec{weatherTool},
		Provider: localProvider{},
	})
	if err != nil {
		log.Fatalf("ptc.New: %v", err)
	}

	executor := ptc.CreateExecutorTool(client)
	anthropicClient := sdk.NewClient()

	message, err := anthropicClient.Messages.New(context.Background(), sdk.MessageNewParams{
		Model:     sdk.ModelClaudeSonnet4_5_20250929,
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{{
			Text: "You write multi-tool workflows as a single piece of code. Functions available inside the sandbox:\n" + client.CatalogText(),
		}},
		Tools: []sdk.ToolUnionParam{
			sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{
				Properties: map[string]any{
					"code": map[string]any{"type": "string"},
				},
				Required: []string{"code"},
			}, executor.Name),
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(
				"Check the weather in London and Paris and summarize it. Write the workflow as code for " + executor.Name + ".",
			)),
		},
	})
	if err != nil {
		log.Fatalf("anthropic request: %v", err)
	}

	for _, block := range message.Content {
		if block.Type != "tool_use" || block.Name != executor.Name {
			continue
		}
		var args struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(block.Input, &args); err != nil {
			log.Fatalf("decode tool_use input: %v", err)
		}
		result := client.Execute(context.Background(), args.Code)
		if !result.Success {
			fmt.Println("execution failed:", result.Error)
			continue
		}
		out, _ := json.MarshalIndent(result.Result, "", "  ")
		fmt.Println(string(out))
	}
}
