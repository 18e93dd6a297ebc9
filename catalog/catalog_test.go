package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandboxptc/ptc/schema"
)

func noopInvoke(ctx context.Context, args any) (any, error) { return nil, nil }

func namedTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "does " + name,
		InputSchema: schema.Obj(map[string]schema.Schema{"city": schema.Str()}, "city"),
		Invoke:      noopInvoke,
	}
}

func TestNewIndexesToolsInRegistrationOrder(t *testing.T) {
	c, err := New(namedTool("get_weather"), namedTool("calculate"))
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	require.Equal(t, "get_weather", list[0].Name)
	require.Equal(t, "calculate", list[1].Name)

	info, ok := c.ByName("calculate")
	require.True(t, ok)
	require.Equal(t, "does calculate", info.Description)

	_, ok = c.ByName("missing")
	require.False(t, ok)
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(namedTool("get_weather"), namedTool("get_weather"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "get_weather")
}

func TestNewRejectsMissingNameOrInvoke(t *testing.T) {
	_, err := New(Tool{Invoke: noopInvoke})
	require.Error(t, err)

	_, err = New(Tool{Name: "broken"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestToolWithOutputCarriesOutputSchema(t *testing.T) {
	spec := ToolWithOutput{
		Tool:         namedTool("get_weather"),
		OutputSchema: schema.Obj(map[string]schema.Schema{"weather": schema.Str()}, "weather"),
	}
	c, err := New(spec)
	require.NoError(t, err)

	info, ok := c.ByName("get_weather")
	require.True(t, ok)
	require.NotNil(t, info.OutputSchema)
	require.Contains(t, c.CatalogText(), "Promise<{ weather: string }>")
}

func TestNamesAreSorted(t *testing.T) {
	c, err := New(namedTool("zeta"), namedTool("alpha"))
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "zeta"}, c.Names())
}

func TestCatalogTextRendersSignatureAndDescription(t *testing.T) {
	c, err := New(namedTool("get_weather"))
	require.NoError(t, err)

	text := c.CatalogText()
	require.Contains(t, text, "async function get_weather(input: { city: string }): Promise<any>")
	require.Contains(t, text, "does get_weather")
}

func TestValidateArgsRejectsBadShape(t *testing.T) {
	c, err := New(namedTool("get_weather"))
	require.NoError(t, err)
	info, _ := c.ByName("get_weather")

	failures, err := info.ValidateArgs(json.RawMessage(`{"city":"london"}`))
	require.NoError(t, err)
	require.Empty(t, failures)

	failures, err = info.ValidateArgs(json.RawMessage(`{}`))
	require.NoError(t, err)
	require.NotEmpty(t, failures)
}
