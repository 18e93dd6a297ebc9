package ptc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSentinelsParsesCompleteLines(t *testing.T) {
	events, remainder := extractSentinels("__PTC_TOOL_REQUEST__req-1\n__PTC_FINAL__{\"ok\":true}\n")
	require.Len(t, events, 2)
	require.Equal(t, sentinelToolRequest, events[0].kind)
	require.Equal(t, "req-1", events[0].requestID)
	require.Equal(t, sentinelFinal, events[1].kind)
	require.Equal(t, `{"ok":true}`, events[1].payload)
	require.Empty(t, remainder)
}

func TestExtractSentinelsKeepsPartialLineAsRemainder(t *testing.T) {
	events, remainder := extractSentinels("__PTC_TOOL_REQ")
	require.Empty(t, events)
	require.Equal(t, "__PTC_TOOL_REQ", remainder)

	// The next chunk completes the line.
	events, remainder = extractSentinels(remainder + "UEST__req-7\n")
	require.Len(t, events, 1)
	require.Equal(t, "req-7", events[0].requestID)
	require.Empty(t, remainder)
}

func TestExtractSentinelsIgnoresOrdinaryOutput(t *testing.T) {
	events, remainder := extractSentinels("debug print\nanother line\ntrailing")
	require.Empty(t, events)
	require.Equal(t, "trailing", remainder)
}

func TestExtractSentinelsPreservesArrivalOrder(t *testing.T) {
	buffer := "__PTC_TOOL_REQUEST__a\nnoise\n__PTC_TOOL_REQUEST__b\n__PTC_ERROR__{\"message\":\"boom\"}\n"
	events, _ := extractSentinels(buffer)
	require.Len(t, events, 3)
	require.Equal(t, "a", events[0].requestID)
	require.Equal(t, "b", events[1].requestID)
	require.Equal(t, sentinelError, events[2].kind)
	require.Equal(t, `{"message":"boom"}`, events[2].payload)
}
