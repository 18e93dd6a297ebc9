package ptc

import (
	"strings"

	"github.com/sandboxptc/ptc/protocol"
)

// sentinelKind identifies which of the three stdout markers a line carries.
type sentinelKind int

const (
	sentinelToolRequest sentinelKind = iota
	sentinelFinal
	sentinelError
)

// sentinelEvent is one parsed stdout marker.
type sentinelEvent struct {
	kind      sentinelKind
	requestID string
	payload   string
}

// extractSentinels scans buffered stdout for complete (newline-terminated)
// lines, matching each against the three known sentinel prefixes. It
// returns the sentinel events found, in arrival order, plus whatever
// trailing partial line remains for the next chunk to complete. Matching
// is a plain prefix search on the rolling buffer: agent code that itself
// prints one of these literal prefixes can spoof a sentinel.
func extractSentinels(buffer string) (events []sentinelEvent, remainder string) {
	lines := strings.Split(buffer, "\n")
	remainder = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		if ev, ok := parseSentinelLine(line); ok {
			events = append(events, ev)
		}
	}
	return events, remainder
}

func parseSentinelLine(line string) (sentinelEvent, bool) {
	switch {
	case strings.HasPrefix(line, protocol.ToolRequestSentinel):
		return sentinelEvent{
			kind:      sentinelToolRequest,
			requestID: strings.TrimPrefix(line, protocol.ToolRequestSentinel),
		}, true
	case strings.HasPrefix(line, protocol.FinalSentinel):
		return sentinelEvent{
			kind:    sentinelFinal,
			payload: strings.TrimPrefix(line, protocol.FinalSentinel),
		}, true
	case strings.HasPrefix(line, protocol.ErrorSentinel):
		return sentinelEvent{
			kind:    sentinelError,
			payload: strings.TrimPrefix(line, protocol.ErrorSentinel),
		}, true
	default:
		return sentinelEvent{}, false
	}
}
