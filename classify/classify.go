// Package classify implements the Error Classifier (C7): it scans raw
// transpiler/runner output (combined stderr+stdout) and converts it into a
// single, agent-friendly message. Classification is pure and deterministic:
// no I/O, same input always yields the same output.
package classify

import (
	"regexp"
	"strings"
)

var (
	transformFailedRe = regexp.MustCompile(`Transform failed with (\d+) error`)
	locationErrorRe   = regexp.MustCompile(`([^\s:][^:]*):(\d+):(\d+):\s*ERROR:\s*(.+)`)
	kindErrorRe       = regexp.MustCompile(`\b(Syntax|Type|Reference)Error:\s*(.+)`)
	genericErrorRe    = regexp.MustCompile(`Error:\s*(.+)`)
	braceHintWords    = []string{"catch", "unexpected \"}\"", "expected"}
)

// Classify scans combined output for the highest-priority recognizable
// failure pattern and returns a single human-readable message. It never
// fails: if nothing recognizable is found it returns a generic fallback.
func Classify(output string) string {
	if loc := locationErrorRe.FindStringSubmatch(output); loc != nil {
		path, line, col, msg := loc[1], loc[2], loc[3], strings.TrimSpace(loc[4])
		base := "compilation error at " + path + ":" + line + ":" + col + ": " + msg
		if transformFailedRe.MatchString(output) || mentionsBraceIssue(msg) {
			base += " (check for unbalanced braces)"
		}
		return base
	}

	if m := kindErrorRe.FindStringSubmatch(output); m != nil {
		msg := strings.TrimSpace(m[2])
		return "runtime error: " + m[1] + "Error: " + msg
	}

	if m := genericErrorRe.FindStringSubmatch(output); m != nil {
		return "Error: " + strings.TrimSpace(m[1])
	}

	if line := firstUsefulStderrLine(output); line != "" {
		return line
	}

	return "code execution failed"
}

func mentionsBraceIssue(msg string) bool {
	lower := strings.ToLower(msg)
	for _, hint := range braceHintWords {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// firstUsefulStderrLine strips package-manager banners and stack-frame
// noise (lines starting with "at " or made only of whitespace/dashes) and
// returns the first remaining non-empty line, or "" if none remain.
func firstUsefulStderrLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "at ") {
			continue
		}
		if strings.HasPrefix(trimmed, "npm ") || strings.HasPrefix(trimmed, "yarn ") {
			continue
		}
		if strings.Trim(trimmed, "-=") == "" {
			continue
		}
		return trimmed
	}
	return ""
}
