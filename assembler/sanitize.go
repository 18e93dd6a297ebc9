package assembler

import (
	"regexp"
	"strings"
)

var (
	importLineRe = regexp.MustCompile(`^\s*import\s+.*from\s+["'][^"']*["']\s*;?\s*$`)
	mainHeaderRe = regexp.MustCompile(`async\s+function\s+main\s*\(\s*\)\s*\{`)
	exportMainRe = regexp.MustCompile(`export\s+default\s+main\s*\(\s*\)\s*;?`)
)

// sanitize rewrites agent-authored source that commonly breaks the
// generated wrapper: top-level `import … from "…"` statements, and a
// surrounding `async function main() { … }` plus trailing
// `export default main();`. Rewriting is purely syntactic string
// manipulation; it never touches bytes that lie inside a string or
// template literal.
func sanitize(source string) string {
	source = stripImportLines(source)
	source = stripMainWrapper(source)
	return source
}

// stripImportLines removes any line that is, in its entirety outside a
// string, a top-level import statement.
func stripImportLines(source string) string {
	lines := strings.Split(source, "\n")
	var out []string
	offset := 0
	mask := stringMask(source)
	for _, line := range lines {
		lineStart := offset
		offset += len(line) + 1
		if lineStart < len(mask) && mask[lineStart] {
			// The line begins inside a string literal; never touch it.
			out = append(out, line)
			continue
		}
		if importLineRe.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// stripMainWrapper removes a top-level `async function main() { ... }`
// wrapper and its matching `export default main();` suffix, leaving only
// the function body. If no such wrapper is present, source is returned
// unchanged.
func stripMainWrapper(source string) string {
	mask := stringMask(source)
	loc := mainHeaderRe.FindStringIndex(source)
	if loc == nil || (loc[0] < len(mask) && mask[loc[0]]) {
		return source
	}
	bodyStart := loc[1] // just past the opening '{'
	closeIdx := matchingBraceIndex(source, bodyStart)
	if closeIdx == -1 {
		return source
	}
	body := source[bodyStart:closeIdx]
	rest := source[closeIdx+1:]
	// The only thing allowed between the closing brace and EOF (besides
	// whitespace) is the matching export statement; if anything else is
	// there, this isn't the wrapper pattern we recognize and we bail out
	// to avoid corrupting unrelated code.
	trimmedRest := strings.TrimSpace(rest)
	if trimmedRest != "" && strings.TrimSpace(exportMainRe.ReplaceAllString(trimmedRest, "")) != "" {
		return source
	}
	rest = exportMainRe.ReplaceAllString(rest, "")
	return source[:loc[0]] + body + rest
}

// matchingBraceIndex returns the index of the '}' that closes the '{'
// immediately preceding start (start is just past that '{'), scanning
// outside strings only. Returns -1 if unbalanced.
func matchingBraceIndex(source string, start int) int {
	mask := stringMask(source)
	depth := 1
	for i := start; i < len(source); i++ {
		if i < len(mask) && mask[i] {
			continue
		}
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
