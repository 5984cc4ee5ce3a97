// Package source provides line-oriented helpers shared by the
// dialect detectors. Detection is pattern-based over raw text; none
// of the helpers parse or validate syntax.
package source

import "strings"

// SnippetContext is the number of lines captured around a match
const SnippetContext = 2

// Lines splits file content into lines, tolerating CRLF endings
func Lines(content []byte) []string {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Snippet returns the text around the given zero-based line index,
// SnippetContext lines either side
func Snippet(lines []string, index int) string {
	start := index - SnippetContext
	if start < 0 {
		start = 0
	}
	end := index + SnippetContext + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// Lookback joins up to n lines preceding the given zero-based index,
// including the line itself. Used to resolve an attribute declared
// shortly before the matching line.
func Lookback(lines []string, index, n int) string {
	start := index - n
	if start < 0 {
		start = 0
	}
	return strings.Join(lines[start:index+1], "\n")
}

// Lookahead joins the line at the given zero-based index with up to n
// following lines. Used to read an attribute declared on a
// continuation line, e.g. a method option after a call opening.
func Lookahead(lines []string, index, n int) string {
	end := index + n + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[index:end], "\n")
}

// FirstGroup returns the first non-empty capture group of a regexp
// match slice
func FirstGroup(match []string) string {
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}
	return ""
}

// Truncate shortens a string for use in node names and descriptions
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
