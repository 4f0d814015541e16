package pptgen

import "strings"

// SplitLines splits text on line breaks, dropping the carriage return of
// CRLF endings. Empty text yields a single empty line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// BodyLines unescapes literal "\n" sequences, which web clients send for
// line breaks in slide bodies, and splits the result into lines.
func BodyLines(body string) []string {
	return SplitLines(strings.ReplaceAll(body, `\n`, "\n"))
}
