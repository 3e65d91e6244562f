package lexer

import "strings"

// stripLeadingZeros removes redundant leading zeros from an integer literal
// so it isn't misread as a C octal constant (e.g. "007" -> "7", "0" -> "0").
func stripLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

// doubleBackslashes doubles every backslash in s, so a BASIC string literal
// copied verbatim into a C string literal keeps its original byte content.
func doubleBackslashes(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

// rewriteDollar replaces '$' with 'S' in an identifier, the convention
// X-BASIC variable/function names use so they become legal C identifiers.
func rewriteDollar(s string) string {
	return strings.ReplaceAll(s, "$", "S")
}

// stripComment removes the opening "/*" and "*/" markers (and any stray
// trailing newline) from a BASIC comment line, leaving just its body.
func stripComment(line string) string {
	line = strings.ReplaceAll(line, "/*", "")
	line = strings.ReplaceAll(line, "*/", "")
	return strings.TrimRight(line, "\n")
}
