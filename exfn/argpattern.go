package exfn

import (
	"fmt"
	"strings"
)

// Nasi is the C text substituted for an elided ("no argument supplied")
// external-function argument — the same value as token.NasiSentinel.
const Nasi = "0x4e415349"

// RenderCArgs walks a Signature's CArg mini-language and renders the final
// C argument list, given the already-evaluated BASIC-side argument texts
// in av (in the order Arg was scanned). The CArg grammar:
//
//	%   - emit av[i], advance i
//	&   - emit "&" + av[i], advance i
//	#   - emit "sizeof(" + av[i-1] + ")" (previous argument's size)
//	@   - emit "sizeof(" + av[i-1] + "[0])" (previous argument's element size)
//	$   - emit a fresh "strtmp<N>" scratch-buffer name, advancing nextStrTmp
//	,   - literal comma separator
//
// nextStrTmp is called each time a '$' needs a new scratch-buffer number;
// callers pass a closure bound to the translator's own counter so the
// numbering is shared with the rest of the current statement.
func RenderCArgs(carg string, av []string, nextStrTmp func() int) (string, error) {
	var b strings.Builder
	i := 0
	for _, c := range carg {
		switch c {
		case ',':
			b.WriteString(", ")
		case '#':
			if i == 0 {
				return "", fmt.Errorf("exfn: '#' with no preceding argument")
			}
			fmt.Fprintf(&b, "sizeof(%s)", av[i-1])
		case '@':
			if i == 0 {
				return "", fmt.Errorf("exfn: '@' with no preceding argument")
			}
			fmt.Fprintf(&b, "sizeof(%s[0])", av[i-1])
		case '&':
			if i >= len(av) {
				return "", fmt.Errorf("exfn: '&' ran out of arguments")
			}
			if av[i] != "" {
				b.WriteString("&" + av[i])
			}
			i++
		case '%':
			if i >= len(av) {
				return "", fmt.Errorf("exfn: '%%' ran out of arguments")
			}
			b.WriteString(av[i])
			i++
		case '$':
			fmt.Fprintf(&b, "strtmp%d", nextStrTmp())
		}
	}
	return b.String(), nil
}
