// Package lexer implements the line-buffered scanner that turns X-BASIC
// source text into a stream of token.Token values for the translator.
//
// It mirrors the teacher's scanner shape (see
// amoghasbhardwaj-Eloquence/lexer) but works a line at a time, because
// X-BASIC's grammar is line-structured: a leading numeric label, `#c` /
// `#endc` verbatim blocks, and line-initial comments are all properties of
// whole physical lines, not of individual runes.
package lexer

import (
	"io"
	"regexp"
	"strings"

	"xbasicc/token"
)

var (
	reLeadingLineNo = regexp.MustCompile(`^[ \t]*([0-9]+)[ \t]*`)
	reString        = regexp.MustCompile(`^"[^"\n]*("?)`)
	reCharLit       = regexp.MustCompile(`^'[^']?'`)
	reHex           = regexp.MustCompile(`^&[hH]([0-9a-fA-F]+)`)
	reOctal         = regexp.MustCompile(`^&[oO]([0-7]+)`)
	reBinary        = regexp.MustCompile(`^&[bB]([01]+)`)
	reFloat1        = regexp.MustCompile(`^([0-9]+\.[0-9]*([eE][0-9]+)?)#?`)
	reFloat2        = regexp.MustCompile(`^([0-9]*\.[0-9]+([eE][0-9]+)?)#?`)
	reFloat3        = regexp.MustCompile(`^([0-9]+)#`)
	reInt           = regexp.MustCompile(`^([0-9]+)`)
	reIdent         = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*`)
)

// Lexer scans X-BASIC source buffered entirely in memory, so Rewind can
// restart the token stream for the translator's second pass without
// re-opening any external resource.
type Lexer struct {
	kt *token.KeywordTable

	buf []string // source split into physical lines, newline-terminated
	idx int      // index of the next unread line in buf

	line    string // remaining unconsumed text of the current physical line
	curLine string // full text of the current physical line, for diagnostics
	first   bool   // true until the first token of the current line is read

	lineNo     int // physical line counter
	basLineNo  int // current BASIC line number (label-derived or inherited)
	gotoLineNo int // leading label on the current line, consumed once

	cached []token.Token // LIFO pushback stack

	nocomment bool // suppress line-initial "/*...*/" passthrough

	ccode strings.Builder // accumulated #c..#endc / -c comment text

	preLen int // line length before the most recent Fetch
	curLen int // line length after the most recent Fetch

	// CIndent, when >= 0, makes the lexer insert each physical BASIC line
	// as a C comment (indented by CIndent tabs) into the ccode stream,
	// implementing the -c[N] flag.
	CIndent int

	// Verbose, if non-nil, receives each physical line as it's read
	// during the second pass (the -v flag's line echo).
	Verbose io.Writer
	bpass   int
}

// New reads all of r into memory and returns a Lexer positioned at the
// start of it. kt supplies the keyword/operator tables; it may be extended
// later (by exfn.Load) before translation begins.
func New(r io.Reader, kt *token.KeywordTable) (*Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// The DOS EOF marker 0x1A terminates input wherever it appears.
	text := string(data)
	if i := strings.IndexByte(text, 0x1A); i >= 0 {
		text = text[:i]
	}
	l := &Lexer{kt: kt, CIndent: -1}
	l.buf = splitLines(text)
	l.Rewind()
	return l, nil
}

// splitLines splits s into lines that each retain their trailing "\n"
// (the last line may lack one), matching line-oriented readline semantics.
func splitLines(s string) []string {
	var out []string
	for len(s) > 0 {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			out = append(out, s[:i+1])
			s = s[i+1:]
		} else {
			out = append(out, s)
			s = ""
		}
	}
	return out
}

// SetPass tells the lexer which translation pass is running; it only
// affects whether Verbose echoing is active (the -v flag echoes pass 2).
func (l *Lexer) SetPass(n int) { l.bpass = n }

// Rewind restarts scanning from the beginning of the buffered input.
func (l *Lexer) Rewind() {
	l.idx = 0
	l.line = ""
	l.curLine = ""
	l.lineNo = 0
	l.basLineNo = 0
	l.gotoLineNo = 0
	l.cached = nil
	l.nocomment = false
	l.ccode.Reset()
	l.preLen = 0
	l.curLen = 0
}

// SetNoComment controls whether a line-initial "/*...*/" comment is passed
// through as a Comment token (false) or swallowed as EOL (true). The
// translator toggles this around FUNC/ENDFUNC/END/bare RETURN.
func (l *Lexer) SetNoComment(v bool) { l.nocomment = v }

// readLine pulls the next physical line into l.line/l.curLine, handling
// the leading-label extraction and -c comment insertion. It returns false
// at end of input.
func (l *Lexer) readLine() bool {
	if l.idx >= len(l.buf) {
		l.line = ""
		l.curLine = ""
		l.gotoLineNo = 0
		l.first = true
		return false
	}
	l.line = l.buf[l.idx]
	l.idx++
	l.curLine = l.line
	l.gotoLineNo = 0
	l.first = true

	l.lineNo++
	l.basLineNo++

	if l.CIndent >= 0 {
		l.ccode.WriteString(strings.Repeat("\t", l.CIndent))
		l.ccode.WriteString("/*===")
		l.ccode.WriteString(stripComment(l.line))
		l.ccode.WriteString("===*/\n")
	}
	if l.Verbose != nil && l.bpass == 2 {
		io.WriteString(l.Verbose, l.line)
	}

	if m := reLeadingLineNo.FindStringSubmatchIndex(l.line); m != nil {
		var n int
		for _, c := range l.line[m[2]:m[3]] {
			n = n*10 + int(c-'0')
		}
		l.gotoLineNo = n
		l.basLineNo = n
		l.line = l.line[m[1]:]
	}
	return true
}

// getLine ensures l.line holds unconsumed text (reading a new physical
// line if necessary), passing #c..#endc blocks straight into ccode.
func (l *Lexer) getLine() bool {
	if len(l.line) == 0 {
		if !l.readLine() {
			return false
		}
		if strings.HasPrefix(l.line, "#c") {
			for l.readLine() {
				if strings.HasPrefix(l.line, "#endc") {
					break
				}
				l.ccode.WriteString(l.line)
			}
			l.readLine()
		}
	}
	l.line = strings.TrimLeft(l.line, " \t\r")
	l.preLen = len(l.line)
	l.curLen = len(l.line)
	return true
}

// GotoLineNo returns the numeric label that began the current line, if
// any, and resets it: it can only be retrieved once per label.
func (l *Lexer) GotoLineNo() int {
	r := l.gotoLineNo
	l.gotoLineNo = 0
	return r
}

// ErrorLineNo formats the current physical/BASIC line numbers for
// diagnostics, e.g. "42 (100)".
func (l *Lexer) ErrorLineNo() string {
	return itoa(l.lineNo) + " (" + itoa(l.basLineNo) + ")"
}

// CurLine returns the full text of the physical line currently being
// scanned, for caret-style diagnostics.
func (l *Lexer) CurLine() string { return l.curLine }

// CaretOffset returns how many characters into CurLine the most recent
// Fetch's token started, for positioning a caret under it.
func (l *Lexer) CaretOffset() int {
	return len(l.curLine) - l.preLen
}

// CCode returns and clears the text accumulated from #c..#endc blocks and
// -c comment insertion since the last call.
func (l *Lexer) CCode() string {
	r := l.ccode.String()
	l.ccode.Reset()
	return r
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

// Fetch returns the next token, consuming it (or returning a pushed-back
// one if Unfetch was called).
func (l *Lexer) Fetch() token.Token {
	if n := len(l.cached); n > 0 {
		t := l.cached[n-1]
		l.cached = l.cached[:n-1]
		return t
	}
	return l.get()
}

// Unfetch pushes a previously fetched token back so the next Fetch returns
// it again. Implemented as a stack (not a single slot) so nested lookahead
// in the expression parser composes safely.
func (l *Lexer) Unfetch(t token.Token) {
	l.cached = append(l.cached, t)
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	if n := len(l.cached); n > 0 {
		return l.cached[n-1]
	}
	t := l.Fetch()
	l.cached = append(l.cached, t)
	return t
}

// Skip discards tokens up to and including the next statement boundary
// (':' or EOL) or EOF, used for pass-2 error recovery.
func (l *Lexer) Skip() {
	for {
		t := l.Fetch()
		if t.IsSymbol(":") || t.IsKeyword(token.EOL) || t.IsKeyword(token.EOF) {
			return
		}
	}
}

// get scans and returns the next raw token from the input.
func (l *Lexer) get() token.Token {
	if !l.getLine() {
		return token.Kw(token.EOF)
	}
	if l.line == "\n" || l.line == "" {
		l.line = ""
		return token.Kw(token.EOL)
	}
	if strings.HasPrefix(l.line, "/*") {
		if l.first && !l.nocomment {
			comment := "/*" + stripComment(l.line) + "*/"
			l.line = ""
			return token.CommentTok(comment)
		}
		l.line = ""
		return token.Kw(token.EOL)
	}
	l.first = false

	if m := reString.FindStringSubmatch(l.line); m != nil {
		full := m[0]
		l.line = l.line[len(full):]
		if m[1] != `"` {
			full += `"`
		}
		return token.StrLit(doubleBackslashes(full))
	}
	if m := reCharLit.FindString(l.line); m != "" {
		l.line = l.line[len(m):]
		return token.CharLit(m)
	}
	if m := reHex.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.IntLit("0x" + m[1])
	}
	if m := reOctal.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.IntLit("0" + m[1])
	}
	if m := reBinary.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.IntLit("0b" + m[1])
	}
	if m := reFloat1.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.FloatLit("(double)" + m[1])
	}
	if m := reFloat2.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.FloatLit("(double)" + m[1])
	}
	if m := reFloat3.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.FloatLit("(double)" + m[1])
	}
	if m := reInt.FindStringSubmatch(l.line); m != nil {
		l.line = l.line[len(m[0]):]
		return token.IntLit(stripLeadingZeros(m[1]))
	}
	if m := reIdent.FindString(l.line); m != "" {
		l.line = l.line[len(m):]
		if id, ok := l.kt.Find(m); ok {
			return token.Kw(id)
		}
		return token.VariableTok(rewriteDollar(m))
	}
	if id, rest, ok := l.kt.FindOp(l.line); ok {
		l.line = rest
		return token.Kw(id)
	}
	c := l.line[:1]
	l.line = l.line[1:]
	return token.Sym(c)
}
