// Package translate implements the fused expression parser and statement
// translator: the recursive-descent walk that turns one X-BASIC source
// line at a time into C text, across two passes over the same token
// stream (Rewind-able via the lexer).
package translate

import (
	"fmt"
	"sort"
	"strings"

	"xbasicc/exfn"
	"xbasicc/lexer"
	"xbasicc/symtab"
	"xbasicc/token"
)

// Flags is a bitmask of CLI-controlled translator behaviors.
type Flags int

const (
	FlagDebug      Flags = 1 << iota // -D
	FlagUndefErr                     // -u: undefined function call is an error, not a warning
	FlagNoBInit                      // -n: omit the implicit b_init() call in main()
	FlagVerbose                      // -v: echo source lines while translating
	FlagBCCompat                     // -b: BC.X-compatible code generation
	FlagCP932Out                     // -s: write output as CP932
	FlagBasComment                   // -c: insert BASIC source lines as C comments
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Translator holds everything the two passes share: the lexer, the symbol
// table, the loaded external-function table, behavior flags, and the
// running state built up as a program is walked (nest stack, known labels
// and subroutines, scratch-buffer counters).
type Translator struct {
	Lex   *lexer.Lexer
	NS    *symtab.Namespace
	KT    *token.KeywordTable
	ExFn  *exfn.Table
	Flags Flags

	pass int
	nest *nestStack

	labels  map[int]bool // BASIC line numbers targeted by a GOTO
	subs    map[int]bool // BASIC line numbers targeted by a GOSUB
	curFunc string       // name of the FUNC currently being translated, "" at top level

	strtmp    int // next strtmp<N> scratch-buffer index, reset at each statement boundary
	maxStrTmp int // running max of strtmp over every statement seen so far
	initmp    int // next _initmp<NNNN> static-initializer index

	usedGroups map[string]bool // exfn groups actually referenced, for #include emission

	pass1Errors []error
	pass2Errors []error

	out strings.Builder
}

// New returns a Translator ready to run pass 1 over lex.
func New(lex *lexer.Lexer, ns *symtab.Namespace, kt *token.KeywordTable, ex *exfn.Table, flags Flags) *Translator {
	return &Translator{
		Lex:        lex,
		NS:         ns,
		KT:         kt,
		ExFn:       ex,
		Flags:      flags,
		nest:       newNestStack(),
		labels:     map[int]bool{},
		subs:       map[int]bool{},
		usedGroups: map[string]bool{},
	}
}

// SetPass switches both the translator and its lexer/namespace to pass n
// (1 or 2), resetting per-pass transient state. Like the original's
// setpass(), it flushes whatever strtmp count is still pending from the
// previous run into maxStrTmp before resetting the counter.
func (tr *Translator) SetPass(n int) {
	tr.updateStrTmp()
	tr.pass = n
	tr.Lex.SetPass(n)
	tr.NS.SetPass(n)
	tr.nest = newNestStack()
	tr.curFunc = ""
	tr.initmp = 0
}

// updateStrTmp folds the current statement's strtmp usage into the
// running maxStrTmp and resets the counter to 0 for the next statement,
// mirroring the original's updatestrtmp().
func (tr *Translator) updateStrTmp() {
	if tr.strtmp > tr.maxStrTmp {
		tr.maxStrTmp = tr.strtmp
	}
	tr.strtmp = 0
}

// nextStrTmp returns the next strtmp<N> scratch buffer index (0-based),
// advancing the counter; exfn.RenderCArgs and string-concatenation
// emission both draw from this single per-statement sequence so buffer
// names never collide within one statement.
func (tr *Translator) nextStrTmp() int {
	n := tr.strtmp
	tr.strtmp++
	return n
}

// nextInitmp returns the next _initmp<NNNN> static-array-initializer
// index, advancing the counter.
func (tr *Translator) nextInitmp() int {
	n := tr.initmp
	tr.initmp++
	return n
}

// MaxStrTmp reports how many strtmp<N> scratch buffers the program needs
// at most in any one statement, so the driver can emit their
// declarations once, ahead of main().
func (tr *Translator) MaxStrTmp() int { return tr.maxStrTmp }

// Errors returns the errors collected so far in the current pass (the
// Pass1Errors during pass 1, the Pass2Errors otherwise), in the order
// encountered.
func (tr *Translator) Errors() []error {
	if tr.pass == 1 {
		return tr.pass1Errors
	}
	return tr.pass2Errors
}

func (tr *Translator) fail1(format string, args ...any) {
	tr.pass1Errors = append(tr.pass1Errors, &Pass1Error{
		Line: tr.Lex.ErrorLineNo(),
		Msg:  fmt.Sprintf(format, args...),
	})
}

func (tr *Translator) fail2(format string, args ...any) {
	tr.pass2Errors = append(tr.pass2Errors, &Pass2Error{
		Line: tr.Lex.ErrorLineNo(),
		Msg:  fmt.Sprintf(format, args...),
	})
}

// emit appends already-rendered C text to the pass-2 output buffer; in
// any other pass the text is discarded.
func (tr *Translator) emit(s string) {
	if tr.pass != 2 {
		return
	}
	tr.out.WriteString(s)
}

func (tr *Translator) emitf(format string, args ...any) {
	if tr.pass != 2 {
		return
	}
	fmt.Fprintf(&tr.out, format, args...)
}

// Output returns everything emitted during pass 2 so far.
func (tr *Translator) Output() string { return tr.out.String() }

// Run1 walks the whole token stream once in pass-1 mode, building the
// symbol table and the label/subroutine sets. It never emits C text.
func (tr *Translator) Run1() []error {
	tr.SetPass(1)
	for {
		t := tr.Lex.Peek()
		if t.IsKeyword(token.EOF) {
			break
		}
		if err := tr.statement(); err != nil {
			tr.fail1("%v", err)
			tr.Lex.Skip()
		}
	}
	tr.updateStrTmp()
	return tr.pass1Errors
}

// Run2 rewinds the lexer and walks the whole token stream again in
// pass-2 mode, this time emitting C text for every statement.
func (tr *Translator) Run2() (string, []error) {
	tr.Lex.Rewind()
	tr.SetPass(2)
	for {
		t := tr.Lex.Peek()
		if t.IsKeyword(token.EOF) {
			break
		}
		if err := tr.statement(); err != nil {
			tr.fail2("%v", err)
			tr.Lex.Skip()
		}
	}
	tr.closeMain()
	tr.updateStrTmp()
	return tr.out.String(), tr.pass2Errors
}

// exitFunc is the C function END/fall-off-end calls to terminate the
// program: b_exit unless -n (FlagNoBInit) asked for the runtime's own
// init/exit pair to be skipped entirely, in which case it falls back to
// the plain libc exit.
func (tr *Translator) exitFunc() string {
	if tr.Flags.has(FlagNoBInit) {
		return "exit"
	}
	return "b_exit"
}

// closeMain implements the original's nestclose() 'M' case: a program
// that falls off the end of its source without an explicit END still
// needs main() to exit and its brace closed.
func (tr *Translator) closeMain() {
	if top, ok := tr.nest.top(); ok && top.kind == NestMain {
		tr.nest.pop()
		tr.emitf("%s(0);\n}\n", tr.exitFunc())
	}
}

// UsedGroups returns every exfn group name actually referenced by the
// program, sorted, for deterministic per-group header (<group>.h)
// emission.
func (tr *Translator) UsedGroups() []string {
	out := make([]string, 0, len(tr.usedGroups))
	for g := range tr.usedGroups {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Labels returns every BASIC line number targeted by a GOTO, sorted.
func (tr *Translator) Labels() []int {
	out := make([]int, 0, len(tr.labels))
	for l := range tr.labels {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Subs returns every BASIC line number targeted by a GOSUB, sorted.
func (tr *Translator) Subs() []int {
	out := make([]int, 0, len(tr.subs))
	for s := range tr.subs {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}
