// Package driver orchestrates the two-pass translation of one X-BASIC
// source file into C: loading external-function signatures, running both
// passes, emitting headers/declarations around the translated body, and
// reporting diagnostics.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"xbasicc/exfn"
	"xbasicc/lexer"
	"xbasicc/symtab"
	"xbasicc/token"
	"xbasicc/translate"
)

// Options gathers every CLI-flag-controlled behavior for one translation
// run, after config-file defaults and CLI overrides have already been
// merged by the caller.
type Options struct {
	InputName  string
	OutputName string // "-" means stdout
	DefsPaths  []string
	Debug      bool // -D
	UndefErr   bool // -u
	NoBInit    bool // -n
	Verbose    bool // -v
	BCCompat   bool // -b
	CP932Out   bool // -s
	CommentTabs int // -c[N], -1 disables
}

// Driver wires a logger to a translation run.
type Driver struct {
	Log *zap.SugaredLogger
}

// New returns a Driver using a human-readable console logger, the
// register a CLI tool wants (not structured JSON, which would be the
// wrong fit for a terminal-facing translator).
func New(debug bool) (*Driver, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = !debug
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	} else {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Driver{Log: l.Sugar()}, nil
}

// Run translates one X-BASIC source file to C text, writing it to
// opts.OutputName (or stdout), and returns the process exit status the
// original tool used: 0 on success, 1 if any pass-1 or pass-2 error was
// reported.
func (d *Driver) Run(opts Options) (int, error) {
	raw, err := readInput(opts.InputName)
	if err != nil {
		return 1, err
	}
	text, err := decodeSource(raw)
	if err != nil {
		return 1, fmt.Errorf("decoding %s: %w", opts.InputName, err)
	}

	kt := token.NewKeywordTable()
	exTable := exfn.NewTable()
	if err := d.loadDefs(opts, kt, exTable); err != nil {
		return 1, err
	}

	lex, err := lexer.New(strings.NewReader(string(text)), kt)
	if err != nil {
		return 1, err
	}
	if opts.CommentTabs >= 0 {
		lex.CIndent = opts.CommentTabs
	}
	if opts.Verbose {
		lex.Verbose = os.Stderr
	}

	ns := symtab.New()
	flags := translate.Flags(0)
	if opts.Debug {
		flags |= translate.FlagDebug
	}
	if opts.UndefErr {
		flags |= translate.FlagUndefErr
	}
	if opts.NoBInit {
		flags |= translate.FlagNoBInit
	}
	if opts.Verbose {
		flags |= translate.FlagVerbose
	}
	if opts.BCCompat {
		flags |= translate.FlagBCCompat
	}
	if opts.CP932Out {
		flags |= translate.FlagCP932Out
	}
	if opts.CommentTabs >= 0 {
		flags |= translate.FlagBasComment
	}

	tr := translate.New(lex, ns, kt, exTable, flags)

	exitStatus := 0
	for _, e := range tr.Run1() {
		d.reportError(opts.InputName, e)
		exitStatus = 1
	}

	body, errs := tr.Run2()
	for _, e := range errs {
		d.reportError(opts.InputName, e)
		exitStatus = 1
	}

	if opts.Debug {
		d.Log.Debugf("external function table:\n%s", repr.String(exTable.Groups()))
	}

	out := d.render(tr, ns, body, opts)

	w, closeFn, err := openOutput(opts.OutputName)
	if err != nil {
		return 1, err
	}
	defer closeFn()

	if opts.CP932Out {
		if err := encodeCP932(w, out); err != nil {
			return 1, err
		}
	} else if _, err := io.WriteString(w, out); err != nil {
		return 1, err
	}

	return exitStatus, nil
}

func (d *Driver) loadDefs(opts Options, kt *token.KeywordTable, exTable *exfn.Table) error {
	paths := opts.DefsPaths
	if len(paths) == 0 {
		paths = []string{"bas2c.def"}
	}
	var readers []io.Reader
	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening signature file %s: %w", p, err)
		}
		files = append(files, f)
		readers = append(readers, f)
	}
	return exTable.LoadMerge(kt, readers...)
}

// render assembles the final C file: includes, global declarations,
// subroutine prototypes, strtmp buffer declarations, and main() wrapping
// the translated body, matching the original's start() emission order.
func (d *Driver) render(tr *translate.Translator, ns *symtab.Namespace, body string, opts Options) string {
	var b strings.Builder
	b.WriteString("#include <basic0.h>\n")
	b.WriteString("#include <string.h>\n")
	if opts.NoBInit {
		b.WriteString("#include <stdlib.h>\n")
	}
	for _, g := range tr.UsedGroups() {
		fmt.Fprintf(&b, "#include <%s.h>\n", strings.ToLower(g))
	}

	b.WriteString("\n")
	globals := ns.Globals()
	sort.Slice(globals, func(i, j int) bool { return globals[i].Name < globals[j].Name })
	for _, v := range globals {
		if v.IsFunc || v.IsFuncArg {
			continue
		}
		fmt.Fprintf(&b, "%s;\n", v.Definition())
	}
	for _, s := range tr.Subs() {
		fmt.Fprintf(&b, "void S%06d(void);\n", s)
	}

	for i := 0; i < tr.MaxStrTmp(); i++ {
		fmt.Fprintf(&b, "static unsigned char strtmp%d[258];\n", i)
	}

	b.WriteString("\n/******** program start ********/\n")
	b.WriteString("void main(int b_argc, char *b_argv[])\n{\n")
	if !opts.NoBInit {
		b.WriteString("\tb_init();\n")
	}
	b.WriteString(body)

	return b.String()
}

func (d *Driver) reportError(fname string, err error) {
	red := color.New(color.FgRed, color.Bold)
	lineInfo := errLine(err)
	red.Fprintf(os.Stderr, "%s:%s", fname, lineInfo)
	fmt.Fprintf(os.Stderr, "\t: error: %v\n", err)
	var p2 *translate.Pass2Error
	if errors.As(err, &p2) {
		d.Log.Errorw("translation error", "file", fname, "line", lineInfo, "error", err)
	} else {
		d.Log.Warnw("translation error", "file", fname, "line", lineInfo, "error", err)
	}
}

// errLine extracts the offending line info from a Pass1Error or
// Pass2Error, distinguishing the two kinds via errors.As the way
// SPEC_FULL.md's ambient-stack section describes.
func errLine(err error) string {
	var p1 *translate.Pass1Error
	if errors.As(err, &p1) {
		return p1.Line
	}
	var p2 *translate.Pass2Error
	if errors.As(err, &p2) {
		return p2.Line
	}
	return ""
}

func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func openOutput(name string) (io.Writer, func(), error) {
	if name == "" || name == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// DefaultOutputName derives foo.c from foo.bas, case-insensitively
// stripping a trailing .bas extension, or appending .c otherwise.
func DefaultOutputName(input string) string {
	lower := strings.ToLower(input)
	if strings.HasSuffix(lower, ".bas") {
		return input[:len(input)-4] + ".c"
	}
	return input + ".c"
}
