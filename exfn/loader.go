package exfn

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"xbasicc/token"
)

// reGroup matches a "[group]" section header line.
var reGroup = regexp.MustCompile(`^\[(.*)\]`)

// reEntry matches one signature line:
//
//	<type>? <name> <arg>? : <cfunc>(<carg>)
//
// e.g. "int  inkey$ ()      : b_inkey()"
//
//	"str   left$  (s,n)    : b_left(&,%,%)"
var reEntry = regexp.MustCompile(`^(\w+)?\s+([\w$]+)\s*([\(\[][\w,-]*[\)\]]?)?\s*:\s*(\w*)\(([#@&$%,]*)\)`)

// Table holds every Signature loaded so far, keyed by the keyword id
// assigned to it, and registers each one into a token.KeywordTable so the
// lexer recognizes the name as a keyword from then on.
type Table struct {
	byID   map[int]*Signature
	byName map[string]*Signature
	next   int // next id to assign, starts at token.FirstExFnID
}

// NewTable returns an empty Table ready to have one or more def files
// loaded into it via Load.
func NewTable() *Table {
	return &Table{
		byID:   map[int]*Signature{},
		byName: map[string]*Signature{},
		next:   token.FirstExFnID,
	}
}

// Load reads a bas2c.def-format file from r, registering each signature
// into kt (so the lexer recognizes the name) and into the Table (keyed by
// the id it's assigned). Ids are assigned incrementally starting wherever
// the Table's counter currently stands, so repeated calls to Load on the
// same Table (the (NEW) --defs merge supplement) continue the same
// sequence rather than restarting at FirstExFnID each time.
func (tb *Table) Load(r io.Reader, kt *token.KeywordTable) error {
	sc := bufio.NewScanner(r)
	group := ""
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if m := reGroup.FindStringSubmatch(line); m != nil {
			group = m[1]
			continue
		}
		m := reEntry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sig := &Signature{
			Type:  m[1],
			Name:  m[2],
			Arg:   m[3],
			CFunc: m[4],
			CArg:  m[5],
			Group: group,
			ID:    tb.next,
		}
		if _, dup := tb.byName[sig.Name]; dup {
			return fmt.Errorf("exfn: duplicate signature %q at line %d", sig.Name, lineNo)
		}
		tb.byID[sig.ID] = sig
		tb.byName[sig.Name] = sig
		kt.Register(sig.Name, sig.ID)
		tb.next++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("exfn: reading def file: %w", err)
	}
	return nil
}

// LoadMerge loads every reader in rs in order into the same Table,
// implementing the (NEW) multi-file supplement: project config can name
// several extension .def files (via repeated --defs flags or the
// extra_defs config list) and have their signatures coexist with the
// primary bas2c.def, continuing the same keyword-id sequence.
func (tb *Table) LoadMerge(kt *token.KeywordTable, rs ...io.Reader) error {
	for i, r := range rs {
		if err := tb.Load(r, kt); err != nil {
			return fmt.Errorf("exfn: merging def file %d: %w", i, err)
		}
	}
	return nil
}

// Lookup returns the Signature registered for keyword id id, if any.
func (tb *Table) Lookup(id int) (*Signature, bool) {
	s, ok := tb.byID[id]
	return s, ok
}

// LookupName returns the Signature registered under name, if any.
func (tb *Table) LookupName(name string) (*Signature, bool) {
	s, ok := tb.byName[name]
	return s, ok
}

// Groups returns every distinct group name across all loaded signatures,
// for per-group header (<group>.h) emission.
func (tb *Table) Groups() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range tb.byID {
		if s.Group != "" && !seen[s.Group] {
			seen[s.Group] = true
			out = append(out, s.Group)
		}
	}
	return out
}
