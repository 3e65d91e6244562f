// Package exfn implements the external/builtin-function dispatcher: the
// bas2c.def signature table, its file format, and the two small
// mini-languages (arg pattern, C arg pattern) used when emitting a call.
package exfn

// Signature is one entry from a bas2c.def line: how a BASIC builtin or
// library function is spelled on the source side and how it should be
// emitted as a C call.
type Signature struct {
	// Type is the BASIC return-type letter (e.g. "I", "S", "" for a
	// statement with no value), taken verbatim from the def file.
	Type string
	// Name is the BASIC-side spelling, e.g. "inkey$" or "mos_pos".
	Name string
	// Arg is the source-side argument scan pattern, e.g. "(I,I)" or
	// "[I]", which translate's exfncall walks at the call site.
	Arg string
	// CFunc is the C function name to call, e.g. "b_inkey".
	CFunc string
	// CArg is the C-side argument emission pattern, e.g. "%,%" or
	// "&,#,@" — see RenderCArgs.
	CArg string
	// Group names the def file's [group] section the entry came from
	// (e.g. "BASIC", "MOUSE", "STICK"), used for per-group header
	// (<group>.h) emission.
	Group string
	// ID is the keyword id this signature was assigned when loaded,
	// starting at token.FirstExFnID and incrementing per entry across
	// every file merged into the same Table.
	ID int
}
