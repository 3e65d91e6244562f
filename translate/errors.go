package translate

import "fmt"

// Pass1Error is returned for a problem discovered while building the
// symbol table (undeclared-ahead-of-use issues, malformed declarations):
// recoverable because pass 1 only needs to know what exists, not emit
// anything, so the translator logs it and keeps scanning.
type Pass1Error struct {
	Line string // lexer.ErrorLineNo() at the point of failure
	Msg  string
}

func (e *Pass1Error) Error() string {
	return fmt.Sprintf("pass1: line %s: %s", e.Line, e.Msg)
}

// Pass2Error is returned for a problem discovered while emitting C: the
// statement at fault is skipped (via Lexer.Skip) and translation
// continues so later errors in the same file are also reported.
type Pass2Error struct {
	Line string
	Msg  string
}

func (e *Pass2Error) Error() string {
	return fmt.Sprintf("pass2: line %s: %s", e.Line, e.Msg)
}
