package token

import "testing"

func TestKeywordTableFind(t *testing.T) {
	kt := NewKeywordTable()

	tests := []struct {
		word     string
		expected int
		ok       bool
	}{
		{"PRINT", KwPrint, true},
		{"print", KwPrint, true},
		{"GoSub", KwGosub, true},
		{"endfunc", KwEndFunc, true},
		{"mod", OpMod, true},
		{"notakeyword", 0, false},
	}

	for _, tt := range tests {
		id, ok := kt.Find(tt.word)
		if ok != tt.ok {
			t.Fatalf("Find(%q) ok = %v, want %v", tt.word, ok, tt.ok)
		}
		if ok && id != tt.expected {
			t.Errorf("Find(%q) = %d, want %d", tt.word, id, tt.expected)
		}
	}
}

func TestKeywordTableFindOp(t *testing.T) {
	kt := NewKeywordTable()

	tests := []struct {
		input    string
		id       int
		rest     string
		ok       bool
	}{
		{"<>abc", OpNe, "abc", true},
		{"<=x", OpLe, "x", true},
		{"<x", OpLt, "x", true},
		{"+1", OpPlus, "1", true},
		{"?", KwPrint, "", true},
		{"abc", 0, "abc", false},
	}

	for _, tt := range tests {
		id, rest, ok := kt.FindOp(tt.input)
		if ok != tt.ok || (ok && (id != tt.id || rest != tt.rest)) {
			t.Errorf("FindOp(%q) = (%d,%q,%v), want (%d,%q,%v)", tt.input, id, rest, ok, tt.id, tt.rest, tt.ok)
		}
	}
}

func TestKeywordTableRegister(t *testing.T) {
	kt := NewKeywordTable()
	kt.Register("inkey$$", 5001)

	id, ok := kt.Find("INKEY$$")
	if !ok || id != 5001 {
		t.Fatalf("Find(INKEY$$) = (%d,%v), want (5001,true)", id, ok)
	}
	name, ok := kt.Name(5001)
	if !ok || name != "inkey$$" {
		t.Fatalf("Name(5001) = (%q,%v), want (inkey$$,true)", name, ok)
	}
}

func TestTokenPredicates(t *testing.T) {
	kwIf := Kw(KwIf)
	if !kwIf.IsKeyword(KwIf) {
		t.Error("expected IsKeyword(KwIf) to be true")
	}
	if kwIf.IsKeyword(KwThen) {
		t.Error("expected IsKeyword(KwThen) to be false")
	}

	sym := Sym("(")
	if !sym.IsSymbol("(") {
		t.Error("expected IsSymbol to be true")
	}

	vt := Kw(KwStr)
	if !vt.IsVarType() {
		t.Error("expected IsVarType to be true for str")
	}

	nonvt := Kw(KwIf)
	if nonvt.IsVarType() {
		t.Error("expected IsVarType to be false for if")
	}

	str := StrLit(`"hi"`)
	if !str.IsConst() {
		t.Error("expected string literal to be IsConst")
	}
}
