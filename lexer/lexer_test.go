package lexer

import (
	"strings"
	"testing"

	"xbasicc/token"
)

func fetchAll(t *testing.T, l *Lexer, n int) []token.Token {
	t.Helper()
	out := make([]token.Token, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.Fetch())
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("A=1+2\n"), kt)
	if err != nil {
		t.Fatal(err)
	}

	toks := fetchAll(t, l, 6)
	want := []token.Token{
		token.VariableTok("A"),
		token.Kw(token.OpEq),
		token.IntLit("1"),
		token.Kw(token.OpPlus),
		token.IntLit("2"),
		token.Kw(token.EOL),
	}
	for i, w := range want {
		if toks[i] != w {
			t.Errorf("token %d = %+v, want %+v", i, toks[i], w)
		}
	}
}

func TestLexerStringLiteral(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader(`PRINT "hi\there"`+"\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	tok := l.Fetch()
	if !tok.IsKeyword(token.KwPrint) {
		t.Fatalf("expected PRINT keyword, got %+v", tok)
	}
	str := l.Fetch()
	if str.Type != token.Str {
		t.Fatalf("expected Str token, got %+v", str)
	}
	if str.Value != `"hi\\there"` {
		t.Errorf("string literal = %q, want %q", str.Value, `"hi\\there"`)
	}
}

func TestLexerUnterminatedStringAutoClosed(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader(`"oops`+"\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	str := l.Fetch()
	if str.Type != token.Str || !strings.HasSuffix(str.Value, `"`) {
		t.Fatalf("expected auto-closed string, got %+v", str)
	}
}

func TestLexerNumericLiterals(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("10 007 &hFF &o17 &b101 1.5 .5 3#\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	toks := fetchAll(t, l, 6)
	want := []string{"7", "0xFF", "017", "0b101", "(double)1.5", "(double).5"}
	for i, w := range want {
		if toks[i].Value != w {
			t.Errorf("literal %d = %q, want %q", i, toks[i].Value, w)
		}
	}
	last := l.Fetch()
	if last.Value != "(double)3" {
		t.Errorf("trailing-# literal = %q, want %q", last.Value, "(double)3")
	}
}

func TestLexerLeadingLineNumber(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("100 PRINT 1\n200 PRINT 2\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	l.Fetch() // PRINT
	if got := l.GotoLineNo(); got != 100 {
		t.Fatalf("GotoLineNo = %d, want 100", got)
	}
	if got := l.GotoLineNo(); got != 0 {
		t.Fatalf("second GotoLineNo = %d, want 0 (one-shot)", got)
	}
}

func TestLexerUnfetchPeek(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("A B\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	a := l.Fetch()
	b := l.Peek()
	if b.Value != "B" {
		t.Fatalf("Peek = %+v, want B", b)
	}
	l.Unfetch(a)
	again := l.Fetch()
	if again != a {
		t.Fatalf("Fetch after Unfetch = %+v, want %+v", again, a)
	}
}

func TestLexerCCodePassthrough(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("#c\nint x;\n#endc\nA=1\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	l.Fetch() // A
	cc := l.CCode()
	if !strings.Contains(cc, "int x;") {
		t.Errorf("CCode() = %q, want it to contain %q", cc, "int x;")
	}
}

func TestLexerRewind(t *testing.T) {
	kt := token.NewKeywordTable()
	l, err := New(strings.NewReader("A=1\n"), kt)
	if err != nil {
		t.Fatal(err)
	}
	first := fetchAll(t, l, 4)
	l.Rewind()
	second := fetchAll(t, l, 4)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("token %d differs after Rewind: %+v vs %+v", i, first[i], second[i])
		}
	}
}
