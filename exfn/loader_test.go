package exfn

import (
	"strings"
	"testing"

	"xbasicc/token"
)

const sampleDef = `[BASIC]
int  inkey$  ()    : b_inkey()
str  left$   (s,n) : b_left(&,%,%)
[MOUSE]
int  mos_x   ()    : b_mosx()
`

func TestTableLoad(t *testing.T) {
	kt := token.NewKeywordTable()
	tb := NewTable()
	if err := tb.Load(strings.NewReader(sampleDef), kt); err != nil {
		t.Fatal(err)
	}

	sig, ok := tb.LookupName("left$")
	if !ok {
		t.Fatal("expected left$ to be registered")
	}
	if sig.Group != "BASIC" || sig.CFunc != "b_left" {
		t.Errorf("left$ signature = %+v, want group BASIC cfunc b_left", sig)
	}

	id, ok := kt.Find("left$")
	if !ok || id != sig.ID {
		t.Errorf("keyword table Find(left$) = (%d,%v), want (%d,true)", id, ok, sig.ID)
	}

	mos, ok := tb.LookupName("mos_x")
	if !ok || mos.Group != "MOUSE" {
		t.Fatalf("mos_x signature = %+v, want group MOUSE", mos)
	}
	if mos.ID != sig.ID+1 {
		t.Errorf("mos_x id = %d, want sequential after inkey$/left$ (%d)", mos.ID, sig.ID+1)
	}
}

func TestTableLoadMergeContinuesIDs(t *testing.T) {
	kt := token.NewKeywordTable()
	tb := NewTable()
	first := "[EXT]\nint foo () : c_foo()\n"
	second := "[EXT2]\nint bar () : c_bar()\n"
	if err := tb.LoadMerge(kt, strings.NewReader(first), strings.NewReader(second)); err != nil {
		t.Fatal(err)
	}
	foo, _ := tb.LookupName("foo")
	bar, _ := tb.LookupName("bar")
	if bar.ID != foo.ID+1 {
		t.Errorf("bar.ID = %d, want %d (continuing after foo)", bar.ID, foo.ID+1)
	}
}

func TestRenderCArgs(t *testing.T) {
	av := []string{"buf", "10"}
	n := 0
	next := func() int { n++; return n }

	got, err := RenderCArgs("&,%,#", av, next)
	if err != nil {
		t.Fatal(err)
	}
	want := "&buf, 10, sizeof(10)"
	if got != want {
		t.Errorf("RenderCArgs = %q, want %q", got, want)
	}
}

func TestRenderCArgsStrTmp(t *testing.T) {
	n := 0
	next := func() int { n++; return n }
	got, err := RenderCArgs("$,$", nil, next)
	if err != nil {
		t.Fatal(err)
	}
	if got != "strtmp1, strtmp2" {
		t.Errorf("RenderCArgs = %q, want strtmp1, strtmp2", got)
	}
}
