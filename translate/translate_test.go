package translate

import (
	"strings"
	"testing"

	"xbasicc/exfn"
	"xbasicc/lexer"
	"xbasicc/symtab"
	"xbasicc/token"
)

func newTranslator(t *testing.T, src string, flags Flags) *Translator {
	t.Helper()
	kt := token.NewKeywordTable()
	lex, err := lexer.New(strings.NewReader(src), kt)
	if err != nil {
		t.Fatalf("lexer.New: %v", err)
	}
	return New(lex, symtab.New(), kt, exfn.NewTable(), flags)
}

func run(t *testing.T, src string, flags Flags) (string, *Translator) {
	t.Helper()
	tr := newTranslator(t, src, flags)
	if errs := tr.Run1(); len(errs) > 0 {
		t.Fatalf("pass 1 errors: %v", errs)
	}
	out, errs := tr.Run2()
	if len(errs) > 0 {
		t.Fatalf("pass 2 errors: %v", errs)
	}
	return out, tr
}

func TestNestStackPushPopCloseExpect(t *testing.T) {
	n := newNestStack()
	if top, ok := n.top(); !ok || top.kind != NestMain {
		t.Fatalf("fresh stack should start with NestMain, got %+v, %v", top, ok)
	}
	n.push(NestFor, "I")
	if top, ok := n.top(); !ok || top.kind != NestFor || top.label != "I" {
		t.Fatalf("push didn't land on top: %+v", top)
	}
	if _, err := n.closeExpect(NestWhile); err == nil {
		t.Fatalf("closeExpect should reject a mismatched kind")
	}
	if f, err := n.closeExpect(NestFor); err != nil || f.label != "I" {
		t.Fatalf("closeExpect(NestFor) = %+v, %v", f, err)
	}
	if top, ok := n.top(); !ok || top.kind != NestMain {
		t.Fatalf("after popping the only frame, NestMain should remain: %+v", top)
	}
}

func TestNestStackInFunc(t *testing.T) {
	n := newNestStack()
	if n.inFunc() {
		t.Fatalf("bare NestMain is not inFunc")
	}
	n.push(NestSub, "")
	if n.inFunc() {
		t.Fatalf("NestSub is not inFunc")
	}
	n.push(NestFunc, "f")
	if !n.inFunc() {
		t.Fatalf("NestFunc should report inFunc")
	}
	n.push(NestFor, "")
	if !n.inFunc() {
		t.Fatalf("a FOR nested inside a FUNC should still report inFunc")
	}
}

func TestResultTypePromotion(t *testing.T) {
	cases := []struct {
		a, b     symtab.Type
		allowStr bool
		want     symtab.Type
		wantErr  bool
	}{
		{symtab.Int, symtab.Int, false, symtab.Int, false},
		{symtab.Char, symtab.Int, false, symtab.Int, false},
		{symtab.Int, symtab.Float, false, symtab.Float, false},
		{symtab.Char, symtab.Char, false, symtab.Int, false},
		{symtab.Str, symtab.Str, true, symtab.Str, false},
		{symtab.Str, symtab.Str, false, 0, true},
		{symtab.Str, symtab.Int, false, 0, true},
	}
	for _, c := range cases {
		got, err := resultType(c.a, c.b, c.allowStr)
		if c.wantErr {
			if err == nil {
				t.Errorf("resultType(%v, %v, %v) expected error", c.a, c.b, c.allowStr)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("resultType(%v, %v, %v) = %v, %v; want %v", c.a, c.b, c.allowStr, got, err, c.want)
		}
	}
}

func TestTranslateArithmeticAndPrint(t *testing.T) {
	out, _ := run(t, "10 A=1\n20 B=2\n30 C=A+B\n40 PRINT C\n50 END\n", 0)
	if !strings.Contains(out, "C = (A + B);") {
		t.Errorf("missing arithmetic assignment, got:\n%s", out)
	}
	if !strings.Contains(out, "b_iprint(C);") {
		t.Errorf("missing int PRINT, got:\n%s", out)
	}
	if !strings.Contains(out, "exit(0);\n}\n") {
		t.Errorf("missing implicit main close, got:\n%s", out)
	}
}

func TestTranslateGotoOnlyLabelsJumpTargets(t *testing.T) {
	src := "10 GOTO 30\n20 PRINT \"skipped\"\n30 PRINT \"done\"\n40 END\n"
	out, tr := run(t, src, 0)

	if got := tr.Labels(); len(got) != 1 || got[0] != 30 {
		t.Fatalf("Labels() = %v, want [30]", got)
	}
	if !strings.Contains(out, "goto L000030;") {
		t.Errorf("missing goto statement, got:\n%s", out)
	}
	if !strings.Contains(out, "L000030:") {
		t.Errorf("missing label at the jump target, got:\n%s", out)
	}
	if strings.Contains(out, "L000010:") || strings.Contains(out, "L000020:") {
		t.Errorf("non-target lines must not grow labels, got:\n%s", out)
	}
}

func TestTranslateGosubOpensSubroutineFunction(t *testing.T) {
	src := "10 GOSUB 100\n20 END\n100 PRINT \"in sub\"\n110 RETURN\n"
	out, tr := run(t, src, 0)

	if got := tr.Subs(); len(got) != 1 || got[0] != 100 {
		t.Fatalf("Subs() = %v, want [100]", got)
	}
	if !strings.Contains(out, "S000100();") {
		t.Errorf("missing subroutine call, got:\n%s", out)
	}
	if !strings.Contains(out, "void S000100(void)\n{\n") {
		t.Errorf("missing subroutine function opening, got:\n%s", out)
	}
	if !strings.Contains(out, "return;\n}\n") {
		t.Errorf("bare RETURN should close the subroutine brace, got:\n%s", out)
	}
}

func TestTranslateStringConcatFlattensIntoOneBuffer(t *testing.T) {
	src := "10 PRINT \"a\"+\"b\"+\"c\"\n20 END\n"
	out, tr := run(t, src, 0)

	if !strings.Contains(out, `b_stradd(strtmp0,"a","b","c",-1)`) {
		t.Errorf("expected a flat, single-buffer b_stradd chain, got:\n%s", out)
	}
	if strings.Contains(out, "strtmp1") {
		t.Errorf("a three-way concat should use only one scratch buffer, got:\n%s", out)
	}
	if got := tr.MaxStrTmp(); got != 1 {
		t.Errorf("MaxStrTmp() = %d, want 1", got)
	}
}

func TestTranslateStringComparisonUsesBStrcmpWithCmpCode(t *testing.T) {
	src := "5 STR A$,B$\n10 IF A$<=B$ THEN PRINT \"ok\"\n20 END\n"
	out, _ := run(t, src, 0)

	if !strings.Contains(out, "b_strcmp(AS,0x3c3d,BS)") {
		t.Errorf("expected b_strcmp with the <= CMPCODE, got:\n%s", out)
	}
	if !strings.Contains(out, "(b_strcmp(AS,0x3c3d,BS))?-1:0") {
		t.Errorf("expected the ternary truth-form wrapper outside BC-compat mode, got:\n%s", out)
	}
	if strings.Contains(out, "strcmp(AS, BS)") {
		t.Errorf("must not fall back to libc strcmp, got:\n%s", out)
	}
}

func TestTranslateMaxStrTmpIsPerStatementNotCumulative(t *testing.T) {
	src := "5 STR A$,B$\n10 A$=\"a\"+\"b\"\n20 B$=\"c\"+\"d\"\n30 END\n"
	_, tr := run(t, src, 0)

	if got := tr.MaxStrTmp(); got != 1 {
		t.Errorf("MaxStrTmp() = %d, want 1 (each statement only ever needs one buffer), got %d", got, got)
	}
}

func TestTranslateBCCompatTogglesComparisonRendering(t *testing.T) {
	src := "10 IF A=1 THEN PRINT \"ok\"\n20 END\n"
	enhanced, _ := run(t, src, 0)
	bc, _ := run(t, src, FlagBCCompat)

	if !strings.Contains(enhanced, "-((A == 1))") {
		t.Errorf("enhanced mode should negate the raw comparison, got:\n%s", enhanced)
	}
	if strings.Contains(bc, "-((A == 1))") {
		t.Errorf("BC-compat mode should leave the comparison raw, got:\n%s", bc)
	}
	if !strings.Contains(bc, "if ((A == 1)) {") {
		t.Errorf("BC-compat IF condition mismatch, got:\n%s", bc)
	}
}
