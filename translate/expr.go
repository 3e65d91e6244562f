package translate

import (
	"fmt"
	"strings"

	"xbasicc/symtab"
	"xbasicc/token"
)

// exprResult is one parsed (sub)expression: its BASIC-side result type and
// the already-rendered C text for it.
type exprResult struct {
	Type symtab.Type
	Text string
}

// resultType implements BASIC's type-promotion lattice for a binary
// operation: CHAR widens to INT; INT combined with FLOAT promotes to
// FLOAT; STR only survives arithmetic through '+' (string concatenation),
// any other arithmetic op on a STR operand is an error.
func resultType(a, b symtab.Type, allowStrPlus bool) (symtab.Type, error) {
	if a == symtab.Str || b == symtab.Str {
		if allowStrPlus && a == symtab.Str && b == symtab.Str {
			return symtab.Str, nil
		}
		return 0, fmt.Errorf("string operand not valid in this operator")
	}
	if a == symtab.Float || b == symtab.Float {
		return symtab.Float, nil
	}
	if a == symtab.Char {
		a = symtab.Int
	}
	if b == symtab.Char {
		b = symtab.Int
	}
	if a == symtab.Int || b == symtab.Int {
		return symtab.Int, nil
	}
	return a, nil
}

// checkKeyword consumes and returns true if the next token is keyword kw.
func (tr *Translator) checkKeyword(kw int) bool {
	t := tr.Lex.Fetch()
	if t.IsKeyword(kw) {
		return true
	}
	tr.Lex.Unfetch(t)
	return false
}

// checkSymbol consumes and returns true if the next token is symbol s.
func (tr *Translator) checkSymbol(s string) bool {
	t := tr.Lex.Fetch()
	if t.IsSymbol(s) {
		return true
	}
	tr.Lex.Unfetch(t)
	return false
}

// nextSymbol requires the next token to be symbol s, consuming it or
// erroring.
func (tr *Translator) nextSymbol(s string) error {
	if !tr.checkSymbol(s) {
		return fmt.Errorf("expected %q", s)
	}
	return nil
}

// Expr parses a full expression at the lowest precedence (xor) and
// returns its type and rendered C text. It returns ok=false (no error) if
// the next token can't start an expression at all, the way the original
// uses None to mean "no expression here" at an optional-argument site.
func (tr *Translator) Expr() (exprResult, bool, error) {
	return tr.exprXor()
}

func (tr *Translator) binaryLevel(next func() (exprResult, bool, error), kws []int, bccompat, enhanced string) (exprResult, bool, error) {
	r, ok, err := next()
	if err != nil || !ok {
		return r, ok, err
	}
	for {
		matched := -1
		for _, kw := range kws {
			if tr.checkKeyword(kw) {
				matched = kw
				break
			}
		}
		if matched < 0 {
			return r, true, nil
		}
		a, ok, err := next()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand")
		}
		rt, err := resultType(r.Type, a.Type, false)
		if err != nil {
			return exprResult{}, false, err
		}
		r = exprResult{Type: rt, Text: tr.renderBinOp(matched, r, a)}
	}
}

func (tr *Translator) renderBinOp(kw int, l, rr exprResult) string {
	bc := tr.Flags.has(FlagBCCompat)
	switch kw {
	case token.OpXor:
		if !bc {
			return fmt.Sprintf("((int)%s ^ (int)%s)", l.Text, rr.Text)
		}
		return fmt.Sprintf("%s ^ %s", l.Text, rr.Text)
	case token.OpOr:
		if !bc {
			return fmt.Sprintf("((int)%s | (int)%s)", l.Text, rr.Text)
		}
		return fmt.Sprintf("%s | %s", l.Text, rr.Text)
	case token.OpAnd:
		if !bc {
			return fmt.Sprintf("((int)%s & (int)%s)", l.Text, rr.Text)
		}
		return fmt.Sprintf("%s & %s", l.Text, rr.Text)
	case token.OpShr:
		return fmt.Sprintf("(%s >> %s)", l.Text, rr.Text)
	case token.OpShl:
		return fmt.Sprintf("(%s << %s)", l.Text, rr.Text)
	case token.OpPlus:
		return fmt.Sprintf("(%s + %s)", l.Text, rr.Text)
	case token.OpMinus:
		return fmt.Sprintf("(%s - %s)", l.Text, rr.Text)
	case token.OpMod:
		return fmt.Sprintf("((int)%s %% (int)%s)", l.Text, rr.Text)
	case token.OpYen:
		return fmt.Sprintf("((int)%s / (int)%s)", l.Text, rr.Text)
	case token.OpMul:
		return fmt.Sprintf("(%s * %s)", l.Text, rr.Text)
	case token.OpDiv:
		return fmt.Sprintf("(%s / %s)", l.Text, rr.Text)
	}
	return fmt.Sprintf("(%s %s)", l.Text, rr.Text)
}

func (tr *Translator) exprXor() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprOr, []int{token.OpXor}, "", "")
}

func (tr *Translator) exprOr() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprAnd, []int{token.OpOr}, "", "")
}

func (tr *Translator) exprAnd() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprNot, []int{token.OpAnd}, "", "")
}

func (tr *Translator) exprNot() (exprResult, bool, error) {
	if tr.checkKeyword(token.OpNot) {
		r, ok, err := tr.exprNot()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand after NOT")
		}
		if tr.Flags.has(FlagBCCompat) {
			return exprResult{Type: symtab.Int, Text: fmt.Sprintf("(!%s)", r.Text)}, true, nil
		}
		return exprResult{Type: symtab.Int, Text: fmt.Sprintf("(~(int)%s)", r.Text)}, true, nil
	}
	return tr.exprCmp()
}

// truthy wraps a C comparison's boolean result the way -b affects it: in
// BC-compat mode a comparison's value is the raw C `int` 0/1; in enhanced
// mode it's negated to -1/0, matching BASIC's all-bits-set TRUE.
func (tr *Translator) truthy(cmp string) string {
	if tr.Flags.has(FlagBCCompat) {
		return cmp
	}
	return "-(" + cmp + ")"
}

// cmpCode is the two-byte ASCII opcode bas2c.def's runtime expects as
// b_strcmp's middle argument, one per comparison operator.
var cmpCode = map[int]int{
	token.OpEq: 0x3d20,
	token.OpNe: 0x3c3e,
	token.OpGt: 0x3e20,
	token.OpLt: 0x3c20,
	token.OpGe: 0x3e3d,
	token.OpLe: 0x3c3d,
}

func (tr *Translator) exprCmp() (exprResult, bool, error) {
	r, ok, err := tr.exprShift()
	if err != nil || !ok {
		return r, ok, err
	}
	cmpOps := map[int]string{
		token.OpEq: "==", token.OpNe: "!=", token.OpGt: ">",
		token.OpLt: "<", token.OpGe: ">=", token.OpLe: "<=",
	}
	for {
		matched := 0
		for kw := range cmpOps {
			if tr.checkKeyword(kw) {
				matched = kw
				break
			}
		}
		if matched == 0 {
			return r, true, nil
		}
		a, ok, err := tr.exprShift()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand")
		}
		if r.Type == symtab.Str || a.Type == symtab.Str {
			if r.Type != symtab.Str || a.Type != symtab.Str {
				return exprResult{}, false, fmt.Errorf("string operand not valid with this comparison")
			}
			v := fmt.Sprintf("b_strcmp(%s,0x%x,%s)", r.Text, cmpCode[matched], a.Text)
			if !tr.Flags.has(FlagBCCompat) {
				v = fmt.Sprintf("(%s)?-1:0", v)
			}
			r = exprResult{Type: symtab.Int, Text: v}
			continue
		}
		if _, err := resultType(r.Type, a.Type, false); err != nil {
			return exprResult{}, false, err
		}
		cmp := fmt.Sprintf("(%s %s %s)", r.Text, cmpOps[matched], a.Text)
		r = exprResult{Type: symtab.Int, Text: tr.truthy(cmp)}
	}
}

func (tr *Translator) exprShift() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprAddSub, []int{token.OpShr, token.OpShl}, "", "")
}

func (tr *Translator) exprAddSub() (exprResult, bool, error) {
	r, ok, err := tr.exprMod()
	if err != nil || !ok {
		return r, ok, err
	}
	if r.Type == symtab.Str {
		return tr.stringConcat(r)
	}
	for {
		var kw int
		if tr.checkKeyword(token.OpPlus) {
			kw = token.OpPlus
		} else if tr.checkKeyword(token.OpMinus) {
			kw = token.OpMinus
		} else {
			return r, true, nil
		}
		a, ok, err := tr.exprMod()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand")
		}
		rt, err := resultType(r.Type, a.Type, false)
		if err != nil {
			return exprResult{}, false, err
		}
		r = exprResult{Type: rt, Text: tr.renderBinOp(kw, r, a)}
	}
}

// stringConcat parses a chain of STR '+' STR '+' ... operands, flattening
// the whole chain into one variadic b_stradd call terminated by -1 and
// backed by a single scratch buffer, rather than nesting a fresh call (and
// burning a fresh buffer) per '+'.
func (tr *Translator) stringConcat(r exprResult) (exprResult, bool, error) {
	if !tr.checkKeyword(token.OpPlus) {
		return r, true, nil
	}
	n := tr.nextStrTmp()
	var b strings.Builder
	fmt.Fprintf(&b, "b_stradd(strtmp%d,%s,", n, r.Text)
	for {
		a, ok, err := tr.exprMod()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand")
		}
		if a.Type != symtab.Str {
			return exprResult{}, false, fmt.Errorf("string operand not valid in this operator")
		}
		fmt.Fprintf(&b, "%s,", a.Text)
		if !tr.checkKeyword(token.OpPlus) {
			break
		}
	}
	b.WriteString("-1)")
	return exprResult{Type: symtab.Str, Text: b.String()}, true, nil
}

func (tr *Translator) exprMod() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprYen, []int{token.OpMod}, "", "")
}

func (tr *Translator) exprYen() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprMulDiv, []int{token.OpYen}, "", "")
}

func (tr *Translator) exprMulDiv() (exprResult, bool, error) {
	return tr.binaryLevel(tr.exprUnary, []int{token.OpMul, token.OpDiv}, "", "")
}

func (tr *Translator) exprUnary() (exprResult, bool, error) {
	if tr.checkKeyword(token.OpMinus) {
		r, ok, err := tr.exprUnary()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected operand after unary -")
		}
		if r.Type == symtab.Str {
			return exprResult{}, false, fmt.Errorf("unary - not valid on a string")
		}
		return exprResult{Type: r.Type, Text: fmt.Sprintf("(-%s)", r.Text)}, true, nil
	}
	if tr.checkKeyword(token.OpPlus) {
		return tr.exprUnary()
	}
	return tr.exprParen()
}

func (tr *Translator) exprParen() (exprResult, bool, error) {
	if tr.checkSymbol("(") {
		r, ok, err := tr.Expr()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected expression after (")
		}
		if err := tr.nextSymbol(")"); err != nil {
			return exprResult{}, false, err
		}
		return exprResult{Type: r.Type, Text: "(" + r.Text + ")"}, true, nil
	}
	return tr.exprAtom()
}

func (tr *Translator) exprAtom() (exprResult, bool, error) {
	t := tr.Lex.Fetch()
	switch t.Type {
	case token.Int:
		return exprResult{Type: symtab.Int, Text: t.Value}, true, nil
	case token.Char:
		return exprResult{Type: symtab.Char, Text: t.Value}, true, nil
	case token.Float:
		return exprResult{Type: symtab.Float, Text: t.Value}, true, nil
	case token.Str:
		return exprResult{Type: symtab.Str, Text: t.Value}, true, nil
	case token.Variable:
		return tr.variableRef(t)
	case token.Keyword:
		if r, ok, err := tr.exfncall(t, true); ok || err != nil {
			return r, ok, err
		}
		tr.Lex.Unfetch(t)
		return exprResult{}, false, nil
	default:
		tr.Lex.Unfetch(t)
		return exprResult{}, false, nil
	}
}

// variableRef resolves a bare identifier as either a plain variable
// reference or (if followed by '(') a user function call.
func (tr *Translator) variableRef(t token.Token) (exprResult, bool, error) {
	if tr.Lex.Peek().IsSymbol("(") {
		return tr.fncall(t)
	}
	tr.Lex.Unfetch(t)
	r, err := tr.lvalue()
	if err != nil {
		return exprResult{}, false, err
	}
	return r, true, nil
}

func (tr *Translator) arrayIndexRef(name string, v *symtab.Variable) (exprResult, bool, error) {
	text := v.Name
	for tr.checkSymbol("[") {
		idx, ok, err := tr.Expr()
		if err != nil {
			return exprResult{}, false, err
		}
		if !ok {
			return exprResult{}, false, fmt.Errorf("expected index expression")
		}
		if err := tr.nextSymbol("]"); err != nil {
			return exprResult{}, false, err
		}
		text += "[" + idx.Text + "]"
	}
	return exprResult{Type: v.Type, Text: text}, true, nil
}
