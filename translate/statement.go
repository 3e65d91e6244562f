package translate

import (
	"fmt"
	"strconv"
	"strings"

	"xbasicc/symtab"
	"xbasicc/token"
)

// checkVarType consumes and returns the next token's type if it is one of
// INT/CHAR/FLOAT/STR.
func (tr *Translator) checkVarType() (symtab.Type, bool) {
	t := tr.Lex.Fetch()
	if id, ok := t.KwID(); ok {
		if ty, ok := varTypeOf(id); ok {
			return ty, true
		}
	}
	tr.Lex.Unfetch(t)
	return 0, false
}

func (tr *Translator) nextKeyword(kw int) error {
	if !tr.checkKeyword(kw) {
		return fmt.Errorf("expected keyword %d", kw)
	}
	return nil
}

func (tr *Translator) nextInt() (int, error) {
	t := tr.Lex.Fetch()
	if t.Type != token.Int {
		return 0, fmt.Errorf("expected integer literal")
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		// hex/binary-prefixed literals aren't valid GOTO/GOSUB targets;
		// a plain decimal is all the grammar allows there.
		return 0, fmt.Errorf("invalid line number %q", t.Value)
	}
	return n, nil
}

const labelFormat = "S%06d"

// closeOpenEntryPoint closes whichever top-level C function is currently
// open — the implicit main() or a GOSUB subroutine — so a new FUNC or
// subroutine label can start a fresh one. A line number can only open a
// new entry point once every construct nested inside the previous one
// has closed; anything else left open is a mis-nested program and later
// fails to parse on its own terms.
func (tr *Translator) closeOpenEntryPoint() {
	if top, ok := tr.nest.top(); ok {
		switch top.kind {
		case NestMain:
			tr.nest.pop()
			tr.emitf("%s(0);\n}\n", tr.exitFunc())
		case NestSub:
			tr.nest.pop()
			tr.emit("}\n")
		}
	}
}

// genLabel checks whether the line just read is a recorded GOTO or
// GOSUB target and, if so, emits the label or opens a new subroutine
// function. An ordinary numbered line that nothing jumps to emits
// nothing.
func (tr *Translator) genLabel(l int) {
	if tr.labels[l] {
		tr.emitf("L%06d:\n", l)
		return
	}
	if tr.subs[l] {
		tr.Lex.SetNoComment(false)
		tr.closeOpenEntryPoint()
		tr.nest.push(NestSub, "")
		tr.emit("\n/***************************/\n")
		tr.emitf("void %s(void)\n{\n", fmt.Sprintf(labelFormat, l))
	}
}

// statement parses and (on pass 2) emits exactly one X-BASIC statement.
// On pass 1 it still walks the full grammar (so declarations and
// labels/subroutines get registered) but discards the text it would have
// emitted.
func (tr *Translator) statement() error {
	for tr.checkSymbol(":") {
	}
	if tr.checkKeyword(token.EOF) {
		return nil
	}
	tr.updateStrTmp()

	if l := tr.Lex.GotoLineNo(); l != 0 && tr.pass == 2 {
		tr.genLabel(l)
	}
	tr.emit(tr.Lex.CCode())

	if ty, ok := tr.checkVarType(); ok {
		return tr.defvar(ty)
	}

	t := tr.Lex.Fetch()

	if t.Type == token.Comment {
		tr.emit(t.Value)
		tr.emit("\n")
		return nil
	}

	if t.Type == token.Keyword {
		return tr.keywordStatement(t)
	}

	if t.IsSymbol("}") {
		return tr.closeBrace()
	}

	// Otherwise it's either an assignment (NAME ... '=' expr) or a bare
	// user-function call used as a statement.
	tr.Lex.Unfetch(t)
	return tr.assignOrCall()
}

func (tr *Translator) keywordStatement(t token.Token) error {
	id, _ := t.KwID()
	switch id {
	case token.EOL:
		top, ok := tr.nest.top()
		if ok && (top.kind == NestThen1 || top.kind == NestElse1) {
			tr.nest.pop()
			tr.emit("}\n")
		}
		return nil

	case token.KwDim:
		ty := symtab.Int
		if t, ok := tr.checkVarType(); ok {
			ty = t
		}
		return tr.defvar(ty)

	case token.KwPrint, token.KwLprint:
		return tr.printStatement(id == token.KwLprint)

	case token.KwInput:
		return tr.inputStatement()

	case token.KwLinput:
		return tr.linputStatement()

	case token.KwIf:
		return tr.ifStatement()

	case token.KwElse:
		return tr.elseStatement()

	case token.KwFor:
		return tr.forStatement()

	case token.KwNext:
		_, err := tr.nest.closeExpect(NestFor)
		if err != nil {
			return err
		}
		tr.emit("}\n")
		return nil

	case token.KwWhile:
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected WHILE condition")
		}
		tr.nest.push(NestWhile, "")
		tr.emitf("while (%s) {\n", x.Text)
		return nil

	case token.KwEndWhile:
		if _, err := tr.nest.closeExpect(NestWhile); err != nil {
			return err
		}
		tr.emit("}\n")
		return nil

	case token.KwRepeat:
		tr.nest.push(NestRepeat, "")
		tr.emit("do {\n")
		return nil

	case token.KwUntil:
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected UNTIL condition")
		}
		if _, err := tr.nest.closeExpect(NestRepeat); err != nil {
			return err
		}
		tr.emitf("} while (!(%s));\n", x.Text)
		return nil

	case token.KwSwitch:
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected SWITCH expression")
		}
		tr.nest.push(NestSwitch, "")
		tr.emitf("switch (%s) {\n", x.Text)
		return nil

	case token.KwCase:
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected CASE value")
		}
		tr.emitf("case %s:\n", x.Text)
		return nil

	case token.KwDefault:
		tr.emit("default:\n")
		return nil

	case token.KwEndSwitch:
		if _, err := tr.nest.closeExpect(NestSwitch); err != nil {
			return err
		}
		tr.emit("}\n")
		return nil

	case token.KwGoto:
		l, err := tr.nextInt()
		if err != nil {
			return err
		}
		if tr.pass == 1 {
			tr.labels[l] = true
		}
		tr.emitf("goto L%06d;\n", l)
		return nil

	case token.KwGosub:
		l, err := tr.nextInt()
		if err != nil {
			return err
		}
		if tr.pass == 1 {
			tr.subs[l] = true
		}
		tr.emitf("%s();\n", fmt.Sprintf(labelFormat, l))
		return nil

	case token.KwFunc:
		return tr.funcStatement()

	case token.KwEndFunc:
		tr.NS.SetLocal("")
		tr.curFunc = ""
		if _, err := tr.nest.closeExpect(NestFunc); err != nil {
			return err
		}
		tr.Lex.SetNoComment(true)
		tr.emit("}\n")
		return nil

	case token.KwReturn:
		return tr.returnStatement()

	case token.KwBreak:
		tr.checkSymbol(";")
		tr.emit("break;\n")
		return nil

	case token.KwContinue:
		tr.emit("continue;\n")
		return nil

	case token.KwLocate:
		return tr.locateStatement()

	case token.KwError:
		x := tr.Lex.Fetch()
		tr.emitf("/* error %s */\n", x.Value)
		return nil

	case token.KwEnd:
		if top, ok := tr.nest.top(); ok && top.kind == NestMain {
			tr.nest.pop()
			tr.Lex.SetNoComment(true)
			tr.emitf("%s(0);\n}\n", tr.exitFunc())
			return nil
		}
		tr.emitf("%s(0);\n", tr.exitFunc())
		return nil
	}

	if r, ok, err := tr.exfncall(t, false); err != nil {
		return err
	} else if ok {
		tr.emitf("%s;\n", r.Text)
		return nil
	}

	return fmt.Errorf("unexpected keyword in statement position")
}

func (tr *Translator) closeBrace() error {
	top, ok := tr.nest.top()
	closed := false
	if ok && (top.kind == NestThenBr || top.kind == NestElseBr) {
		tr.nest.pop()
		tr.emit("}\n")
		closed = true
	}
	if top.kind == NestElseBr && closed {
		return nil
	}
	if tr.checkKeyword(token.KwElse) {
		if tr.checkKeyword(token.KwIf) {
			x, ok, err := tr.Expr()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("expected condition after ELSE IF")
			}
			if err := tr.nextKeyword(token.KwThen); err != nil {
				return err
			}
			kind := byte(NestThen1)
			if tr.checkSymbol("{") {
				kind = NestThenBr
			}
			tr.nest.push(kind, "")
			tr.emitf("} else if (%s) {\n", x.Text)
			return nil
		}
		kind := byte(NestElse1)
		if tr.checkSymbol("{") {
			kind = NestElseBr
		}
		tr.nest.push(kind, "")
		tr.emit("} else {\n")
		return nil
	}
	return nil
}

func (tr *Translator) printStatement(isL bool) error {
	lp := ""
	if isL {
		lp = "l"
	}
	crlf := true
	var b strings.Builder

	if tr.checkKeyword(token.KwUsing) {
		fmtExpr, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok || fmtExpr.Type != symtab.Str {
			return fmt.Errorf("expected a string format for USING")
		}
		if err := tr.nextSymbol(";"); err != nil {
			return err
		}
		n := tr.nextStrTmp()
		fmt.Fprintf(&b, "b_s%sprint(using(strtmp%d,%s", lp, n, fmtExpr.Text)
		for {
			x, ok, err := tr.Expr()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if x.Type == symtab.Str {
				fmt.Fprintf(&b, ",%s", x.Text)
			} else {
				fmt.Fprintf(&b, ",(double)(%s)", x.Text)
			}
			if !tr.checkSymbol(",") {
				break
			}
		}
		b.WriteString("));\n")
		crlf = !tr.checkSymbol(";")
	} else {
		for {
			x, ok, err := tr.Expr()
			if err != nil {
				return err
			}
			if ok {
				switch x.Type {
				case symtab.Str:
					fmt.Fprintf(&b, "b_s%sprint(%s);\n", lp, x.Text)
				case symtab.Float:
					fmt.Fprintf(&b, "b_f%sprint(%s);\n", lp, x.Text)
				default:
					fmt.Fprintf(&b, "b_i%sprint(%s);\n", lp, x.Text)
				}
				crlf = true
			} else if tr.checkKeyword(token.KwTab) {
				if err := tr.nextSymbol("("); err != nil {
					return err
				}
				x, ok, err := tr.Expr()
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("expected TAB argument")
				}
				if err := tr.nextSymbol(")"); err != nil {
					return err
				}
				fmt.Fprintf(&b, "b_t%sprint(%s);\n", lp, x.Text)
				crlf = true
			}

			if tr.checkSymbol(";") {
				crlf = false
			} else if tr.checkSymbol(",") {
				fmt.Fprintf(&b, "b_s%sprint(STRTAB);\n", lp)
				crlf = false
			} else {
				break
			}
		}
	}
	if crlf {
		fmt.Fprintf(&b, "b_s%sprint(STRCRLF);\n", lp)
	}
	tr.emit(b.String())
	return nil
}

func (tr *Translator) inputStatement() error {
	prompt := `"? "`
	pt := tr.Lex.Fetch()
	if pt.Type == token.Str {
		prompt = pt.Value
		if tr.checkSymbol(";") {
			prompt += ` "? "`
		} else if err := tr.nextSymbol(","); err != nil {
			return err
		}
	} else {
		tr.Lex.Unfetch(pt)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "b_input(%s", prompt)
	for {
		a, err := tr.lvalue()
		if err != nil {
			return err
		}
		if a.Type == symtab.Str {
			fmt.Fprintf(&b, ",sizeof(%s),%s", a.Text, a.Text)
		} else {
			tagMap := map[symtab.Type]string{symtab.Int: "0x204", symtab.Char: "0x201", symtab.Float: "0x208"}
			fmt.Fprintf(&b, ",%s,&%s", tagMap[a.Type], a.Text)
		}
		if !tr.checkSymbol(",") {
			break
		}
	}
	b.WriteString(",-1);\n")
	tr.emit(b.String())
	return nil
}

func (tr *Translator) linputStatement() error {
	var b strings.Builder
	pt := tr.Lex.Fetch()
	if pt.Type == token.Str {
		if err := tr.nextSymbol(";"); err != nil {
			return err
		}
		fmt.Fprintf(&b, "b_sprint(%s);\n", pt.Value)
	} else {
		tr.Lex.Unfetch(pt)
	}
	a, err := tr.lvalue()
	if err != nil {
		return err
	}
	if a.Type != symtab.Str {
		return fmt.Errorf("LINPUT target must be a str variable")
	}
	fmt.Fprintf(&b, "b_linput(%s,sizeof(%s));\n", a.Text, a.Text)
	tr.emit(b.String())
	return nil
}

func (tr *Translator) ifStatement() error {
	x, ok, err := tr.Expr()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected IF condition")
	}
	if err := tr.nextKeyword(token.KwThen); err != nil {
		return err
	}
	kind := byte(NestThen1)
	if tr.checkSymbol("{") {
		kind = NestThenBr
	}
	tr.nest.push(kind, "")
	tr.emitf("if (%s) {\n", x.Text)
	return nil
}

func (tr *Translator) elseStatement() error {
	top, ok := tr.nest.top()
	if ok && top.kind == NestElse1 {
		tr.nest.pop()
		tr.emit("}\n")
	}
	if _, err := tr.nest.closeExpect(NestThen1, NestThenBr); err != nil {
		return err
	}
	if tr.checkKeyword(token.KwIf) {
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected condition after ELSE IF")
		}
		if err := tr.nextKeyword(token.KwThen); err != nil {
			return err
		}
		kind := byte(NestThen1)
		if tr.checkSymbol("{") {
			kind = NestThenBr
		}
		tr.nest.push(kind, "")
		tr.emitf("} else if (%s) {\n", x.Text)
		return nil
	}
	kind := byte(NestElse1)
	if tr.checkSymbol("{") {
		kind = NestElseBr
	}
	tr.nest.push(kind, "")
	tr.emit("} else {\n")
	return nil
}

func (tr *Translator) forStatement() error {
	v, err := tr.lvalue()
	if err != nil {
		return err
	}
	if err := tr.nextKeyword(token.OpEq); err != nil {
		return err
	}
	from, ok, err := tr.Expr()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected FOR initial value")
	}
	if err := tr.nextKeyword(token.KwTo); err != nil {
		return err
	}
	to, ok, err := tr.Expr()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected FOR limit")
	}
	tr.nest.push(NestFor, v.Text)
	tr.emitf("for (%s = %s; %s <= %s; %s++) {\n", v.Text, from.Text, v.Text, to.Text, v.Text)
	return nil
}

func (tr *Translator) returnStatement() error {
	if tr.checkSymbol("(") {
		x, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if err := tr.nextSymbol(")"); err != nil {
			return err
		}
		if ok && tr.pass == 2 && x.Type == symtab.Str && !tr.Flags.has(FlagBCCompat) && tr.curFunc != "" {
			for _, v := range tr.NS.Locals(tr.curFunc) {
				if v.Name == x.Text && !v.IsFuncArg {
					return fmt.Errorf("cannot return local str variable %q", x.Text)
				}
			}
		}
		if ok {
			tr.emitf("return %s;\n", x.Text)
		} else {
			tr.emit("return 0;\n")
		}
		return nil
	}
	var b strings.Builder
	if top, ok := tr.nest.top(); ok && top.kind == NestSub {
		tr.nest.pop()
		tr.Lex.SetNoComment(true)
		b.WriteString("}\n")
	}
	tr.emit("return;\n")
	tr.emit(b.String())
	return nil
}

func (tr *Translator) locateStatement() error {
	var b strings.Builder
	x, ok, err := tr.Expr()
	if err != nil {
		return err
	}
	if ok {
		if err := tr.nextSymbol(","); err != nil {
			return err
		}
		y, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected LOCATE y")
		}
		fmt.Fprintf(&b, "locate(%s,%s);\n", x.Text, y.Text)
	} else {
		if err := tr.nextSymbol(","); err != nil {
			return err
		}
	}
	if tr.checkSymbol(",") {
		a, ok, err := tr.Expr()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("expected LOCATE cursor argument")
		}
		fmt.Fprintf(&b, "b_csw(%s);\n", a.Text)
	}
	tr.emit(b.String())
	return nil
}

func (tr *Translator) funcStatement() error {
	tr.Lex.SetNoComment(false)

	fty := symtab.Int
	if ty, ok := tr.checkVarType(); ok {
		fty = ty
	}

	name := tr.Lex.Fetch()
	if name.Type != token.Variable {
		return fmt.Errorf("expected function name after FUNC")
	}

	tr.NS.SetLocal(name.Value)
	tr.curFunc = name.Value

	if err := tr.nextSymbol("("); err != nil {
		return err
	}
	var params []symtab.Variable
	if !tr.checkSymbol(")") {
		for {
			pname := tr.Lex.Fetch()
			if pname.Type != token.Variable {
				return fmt.Errorf("expected parameter name")
			}
			pty := symtab.Int
			if tr.checkSymbol(";") {
				t, ok := tr.checkVarType()
				if !ok {
					return fmt.Errorf("expected a type after ';'")
				}
				pty = t
			}
			pv := symtab.Variable{Name: pname.Value, Type: pty, IsFuncArg: true}
			if pty == symtab.Str {
				pv.Dims = []string{"32+1"}
			}
			params = append(params, pv)
			if tr.pass == 1 {
				if _, err := tr.NS.NewVar(pv); err != nil {
					return err
				}
			}
			if !tr.checkSymbol(",") {
				break
			}
		}
		if err := tr.nextSymbol(")"); err != nil {
			return err
		}
	}

	tr.NS.SetLocal("")
	fv := symtab.Variable{Name: name.Value, Type: fty, IsFunc: true}
	if tr.pass == 1 {
		if _, err := tr.NS.NewVar(fv); err != nil {
			return err
		}
	}
	tr.NS.SetLocal(name.Value)

	tr.closeOpenEntryPoint()
	tr.nest.push(NestFunc, name.Value)

	var paramDecls []string
	for _, p := range params {
		v := p
		paramDecls = append(paramDecls, v.Definition())
	}
	sig := "void"
	if len(paramDecls) > 0 {
		sig = strings.Join(paramDecls, ", ")
	}

	tr.emit("\n/***************************/\n")
	tr.emitf("%s %s(%s)\n{\n", symtab.Type(fty).String(), name.Value, sig)

	if tr.pass != 1 {
		for _, v := range tr.NS.Locals(name.Value) {
			if v.IsFuncArg {
				continue
			}
			tr.emitf("\t%s;\n", v.Definition())
		}
	}
	return nil
}

// assignOrCall handles the grammar's fallback branch: a bare leading
// identifier is either an assignment target or a user function call used
// as a statement.
func (tr *Translator) assignOrCall() error {
	t := tr.Lex.Fetch()
	if t.Type != token.Variable {
		return fmt.Errorf("expected a statement")
	}
	if tr.Lex.Peek().IsSymbol("(") {
		v, found := tr.NS.Find(t.Value)
		if !found || !v.IsArray() {
			r, _, err := tr.fncall(t)
			if err != nil {
				return err
			}
			tr.emitf("%s;\n", r.Text)
			return nil
		}
	}
	tr.Lex.Unfetch(t)
	lv, err := tr.lvalue()
	if err != nil {
		return err
	}
	if err := tr.nextKeyword(token.OpEq); err != nil {
		return err
	}
	return tr.assign(lv)
}

func (tr *Translator) assign(lv exprResult) error {
	v, _ := tr.NS.Find(strings.SplitN(lv.Text, "[", 2)[0])
	if v != nil && v.IsArray() && !strings.Contains(lv.Text, "[") {
		init, err := tr.initVar()
		if err != nil {
			return err
		}
		n := tr.nextInitmp()
		tmp := fmt.Sprintf("_initmp%04d", n)
		if tr.pass == 1 {
			if _, err := tr.NS.NewVar(symtab.Variable{Name: tmp, Type: v.Type, Array: true, Dims: v.Dims, Init: true}); err != nil {
				return err
			}
		}
		tr.emitf("static const %s = %s;\n", (symtab.Variable{Name: tmp, Type: v.Type, Dims: v.Dims}).Definition(), init)
		tr.emitf("memcpy(%s, %s, sizeof(%s));\n", lv.Text, tmp, lv.Text)
		return nil
	}
	x, ok, err := tr.Expr()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("expected expression on right-hand side of assignment")
	}
	if lv.Type == symtab.Str {
		tr.emitf("b_strncpy(sizeof(%s),%s,%s);\n", lv.Text, lv.Text, x.Text)
		return nil
	}
	tr.emitf("%s = %s;\n", lv.Text, x.Text)
	return nil
}
