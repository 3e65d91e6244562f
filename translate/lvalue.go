package translate

import (
	"fmt"
	"strings"

	"xbasicc/exfn"
	"xbasicc/symtab"
	"xbasicc/token"
)

// fncall parses a user FUNC call: NAME '(' args ')'. If the function
// hasn't been registered yet, pass 1 tolerates it (it may be defined
// later in the file) and assumes Int; pass 2 requires it to exist unless
// -u was NOT given, matching the original's UNDEFERR-gated check.
func (tr *Translator) fncall(name token.Token) (exprResult, bool, error) {
	v, found := tr.NS.Find(name.Value)
	if tr.Flags.has(FlagUndefErr) && !found && tr.pass == 2 {
		return exprResult{}, false, fmt.Errorf("undefined function %q", name.Value)
	}
	if err := tr.nextSymbol("("); err != nil {
		return exprResult{}, false, err
	}
	var args []string
	for {
		a, ok, err := tr.Expr()
		if err != nil {
			return exprResult{}, false, err
		}
		if ok {
			args = append(args, a.Text)
		}
		if !tr.checkSymbol(",") {
			break
		}
	}
	if err := tr.nextSymbol(")"); err != nil {
		return exprResult{}, false, err
	}
	ty := symtab.Int
	if found {
		ty = v.Type
	}
	return exprResult{Type: ty, Text: fmt.Sprintf("%s(%s)", name.Value, strings.Join(args, ", "))}, true, nil
}

// exfncall checks whether kw names a registered external/builtin function
// and, if so, parses its argument list per the signature's Arg pattern
// and emits a call per its CArg pattern. ok=false, err=nil means kw is a
// keyword but not an external function (the caller should try something
// else); isExpr selects whether a function with no declared return type
// is an error (true, used from expression context) or acceptable (false,
// a bare statement-form call like a subroutine-like builtin).
func (tr *Translator) exfncall(kw token.Token, isExpr bool) (exprResult, bool, error) {
	id, ok := kw.KwID()
	if !ok || id < token.FirstExFnID {
		return exprResult{}, false, nil
	}
	sig, ok := tr.ExFn.Lookup(id)
	if !ok {
		return exprResult{}, false, nil
	}

	// int(..) is ambiguous with the INT type keyword; only treat it as
	// the builtin when followed by '(', matching the original's
	// int$$-lookup special case.
	if sig.Name == "int" && !tr.Lex.Peek().IsSymbol("(") {
		return exprResult{}, false, nil
	}

	if isExpr && sig.Type == "" {
		return exprResult{}, false, fmt.Errorf("%s has no return value", sig.Name)
	}

	tr.usedGroups[sig.Group] = true

	fn := sig.CFunc
	if fn == "" {
		fn = sig.Name
	}

	var av []string
	a := sig.Arg
	for len(a) > 0 {
		switch {
		case a[0] == '(' || a[0] == ')' || a[0] == '[' || a[0] == ']':
			tr.checkSymbol(string(a[0]))
			a = a[1:]
		case a[0] == ',':
			if !tr.checkSymbol(",") {
				// every remaining argument was elided
				rest := a[1:]
				for len(rest) > 0 {
					switch {
					case len(rest) > 1 && strings.ContainsRune("ISCFN", rune(rest[0])) && rest[1] == '-':
						av = append(av, exfn.Nasi)
						rest = rest[2:]
					case rest[0] == ',':
						rest = rest[1:]
					case strings.ContainsRune("()[]", rune(rest[0])):
						tr.checkSymbol(string(rest[0]))
						rest = rest[1:]
					default:
						rest = rest[1:]
					}
				}
				a = ""
			} else {
				a = a[1:]
			}
		case strings.ContainsRune("ISCFN", rune(a[0])):
			if len(a) > 1 && a[1] == 'A' {
				vn := tr.Lex.Fetch()
				if vn.Type != token.Variable {
					return exprResult{}, false, fmt.Errorf("expected array variable name")
				}
				v, found := tr.NS.Find(vn.Value)
				if tr.pass == 2 && (!found || !v.IsArray()) {
					return exprResult{}, false, fmt.Errorf("%q is not a declared array", vn.Value)
				}
				av = append(av, vn.Value)
				a = a[2:]
			} else {
				x, ok, err := tr.Expr()
				optional := len(a) > 1 && a[1] == '-'
				if err != nil {
					return exprResult{}, false, err
				}
				if !ok {
					if !optional {
						return exprResult{}, false, fmt.Errorf("expected argument for %s", sig.Name)
					}
					switch sig.Name {
					case "exit":
						av = append(av, "0")
					case "pi":
						fn = "pi"
					default:
						av = append(av, exfn.Nasi)
					}
				} else {
					if sig.Name == "str$" && x.Type == symtab.Float {
						fn = "b_strfS"
					}
					if sig.Name == "abs" && x.Type == symtab.Float {
						fn = "fabs"
					}
					av = append(av, x.Text)
				}
				a = a[1:]
			}
		default:
			a = a[1:]
		}
	}

	rendered, err := exfn.RenderCArgs(sig.CArg, av, tr.nextStrTmp)
	if err != nil {
		return exprResult{}, false, err
	}

	rty := sigReturnType(sig.Type, isExpr)
	return exprResult{Type: rty, Text: fmt.Sprintf("%s(%s)", fn, rendered)}, true, nil
}

func sigReturnType(letter string, isExpr bool) symtab.Type {
	switch letter {
	case "I":
		return symtab.Int
	case "C":
		return symtab.Char
	case "F":
		return symtab.Float
	case "S":
		return symtab.Str
	default:
		return symtab.Int
	}
}

// lvalue parses an assignment target: a plain variable or an array
// element, returning its C text and declared type.
func (tr *Translator) lvalue() (exprResult, error) {
	t := tr.Lex.Fetch()
	if t.Type != token.Variable {
		return exprResult{}, fmt.Errorf("expected variable name, got %v", t)
	}
	v, ok := tr.NS.Find(t.Value)
	if !ok {
		// Using a name that's never been declared (as an assignment
		// target or in an expression) implicitly declares it as a
		// global int, the way the original's lvalue() does.
		if tr.pass != 1 {
			return exprResult{}, fmt.Errorf("undefined variable %q", t.Value)
		}
		was := tr.NS.CurLocal()
		tr.NS.SetLocal("")
		nv, err := tr.NS.NewVar(symtab.Variable{Name: t.Value, Type: symtab.Int})
		tr.NS.SetLocal(was)
		if err != nil {
			return exprResult{}, err
		}
		v = nv
	}
	if tr.Lex.Peek().IsSymbol("[") {
		r, ok, err := tr.arrayIndexRef(t.Value, v)
		if err != nil {
			return exprResult{}, err
		}
		if !ok {
			return exprResult{}, fmt.Errorf("expected array index")
		}
		return r, nil
	}
	return exprResult{Type: v.Type, Text: v.Name}, nil
}

// varTypeOf maps a KwInt..KwStr keyword id to the symtab.Type it declares.
func varTypeOf(id int) (symtab.Type, bool) {
	switch id {
	case token.KwInt:
		return symtab.Int, true
	case token.KwChar:
		return symtab.Char, true
	case token.KwFloat:
		return symtab.Float, true
	case token.KwStr:
		return symtab.Str, true
	default:
		return 0, false
	}
}

// defvar parses one or more comma-separated NAME[(dims)][[size]][=init]
// declarations of type ty (DIM with no explicit type defaults to Int
// before calling this), registering each in the namespace on pass 1. A
// name followed by '(' is an array even without DIM, matching the
// original's "parens always mean array" rule. A STR declaration takes an
// optional "[size]" buffer-size suffix, defaulting to 32+1 bytes.
func (tr *Translator) defvar(ty symtab.Type) error {
	for {
		name := tr.Lex.Fetch()
		if name.Type != token.Variable {
			return fmt.Errorf("expected variable name")
		}
		v := symtab.Variable{Name: name.Value, Type: ty}
		if tr.checkSymbol("(") {
			v.Array = true
			for {
				d, ok, err := tr.Expr()
				if err != nil {
					return err
				}
				if ok {
					v.Dims = append(v.Dims, "("+d.Text+")+1")
				}
				if !tr.checkSymbol(",") {
					break
				}
			}
			if err := tr.nextSymbol(")"); err != nil {
				return err
			}
		}
		if ty == symtab.Str {
			if tr.checkSymbol("[") {
				sz, ok, err := tr.Expr()
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("expected string buffer size")
				}
				if err := tr.nextSymbol("]"); err != nil {
					return err
				}
				v.Dims = append(v.Dims, sz.Text+"+1")
			}
		}
		if tr.checkKeyword(token.OpEq) {
			if _, err := tr.initVarFor(v); err != nil {
				return err
			}
		}
		if tr.pass == 1 {
			if _, err := tr.NS.NewVar(v); err != nil {
				return err
			}
		}
		if !tr.checkSymbol(",") {
			break
		}
	}
	return nil
}

// initVarFor parses a declaration's initializer: a brace-delimited
// initializer list for an array, a plain expression otherwise.
func (tr *Translator) initVarFor(v symtab.Variable) (string, error) {
	if v.Array {
		return tr.initVar()
	}
	x, ok, err := tr.Expr()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("expected initializer expression")
	}
	return x.Text, nil
}

// initVar parses a "= { ... }" static array initializer, tracked by
// brace-balance rather than comma-counting (see the Open Question
// resolution in DESIGN.md): everything between the outermost braces is
// copied through verbatim, including nested braces, literal tokens,
// comments and EOLs.
func (tr *Translator) initVar() (string, error) {
	if err := tr.nextSymbol("{"); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("{")
	depth := 1
	for depth > 0 {
		t := tr.Lex.Fetch()
		switch {
		case t.IsSymbol("{"):
			depth++
			b.WriteString("{")
		case t.IsSymbol("}"):
			depth--
			b.WriteString("}")
		case t.IsKeyword(token.EOF):
			return "", fmt.Errorf("unterminated array initializer")
		case t.IsKeyword(token.EOL):
			b.WriteString("\n")
		case t.Type == token.Comment:
			b.WriteString(t.Value)
		default:
			b.WriteString(t.Value)
		}
	}
	return b.String(), nil
}
