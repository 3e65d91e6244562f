package symtab

import "testing"

func TestNamespaceGlobalLocalShadowing(t *testing.T) {
	ns := New()
	ns.SetPass(1)

	if _, err := ns.NewVar(Variable{Name: "X", Type: Int}); err != nil {
		t.Fatalf("NewVar global: %v", err)
	}

	ns.SetLocal("MYFUNC")
	if _, err := ns.NewVar(Variable{Name: "X", Type: Float}); err != nil {
		t.Fatalf("NewVar local: %v", err)
	}

	v, ok := ns.Find("X")
	if !ok || v.Type != Float {
		t.Fatalf("Find(X) in MYFUNC = %+v, %v, want local Float", v, ok)
	}

	ns.SetLocal("")
	v, ok = ns.Find("X")
	if !ok || v.Type != Int {
		t.Fatalf("Find(X) at global scope = %+v, %v, want global Int", v, ok)
	}
}

func TestNamespaceNewVarRejectedOutsidePass1(t *testing.T) {
	ns := New()
	ns.SetPass(2)
	if _, err := ns.NewVar(Variable{Name: "X", Type: Int}); err == nil {
		t.Fatal("expected error registering a variable outside pass 1")
	}
}

func TestVariableDefinition(t *testing.T) {
	v := Variable{Name: "A", Type: Int}
	if got := v.Definition(); got != "int A" {
		t.Errorf("Definition() = %q, want %q", got, "int A")
	}

	arr := Variable{Name: "B", Type: Float, Array: true, Dims: []string{"10"}}
	if got := arr.Definition(); got != "double B[10]" {
		t.Errorf("Definition() = %q, want %q", got, "double B[10]")
	}

	str := Variable{Name: "NS", Type: Str}
	if got := str.Definition(); got != "char NS[32+1]" {
		t.Errorf("Definition() = %q, want %q", got, "char NS[32+1]")
	}
}

func TestNamespaceUnknownFind(t *testing.T) {
	ns := New()
	if _, ok := ns.Find("NOPE"); ok {
		t.Fatal("expected Find to report false for unregistered name")
	}
}
