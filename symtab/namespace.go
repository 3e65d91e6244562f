package symtab

import "fmt"

// Namespace holds X-BASIC's two scope levels: one global map shared by the
// whole program, and a set of named local maps (one per user FUNC), of
// which at most one is "current" at a time — mirroring the single active
// call frame a non-reentrant BASIC translator needs to track.
//
// Mutation is a pass-1-only operation: pass 2 only calls Find, never New,
// since by then every variable the program will ever declare has already
// been registered.
type Namespace struct {
	global map[string]*Variable
	locals map[string]map[string]*Variable
	cur    string // name of the currently selected local scope, "" if none
	pass   int
}

// New returns an empty Namespace.
func New() *Namespace {
	return &Namespace{
		global: map[string]*Variable{},
		locals: map[string]map[string]*Variable{},
	}
}

// SetPass tells the Namespace which translation pass is active; NewVar
// returns an error if called outside pass 1, catching a translator bug
// rather than silently producing a namespace that disagrees between passes.
func (ns *Namespace) SetPass(n int) { ns.pass = n }

// SetLocal selects fn as the current local scope, creating it if it
// doesn't exist yet. An empty fn selects no local scope (global only).
func (ns *Namespace) SetLocal(fn string) {
	ns.cur = fn
	if fn == "" {
		return
	}
	if _, ok := ns.locals[fn]; !ok {
		ns.locals[fn] = map[string]*Variable{}
	}
}

// CurLocal returns the name of the currently selected local scope, or ""
// if none is selected.
func (ns *Namespace) CurLocal() string { return ns.cur }

// Find looks up name, checking the current local scope before the global
// one (a local declaration shadows a global of the same name).
func (ns *Namespace) Find(name string) (*Variable, bool) {
	if ns.cur != "" {
		if v, ok := ns.locals[ns.cur][name]; ok {
			return v, true
		}
	}
	v, ok := ns.global[name]
	return v, ok
}

// NewVar registers a new Variable in the current scope (local if one is
// selected, else global) and returns it. It returns an error outside pass
// 1: the symbol table is built once, during pass 1, and is read-only
// afterward.
func (ns *Namespace) NewVar(v Variable) (*Variable, error) {
	if ns.pass != 1 {
		return nil, fmt.Errorf("symtab: NewVar called outside pass 1 for %q", v.Name)
	}
	stored := &v
	if ns.cur != "" {
		ns.locals[ns.cur][v.Name] = stored
	} else {
		ns.global[v.Name] = stored
	}
	return stored, nil
}

// Globals returns every global variable, for header/declaration emission.
// The returned slice has no guaranteed order; callers that need stable
// output should sort it themselves.
func (ns *Namespace) Globals() []*Variable {
	out := make([]*Variable, 0, len(ns.global))
	for _, v := range ns.global {
		out = append(out, v)
	}
	return out
}

// Locals returns every variable local to fn, or nil if fn has no scope.
func (ns *Namespace) Locals(fn string) []*Variable {
	m, ok := ns.locals[fn]
	if !ok {
		return nil
	}
	out := make([]*Variable, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
