// Package analyzer builds the scoped symbol table, the use-to-definition
// map, and the set of user-defined function names for one parsed script
// (spec §4.4): a single pass over the AST that declares every
// var/param/function/state/event, then resolves every identifier use
// against the scope chain it occurs in.
//
// The scope tree is an arena + indices, per the design note in spec §9:
// scopes and declarations both live in flat slices on Result, and a
// Scope only ever refers to others by index, so there is nothing for a
// garbage collector (or a reviewer) to chase through pointer cycles.
package analyzer

import (
	"github.com/lsl-tools/lslintel/internal/ast"
	"github.com/lsl-tools/lslintel/internal/position"
)

// DeclKind is one of the five declaration kinds named in spec §3.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclParam
	DeclEvent
	DeclFunction
	DeclState
)

func (k DeclKind) String() string {
	switch k {
	case DeclVar:
		return "var"
	case DeclParam:
		return "param"
	case DeclEvent:
		return "event"
	case DeclFunction:
		return "function"
	case DeclState:
		return "state"
	default:
		return "unknown"
	}
}

// Decl is one declaration: a variable, parameter, function, state or
// event handler. Range covers the entire declaring construct; NameSpan
// is the declaring identifier's own span (the AST already tracks this
// precisely, so unlike the original substring-search-within-range
// approach this analyzer reads it directly off the node).
type Decl struct {
	Kind     DeclKind
	Name     string
	Range    position.Span
	NameSpan position.Span
	Type     string // "" for event/state decls, which carry no LSL type
	Scope    int     // owner-scope index into Result.Scopes
}

// ScopeKind distinguishes the three places spec §4.4 step 2 opens a new
// scope (function, state and event bodies), plus the implicit root.
type ScopeKind int

const (
	ScopeRoot ScopeKind = iota
	ScopeFunction
	ScopeState
	ScopeEvent
)

// Scope is one node of the scope tree. Parent is -1 for the root. A
// block/if/while/for/do-while body never opens its own scope (LSL has no
// block scoping: all locals declared anywhere in a function or event
// body belong to that body's single scope), so Decls accumulates every
// local declared at any nesting depth within this scope's construct.
type Scope struct {
	Kind     ScopeKind
	Parent   int
	Children []int
	Decls    []int // indices into Result.Decls, in declaration order
}

// IncludeSymbols is the merged set of top-level names visible from a
// file's transitive include set (spec §4.7). internal/includes builds
// this by walking the include graph; Analyze folds it into the root
// scope ahead of the main file's own globals, so included symbols behave
// as if declared before the start of the file.
type IncludeSymbols struct {
	Functions []string
	Globals   []string
}

type refEntry struct {
	span position.Span
	decl *Decl
}

// Result is the analysis output named in spec §3: symbolAt/refAt lookup
// surfaces, the user-defined function-name set, and the scope/decl
// arenas themselves.
type Result struct {
	Decls  []*Decl
	Scopes []*Scope

	// Functions is the set of user-defined (this file's own) function
	// names, named explicitly in spec §4.4's responsibility statement.
	Functions map[string]bool

	refEntries    []refEntry
	symbolEntries []refEntry
}

// RefAt returns the declaration that the identifier token covering
// offset resolves to, or nil if offset is not inside a resolved
// identifier use (spec §3 invariant: non-null only when the offset lies
// inside an identifier token whose declaration is visible from the use
// site's scope chain).
func (r *Result) RefAt(offset int) *Decl {
	return findContaining(r.refEntries, offset)
}

// SymbolAt returns the declaration whose range contains offset, or nil.
// Declaration ranges can nest (e.g. a function's range contains its own
// parameters' ranges); the narrowest containing range wins.
func (r *Result) SymbolAt(offset int) *Decl {
	return findContaining(r.symbolEntries, offset)
}

// IsCallableFunction reports whether name is declared as a function
// reachable from this file's root scope, whether declared locally or
// contributed by an include (semtok classification step 8: "user-defined
// function or provided by an include" — unlike Functions, which is
// deliberately scoped to this file's own declarations only).
func (r *Result) IsCallableFunction(name string) bool {
	for _, d := range r.Decls {
		if d.Kind == DeclFunction && d.Name == name {
			return true
		}
	}

	return false
}

func findContaining(entries []refEntry, offset int) *Decl {
	var best *Decl

	bestLen := -1

	for _, e := range entries {
		if !e.span.Contains(offset) {
			continue
		}

		if best == nil || e.span.Len() < bestLen {
			best = e.decl
			bestLen = e.span.Len()
		}
	}

	return best
}

type declFilter func(DeclKind) bool

func isVarOrParam(k DeclKind) bool { return k == DeclVar || k == DeclParam }
func isFunction(k DeclKind) bool   { return k == DeclFunction }

// analyzer is the transient state of one Analyze call.
type analyzer struct {
	result *Result
}

// Analyze runs the one-pass algorithm of spec §4.4 over script and
// returns the completed Result. inc may be nil (no includes).
func Analyze(script *ast.Script, inc *IncludeSymbols) *Result {
	a := &analyzer{result: &Result{Functions: map[string]bool{}}}

	root := a.newScope(ScopeRoot, -1)

	if inc != nil {
		unresolved := position.Span{Start: -1, End: -1}

		for _, name := range inc.Globals {
			a.declare(root, DeclVar, name, unresolved, position.Span{}, "")
		}

		for _, name := range inc.Functions {
			a.declare(root, DeclFunction, name, unresolved, position.Span{}, "")
		}
	}

	// Pass 1: declare every root-level construct (globals, functions,
	// states) before resolving any use, so that a function or state is
	// visible throughout the file regardless of where it is called from
	// relative to its own declaration (the ordering constraint in spec
	// §4.4's tie-break rule applies to variable shadowing, not to
	// function/state visibility — see the analyzer's DESIGN.md entry).
	for _, g := range script.Globals {
		switch n := g.(type) {
		case *ast.VarDecl:
			a.declare(root, DeclVar, n.Name, n.Sp, n.NameSpan, n.Type)
		case *ast.FunctionDecl:
			a.declare(root, DeclFunction, n.Name, n.Sp, n.NameSpan, n.ReturnType)
			a.result.Functions[n.Name] = true
		}
	}

	for _, st := range script.States {
		a.declare(root, DeclState, st.Name, st.Sp, st.NameSpan, "")
	}

	// Pass 1.5: resolve global initializer expressions now that every
	// root-level name is declared. A function name in an initializer
	// resolves regardless of textual order; a variable name still follows
	// lookup's declaration-order rule, so it only resolves to a global
	// whose declaration starts at or before the use.
	for _, g := range script.Globals {
		if v, ok := g.(*ast.VarDecl); ok && v.Init != nil {
			a.walkExpr(v.Init, root)
		}
	}

	// Pass 2: walk bodies, opening function/state/event scopes, declaring
	// parameters ahead of locals, and resolving every identifier use.
	for _, g := range script.Globals {
		fn, ok := g.(*ast.FunctionDecl)
		if !ok {
			continue
		}

		fnScope := a.newScope(ScopeFunction, root)

		for _, p := range fn.Params {
			a.declare(fnScope, DeclParam, p.Name, p.Sp, p.NameSpan, p.Type)
		}

		a.walkBlock(fn.Body, fnScope)
	}

	for _, st := range script.States {
		stateScope := a.newScope(ScopeState, root)

		for _, ev := range st.Events {
			a.declare(stateScope, DeclEvent, ev.Name, ev.Sp, ev.NameSpan, "")

			evScope := a.newScope(ScopeEvent, stateScope)

			for _, p := range ev.Params {
				a.declare(evScope, DeclParam, p.Name, p.Sp, p.NameSpan, p.Type)
			}

			a.walkBlock(ev.Body, evScope)
		}
	}

	return a.result
}

func (a *analyzer) newScope(kind ScopeKind, parent int) int {
	idx := len(a.result.Scopes)
	a.result.Scopes = append(a.result.Scopes, &Scope{Kind: kind, Parent: parent})

	if parent >= 0 {
		p := a.result.Scopes[parent]
		p.Children = append(p.Children, idx)
	}

	return idx
}

func (a *analyzer) declare(scopeIdx int, kind DeclKind, name string, rng, nameSpan position.Span, typ string) *Decl {
	d := &Decl{Kind: kind, Name: name, Range: rng, NameSpan: nameSpan, Type: typ, Scope: scopeIdx}

	idx := len(a.result.Decls)
	a.result.Decls = append(a.result.Decls, d)

	sc := a.result.Scopes[scopeIdx]
	sc.Decls = append(sc.Decls, idx)

	if rng.Start >= 0 {
		a.result.symbolEntries = append(a.result.symbolEntries, refEntry{span: rng, decl: d})
	}

	return d
}

// lookup walks the scope chain outward from scopeIdx looking for name.
// When ordered is true (variables and parameters), a candidate is only
// visible once its own declaration site precedes useOffset — and among
// several same-name candidates visible at useOffset, the most recently
// declared one wins (spec §4.4's tie-break rule). When ordered is false
// (functions and states), the first declared candidate always wins: LSL
// resolves a function call regardless of whether the call site appears
// before or after the function's own declaration in the file.
func (a *analyzer) lookup(scopeIdx int, name string, useOffset int, filter declFilter, ordered bool) *Decl {
	for scopeIdx != -1 {
		sc := a.result.Scopes[scopeIdx]

		var candidates []*Decl

		for _, di := range sc.Decls {
			d := a.result.Decls[di]
			if d.Name == name && filter(d.Kind) {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			scopeIdx = sc.Parent
			continue
		}

		if !ordered {
			return candidates[0]
		}

		var best *Decl

		for _, d := range candidates {
			if d.Range.Start <= useOffset && (best == nil || d.Range.Start > best.Range.Start) {
				best = d
			}
		}

		if best != nil {
			return best
		}

		scopeIdx = sc.Parent
	}

	return nil
}

func (a *analyzer) walkBlock(b *ast.Block, scope int) {
	if b == nil {
		return
	}

	for _, s := range b.Stmts {
		a.walkStmt(s, scope)
	}
}

func (a *analyzer) walkStmt(s ast.Stmt, scope int) {
	switch n := s.(type) {
	case *ast.Block:
		a.walkBlock(n, scope)
	case *ast.VarDecl:
		// Resolve the initializer before declaring this name, so
		// "integer x = x;" binds its right-hand x to an outer scope (or
		// leaves it unresolved) rather than to the slot being defined.
		if n.Init != nil {
			a.walkExpr(n.Init, scope)
		}

		a.declare(scope, DeclVar, n.Name, n.Sp, n.NameSpan, n.Type)
	case *ast.IfStmt:
		a.walkExpr(n.Cond, scope)
		a.walkStmt(n.Then, scope)

		if n.Else != nil {
			a.walkStmt(n.Else, scope)
		}
	case *ast.WhileStmt:
		a.walkExpr(n.Cond, scope)
		a.walkStmt(n.Body, scope)
	case *ast.DoWhileStmt:
		a.walkStmt(n.Body, scope)
		a.walkExpr(n.Cond, scope)
	case *ast.ForStmt:
		for _, e := range n.Init {
			a.walkExpr(e, scope)
		}

		if n.Cond != nil {
			a.walkExpr(n.Cond, scope)
		}

		for _, e := range n.Post {
			a.walkExpr(e, scope)
		}

		a.walkStmt(n.Body, scope)
	case *ast.ReturnStmt:
		if n.Value != nil {
			a.walkExpr(n.Value, scope)
		}
	case *ast.ExprStmt:
		a.walkExpr(n.X, scope)
	}
}

func (a *analyzer) walkExpr(e ast.Expr, scope int) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *ast.Identifier:
		if n.Name == "" {
			return
		}

		if d := a.lookup(scope, n.Name, n.Sp.Start, isVarOrParam, true); d != nil {
			a.result.refEntries = append(a.result.refEntries, refEntry{span: n.Sp, decl: d})
		}
	case *ast.CallExpr:
		if n.Callee != "" {
			if d := a.lookup(scope, n.Callee, n.CalleeSpan.Start, isFunction, false); d != nil {
				a.result.refEntries = append(a.result.refEntries, refEntry{span: n.CalleeSpan, decl: d})
			}
		}

		for _, arg := range n.Args {
			a.walkExpr(arg, scope)
		}
	case *ast.IndexExpr:
		a.walkExpr(n.X, scope)
		a.walkExpr(n.Index, scope)
	case *ast.MemberExpr:
		a.walkExpr(n.X, scope)
	case *ast.UnaryExpr:
		a.walkExpr(n.X, scope)
	case *ast.BinaryExpr:
		a.walkExpr(n.Left, scope)
		a.walkExpr(n.Right, scope)
	case *ast.AssignExpr:
		a.walkExpr(n.Target, scope)
		a.walkExpr(n.Value, scope)
	case *ast.IncDecExpr:
		a.walkExpr(n.X, scope)
	case *ast.VectorLit:
		a.walkExpr(n.X, scope)
		a.walkExpr(n.Y, scope)
		a.walkExpr(n.Z, scope)
	case *ast.RotationLit:
		a.walkExpr(n.X, scope)
		a.walkExpr(n.Y, scope)
		a.walkExpr(n.Z, scope)
		a.walkExpr(n.S, scope)
	case *ast.ListLit:
		for _, el := range n.Elements {
			a.walkExpr(el, scope)
		}
	}
}
