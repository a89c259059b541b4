// Package module assembles a whole program's function definitions into a
// Module: a two-pass build (spec.md §4.7) that registers every function's
// signature before lowering any body, so forward references and mutual
// recursion resolve correctly, followed by the three consumers a built
// Module exposes — the interpreter, the WAT emitter, and the binary Wasm
// emitter.
package module

import (
	"fmt"
	"io"
	"strings"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostic"
	"github.com/glintlang/glint/internal/interp"
	"github.com/glintlang/glint/internal/ir"
	"github.com/glintlang/glint/internal/parser"
	"github.com/glintlang/glint/internal/scope"
	"github.com/glintlang/glint/internal/value"
	"github.com/glintlang/glint/internal/wasmgen"
)

// Module is a fully built, well-formed program: a function table plus the
// name index used to resolve calls.
type Module struct {
	Funcs  []*ir.Func
	byName map[string]ir.FuncID
}

// LookupFunc implements ir.FuncLookup against the module's own signature
// table, built up front in pass one.
func (m *Module) LookupFunc(name string) (ir.FuncID, value.Type, int, bool) {
	id, ok := m.byName[name]
	if !ok {
		return 0, value.Unit, 0, false
	}
	fn := m.Funcs[id]
	return id, fn.ReturnType, fn.NumParams, true
}

// Func implements interp.Program, so a Module can be handed directly to
// interp.Exec.
func (m *Module) Func(id ir.FuncID) *ir.Func { return m.Funcs[id] }

// FromSource parses and builds source into a Module. It returns an error
// (via diagnostic.AsError) at the first stage — parsing or building — that
// produces an ill-formed result, without invoking any later stage, per
// spec.md §7's requirement that the emitter and interpreter never run on
// an ill-formed module.
func FromSource(filename, source string) (*Module, error) {
	p := parser.New(source)
	defs := p.Parse()
	if err := p.Diagnostics().AsError(filename); err != nil {
		return nil, err
	}
	return FromAST(filename, defs)
}

// FromAST builds a Module from already-parsed function definitions.
func FromAST(filename string, defs []*ast.FuncDef) (*Module, error) {
	diags := diagnostic.New()
	m := &Module{byName: make(map[string]ir.FuncID)}

	// Pass one: register every function's signature before lowering any
	// body (spec.md §4.7 step 1), so a call to a function defined later in
	// the source, or to itself, resolves.
	m.Funcs = make([]*ir.Func, len(defs))
	for i, def := range defs {
		if _, exists := m.byName[def.Name]; exists {
			diags.Errorf(def.Line, def.Col, "function %q is already defined", def.Name)
			continue
		}
		id := ir.FuncID(i)
		m.byName[def.Name] = id
		m.Funcs[i] = &ir.Func{Name: def.Name, NumParams: len(def.Params), ReturnType: def.ReturnType}
	}
	if err := diags.AsError(filename); err != nil {
		return nil, err
	}

	// Pass two: lower every body against the complete signature table.
	moduleScope := scope.New()
	for i, def := range defs {
		fn := ir.BuildFunction(def, ir.FuncID(i), m, moduleScope, diags)
		m.Funcs[i] = fn
	}
	if err := diags.AsError(filename); err != nil {
		return nil, err
	}

	return m, nil
}

// Exec runs the named function with the given arguments via the
// tree-walking interpreter.
func (m *Module) Exec(name string, args []value.Value) (value.Value, error) {
	id, ok := m.byName[name]
	if !ok {
		return value.Value{}, fmt.Errorf("module: no such function %q", name)
	}
	return interp.Exec(m, m.Funcs[id], args), nil
}

// ToWAT renders the whole module as WebAssembly text format.
func (m *Module) ToWAT() string {
	return wasmgen.EmitWAT(m.Funcs)
}

// ToWASM assembles the whole module as a WebAssembly binary.
func (m *Module) ToWASM() []byte {
	return wasmgen.EmitBinary(m.Funcs)
}

// DumpIR writes every function's stable textual IR dump to w, in
// declaration order.
func (m *Module) DumpIR(w io.Writer) {
	for _, fn := range m.Funcs {
		fn.Dump(w)
	}
}

// DumpIRString is a convenience wrapper around DumpIR for callers that just
// want the text (the CLI's `glintc ir` subcommand, tests).
func (m *Module) DumpIRString() string {
	var b strings.Builder
	m.DumpIR(&b)
	return b.String()
}
