// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package kernel implements named script kernels: guest Lua code executed
// at parse time that calls back into the parser to inject content and
// reads/writes unit variables and elements.
//
// Rather than a thread-local context slot, the kernel context here is an
// explicit *unit.KernelContext passed to every host-exposed Lua function
// via a Go closure captured at registration time. The kernel instance
// itself is confined to one goroutine, so a single mutable ctx field on
// the kernel is sufficient; it is set immediately before a guest
// invocation and cleared immediately after, exactly bracketing the call.
package kernel

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nml-lang/nmlc/internal/elements"
	"github.com/nml-lang/nmlc/internal/refs"
	"github.com/nml-lang/nmlc/internal/report"
	"github.com/nml-lang/nmlc/internal/scope"
	"github.com/nml-lang/nmlc/internal/source"
	"github.com/nml-lang/nmlc/internal/unit"
)

// Push is a rule-specific constructor exposed to guest code as
// `nml.<rule-name>.push(...)`, letting a registered parser rule grow its
// own host binding without this package knowing about every element kind.
type Push func(k *Kernel, L *lua.LState) int

// Kernel is a named script kernel. Default kernel name is
// "main".
type Kernel struct {
	name   string
	ls     *lua.LState
	ctx    *unit.KernelContext
	pushes map[string]Push
}

// New constructs a kernel named name, installing the host API's one-time
// initialization. pushes lets callers register per-rule constructors
// before any guest code runs.
func New(name string, pushes map[string]Push) *Kernel {
	k := &Kernel{name: name, ls: lua.NewState(), pushes: pushes}
	k.installHostAPI()

	return k
}

// Name implements unit.KernelHandle.
func (k *Kernel) Name() string { return k.name }

// Close releases the underlying Lua state.
func (k *Kernel) Close() { k.ls.Close() }

// Run implements unit.KernelHandle: installs ctx for the duration of the
// call, executes guestSource, then clears it.
// Guest traps are caught at this boundary and converted to ScriptError
// reports carrying the guest's stack trace, attached to the invoking
// source range.
func (k *Kernel) Run(ctx *unit.KernelContext, guestSource string) report.Reports {
	k.ctx = ctx
	defer func() { k.ctx = nil }()

	if err := k.ls.DoString(guestSource); err != nil {
		return report.Reports{scriptError(ctx, err)}
	}

	return nil
}

// Eval implements unit.KernelHandle: evaluates guestSource as a single
// expression and returns its result rendered as a string ("" for nil).
func (k *Kernel) Eval(ctx *unit.KernelContext, guestSource string) (string, report.Reports) {
	k.ctx = ctx
	defer func() { k.ctx = nil }()

	base := k.ls.GetTop()

	if err := k.ls.DoString("return " + guestSource); err != nil {
		k.ls.SetTop(base)
		return "", report.Reports{scriptError(ctx, err)}
	}

	ret := lua.LValue(lua.LNil)
	if k.ls.GetTop() > base {
		ret = k.ls.Get(base + 1)
	}

	k.ls.SetTop(base)

	if ret == lua.LNil {
		return "", nil
	}

	return ret.String(), nil
}

func scriptError(ctx *unit.KernelContext, err error) report.Report {
	msg := err.Error()
	stack := ""

	if apiErr, ok := err.(*lua.ApiError); ok {
		if apiErr.Object != lua.LNil {
			msg = apiErr.Object.String()
		}

		if apiErr.StackTrace != "" {
			stack = apiErr.StackTrace
		}
	}

	r := report.Newf(report.KindScriptError, ctx.Location, "script error: %s", msg)
	r.Stack = stack

	return r
}

// installHostAPI registers the `nml` global table exposing unit, scope,
// element, variable, text, and any per-rule push functions.
func (k *Kernel) installHostAPI() {
	L := k.ls

	nml := L.NewTable()
	L.SetGlobal("nml", nml)

	L.SetField(nml, "text", L.NewFunction(k.luaText))
	L.SetField(nml, "raw", L.NewFunction(k.luaRaw))
	L.SetField(nml, "scope", L.NewFunction(k.luaScope))
	L.SetField(nml, "push", L.NewFunction(k.luaPush))
	L.SetField(nml, "variable", L.NewFunction(k.luaGetVariable))
	L.SetField(nml, "set_variable", L.NewFunction(k.luaSetVariable))

	for name, push := range k.pushes {
		fname := name // capture
		pushFn := push
		L.SetField(nml, fname, L.NewFunction(func(inner *lua.LState) int {
			return pushFn(k, inner)
		}))
	}
}

// luaText implements `nml.text(s)`: wraps s as a host handle over a Text
// element, without appending it anywhere. Guests compose handles with
// nml.push to actually inject content.
func (k *Kernel) luaText(L *lua.LState) int {
	s := L.CheckString(1)

	elem := elements.NewText(k.ctx.Location, s)
	L.Push(elementUserData(L, elem))

	return 1
}

// luaRaw implements `nml.raw(kind, content)`: wraps content as a host
// handle over a Raw element emitted verbatim for the named output kind
// (e.g. "html"), without sanitization — an escape hatch granted to guest
// code that is denied to authored NML source.
func (k *Kernel) luaRaw(L *lua.LState) int {
	kind := L.CheckString(1)
	content := L.CheckString(2)

	elem := elements.NewRaw(k.ctx.Location, kind, content)
	L.Push(elementUserData(L, elem))

	return 1
}

// luaScope implements `nml.scope(fn)`: runs fn with the current scope
// swapped for a fresh child scope, then wraps whatever fn pushed into that
// child as a ScopeElement handle. Guests use this to build a structured
// sub-document (several element handles in sequence) and push the whole
// thing into the real document as a single unit.
func (k *Kernel) luaScope(L *lua.LState) int {
	fn := L.CheckFunction(1)

	parent := k.ctx.Scope
	child := parent.Nested()

	k.ctx.Scope = child
	err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	k.ctx.Scope = parent

	if err != nil {
		L.RaiseError("nml.scope: %s", err)
		return 0
	}

	elem := elements.NewScopeElement(k.ctx.Location, child)
	L.Push(elementUserData(L, elem))

	return 1
}

// luaPush implements `nml.push(handle)`: appends a previously constructed
// element handle to the current scope. Any host calls that occurred during
// execution have already mutated the unit by the time push runs.
func (k *Kernel) luaPush(L *lua.LState) int {
	ud := L.CheckUserData(1)

	elem, ok := ud.Value.(scope.Element)
	if !ok {
		L.RaiseError("nml.push: argument is not an element handle")
		return 0
	}

	k.ctx.Scope.AddContent(elem)

	return 0
}

// luaGetVariable implements `nml.variable(name)`: looks up name from the
// invoking scope outward, returning its value as a string, or nil.
func (k *Kernel) luaGetVariable(L *lua.LState) int {
	name := L.CheckString(1)

	v, _, ok := k.ctx.Scope.GetVariable(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	L.Push(lua.LString(v.Value))

	return 1
}

// luaSetVariable implements `nml.set_variable(name, value, exported)`:
// binds a text variable in the invoking scope, mirroring what the
// `:set`/`:export` rules do for authored directives (package langrules).
func (k *Kernel) luaSetVariable(L *lua.LState) int {
	name := L.CheckString(1)
	value := L.CheckString(2)

	visibility := refs.VisibilityInternal
	if L.ToBool(3) {
		visibility = refs.VisibilityExported
	}

	newText := func(loc source.Token, text string) scope.Element { return elements.NewText(loc, text) }
	v := scope.NewTextVariable(name, visibility, refs.Mutable, k.ctx.Location, k.ctx.Location, value, newText)

	if !k.ctx.Scope.DefineVariable(v) {
		L.RaiseError("nml.set_variable: %q is immutable in this scope", name)
		return 0
	}

	k.ctx.Scope.AddContent(elements.NewVariableDefinition(k.ctx.Location, name))

	return 0
}

func elementUserData(L *lua.LState, elem scope.Element) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = elem

	return ud
}
