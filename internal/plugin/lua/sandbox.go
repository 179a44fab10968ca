package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L *lua.LState
}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// safeModules may be loaded through require.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
	"deck":   true,
}

// Install applies the sandbox restrictions and preloads the deck module.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	s.L.PreloadModule("deck", loadDeckModule)

	originalRequire := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safeModules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func loadDeckModule(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"slides": deckSlides,
		"blank":  deckBlank,
		"lines":  deckLines,
	})
	L.Push(mod)
	return 1
}

// deckSlides counts slides separated by --- lines.
func deckSlides(L *lua.LState) int {
	content := L.CheckString(1)
	n := 1
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "---" {
			n++
		}
	}
	L.Push(lua.LNumber(n))
	return 1
}

func deckBlank(L *lua.LState) int {
	L.Push(lua.LBool(strings.TrimSpace(L.CheckString(1)) == ""))
	return 1
}

func deckLines(L *lua.LState) int {
	content := L.CheckString(1)
	if content == "" {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(strings.Count(content, "\n") + 1))
	return 1
}
