package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Manager owns one sandboxed LState per script and dispatches hook calls to it.
//
// Every hook call runs under its own instruction budget. Calls are serialised
// by a mutex; LStates are single-threaded.
type Manager struct {
	mu     sync.Mutex
	states map[string]*lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil; limit <= 0 uses DefaultInstructionLimit.
func NewManager(roller *dice.Roller, logger *zap.Logger, limit int) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		states: make(map[string]*lua.LState),
		limit:  limit,
		roller: roller,
		logger: logger,
	}
}

// LoadSource compiles src into a fresh VM registered as name, replacing any previous one.
func (m *Manager) LoadSource(name, src string) error {
	return m.load(name, func(L *lua.LState) error { return L.DoString(src) })
}

// LoadFile compiles the file at path into a fresh VM registered as name.
func (m *Manager) LoadFile(name, path string) error {
	return m.load(name, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadDir loads every *.lua file in dir as its own script, named by the file's
// base name without extension, in lexicographic order.
//
// Postcondition: returns the loaded names, or an error naming the first failure.
func (m *Manager) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(f, ".lua")
		if err := m.LoadFile(name, filepath.Join(dir, f)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (m *Manager) load(name string, run func(*lua.LState) error) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	release := Limit(L, m.limit)
	err := run(L)
	release()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}

	m.mu.Lock()
	if old, ok := m.states[name]; ok {
		old.Close()
	}
	m.states[name] = L
	m.mu.Unlock()
	return nil
}

// Has reports whether a script is registered under name.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[name]
	return ok
}

// Names returns the registered script names in lexicographic order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.states))
	for name := range m.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CallHook calls the global function hook in the named script's VM.
// See CallWith.
func (m *Manager) CallHook(name, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.CallWith(name, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallWith calls hook with arguments built inside the target VM by build.
//
// Returns (LNil, nil) when the script or hook is missing. Lua runtime errors,
// including an exhausted instruction budget, are logged at Warn and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallWith(name, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L, ok := m.states[name]
	if !ok {
		m.logger.Info("scripting: no VM for script",
			zap.String("script", name),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	var args []lua.LValue
	if build != nil {
		args = build(L)
	}

	release := Limit(L, m.limit)
	defer release()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("script", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, L := range m.states {
		L.Close()
		delete(m.states, name)
	}
}
