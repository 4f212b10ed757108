package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// LuaBehaviour is a Behaviour whose hooks live in a Lua chunk. Each instance
// owns its own VM, created on attach and closed on detach.
//
// Hooks are plain globals: on_start(), on_update(dt), on_activate(),
// on_deactivate(), on_trigger_enter(other), on_trigger_stay(other) and
// on_trigger_exit(other), with dt in seconds and other the name of the
// entity on the other side. The owner is reachable through the self table.
//
// Script errors never escape: they are logged and kept for Err.
type LuaBehaviour struct {
	components.BehaviourScript

	name   string
	source string
	log    log.Log

	vm      *lua.LState
	loaded  bool
	err     error
	destroy bool
}

func NewLuaBehaviour(name, source string, l log.Log) *LuaBehaviour {
	if l == nil {
		l = log.Nop()
	}
	return &LuaBehaviour{
		name:   name,
		source: source,
		log:    l.Named("lua").With(log.String("script", name)),
	}
}

// LoadLuaBehaviour reads a script from disk; it is named after the file.
func LoadLuaBehaviour(path string, l log.Log) (*LuaBehaviour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewLuaBehaviour(name, string(data), l), nil
}

func (b *LuaBehaviour) ScriptName() string { return b.name }

// Err returns the last script error, if any.
func (b *LuaBehaviour) Err() error { return b.err }

func (b *LuaBehaviour) OnAttach(owner *models.GameObject) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
	vm.SetGlobal("self", b.selfTable(vm, owner))
	b.vm = vm

	if err := vm.DoString(b.source); err != nil {
		b.fail("load", err)
		return
	}
	b.loaded = true
	b.log.Debug("lua script loaded", log.String("owner", owner.Name()))
}

func (b *LuaBehaviour) OnDetach() {
	if b.vm != nil {
		b.vm.Close()
		b.vm = nil
	}
	b.loaded = false
}

func (b *LuaBehaviour) OnStart()      { b.call("on_start") }
func (b *LuaBehaviour) OnActivate()   { b.call("on_activate") }
func (b *LuaBehaviour) OnDeactivate() { b.call("on_deactivate") }

func (b *LuaBehaviour) OnUpdate(dt time.Duration) {
	b.call("on_update", lua.LNumber(dt.Seconds()))
}

func (b *LuaBehaviour) OnTriggerEnter2D(other components.Collider) {
	b.call("on_trigger_enter", colliderName(other))
}

func (b *LuaBehaviour) OnTriggerStay2D(other components.Collider) {
	b.call("on_trigger_stay", colliderName(other))
}

func (b *LuaBehaviour) OnTriggerExit2D(other components.Collider) {
	b.call("on_trigger_exit", colliderName(other))
}

func colliderName(c components.Collider) lua.LValue {
	if owner := c.GameObject(); owner != nil {
		return lua.LString(owner.Name())
	}
	return lua.LNil
}

func (b *LuaBehaviour) call(hook string, args ...lua.LValue) {
	if !b.loaded {
		return
	}
	fn, ok := b.vm.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return
	}
	if err := b.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		b.fail(hook, err)
	}

	// self.destroy() is deferred until the VM is no longer running.
	if b.destroy {
		b.destroy = false
		if owner := b.GameObject(); owner != nil {
			if err := owner.Registry().Destroy(owner); err != nil {
				b.fail(hook, err)
			}
		}
	}
}

func (b *LuaBehaviour) fail(hook string, err error) {
	b.err = fmt.Errorf("lua %s %s: %w", b.name, hook, err)
	b.log.Error("lua script error",
		log.String("hook", hook),
		log.Error(err))
}

func (b *LuaBehaviour) selfTable(vm *lua.LState, owner *models.GameObject) *lua.LTable {
	t := vm.NewTable()
	vm.SetFuncs(t, map[string]lua.LGFunction{
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(owner.Name()))
			return 1
		},
		"tag": func(L *lua.LState) int {
			L.Push(lua.LString(owner.Tag()))
			return 1
		},
		"active": func(L *lua.LState) int {
			L.Push(lua.LBool(owner.IsActiveInWorld()))
			return 1
		},
		"set_active": func(L *lua.LState) int {
			owner.SetActive(L.CheckBool(1))
			return 0
		},
		"position": func(L *lua.LState) int {
			p := owner.Transform().Position
			L.Push(lua.LNumber(p.X))
			L.Push(lua.LNumber(p.Y))
			return 2
		},
		"set_position": func(L *lua.LState) int {
			owner.Transform().Position = models.Vec2{
				X: float64(L.CheckNumber(1)),
				Y: float64(L.CheckNumber(2)),
			}
			return 0
		},
		"translate": func(L *lua.LState) int {
			tr := owner.Transform()
			tr.Position = tr.Position.Add(models.Vec2{
				X: float64(L.CheckNumber(1)),
				Y: float64(L.CheckNumber(2)),
			})
			return 0
		},
		"destroy": func(L *lua.LState) int {
			b.destroy = true
			return 0
		},
		"log": func(L *lua.LState) int {
			b.log.Info(L.CheckString(1))
			return 0
		},
	})
	return t
}
