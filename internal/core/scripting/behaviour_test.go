package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
)

const mover = `
local elapsed = 0
started = false

function on_start()
	started = true
	self.log("hello from " .. self.name())
end

function on_update(dt)
	elapsed = elapsed + dt
	self.translate(1, 0)
	if elapsed >= 0.25 then
		self.destroy()
	end
end
`

func observed() (log.Log, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return log.Wrap(zap.New(core)), logs
}

func TestLuaBehaviourDrivesOwner(t *testing.T) {
	l, logs := observed()
	reg := models.NewRegistry()
	g := reg.NewGameObject("mover", "", 0)
	b := NewLuaBehaviour("mover", mover, l)
	require.NoError(t, g.AddComponent(b))
	require.NoError(t, b.Err())

	b.OnStart()
	require.Equal(t, lua.LTrue, b.vm.GetGlobal("started"))
	require.Equal(t, 1, logs.FilterMessage("hello from mover").Len())

	b.OnUpdate(100 * time.Millisecond)
	b.OnUpdate(100 * time.Millisecond)
	require.Equal(t, models.Vec2{X: 2}, g.Transform().Position)
	require.False(t, g.Destroyed())

	b.OnUpdate(100 * time.Millisecond)
	require.True(t, g.Destroyed())
	require.Nil(t, b.vm, "vm closed on detach")
	require.NoError(t, b.Err())
}

func TestLuaBehaviourRuntimeErrorIsKept(t *testing.T) {
	l, logs := observed()
	reg := models.NewRegistry()
	g := reg.NewGameObject("g", "", 0)
	b := NewLuaBehaviour("broken", `function on_update(dt) error("boom") end`, l)
	require.NoError(t, g.AddComponent(b))

	require.NotPanics(t, func() { b.OnUpdate(time.Millisecond) })
	require.ErrorContains(t, b.Err(), "boom")
	require.Equal(t, 1, logs.FilterMessage("lua script error").Len())
}

func TestLuaBehaviourSyntaxErrorDisablesHooks(t *testing.T) {
	reg := models.NewRegistry()
	g := reg.NewGameObject("g", "", 0)
	b := NewLuaBehaviour("bad", `function on_start(`, nil)
	require.NoError(t, g.AddComponent(b))

	require.Error(t, b.Err())
	require.NotPanics(t, b.OnStart)
}

func TestLuaBehaviourTriggersAndSelfAPI(t *testing.T) {
	reg := models.NewRegistry()
	g := reg.NewGameObject("zone", "trap", 0)
	other := reg.NewGameObject("player", "", 0)
	collider := components.NewBoxCollider(1, 1, false)
	require.NoError(t, other.AddComponent(collider))

	b := NewLuaBehaviour("zone", `
entered = nil
function on_trigger_enter(other)
	entered = other
	self.set_position(4, 5)
	self.set_active(false)
end
function on_activate()
	x, y = self.position()
	tag = self.tag()
	active = self.active()
	version = API_VERSION
end
`, nil)
	require.NoError(t, g.AddComponent(b))

	b.OnTriggerEnter2D(collider)
	require.Equal(t, lua.LString("player"), b.vm.GetGlobal("entered"))
	require.Equal(t, models.Vec2{X: 4, Y: 5}, g.Transform().Position)
	require.False(t, g.Active())

	b.OnActivate()
	require.Equal(t, lua.LNumber(4), b.vm.GetGlobal("x"))
	require.Equal(t, lua.LNumber(5), b.vm.GetGlobal("y"))
	require.Equal(t, lua.LString("trap"), b.vm.GetGlobal("tag"))
	require.Equal(t, lua.LFalse, b.vm.GetGlobal("active"))
	require.Equal(t, lua.LNumber(APIVersion), b.vm.GetGlobal("version"))
}

func TestLoadLuaBehaviour(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spinner.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function on_update(dt) end`), 0o600))

	b, err := LoadLuaBehaviour(path, nil)
	require.NoError(t, err)
	require.Equal(t, "spinner", b.ScriptName())

	_, err = LoadLuaBehaviour(filepath.Join(dir, "missing.lua"), nil)
	require.Error(t, err)
}
