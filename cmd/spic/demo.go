package main

import (
	_ "embed"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/core/scene"
	"github.com/zeusync/spic/internal/core/scripting"
)

//go:embed scripts/guard.lua
var guardScript string

var (
	yellow = components.Color{R: 255, G: 220, A: 255}
	red    = components.Color{R: 220, G: 40, B: 40, A: 255}
	gold   = components.Color{R: 255, G: 180, A: 255}
)

// pickup destroys its owner when the player walks into it.
type pickup struct {
	components.BehaviourScript
	collected func()
}

func (p *pickup) OnTriggerEnter2D(other components.Collider) {
	owner := p.GameObject()
	if owner == nil || other.GameObject() == nil || other.GameObject().Tag() != "player" {
		return
	}
	if p.collected != nil {
		p.collected()
	}
	_ = owner.Registry().Destroy(owner)
}

// script loads name.lua from dir, falling back to the embedded copy.
func script(dir, name, fallback string, l log.Log) (*scripting.LuaBehaviour, error) {
	b, err := scripting.LoadLuaBehaviour(filepath.Join(dir, name+".lua"), l)
	if errors.Is(err, fs.ErrNotExist) {
		return scripting.NewLuaBehaviour(name, fallback, l), nil
	}
	return b, err
}

func levelScene(scriptsDir string, l log.Log) *scene.Base {
	return scene.New("level", func(s *scene.Base) error {
		player := s.Spawn("player", "player", 1)
		player.Transform().Position = models.Vec2{X: 4, Y: 6}
		walk := components.NewAnimator(4,
			components.Frame{Glyph: '@'},
			components.Frame{Glyph: 'a'},
		)
		walk.Play(true)
		err := errors.Join(
			player.AddComponent(components.NewSprite(components.Frame{Glyph: '@'}, yellow, 1, 0)),
			player.AddComponent(walk),
			player.AddComponent(components.NewBoxCollider(1, 1, false)),
		)
		if err != nil {
			return err
		}

		guard := s.Spawn("guard", "enemy", 1)
		guard.Transform().Position = models.Vec2{X: 16, Y: 10}
		patrol, err := script(scriptsDir, "guard", guardScript, l)
		if err != nil {
			return err
		}
		err = errors.Join(
			guard.AddComponent(components.NewSprite(components.Frame{Glyph: 'G'}, red, 1, 0)),
			guard.AddComponent(components.NewCircleCollider(2, true)),
			guard.AddComponent(patrol),
		)
		if err != nil {
			return err
		}

		for i, x := range []float64{8, 12, 20, 24} {
			coin := s.Spawn("coin", "pickup", 0)
			coin.Transform().Position = models.Vec2{X: x, Y: 6}
			err := errors.Join(
				coin.AddComponent(components.NewSprite(components.Frame{Glyph: '$'}, gold, 0, i)),
				coin.AddComponent(components.NewCircleCollider(0.5, true)),
				coin.AddComponent(&pickup{collected: func() { l.Info("coin collected", log.Float64("x", x)) }}),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// movePlayer nudges the player of the current scene by one cell.
func movePlayer(r *models.Registry, dx, dy float64) {
	player, ok := r.FindWithTag("player")
	if !ok || !player.IsActiveInWorld() {
		return
	}
	t := player.Transform()
	t.Position = t.Position.Add(models.Vec2{X: dx, Y: dy})
	if anim, ok := models.GetComponent[*components.Animator](player); ok && dx != 0 {
		anim.SetFlipX(dx < 0)
	}
}

const introDuration = 1500 * time.Millisecond
