package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/core/systems"
)

type Options struct {
	// CellSize is the number of world units covered by one terminal cell.
	CellSize      float64
	ShowFPS       bool
	ShowColliders bool
	Log           log.Log
}

// Renderer draws the sprites of the world on a tcell screen, one glyph per
// sprite. World coordinates map to cells with the origin at the top-left
// corner and y growing downwards.
type Renderer struct {
	screen tcell.Screen
	world  systems.World
	log    log.Log

	cellSize      float64
	showFPS       bool
	showColliders bool
	fps           float64
	drawn         int
}

func New(screen tcell.Screen, world systems.World, opts Options) *Renderer {
	if opts.CellSize <= 0 {
		opts.CellSize = 1
	}
	if opts.Log == nil {
		opts.Log = log.Nop()
	}
	return &Renderer{
		screen:        screen,
		world:         world,
		log:           opts.Log.Named("render"),
		cellSize:      opts.CellSize,
		showFPS:       opts.ShowFPS,
		showColliders: opts.ShowColliders,
	}
}

func (*Renderer) Name() string          { return "render" }
func (*Renderer) Phase() systems.Phase { return systems.PhaseRender }

func (r *Renderer) Screen() tcell.Screen { return r.screen }

func (r *Renderer) ToggleFPS() bool {
	r.showFPS = !r.showFPS
	return r.showFPS
}

func (r *Renderer) ToggleColliders() bool {
	r.showColliders = !r.showColliders
	return r.showColliders
}

func (r *Renderer) ShowFPS() bool       { return r.showFPS }
func (r *Renderer) ShowColliders() bool { return r.showColliders }

// SetFPS sets the value shown by the fps overlay.
func (r *Renderer) SetFPS(fps float64) { r.fps = fps }

// Drawn is the number of sprites drawn by the last frame.
func (r *Renderer) Drawn() int { return r.drawn }

func (r *Renderer) Update(time.Duration) {
	r.Draw()
}

type item struct {
	sprite *components.Sprite
	owner  *models.GameObject
}

// Draw renders one frame and shows it.
func (r *Renderer) Draw() {
	r.screen.Clear()

	var items []item
	var colliders []components.Collider
	for g := range systems.ActiveObjects(r.world).Seq() {
		for _, s := range models.GetComponents[*components.Sprite](g) {
			items = append(items, item{sprite: s, owner: g})
		}
		if r.showColliders {
			colliders = append(colliders, models.GetComponents[components.Collider](g)...)
		}
	}
	slices.SortStableFunc(items, func(a, b item) int {
		return cmp.Or(
			cmp.Compare(a.sprite.SortingLayer, b.sprite.SortingLayer),
			cmp.Compare(a.sprite.OrderInLayer, b.sprite.OrderInLayer),
			cmp.Compare(a.owner.Layer(), b.owner.Layer()),
		)
	})

	for _, c := range colliders {
		r.outline(c.Bounds())
	}
	for _, it := range items {
		x, y := r.cell(it.owner.WorldPosition())
		r.screen.SetContent(x, y, it.sprite.Glyph(), nil, style(it.sprite.Color))
	}
	r.drawn = len(items)

	if r.showFPS {
		r.text(0, 0, fmt.Sprintf("FPS %.0f", r.fps), tcell.StyleDefault.Reverse(true))
	}
	r.screen.Show()
}

func (r *Renderer) cell(p models.Vec2) (int, int) {
	return int(math.Floor(p.X / r.cellSize)), int(math.Floor(p.Y / r.cellSize))
}

func (r *Renderer) outline(b components.Rect) {
	x0, y0 := r.cell(b.Min)
	x1, y1 := r.cell(b.Max)
	st := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for x := x0; x <= x1; x++ {
		r.screen.SetContent(x, y0, '─', nil, st)
		r.screen.SetContent(x, y1, '─', nil, st)
	}
	for y := y0; y <= y1; y++ {
		r.screen.SetContent(x0, y, '│', nil, st)
		r.screen.SetContent(x1, y, '│', nil, st)
	}
	r.screen.SetContent(x0, y0, '┌', nil, st)
	r.screen.SetContent(x1, y0, '┐', nil, st)
	r.screen.SetContent(x0, y1, '└', nil, st)
	r.screen.SetContent(x1, y1, '┘', nil, st)
}

func (r *Renderer) text(x, y int, s string, st tcell.Style) {
	for i, ch := range []rune(s) {
		r.screen.SetContent(x+i, y, ch, nil, st)
	}
}

func style(c components.Color) tcell.Style {
	if c.A == 0 {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}
