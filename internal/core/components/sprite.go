package components

import "github.com/zeusync/spic/internal/core/models"

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	White = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black = Color{A: 0xff}
)

// Frame is one image of a sprite: the texture it was cut from and the glyph
// used by the terminal renderer.
type Frame struct {
	Texture string
	Glyph   rune
}

// Sprite is the renderable image of an entity. Sprites are ordered by
// SortingLayer, then OrderInLayer, then the owner's layer.
type Sprite struct {
	models.ComponentBase

	Frame        Frame
	Color        Color
	FlipX        bool
	FlipY        bool
	SortingLayer int
	OrderInLayer int
}

func NewSprite(frame Frame, color Color, sortingLayer, orderInLayer int) *Sprite {
	return &Sprite{
		Frame:        frame,
		Color:        color,
		SortingLayer: sortingLayer,
		OrderInLayer: orderInLayer,
	}
}

// Glyph returns the glyph to draw, mirrored when the sprite is flipped.
func (s *Sprite) Glyph() rune {
	g := s.Frame.Glyph
	if s.FlipX {
		if m, ok := mirrorX[g]; ok {
			g = m
		}
	}
	if s.FlipY {
		if m, ok := mirrorY[g]; ok {
			g = m
		}
	}
	return g
}

var mirrorX = map[rune]rune{
	'<': '>', '>': '<',
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'/': '\\', '\\': '/',
	'◀': '▶', '▶': '◀',
}

var mirrorY = map[rune]rune{
	'^': 'v', 'v': '^',
	'/': '\\', '\\': '/',
	'▲': '▼', '▼': '▲',
}
