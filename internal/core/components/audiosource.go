package components

import (
	"math"

	"github.com/zeusync/spic/internal/core/models"
)

// AudioSource plays one clip on behalf of its owner. The audio manager reads
// its state every frame and keeps the mixer in sync with it.
type AudioSource struct {
	models.ComponentBase

	clip        string
	playOnAwake bool
	looping     bool
	playing     bool
	volume      float64

	// revision changes on every Play and Stop so the manager can tell a
	// restart apart from a source that kept playing.
	revision uint64
}

// NewAudioSource builds a stopped source. volume is clamped to [0, 1].
func NewAudioSource(clip string, playOnAwake, looping bool, volume float64) *AudioSource {
	s := &AudioSource{
		clip:        clip,
		playOnAwake: playOnAwake,
		looping:     looping,
		volume:      1,
	}
	s.SetVolume(volume)
	return s
}

func (s *AudioSource) Clip() string      { return s.clip }
func (s *AudioSource) PlayOnAwake() bool { return s.playOnAwake }
func (s *AudioSource) Looping() bool     { return s.looping }
func (s *AudioSource) Playing() bool     { return s.playing }
func (s *AudioSource) Volume() float64   { return s.volume }
func (s *AudioSource) Revision() uint64  { return s.revision }

// SetVolume clamps v to [0, 1]. NaN leaves the volume unchanged.
func (s *AudioSource) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.volume = math.Max(0, math.Min(1, v))
}

// Play (re)starts the clip from the beginning.
func (s *AudioSource) Play(looping bool) {
	s.looping = looping
	s.playing = true
	s.revision++
}

func (s *AudioSource) Stop() {
	if !s.playing {
		return
	}
	s.playing = false
	s.revision++
}

// Ended marks a non-looping playback started at revision as finished. Stale
// revisions are ignored.
func (s *AudioSource) Ended(revision uint64) {
	if revision != s.revision || !s.playing {
		return
	}
	s.playing = false
}
