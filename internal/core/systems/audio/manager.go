package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/zeusync/spic/internal/core/components"
	"github.com/zeusync/spic/internal/core/models"
	"github.com/zeusync/spic/internal/core/observability/log"
	"github.com/zeusync/spic/internal/core/systems"
	"github.com/zeusync/spic/pkg/concurrent"
	"github.com/zeusync/spic/pkg/sequence"
)

var ErrEmptyClip = errors.New("audio clip has no samples")

const preloadWorkers = 4

// Loader opens a clip for decoding. The manager closes the returned streamer
// once the clip is buffered.
type Loader func(path string) (beep.StreamSeekCloser, beep.Format, error)

// OpenWav is the default Loader: it decodes a wav file from disk.
func OpenWav(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open clip %s: %w", path, err)
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode clip %s: %w", path, err)
	}
	return s, format, nil
}

type Options struct {
	SampleRate int
	// Quality is the resampling quality handed to beep.Resample.
	Quality int
	// Drain makes Update pull dt worth of samples from the mixer, so playback
	// advances without an output device attached.
	Drain  bool
	Loader Loader
	Log    log.Log
}

// Manager keeps a beep mixer in sync with the AudioSources of the world.
// Every source that plays owns one voice; voices of stopped, inactive or
// destroyed sources are dropped from the mixer.
//
// Manager is itself a beep.Streamer, so an output device can pull the mix
// from its own goroutine.
type Manager struct {
	mu sync.Mutex

	world   systems.World
	rate    beep.SampleRate
	quality int
	drain   bool
	load    Loader
	log     log.Log

	mixer   *beep.Mixer
	clips   map[uint64]*beep.Buffer
	voices  map[*components.AudioSource]*voice
	awake   map[*components.AudioSource]struct{}
	scratch [][2]float64
}

type voice struct {
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	revision uint64
	ended    bool
}

func (v *voice) setVolume(volume float64) {
	if volume <= 0 {
		v.volume.Silent = true
		return
	}
	v.volume.Silent = false
	v.volume.Volume = math.Log2(volume)
}

func NewManager(world systems.World, opts Options) *Manager {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Quality <= 0 {
		opts.Quality = 4
	}
	if opts.Loader == nil {
		opts.Loader = OpenWav
	}
	if opts.Log == nil {
		opts.Log = log.Nop()
	}
	return &Manager{
		world:   world,
		rate:    beep.SampleRate(opts.SampleRate),
		quality: opts.Quality,
		drain:   opts.Drain,
		load:    opts.Loader,
		log:     opts.Log.Named("audio"),
		mixer:   &beep.Mixer{},
		clips:   make(map[uint64]*beep.Buffer),
		voices:  make(map[*components.AudioSource]*voice),
		awake:   make(map[*components.AudioSource]struct{}),
		scratch: make([][2]float64, 512),
	}
}

func (*Manager) Name() string         { return "audio" }
func (*Manager) Phase() systems.Phase { return systems.PhaseAudio }

func (m *Manager) SampleRate() beep.SampleRate { return m.rate }

// Voices is the number of sources currently holding a voice.
func (m *Manager) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// CachedClips is the number of decoded clips kept in memory.
func (m *Manager) CachedClips() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips)
}

func (m *Manager) Update(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := make(map[*components.AudioSource]struct{}, len(m.voices))
	for g := range m.world.Objects().Seq() {
		for _, src := range models.GetComponents[*components.AudioSource](g) {
			live[src] = struct{}{}
			m.sync(src, g.IsActiveInWorld())
		}
	}
	for src, v := range m.voices {
		if _, ok := live[src]; !ok {
			m.stop(src, v)
		}
	}
	for src := range m.awake {
		if _, ok := live[src]; !ok {
			delete(m.awake, src)
		}
	}

	if m.drain && dt > 0 {
		m.pull(m.rate.N(dt))
	}
}

func (m *Manager) sync(src *components.AudioSource, active bool) {
	if _, ok := m.awake[src]; !ok && active {
		m.awake[src] = struct{}{}
		if src.PlayOnAwake() && !src.Playing() {
			src.Play(src.Looping())
		}
	}

	v := m.voices[src]
	if v != nil && v.ended {
		src.Ended(v.revision)
		m.stop(src, v)
		v = nil
	}
	if !active || !src.Playing() {
		if v != nil {
			m.stop(src, v)
		}
		return
	}
	if v == nil || v.revision != src.Revision() {
		if v != nil {
			m.stop(src, v)
		}
		if v = m.start(src); v == nil {
			return
		}
	}
	v.setVolume(src.Volume())
}

func (m *Manager) start(src *components.AudioSource) *voice {
	buf, err := m.clip(src.Clip())
	if err != nil {
		m.log.Error("audio clip unavailable",
			log.String("clip", src.Clip()),
			log.Error(err))
		src.Stop()
		return nil
	}

	v := &voice{revision: src.Revision()}
	whole := buf.Streamer(0, buf.Len())
	var s beep.Streamer
	if src.Looping() {
		s = beep.Loop(-1, whole)
	} else {
		s = beep.Seq(whole, beep.Callback(func() { v.ended = true }))
	}
	if rate := buf.Format().SampleRate; rate != m.rate {
		s = beep.Resample(m.quality, rate, m.rate, s)
	}
	v.volume = &effects.Volume{Streamer: s, Base: 2}
	v.setVolume(src.Volume())
	v.ctrl = &beep.Ctrl{Streamer: v.volume}

	m.mixer.Add(v.ctrl)
	m.voices[src] = v
	return v
}

// stop silences v and lets the mixer drop it on its next pass.
func (m *Manager) stop(src *components.AudioSource, v *voice) {
	v.ctrl.Paused = true
	v.ctrl.Streamer = nil
	delete(m.voices, src)
}

// clip returns the decoded buffer of path, keyed by its xxhash.
func (m *Manager) clip(path string) (*beep.Buffer, error) {
	key := xxhash.Sum64String(path)
	if buf, ok := m.clips[key]; ok {
		return buf, nil
	}
	buf, err := m.decode(path)
	if err != nil {
		return nil, err
	}
	m.clips[key] = buf
	return buf, nil
}

// decode buffers a whole clip. It touches no manager state but the loader.
func (m *Manager) decode(path string) (*beep.Buffer, error) {
	s, format, err := m.load(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	buf := beep.NewBuffer(format)
	buf.Append(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode clip %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("clip %s: %w", path, ErrEmptyClip)
	}
	m.log.Debug("audio clip decoded",
		log.String("clip", path),
		log.Int("samples", buf.Len()))
	return buf, nil
}

// Preload decodes the clips of every AudioSource in the world that are not
// cached yet, preloadWorkers at a time, so the first Play does not stall a
// frame. Clips that fail to load are reported and left out of the cache.
func (m *Manager) Preload(ctx context.Context) error {
	m.mu.Lock()
	seen := make(map[uint64]struct{})
	var paths []string
	for g := range m.world.Objects().Seq() {
		for _, src := range models.GetComponents[*components.AudioSource](g) {
			key := xxhash.Sum64String(src.Clip())
			if _, cached := m.clips[key]; cached || src.Clip() == "" {
				continue
			}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				paths = append(paths, src.Clip())
			}
		}
	}
	m.mu.Unlock()

	return concurrent.Each(ctx, sequence.From(paths), preloadWorkers, func(_ context.Context, path string) error {
		buf, err := m.decode(path)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.clips[xxhash.Sum64String(path)] = buf
		m.mu.Unlock()
		return nil
	})
}

func (m *Manager) pull(n int) {
	for n > 0 {
		chunk := min(n, len(m.scratch))
		m.mixer.Stream(m.scratch[:chunk])
		n -= chunk
	}
}

// Stream mixes the voices into samples; it never runs dry.
func (m *Manager) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Stream(samples)
}

func (m *Manager) Err() error { return nil }

// Close drops every voice and the clip cache.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for src, v := range m.voices {
		m.stop(src, v)
	}
	m.mixer.Clear()
	clear(m.clips)
	clear(m.awake)
}
