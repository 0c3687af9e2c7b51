package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/chordtext/audio"
	"github.com/jsphweid/chordtext/chord"
	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/player"
	"github.com/jsphweid/chordtext/sheet"
	"github.com/jsphweid/chordtext/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Mode string

const (
	Pad      Mode = "pad"
	Strum    Mode = "strum"
	Arpeggio Mode = "arpeggio"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Pad, Strum, Arpeggio:
		return m, nil
	}
	return "", fmt.Errorf("unknown playback mode %q", s)
}

var (
	ErrUnknownChord = errors.New("no chord with that id")
	ErrNoCode       = errors.New("chord has no code")
)

// Sink receives every batch of wire records, one call per batch.
type Sink interface {
	Send(batch []audio.Record) error
}

type Options struct {
	Mode          Mode
	BPM           float64
	StrumInterval float64
	LowestNote    int
	// keyboard used by ToggleKey starts here
	KeyboardLow int
	Debounce    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Mode:          Pad,
		BPM:           120,
		StrumInterval: 0.03,
		LowestNote:    36,
		KeyboardLow:   48,
		Debounce:      150 * time.Millisecond,
	}
}

func (o Options) BeatInterval() float64 {
	return 60 / o.BPM
}

// Session is one editor: its text, the parsed sheet and the player. Methods
// are safe to call from several goroutines; debounced parses run on a timer.
type Session struct {
	ID string

	mu        sync.Mutex
	opts      Options
	text      string
	sheet     *sheet.Sheet
	player    player.Player
	sink      Sink
	debounced func(f func())
	log       *zap.Logger
}

func New(sink Sink, opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		ID:        id,
		opts:      opts,
		sheet:     sheet.Parse(""),
		player:    player.New(),
		sink:      sink,
		debounced: debounce.New(opts.Debounce),
		log:       log.With(zap.String("session", id)),
	}
}

// SetText stores new text and re-parses it once typing pauses.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
	s.debounced(s.reparse)
}

// Flush parses the current text right away.
func (s *Session) Flush() *sheet.Sheet {
	s.reparse()
	return s.Sheet()
}

func (s *Session) reparse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheet.Text == s.text {
		return
	}
	s.sheet = sheet.Parse(s.text)
	s.log.Debug("parsed sheet", zap.Int("chords", len(s.sheet.Chords())))
}

func (s *Session) Sheet() *sheet.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet
}

func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Session) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

func (s *Session) Status() model.PlayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Status()
}

func (s *Session) WillChange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.WillChange()
}

// send must be called with the lock held so batches reach the sink in the
// order the player produced them. The batch is also returned to the caller.
func (s *Session) send(now float64, changes []audio.Change) ([]audio.Record, error) {
	batch := audio.Encode(now, changes)
	if err := s.sink.Send(batch); err != nil {
		return nil, errors.Wrap(err, "could not send audio batch")
	}
	return batch, nil
}

// Trigger plays chord id of the current sheet in the session's mode and
// returns the batch it sent.
func (s *Session) Trigger(id int, now float64) ([]audio.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sheet.Find(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownChord, "id %d", id)
	}
	c := model.IdChord{ID: w.ID, Chord: w.Chord}

	var changes []audio.Change
	switch s.opts.Mode {
	case Strum:
		s.player, changes = s.player.PlayStrum(s.opts.StrumInterval, s.opts.LowestNote, c, now)
	case Arpeggio:
		s.player, changes = s.player.PlayArpeggio(s.opts.BeatInterval(), s.opts.LowestNote, c, now)
	default:
		s.player, changes = s.player.PlayPad(s.opts.LowestNote, c, now)
	}
	s.log.Debug("trigger", zap.Int("id", id), zap.String("mode", string(s.opts.Mode)), zap.Float64("now", now))
	return s.send(now, changes)
}

func (s *Session) PlayKey(key int, now float64) ([]audio.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send(now, s.player.PlayKey(key, now))
}

func (s *Session) Stop(now float64) ([]audio.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changes []audio.Change
	s.player, changes = s.player.StopPlaying(now)
	return s.send(now, changes)
}

// Tick advances the player and reports whether the sequence just finished.
func (s *Session) Tick(now float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, finished, changed := s.player.SetTime(now)
	if !changed {
		return false
	}
	s.player = next
	if finished {
		s.log.Debug("sequence finished", zap.Float64("now", now))
	}
	return finished
}

// ToggleKey adds or removes one keyboard key from chord id and returns the
// rewritten text, which also becomes the session text.
func (s *Session) ToggleKey(id, key int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.sheet.Find(id)
	if !ok {
		return "", errors.Wrapf(ErrUnknownChord, "id %d", id)
	}
	low := s.opts.KeyboardLow
	next, offset, ok := chord.Toggle(low, chord.OctaveOffset(low, w.Chord), w.Chord, key)
	if !ok {
		return "", errors.Wrapf(ErrNoCode, "removing key %d empties chord %d", key, id)
	}
	pitches := util.SortedKeys(chord.ToPitchSet(low, offset, next))
	text, ok := s.sheet.ReplaceChord(id, pitches)
	if !ok {
		return "", errors.Wrapf(ErrNoCode, "%v", pitches)
	}

	s.text = text
	s.sheet = sheet.Parse(text)
	return text, nil
}

// Run ticks every frame while the player still has something to do, and
// returns when ctx ends.
func (s *Session) Run(ctx context.Context, clock func() float64, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.WillChange() {
				s.Tick(clock())
			}
		}
	}
}
