package player

import (
	"math"

	"github.com/jsphweid/chordtext/arpeggio"
	"github.com/jsphweid/chordtext/audio"
	"github.com/jsphweid/chordtext/chord"
	"github.com/jsphweid/chordtext/model"
)

const (
	// StrumDuration is how long a strummed chord counts as playing.
	StrumDuration = 2.25
	// Leniency in beats an opening stays usable after its boundary.
	Leniency = 0.05
	// ReleaseDecay fades out a sustained chord when the same chord is
	// triggered again.
	ReleaseDecay = 0.5

	boundaryEpsilon = 1e-9
)

type state interface {
	isState()
}

type idle struct{}

// scheduled always holds one or two segments, front first.
type scheduled struct {
	segments []model.Segment
	openings []model.Opening
}

// openingsOnly holds at least one opening, newest first.
type openingsOnly struct {
	openings []model.Opening
}

func (idle) isState()         {}
func (scheduled) isState()    {}
func (openingsOnly) isState() {}

// Player is the scheduling state of one session. It is a value: every
// operation returns the next Player and leaves the receiver untouched. The
// zero Player is idle.
type Player struct {
	st state
}

func New() Player {
	return Player{st: idle{}}
}

func from(segments []model.Segment, openings []model.Opening) Player {
	if len(segments) > 0 {
		return Player{st: scheduled{
			segments: append([]model.Segment(nil), segments...),
			openings: append([]model.Opening(nil), openings...),
		}}
	}
	if len(openings) > 0 {
		return Player{st: openingsOnly{openings: append([]model.Opening(nil), openings...)}}
	}
	return New()
}

func (p Player) Segments() []model.Segment {
	if s, ok := p.st.(scheduled); ok {
		return append([]model.Segment(nil), s.segments...)
	}
	return nil
}

// Openings lists pending arpeggio openings, newest first.
func (p Player) Openings() []model.Opening {
	switch s := p.st.(type) {
	case scheduled:
		return append([]model.Opening(nil), s.openings...)
	case openingsOnly:
		return append([]model.Opening(nil), s.openings...)
	}
	return nil
}

func (p Player) IsIdle() bool {
	switch p.st.(type) {
	case scheduled, openingsOnly:
		return false
	}
	return true
}

func pruneSegments(segments []model.Segment, now float64) []model.Segment {
	var res []model.Segment
	for _, s := range segments {
		if s.Stop > now {
			res = append(res, s)
		}
	}
	return res
}

// pruneOpenings drops stale openings. The list is ordered by non-increasing
// EndTime so the stale ones sit at the tail.
func pruneOpenings(openings []model.Opening, now float64) []model.Opening {
	n := len(openings)
	for n > 0 && openings[n-1].EndTime < now {
		n--
	}
	return openings[:n]
}

func front(segments []model.Segment) *model.Segment {
	if len(segments) == 0 {
		return nil
	}
	return &segments[0]
}

// cutoff ends whatever is sounding so that chord id can start at start.
func cutoff(current *model.Segment, id int, now, start float64) []audio.Change {
	t := math.Max(now, start)
	before := now < start
	switch {
	case current == nil:
		return []audio.Change{audio.CancelFutureNotes{T: t, Before: before}}
	case current.ID != id:
		return []audio.Change{audio.MuteAllNotes{T: t, Before: before}}
	case current.IsSustain():
		return []audio.Change{
			audio.SetDecay{T: t, Decay: ReleaseDecay},
			audio.CancelFutureNotes{T: t, Before: before},
		}
	}
	return []audio.Change{audio.CancelFutureNotes{T: t, Before: before}}
}

// PlayPad holds the chord until something else is played.
func (p Player) PlayPad(lowestNote int, c model.IdChord, now float64) (Player, []audio.Change) {
	segments := pruneSegments(p.Segments(), now)

	changes := cutoff(front(segments), c.ID, now, now)
	changes = append(changes, audio.PadEnvelope)
	for _, pitch := range chord.Voicing(lowestNote, c.Chord) {
		changes = append(changes, audio.NewNote{T: now, Pitch: pitch})
	}
	return from([]model.Segment{{ID: c.ID, Stop: model.Sustain}}, nil), changes
}

// PlayStrum sweeps the voicing upwards, one note every strumInterval.
func (p Player) PlayStrum(strumInterval float64, lowestNote int, c model.IdChord, now float64) (Player, []audio.Change) {
	segments := pruneSegments(p.Segments(), now)

	changes := cutoff(front(segments), c.ID, now, now)
	changes = append(changes, audio.StrumEnvelope)
	for i, pitch := range chord.Voicing(lowestNote, c.Chord) {
		changes = append(changes, audio.NewNote{T: now + strumInterval*float64(i), Pitch: pitch})
	}
	return from([]model.Segment{{ID: c.ID, Stop: now + StrumDuration}}, nil), changes
}

// PlayArpeggio starts a four beat arpeggio. When an earlier arpeggio is
// still running the new one waits for its next half-way boundary.
func (p Player) PlayArpeggio(beatInterval float64, lowestNote int, c model.IdChord, now float64) (Player, []audio.Change) {
	segments := pruneSegments(p.Segments(), now)
	openings := pruneOpenings(p.Openings(), now)

	start, beat, highStart := now, now/beatInterval, false
	if len(openings) > 0 {
		boundary := openings[len(openings)-1]
		start = boundary.Beat * boundary.BeatInterval
		beat = start / beatInterval
		highStart = boundary.HighStart && boundary.ID != c.ID
	}

	// new openings go in front; older ones past start belonged to whatever
	// this arpeggio cuts off
	next := []model.Opening{
		{EndTime: (beat + 4 + Leniency) * beatInterval, BeatInterval: beatInterval, Beat: beat + 4, ID: c.ID},
		{EndTime: (beat + 2 + Leniency) * beatInterval, BeatInterval: beatInterval, Beat: beat + 2, ID: c.ID, HighStart: true},
	}
	for _, o := range openings {
		if o.Beat*o.BeatInterval <= start+boundaryEpsilon {
			next = append(next, o)
		}
	}
	openings = next

	current := front(segments)
	added := model.Segment{ID: c.ID, Stop: (beat + 4) * beatInterval}
	schedule := []model.Segment{added}
	if now < start && current != nil {
		truncated := model.Segment{ID: current.ID, Stop: math.Min(current.Stop, start)}
		schedule = []model.Segment{truncated, added}
	}

	changes := cutoff(current, c.ID, now, start)
	changes = append(changes, audio.ArpeggioEnvelope)
	voicing := chord.Voicing(lowestNote, c.Chord)
	for _, step := range arpeggio.Pattern(highStart, voicing[0], c.Chord) {
		t := math.Max(now, start+beatInterval*step.Beat)
		changes = append(changes, audio.NewNote{T: t, Pitch: step.Pitch})
	}
	return from(schedule, openings), changes
}

// PlayKey previews a single keyboard key over whatever is playing.
func (p Player) PlayKey(key int, now float64) []audio.Change {
	return []audio.Change{
		audio.MuteLoudestNote{T: now},
		audio.StrumEnvelope,
		audio.NewNote{T: now, Pitch: key},
	}
}

func (p Player) StopPlaying(now float64) (Player, []audio.Change) {
	return New(), []audio.Change{audio.MuteAllNotes{T: now}}
}

// SetTime advances the clock. changed is false when nothing moved, and
// finished is true on the tick that brings a busy player back to idle.
func (p Player) SetTime(now float64) (Player, bool, bool) {
	before := p.Segments()
	openings := p.Openings()

	segments := pruneSegments(before, now)
	if len(segments) == 0 && (len(openings) == 0 || openings[0].EndTime < now) {
		openings = nil
	}
	if len(segments) == len(before) && len(openings) == len(p.Openings()) {
		return p, false, false
	}

	next := from(segments, openings)
	return next, !p.IsIdle() && next.IsIdle(), true
}

// WillChange reports whether a later SetTime could still do something.
func (p Player) WillChange() bool {
	if len(p.Openings()) > 0 {
		return true
	}
	for _, s := range p.Segments() {
		if !s.IsSustain() {
			return true
		}
	}
	return false
}

func (p Player) Status() model.PlayStatus {
	status := model.PlayStatus{Active: model.NoID, Next: model.NoID}
	segments := p.Segments()
	if len(segments) > 0 {
		status.Active = segments[0].ID
		status.Stoppable = segments[0].IsSustain()
	}
	if len(segments) > 1 {
		status.Next = segments[1].ID
	}
	return status
}
