package midi

import (
	"io"
	"math"
	"os"
	"sort"

	"github.com/jsphweid/chordtext/audio"
	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/player"
	"github.com/jsphweid/chordtext/session"
	"github.com/jsphweid/chordtext/sheet"
	"github.com/jsphweid/chordtext/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = smf.MetricTicks(480)

// BeatsPerChord is the spacing of chords when a whole sheet is rendered.
const BeatsPerChord = 4

type note struct {
	pitch    int
	start    float64
	end      float64
	velocity uint8
}

func velocity(e audio.SetEnvelope) uint8 {
	return uint8(util.Clamp(int(math.Round(e.Peak*200)), 1, 127))
}

// notes replays a command stream the way the synthesis engine would and
// returns the notes that actually sound. A mute silences what is sounding
// and drops anything scheduled from then on; notes still open at until end
// there.
func notes(changes []audio.Change, until float64) []note {
	var res []note
	env := audio.PadEnvelope
	open := func(n note, t float64) bool {
		return n.start < t && n.end > t
	}
	cancel := func(t float64) {
		kept := res[:0]
		for _, n := range res {
			if n.start < t {
				kept = append(kept, n)
			}
		}
		res = kept
	}

	for _, c := range changes {
		switch v := c.(type) {
		case audio.SetEnvelope:
			env = v
		case audio.NewNote:
			// a key restruck cuts its previous note
			for i := range res {
				if res[i].pitch == v.Pitch && open(res[i], v.T) {
					res[i].end = v.T
				}
			}
			end := math.Inf(1)
			if !math.IsInf(env.Decay, 1) {
				end = v.T + env.Decay
			}
			res = append(res, note{pitch: v.Pitch, start: v.T, end: end, velocity: velocity(env)})
		case audio.SetDecay:
			for i := range res {
				if res[i].start <= v.T && res[i].end > v.T+v.Decay {
					res[i].end = v.T + v.Decay
				}
			}
		case audio.CancelFutureNotes:
			cancel(v.T)
		case audio.MuteAllNotes:
			cancel(v.T)
			for i := range res {
				if open(res[i], v.T) {
					res[i].end = v.T
				}
			}
		case audio.MuteLoudestNote:
			loudest := -1
			for i := range res {
				if !open(res[i], v.T) {
					continue
				}
				if loudest < 0 || res[i].velocity > res[loudest].velocity ||
					(res[i].velocity == res[loudest].velocity && res[i].start >= res[loudest].start) {
					loudest = i
				}
			}
			if loudest >= 0 {
				res[loudest].end = v.T
			}
		}
	}

	for i := range res {
		if res[i].end > until {
			res[i].end = until
		}
	}
	return res
}

func secondsToTicks(seconds float64, bpm float64) uint32 {
	ticksPerSecond := (bpm / 60.0) * float64(ticksPerQuarter)
	return uint32(math.Round(seconds * ticksPerSecond))
}

type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// Render turns a command stream into a single track file at the given tempo.
func Render(changes []audio.Change, bpm, until float64) *smf.SMF {
	var msgs []timedMessage
	for _, n := range notes(changes, until) {
		if n.end <= n.start {
			continue
		}
		key := uint8(util.Clamp(n.pitch, 0, 127))
		msgs = append(msgs,
			timedMessage{tick: secondsToTicks(n.start, bpm), msg: midi.NoteOn(0, key, n.velocity)},
			timedMessage{tick: secondsToTicks(n.end, bpm), off: true, msg: midi.NoteOff(0, key)},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].off && !msgs[j].off
	})

	s := smf.New()
	s.TimeFormat = ticksPerQuarter
	var track smf.Track
	track.Add(0, smf.MetaTempo(bpm))
	var lastTick uint32
	for _, m := range msgs {
		track.Add(m.tick-lastTick, m.msg)
		lastTick = m.tick
	}
	endTick := secondsToTicks(until, bpm)
	if endTick < lastTick {
		endTick = lastTick
	}
	track.Close(endTick - lastTick)
	s.Add(track)
	return s
}

// Perform plays every chord in turn, BeatsPerChord beats apart, the way a
// session in opts.Mode would, and returns the command stream and its end.
func Perform(chords []model.IdChord, opts session.Options) ([]audio.Change, float64) {
	beatInterval := opts.BeatInterval()
	p := player.New()
	var res []audio.Change
	var changes []audio.Change
	for i, c := range chords {
		now := float64(i*BeatsPerChord) * beatInterval
		p, _, _ = p.SetTime(now)
		switch opts.Mode {
		case session.Strum:
			p, changes = p.PlayStrum(opts.StrumInterval, opts.LowestNote, c, now)
		case session.Arpeggio:
			p, changes = p.PlayArpeggio(beatInterval, opts.LowestNote, c, now)
		default:
			p, changes = p.PlayPad(opts.LowestNote, c, now)
		}
		res = append(res, changes...)
	}
	end := float64(len(chords)*BeatsPerChord) * beatInterval
	_, changes = p.StopPlaying(end)
	return append(res, changes...), end
}

func RenderChords(chords []model.IdChord, opts session.Options) *smf.SMF {
	changes, end := Perform(chords, opts)
	return Render(changes, opts.BPM, end)
}

// RenderSheet renders every chord of a sheet in document order.
func RenderSheet(s *sheet.Sheet, opts session.Options) *smf.SMF {
	return RenderChords(s.Chords(), opts)
}

func Write(s *smf.SMF, w io.Writer) error {
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write MIDI file")
	}
	return nil
}

func WriteFile(s *smf.SMF, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer f.Close()
	return Write(s, f)
}
