package player

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jsphweid/chordtext/audio"
	"github.com/jsphweid/chordtext/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cMajor = model.Chord{60, 64, 67}
	dMinor = model.Chord{62, 65, 69}
)

func cutoffs(changes []audio.Change) []audio.Change {
	var res []audio.Change
	for _, c := range changes {
		if _, _, ok := audio.Cutoff(c); ok {
			res = append(res, c)
		}
	}
	return res
}

func notes(changes []audio.Change) []audio.NewNote {
	var res []audio.NewNote
	for _, c := range changes {
		if n, ok := c.(audio.NewNote); ok {
			res = append(res, n)
		}
	}
	return res
}

func noteTimes(changes []audio.Change) []float64 {
	var res []float64
	for _, n := range notes(changes) {
		res = append(res, n.T)
	}
	return res
}

func notePitches(changes []audio.Change) []int {
	var res []int
	for _, n := range notes(changes) {
		res = append(res, n.Pitch)
	}
	return res
}

func TestZeroPlayerIsIdle(t *testing.T) {
	assert := assert.New(t)
	var p Player
	assert.True(p.IsIdle())
	assert.False(p.WillChange())
	assert.Equal(model.PlayStatus{Active: model.NoID, Next: model.NoID}, p.Status())
}

func TestPlayPadFromIdle(t *testing.T) {
	assert := assert.New(t)
	p, changes := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 2)
	assert.Equal([]audio.Change{
		audio.CancelFutureNotes{T: 2},
		audio.PadEnvelope,
		audio.NewNote{T: 2, Pitch: 36},
		audio.NewNote{T: 2, Pitch: 60},
		audio.NewNote{T: 2, Pitch: 64},
		audio.NewNote{T: 2, Pitch: 67},
	}, changes)
	assert.Equal([]model.Segment{{ID: 1, Stop: model.Sustain}}, p.Segments())
	assert.Equal(model.PlayStatus{Active: 1, Next: model.NoID, Stoppable: true}, p.Status())
	assert.False(p.WillChange())
}

func TestPlayPadDifferentChordMutesAll(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 0)
	p, changes := p.PlayPad(36, model.IdChord{ID: 2, Chord: dMinor}, 1)

	assert.Equal([]audio.Change{audio.MuteAllNotes{T: 1}}, cutoffs(changes))
	assert.Equal(audio.MuteAllNotes{T: 1}, changes[0])
	assert.Equal([]int{38, 62, 65, 69}, notePitches(changes))
	assert.Equal(2, p.Status().Active)
}

// Retriggering a held pad releases it with a short decay before the cancel.
// The sustain rule wins over "same chord cancels only": the decay is an
// envelope command, so the single cutoff is still CancelFutureNotes.
func TestPlayPadSameChordReleases(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 0)
	_, changes := p.PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	assert.Equal([]audio.Change{
		audio.SetDecay{T: 1, Decay: ReleaseDecay},
		audio.CancelFutureNotes{T: 1},
	}, changes[:2])
	assert.Equal([]audio.Change{audio.CancelFutureNotes{T: 1}}, cutoffs(changes))
}

func TestPlayStrum(t *testing.T) {
	assert := assert.New(t)
	p, changes := New().PlayStrum(0.25, 36, model.IdChord{ID: 3, Chord: cMajor}, 1)
	assert.Equal(audio.StrumEnvelope, changes[1])
	assert.Equal([]float64{1, 1.25, 1.5, 1.75}, noteTimes(changes))
	assert.Equal([]model.Segment{{ID: 3, Stop: 1 + StrumDuration}}, p.Segments())
	assert.True(p.WillChange())
	assert.False(p.Status().Stoppable)

	_, changes = p.PlayStrum(0.25, 36, model.IdChord{ID: 3, Chord: cMajor}, 2)
	assert.Equal([]audio.Change{audio.CancelFutureNotes{T: 2}}, cutoffs(changes))
	assert.Equal(audio.CancelFutureNotes{T: 2}, changes[0])

	// after the strum is over nothing is left to cut off
	_, changes = p.PlayStrum(0.25, 36, model.IdChord{ID: 4, Chord: dMinor}, 10)
	assert.Equal(audio.CancelFutureNotes{T: 10}, changes[0])
}

func TestPlayArpeggioFresh(t *testing.T) {
	assert := assert.New(t)
	p, changes := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)

	assert.Equal(audio.CancelFutureNotes{T: 1}, changes[0])
	assert.Equal(audio.ArpeggioEnvelope, changes[1])
	assert.Equal([]float64{1, 1.25, 1.5, 1.75, 2, 2.25, 2.5, 2.75}, noteTimes(changes))
	assert.Equal([]int{36, 60, 64, 67, 72, 67, 64, 67}, notePitches(changes))
	assert.Equal([]model.Segment{{ID: 1, Stop: 3}}, p.Segments())

	openings := p.Openings()
	require.Len(t, openings, 2)
	assert.Equal(6.0, openings[0].Beat)
	assert.False(openings[0].HighStart)
	assert.InDelta(3.025, openings[0].EndTime, 1e-9)
	assert.Equal(4.0, openings[1].Beat)
	assert.True(openings[1].HighStart)
	assert.InDelta(2.025, openings[1].EndTime, 1e-9)
}

func TestPlayArpeggioDifferentChordContinuesHigh(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)

	assert.Equal(audio.MuteAllNotes{T: 2, Before: true}, changes[0])
	// continuation starts on the high half
	assert.Equal([]int{74, 69, 65, 69, 38, 62, 65, 69}, notePitches(changes))
	assert.Equal([]float64{2, 2.25, 2.5, 2.75, 3, 3.25, 3.5, 3.75}, noteTimes(changes))
	assert.Equal([]model.Segment{{ID: 1, Stop: 2}, {ID: 2, Stop: 4}}, p.Segments())
	assert.Equal(model.PlayStatus{Active: 1, Next: 2}, p.Status())
}

func TestPlayArpeggioSameChordRestartsIntro(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1.5)

	assert.Equal([]audio.Change{audio.CancelFutureNotes{T: 2, Before: true}}, cutoffs(changes))
	assert.Equal([]int{36, 60, 64, 67, 72, 67, 64, 67}, notePitches(changes))
	assert.Equal([]model.Segment{{ID: 1, Stop: 2}, {ID: 1, Stop: 4}}, p.Segments())
}

func TestPlayArpeggioInsideLeniency(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 2.01)

	assert.Equal(audio.MuteAllNotes{T: 2.01}, changes[0])
	times := noteTimes(changes)
	assert.Equal(2.01, times[0])
	assert.Equal(2.25, times[1])
	assert.Equal([]model.Segment{{ID: 2, Stop: 4}}, p.Segments())
}

func TestPlayArpeggioAfterHalfwayWaitsForEnd(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 2.5)

	// the half-way opening is stale, the end of the first arpeggio is not
	assert.Equal(audio.MuteAllNotes{T: 3, Before: true}, changes[0])
	assert.Equal([]int{38, 62, 65, 69, 74, 69, 65, 69}, notePitches(changes))
	assert.Equal(3.0, noteTimes(changes)[0])
	assert.Equal([]model.Segment{{ID: 1, Stop: 3}, {ID: 2, Stop: 5}}, p.Segments())
}

func TestPlayArpeggioRetriggerWhileWaiting(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, _ = p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)
	require.Equal(t, []model.Segment{{ID: 1, Stop: 2}, {ID: 2, Stop: 4}}, p.Segments())

	// chord 2 has not started yet, so chord 3 takes its place at beat 4
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 3, Chord: cMajor}, 1.8)
	assert.Equal(audio.MuteAllNotes{T: 2, Before: true}, changes[0])
	assert.Equal([]float64{2, 2.25, 2.5, 2.75, 3, 3.25, 3.5, 3.75}, noteTimes(changes))
	assert.Equal([]int{72, 67, 64, 67, 36, 60, 64, 67}, notePitches(changes))
	assert.Equal([]model.Segment{{ID: 1, Stop: 2}, {ID: 3, Stop: 4}}, p.Segments())
	assert.Equal(model.PlayStatus{Active: 1, Next: 3}, p.Status())

	openings := p.Openings()
	require.Len(t, openings, 3)
	assert.Equal(model.Opening{EndTime: openings[0].EndTime, BeatInterval: 0.5, Beat: 8, ID: 3}, openings[0])
	assert.Equal(model.Opening{EndTime: openings[1].EndTime, BeatInterval: 0.5, Beat: 6, ID: 3, HighStart: true}, openings[1])
	assert.Equal(1, openings[2].ID)
	assert.Equal(4.0, openings[2].Beat)

	next, _, changed := p.SetTime(2.5)
	assert.True(changed)
	assert.Equal(model.PlayStatus{Active: 3, Next: model.NoID}, next.Status())

	// the next boundary is chord 3's half-way point
	_, changes = next.PlayArpeggio(0.5, 36, model.IdChord{ID: 4, Chord: dMinor}, 2.6)
	assert.Equal(audio.MuteAllNotes{T: 3, Before: true}, changes[0])
	assert.Equal(3.0, noteTimes(changes)[0])
}

func TestPlayArpeggioTempoChange(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.PlayArpeggio(0.25, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)

	assert.Equal(2.0, noteTimes(changes)[0])
	assert.Equal(2.125, noteTimes(changes)[1])
	assert.Equal([]model.Segment{{ID: 1, Stop: 2}, {ID: 2, Stop: 3}}, p.Segments())
	assert.Equal(12.0, p.Openings()[0].Beat)
	assert.Equal(0.25, p.Openings()[0].BeatInterval)
}

func TestPlayArpeggioAfterPadStartsNow(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 0)
	p, changes := p.PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	assert.Equal([]audio.Change{
		audio.SetDecay{T: 1, Decay: ReleaseDecay},
		audio.CancelFutureNotes{T: 1},
		audio.ArpeggioEnvelope,
	}, changes[:3])
	assert.Equal([]model.Segment{{ID: 1, Stop: 3}}, p.Segments())
}

func TestPadClearsOpenings(t *testing.T) {
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, _ = p.PlayPad(36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)
	assert.Empty(t, p.Openings())
	p, _ = p.PlayStrum(0.1, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.6)
	assert.Empty(t, p.Openings())
}

func TestStopPlaying(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, changes := p.StopPlaying(1.2)
	assert.Equal([]audio.Change{audio.MuteAllNotes{T: 1.2}}, changes)
	assert.True(p.IsIdle())
	assert.False(p.WillChange())
}

func TestPlayKeyLeavesScheduleAlone(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 0)
	changes := p.PlayKey(70, 1)
	assert.Equal([]audio.Change{
		audio.MuteLoudestNote{T: 1},
		audio.StrumEnvelope,
		audio.NewNote{T: 1, Pitch: 70},
	}, changes)
	assert.Equal(1, p.Status().Active)
}

func TestOperationsDoNotMutateReceiver(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	segments, openings := p.Segments(), p.Openings()

	p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)
	p.SetTime(10)
	p.StopPlaying(1.2)

	assert.Equal(segments, p.Segments())
	assert.Equal(openings, p.Openings())
}

func TestSetTimeStrum(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayStrum(0.1, 36, model.IdChord{ID: 1, Chord: cMajor}, 0)

	next, finished, changed := p.SetTime(1)
	assert.False(changed)
	assert.False(finished)
	assert.Equal(p, next)

	next, finished, changed = p.SetTime(3)
	assert.True(changed)
	assert.True(finished)
	assert.True(next.IsIdle())

	_, finished, changed = next.SetTime(4)
	assert.False(changed)
	assert.False(finished)
}

func TestSetTimePadNeverFinishes(t *testing.T) {
	p, _ := New().PlayPad(36, model.IdChord{ID: 1, Chord: cMajor}, 0)
	_, finished, changed := p.SetTime(1000)
	assert.False(t, changed)
	assert.False(t, finished)
}

func TestSetTimeArpeggioKeepsOpeningsUntilStale(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)

	p, finished, changed := p.SetTime(3)
	assert.True(changed)
	assert.False(finished)
	assert.Empty(p.Segments())
	assert.Len(p.Openings(), 2)
	assert.True(p.WillChange())
	assert.Equal(model.NoID, p.Status().Active)

	p, finished, changed = p.SetTime(3.01)
	assert.False(changed)
	assert.False(finished)

	p, finished, changed = p.SetTime(3.1)
	assert.True(changed)
	assert.True(finished)
	assert.True(p.IsIdle())
	assert.False(p.WillChange())
}

func TestSetTimeDropsFinishedSegment(t *testing.T) {
	assert := assert.New(t)
	p, _ := New().PlayArpeggio(0.5, 36, model.IdChord{ID: 1, Chord: cMajor}, 1)
	p, _ = p.PlayArpeggio(0.5, 36, model.IdChord{ID: 2, Chord: dMinor}, 1.5)

	p, finished, changed := p.SetTime(2)
	assert.True(changed)
	assert.False(finished)
	assert.Equal(model.PlayStatus{Active: 2, Next: model.NoID}, p.Status())
}

func TestPruneOpeningsWalksFromTail(t *testing.T) {
	openings := []model.Opening{{EndTime: 5}, {EndTime: 4}, {EndTime: 3}, {EndTime: 2}}
	assert.Equal(t, []model.Opening{{EndTime: 5}, {EndTime: 4}}, pruneOpenings(openings, 3.5))
	assert.Empty(t, pruneOpenings(openings, 6))
	assert.Len(t, pruneOpenings(openings, 1), 4)
}

// Random trigger sequences keep the schedule and openings well formed: at
// most two segments with non-decreasing stops, and openings newest first
// where the oldest one is the one a new arpeggio aligns to.
func TestScheduleInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	p := New()
	now := 0.0
	for i := 0; i < 5000; i++ {
		now += r.Float64() * 0.8
		c := model.IdChord{ID: r.Intn(3), Chord: cMajor}
		beatInterval := 0.25 + r.Float64()*0.5

		var changes []audio.Change
		switch r.Intn(6) {
		case 0:
			p, changes = p.PlayPad(36, c, now)
		case 1:
			p, changes = p.PlayStrum(0.05, 36, c, now)
		case 2, 3:
			prior := pruneOpenings(p.Openings(), now)
			p, changes = p.PlayArpeggio(beatInterval, 36, c, now)
			// the schedule hands over exactly when the new notes start
			after := p.Segments()
			require.Equal(t, c.ID, after[len(after)-1].ID)
			if len(after) == 2 {
				require.InDelta(t, after[0].Stop, notes(changes)[0].T, 1e-9)
			}
			if len(prior) > 0 {
				boundary := prior[len(prior)-1]
				for _, o := range prior {
					require.GreaterOrEqual(t, o.EndTime, boundary.EndTime)
				}
				start := boundary.Beat * boundary.BeatInterval
				require.Equal(t, math.Max(now, start), notes(changes)[0].T)
			}
		case 4:
			p, _, _ = p.SetTime(now)
		case 5:
			if r.Intn(4) == 0 {
				p, changes = p.StopPlaying(now)
			}
		}

		segments := p.Segments()
		require.LessOrEqual(t, len(segments), 2)
		for j := 1; j < len(segments); j++ {
			require.LessOrEqual(t, segments[j-1].Stop, segments[j].Stop)
		}
		openings := p.Openings()
		for j := 1; j < len(openings); j++ {
			require.GreaterOrEqual(t, openings[j-1].EndTime, openings[j].EndTime)
		}
		for _, n := range notes(changes) {
			require.GreaterOrEqual(t, n.T, now)
		}
		require.Equal(t, len(segments) == 0 && len(openings) == 0, p.IsIdle())
	}
}
