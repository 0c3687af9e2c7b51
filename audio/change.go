package audio

import "math"

// Change is one command for the synthesis engine. The concrete types below
// are the only implementations.
type Change interface {
	isChange()
}

type NewNote struct {
	T     float64
	Pitch int
}

type MuteLoudestNote struct {
	T      float64
	Before bool
}

type MuteAllNotes struct {
	T      float64
	Before bool
}

type CancelFutureNotes struct {
	T      float64
	Before bool
}

// SetEnvelope applies to every note started after it in the same batch.
type SetEnvelope struct {
	Attack float64
	Peak   float64
	Decay  float64
}

// SetDecay shortens the decay of notes already sounding at T.
type SetDecay struct {
	T     float64
	Decay float64
}

func (NewNote) isChange()           {}
func (MuteLoudestNote) isChange()   {}
func (MuteAllNotes) isChange()      {}
func (CancelFutureNotes) isChange() {}
func (SetEnvelope) isChange()       {}
func (SetDecay) isChange()          {}

// Sustain is the decay of a note that rings until cut off.
var Sustain = math.Inf(1)

var (
	PadEnvelope      = SetEnvelope{Attack: 0.2, Peak: 0.25, Decay: Sustain}
	StrumEnvelope    = SetEnvelope{Attack: 0, Peak: 0.5, Decay: 3}
	ArpeggioEnvelope = SetEnvelope{Attack: 0, Peak: 0.5, Decay: 1.5}
)

// Cutoff returns the time and before flag of a cutoff command.
func Cutoff(c Change) (float64, bool, bool) {
	switch v := c.(type) {
	case MuteLoudestNote:
		return v.T, v.Before, true
	case MuteAllNotes:
		return v.T, v.Before, true
	case CancelFutureNotes:
		return v.T, v.Before, true
	}
	return 0, false, false
}
