package audio

import (
	"math"

	"github.com/jsphweid/chordtext/pitch"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Latency is how far ahead a cutoff must be to be scheduled by the engine.
// Anything closer happens right away, ahead of notes starting now.
const Latency = 0.01

// Record is one entry of the wire format.
type Record interface {
	Kind() string
}

type Note struct {
	Type string  `json:"type"`
	T    float64 `json:"t"`
	F    float64 `json:"f"`
}

type Cut struct {
	Type   string  `json:"type"`
	T      float64 `json:"t"`
	Before bool    `json:"before"`
}

// Envelope.Decay is nil for an infinite decay and encodes as null.
type Envelope struct {
	Type   string   `json:"type"`
	Attack float64  `json:"attack"`
	Peak   float64  `json:"peak"`
	Decay  *float64 `json:"decay"`
}

type Decay struct {
	Type  string   `json:"type"`
	T     float64  `json:"t"`
	Decay *float64 `json:"decay"`
}

func (r Note) Kind() string     { return r.Type }
func (r Cut) Kind() string      { return r.Type }
func (r Envelope) Kind() string { return r.Type }
func (r Decay) Kind() string    { return r.Type }

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func cut(kind string, now, t float64, before bool) Cut {
	if t-now < Latency {
		return Cut{Type: kind, T: now, Before: true}
	}
	return Cut{Type: kind, T: t, Before: before}
}

// Encode converts a batch of changes into wire records, keeping their order.
// Nothing is scheduled before now.
func Encode(now float64, changes []Change) []Record {
	res := make([]Record, 0, len(changes))
	for _, c := range changes {
		switch v := c.(type) {
		case NewNote:
			res = append(res, Note{Type: "note", T: math.Max(now, v.T), F: pitch.Frequency(v.Pitch)})
		case MuteLoudestNote:
			res = append(res, cut("muteLoudest", now, v.T, v.Before))
		case MuteAllNotes:
			res = append(res, cut("mute", now, v.T, v.Before))
		case CancelFutureNotes:
			res = append(res, cut("cancel", now, v.T, v.Before))
		case SetEnvelope:
			res = append(res, Envelope{Type: "envelope", Attack: v.Attack, Peak: v.Peak, Decay: finite(v.Decay)})
		case SetDecay:
			res = append(res, Decay{Type: "decay", T: math.Max(now, v.T), Decay: finite(v.Decay)})
		}
	}
	return res
}

// Marshal writes a batch as a single JSON array.
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal audio batch")
	}
	return b, nil
}
