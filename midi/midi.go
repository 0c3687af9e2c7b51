package midi

import (
	"bytes"
	"os"
	"sort"

	"github.com/jsphweid/chordtext/chord"
	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, errors.Errorf("panic parsing midi file %s: %v", filepath, r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing midi file %s", filepath)
	}
	return res, nil
}

type reducedEvent struct {
	offset    int64
	isNoteOff bool
	note      int
}

// Imported is one chord found in a file. Code is empty when the sounding
// keys have no chord symbol.
type Imported struct {
	Seconds float64
	Pitches []int
	Chord   model.Chord
	Code    string
}

// ChordsFromSMF returns the keys held down after every moment something
// changes, in time order, skipping silences and repeats.
func ChordsFromSMF(s *smf.SMF) []Imported {
	var events []reducedEvent
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				events = append(events, reducedEvent{
					offset:    s.TimeAt(absTicks),
					isNoteOff: velocity == 0,
					note:      int(key),
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				events = append(events, reducedEvent{
					offset:    s.TimeAt(absTicks),
					isNoteOff: true,
					note:      int(key),
				})
			}
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].offset != events[j].offset {
			return events[i].offset < events[j].offset
		}
		return events[i].isNoteOff && !events[j].isNoteOff
	})

	var res []Imported
	pressed := make(chord.PitchSet)
	lastKey := ""
	for i, evt := range events {
		if evt.isNoteOff {
			delete(pressed, evt.note)
		} else {
			pressed[evt.note] = true
		}
		if i+1 < len(events) && events[i+1].offset == evt.offset {
			continue
		}

		pitches := util.SortedKeys(pressed)
		key := chord.CreateChordKey(pitches)
		if len(pitches) == 0 || key == lastKey {
			lastKey = key
			continue
		}
		lastKey = key
		res = append(res, name(float64(evt.offset)/1e6, pitches))
	}
	return res
}

func name(seconds float64, pitches []int) Imported {
	imported := Imported{Seconds: seconds, Pitches: pitches}
	set := make(chord.PitchSet)
	for _, p := range chord.Reduce(pitches) {
		set[p] = true
	}
	c, _, ok := chord.FromPitchSet(0, set)
	if !ok {
		return imported
	}
	imported.Chord = c
	if code, ok := chord.Code(c); ok {
		imported.Code = code
	}
	return imported
}
