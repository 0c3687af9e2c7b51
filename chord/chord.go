package chord

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/pitch"
)

// PitchSet is the set of keys held down on the keyboard.
type PitchSet = map[int]bool

func CreateChordKey(pitches []int) string {
	sorted := append([]int(nil), pitches...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}

// IndexOf returns every position in c sharing the pitch class of p, in
// ascending order. Callers wanting a single tone take the first.
func IndexOf(p int, c model.Chord) []int {
	var res []int
	for i, q := range c {
		if pitch.Class(q) == pitch.Class(p) {
			res = append(res, i)
		}
	}
	return res
}

func Transpose(c model.Chord, semitones int) model.Chord {
	res := make(model.Chord, len(c))
	for i, p := range c {
		res[i] = p + semitones
	}
	return res
}

// Invert makes the k-th tone the bass, raising the tones below it by an
// octave.
func Invert(c model.Chord, k int) model.Chord {
	n := len(c)
	if n == 0 {
		return nil
	}
	k = ((k % n) + n) % n
	res := make(model.Chord, 0, n)
	res = append(res, c[k:]...)
	for _, p := range c[:k] {
		res = append(res, p+12)
	}
	return res
}

// Voicing is what actually sounds: a bass doubling at the lowest
// representation of the bass at or above lowestNote, then the chord.
func Voicing(lowestNote int, c model.Chord) []int {
	if len(c) == 0 {
		return nil
	}
	low := lowestNote + pitch.Class(c[0]-lowestNote)
	if low < c[0] {
		return append([]int{low}, c...)
	}
	return append([]int(nil), c...)
}

// Reduce drops doublings and stacks the remaining pitch classes in close
// position above the lowest pitch, which stays the bass.
func Reduce(pitches []int) model.Chord {
	if len(pitches) == 0 {
		return nil
	}
	bass := pitches[0]
	for _, p := range pitches {
		if p < bass {
			bass = p
		}
	}
	seen := make(map[int]bool)
	for _, p := range pitches {
		seen[pitch.Class(p-bass)] = true
	}
	res := model.Chord{bass}
	for interval := 1; interval < 12; interval++ {
		if seen[interval] {
			res = append(res, bass+interval)
		}
	}
	return res
}

// ToPitchSet lays c out on a keyboard whose first key is lowestPitch. The
// bass goes to its lowest key, then everything moves by octaveOffset.
func ToPitchSet(lowestPitch, octaveOffset int, c model.Chord) PitchSet {
	res := make(PitchSet)
	if len(c) == 0 {
		return res
	}
	shift := lowestPitch + pitch.Class(c[0]-lowestPitch) - c[0] + 12*octaveOffset
	for _, p := range c {
		res[p+shift] = true
	}
	return res
}

// FromPitchSet is the inverse of ToPitchSet. The chord comes back with its
// bass in DefaultOctave and the octave offset that restores the set.
func FromPitchSet(lowestPitch int, set PitchSet) (model.Chord, int, bool) {
	var pitches []int
	for p, on := range set {
		if on {
			pitches = append(pitches, p)
		}
	}
	if len(pitches) == 0 {
		return nil, 0, false
	}
	sort.Ints(pitches)

	bass := pitches[0]
	c := Transpose(pitches, pitch.InOctave(bass, DefaultOctave)-bass)
	return c, OctaveOffset(lowestPitch, pitches), true
}

// OctaveOffset is the offset that makes ToPitchSet(lowestPitch, offset, c)
// reproduce the pitches of c.
func OctaveOffset(lowestPitch int, c model.Chord) int {
	if len(c) == 0 {
		return 0
	}
	rebased := lowestPitch + pitch.Class(c[0]-lowestPitch)
	return (c[0] - rebased) / 12
}

// Toggle flips one key of the chord as laid out by ToPitchSet and reads
// the chord back. Removing the last key yields no chord.
func Toggle(lowestPitch, octaveOffset int, c model.Chord, key int) (model.Chord, int, bool) {
	set := ToPitchSet(lowestPitch, octaveOffset, c)
	if set[key] {
		delete(set, key)
	} else {
		set[key] = true
	}
	return FromPitchSet(lowestPitch, set)
}
