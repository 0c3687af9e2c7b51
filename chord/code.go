package chord

import (
	"strconv"
	"strings"

	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/pitch"
)

// DefaultOctave is where chords land when the code names no octave: two
// octaves above the C2 anchor.
const DefaultOctave = 4

var fractionSlash = strings.NewReplacer("⁄", "/")

// FromCode parses a chord symbol such as "Cm7", "C/E", "Bb7/3" or "F#o7/A2".
func FromCode(code string) (model.Chord, bool) {
	chordPart, rootPart, hasRoot := strings.Cut(fractionSlash.Replace(code), "/")

	pc, suffix, ok := pitch.ParseAtStart(chordPart)
	if !ok {
		return nil, false
	}
	offsets, ok := LookupFlavor(suffix)
	if !ok {
		return nil, false
	}
	if !hasRoot {
		return build(pitch.InOctave(pc, DefaultOctave), offsets), true
	}

	if bassPC, rest, ok := pitch.ParseAtStart(rootPart); ok {
		octave := DefaultOctave
		if rest != "" {
			if octave, ok = parseOctave(rest); !ok {
				return nil, false
			}
		}
		base := build(pitch.InOctave(pc, DefaultOctave), offsets)
		positions := IndexOf(bassPC, base)
		if len(positions) == 0 {
			return nil, false
		}
		inverted := Invert(base, positions[0])
		return Transpose(inverted, pitch.InOctave(bassPC, octave)-inverted[0]), true
	}

	octave, ok := parseOctave(rootPart)
	if !ok {
		return nil, false
	}
	return build(pitch.InOctave(pc, octave), offsets), true
}

func parseOctave(s string) (int, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func build(root int, offsets []int) model.Chord {
	c := make(model.Chord, len(offsets))
	for i, o := range offsets {
		c[i] = root + o
	}
	return c
}

// Code writes the canonical code of a chord. Chords whose shape is not in
// the flavor table have no code.
func Code(c model.Chord) (string, bool) {
	return code(c, false)
}

// CodeInKey is Code spelled with the sharps or flats of the given key.
func CodeInKey(c model.Chord, keyPC int) (string, bool) {
	return code(c, pitch.PrefersFlats(keyPC))
}

func code(c model.Chord, flats bool) (string, bool) {
	for k := range c {
		base := uninvert(c, k)
		name, ok := FlavorName(offsetsOf(base))
		if !ok {
			continue
		}

		var sb strings.Builder
		sb.WriteString(pitch.Name(base[0], flats))
		sb.WriteString(name)
		if k == 0 {
			if octave := pitch.Octave(base[0]); octave != DefaultOctave {
				sb.WriteString("/")
				sb.WriteString(strconv.Itoa(octave))
			}
			return sb.String(), true
		}

		sb.WriteString("/")
		sb.WriteString(pitch.Name(c[0], flats))
		if octave := pitch.Octave(c[0]); octave != DefaultOctave {
			sb.WriteString(strconv.Itoa(octave))
		}
		return sb.String(), true
	}
	return "", false
}

// uninvert undoes Invert(base, k).
func uninvert(c model.Chord, k int) model.Chord {
	n := len(c)
	res := make(model.Chord, 0, n)
	for _, p := range c[n-k:] {
		res = append(res, p-12)
	}
	return append(res, c[:n-k]...)
}

func offsetsOf(c model.Chord) []int {
	res := make([]int, len(c))
	for i, p := range c {
		res[i] = p - c[0]
	}
	return res
}
