package pitch

import (
	"math"
	"strings"
)

var letterPitches = map[rune]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

var accidentals = map[rune]int{
	'♭': -1, 'b': -1,
	'#': 1, '♯': 1,
	'x': 2, '*': 2, 'ˣ': 2, '×': 2,
}

// double-flat and double-sharp glyphs live outside the BMP
var doubleAccidentals = strings.NewReplacer("𝄫", "bb", "𝄪", "##")

// Class folds any pitch into 0-11.
func Class(p int) int {
	return ((p % 12) + 12) % 12
}

// ParseAtStart reads a note letter and its accidentals from the start of
// text. It returns the pitch class and whatever follows the note.
func ParseAtStart(text string) (int, string, bool) {
	runes := []rune(doubleAccidentals.Replace(text))
	if len(runes) == 0 {
		return 0, text, false
	}
	letter, ok := letterPitches[runes[0]]
	if !ok {
		return 0, text, false
	}

	sum := letter
	i := 1
	for ; i < len(runes); i++ {
		v, ok := accidentals[runes[i]]
		if !ok {
			break
		}
		sum += v
	}
	return Class(sum), string(runes[i:]), true
}

// Frequency is equal-tempered tuning with A4 = 440Hz at 69.
func Frequency(p int) float64 {
	return 440 * math.Pow(2, float64(p-69)/12)
}

// Octave returns the MIDI-style octave number, C4 = 60.
func Octave(p int) int {
	return int(math.Floor(float64(p)/12)) - 1
}

// InOctave places a pitch class in an octave, C4 = 60.
func InOctave(pc, octave int) int {
	return 12*(octave+1) + Class(pc)
}

var sharpNames = []string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
var flatNames = []string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Name spells a pitch class. The default spelling keeps the common
// Eb/Ab/Bb and sharpens the rest.
func Name(pc int, flats bool) string {
	if flats {
		return flatNames[Class(pc)]
	}
	return sharpNames[Class(pc)]
}

// PrefersFlats is true for keys written with flats (F Bb Eb Ab Db Gb).
func PrefersFlats(keyPC int) bool {
	switch Class(keyPC) {
	case 5, 10, 3, 8, 1, 6:
		return true
	}
	return false
}
