package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAtStart(t *testing.T) {
	cases := []struct {
		in   string
		pc   int
		rest string
	}{
		{"C#m7", 1, "m7"},
		{"C", 0, ""},
		{"cm", 0, "m"},
		{"Bb", 10, ""},
		{"bb7", 10, "7"},
		{"E♭m", 3, "m"},
		{"F♯", 6, ""},
		{"Cx", 2, ""},
		{"C*", 2, ""},
		{"Cˣ", 2, ""},
		{"C×", 2, ""},
		{"Cb", 11, ""},
		{"Cbb", 10, ""},
		{"B#", 0, ""},
		{"D𝄫", 0, ""},
		{"F𝄪m", 7, "m"},
		{"Ab#b", 8, ""},
		{"Gsus4", 7, "sus4"},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			pc, rest, ok := ParseAtStart(c.in)
			assert := assert.New(t)
			assert.True(ok)
			assert.Equal(c.pc, pc)
			assert.Equal(c.rest, rest)
		})
	}
}

func TestParseAtStartRejectsNonNotes(t *testing.T) {
	for _, in := range []string{"", "H", "3", "#C", "xyz", "/E"} {
		_, rest, ok := ParseAtStart(in)
		assert.False(t, ok, in)
		assert.Equal(t, in, rest)
	}
}

func TestClassIsNeverNegative(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(11, Class(-1))
	assert.Equal(0, Class(-12))
	assert.Equal(1, Class(61))
}

func TestFrequency(t *testing.T) {
	assert := assert.New(t)
	assert.InDelta(440, Frequency(69), 1e-9)
	assert.InDelta(880, Frequency(81), 1e-9)
	assert.InDelta(261.6256, Frequency(60), 1e-4)
	assert.False(math.IsNaN(Frequency(-100)))
}

func TestOctaves(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(4, Octave(60))
	assert.Equal(3, Octave(59))
	assert.Equal(-1, Octave(0))
	assert.Equal(-2, Octave(-1))
	assert.Equal(64, InOctave(4, 4))
	assert.Equal(47, InOctave(-1, 2))
}

func TestNames(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C#", Name(1, false))
	assert.Equal("Db", Name(1, true))
	assert.Equal("Bb", Name(-2, false))
	assert.True(PrefersFlats(5))
	assert.False(PrefersFlats(7))
}
