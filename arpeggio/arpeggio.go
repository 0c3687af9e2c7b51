package arpeggio

import "github.com/jsphweid/chordtext/model"

// Step is one note of a pattern, Beat counted from the pattern start.
type Step struct {
	Beat  float64
	Pitch int
}

// Length of every pattern in beats.
const Length = 4

func upper(c model.Chord) []int {
	res := make([]int, 0, 4)
	for octave := 0; len(res) < 4; octave += 12 {
		for _, p := range c {
			if len(res) == 4 {
				break
			}
			res = append(res, p+octave)
		}
	}
	return res
}

func low(bass int, up []int, start float64) []Step {
	return []Step{
		{start, bass},
		{start + 0.5, up[0]},
		{start + 1, up[1]},
		{start + 1.5, up[2]},
	}
}

func high(up []int, start float64) []Step {
	return []Step{
		{start, up[3]},
		{start + 0.5, up[2]},
		{start + 1, up[1]},
		{start + 1.5, up[2]},
	}
}

// Intro climbs from the bass and comes back down over four beats.
func Intro(bass int, c model.Chord) []Step {
	if len(c) == 0 {
		return nil
	}
	up := upper(c)
	return append(low(bass, up, 0), high(up, 2)...)
}

// Continuation starts on the high half so that it follows an arpeggio that
// stopped halfway.
func Continuation(bass int, c model.Chord) []Step {
	if len(c) == 0 {
		return nil
	}
	up := upper(c)
	return append(high(up, 0), low(bass, up, 2)...)
}

func Pattern(highStart bool, bass int, c model.Chord) []Step {
	if highStart {
		return Continuation(bass, c)
	}
	return Intro(bass, c)
}
