package model

// Chord is one voicing: absolute pitches, bass first. Never empty.
type Chord = []int

// IdChord ties a chord to the occurrence it came from in the sheet.
type IdChord struct {
	ID    int   `json:"id"`
	Chord Chord `json:"chord"`
}

// NoID marks "no chord" wherever an occurrence id is expected.
const NoID = -1
