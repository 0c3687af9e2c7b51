package model

import "math"

// Sustain is the stop time of a segment that holds until superseded.
var Sustain = math.Inf(1)

// Segment says chord ID is the most recently triggered one until Stop.
type Segment struct {
	ID   int
	Stop float64
}

func (s Segment) IsSustain() bool {
	return math.IsInf(s.Stop, 1)
}

// Opening is a beat boundary of an in-flight arpeggio that a following
// arpeggio may lock onto until EndTime.
type Opening struct {
	EndTime      float64
	BeatInterval float64
	Beat         float64
	ID           int
	HighStart    bool
}

type PlayStatus struct {
	Active    int  `json:"active"`
	Next      int  `json:"next"`
	Stoppable bool `json:"stoppable"`
}
