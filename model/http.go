package model

type ParseRequestBody struct {
	Text string `json:"text"`
}

type WordResult struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Line  int    `json:"line"`
	Kind  string `json:"kind"`
	ID    int    `json:"id"`
	Chord Chord  `json:"chord,omitempty"`
}

type ParseResult struct {
	Words  []WordResult `json:"words"`
	Chords []IdChord    `json:"chords"`
}

type SessionRequestBody struct {
	Text          string  `json:"text"`
	Mode          string  `json:"mode,omitempty"`
	BPM           float64 `json:"bpm,omitempty"`
	StrumInterval float64 `json:"strum_interval,omitempty"`
	LowestNote    int     `json:"lowest_note,omitempty"`
}

type SessionResult struct {
	ID     string      `json:"id"`
	Parse  ParseResult `json:"parse"`
	Status PlayStatus  `json:"status"`
}

type TextRequestBody struct {
	Text string `json:"text"`
}

// TimeRequestBody carries the caller's audio clock in seconds.
type TimeRequestBody struct {
	Now float64 `json:"now"`
}

type TriggerRequestBody struct {
	ID  int     `json:"id"`
	Now float64 `json:"now"`
}

type KeyRequestBody struct {
	Key int     `json:"key"`
	Now float64 `json:"now"`
}

// ToggleRequestBody adds or removes keyboard key Key from chord ID.
type ToggleRequestBody struct {
	ID  int `json:"id"`
	Key int `json:"key"`
}

type ToggleResult struct {
	Text  string      `json:"text"`
	Parse ParseResult `json:"parse"`
}

type TickResult struct {
	Finished bool       `json:"finished"`
	Status   PlayStatus `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
