package sheet

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jsphweid/chordtext/chord"
	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/pitch"
)

type Kind int

const (
	Text Kind = iota
	Chord
	Flag
	InvalidFlag
	Comment
)

func (k Kind) String() string {
	switch k {
	case Chord:
		return "chord"
	case Flag:
		return "flag"
	case InvalidFlag:
		return "invalid-flag"
	case Comment:
		return "comment"
	}
	return "text"
}

// Word is a whitespace separated run of text. Start and End are byte
// offsets into the whole sheet. A comment word runs to the end of its line.
type Word struct {
	Text  string
	Start int
	End   int
	Line  int
	Kind  Kind
	// set for chord words only
	ID    int
	Chord model.Chord
	// flags in effect where the word sits
	Key    int
	Octave int
}

type Line struct {
	Start int
	End   int
	Words []Word
}

type Sheet struct {
	Text  string
	Lines []Line
	words []Word
	ids   []int
}

// Parse never fails: anything that is neither a flag nor a chord is text.
func Parse(text string) *Sheet {
	s := &Sheet{Text: text}
	key, octave, nextID := 0, 0, 0

	start := 0
	for n, raw := range strings.Split(text, "\n") {
		line := Line{Start: start, End: start + len(raw)}
		for _, w := range split(raw, start) {
			w.Line = n
			w.ID = model.NoID
			if strings.HasPrefix(w.Text, "#") {
				w.Kind = Comment
				w.End = line.End
				w.Text = text[w.Start:w.End]
				w.Key, w.Octave = key, octave
				line.Words = append(line.Words, w)
				break
			}

			w.Kind = Text
			if name, value, ok := strings.Cut(w.Text, ":"); ok {
				w.Kind = InvalidFlag
				switch name {
				case "key":
					if pc, rest, ok := pitch.ParseAtStart(value); ok && rest == "" {
						key = pc
						w.Kind = Flag
					}
				case "octave":
					if v, err := strconv.Atoi(value); err == nil {
						octave = v
						w.Kind = Flag
					}
				}
			} else if c, ok := chord.FromCode(w.Text); ok {
				w.Kind = Chord
				w.ID = nextID
				w.Chord = chord.Transpose(c, 12*octave)
				nextID++
			}
			w.Key, w.Octave = key, octave
			line.Words = append(line.Words, w)
		}
		s.Lines = append(s.Lines, line)
		start = line.End + 1
	}

	for _, line := range s.Lines {
		for _, w := range line.Words {
			if w.Kind == Chord {
				s.ids = append(s.ids, len(s.words))
			}
			s.words = append(s.words, w)
		}
	}
	return s
}

func split(line string, offset int) []Word {
	var res []Word
	begin := -1
	for i, r := range line {
		if unicode.IsSpace(r) {
			if begin >= 0 {
				res = append(res, Word{Text: line[begin:i], Start: offset + begin, End: offset + i})
				begin = -1
			}
			continue
		}
		if begin < 0 {
			begin = i
		}
	}
	if begin >= 0 {
		res = append(res, Word{Text: line[begin:], Start: offset + begin, End: offset + len(line)})
	}
	return res
}

func (s *Sheet) Words() []Word {
	return append([]Word(nil), s.words...)
}

// Chords lists every chord of the sheet in document order; ids count up
// from zero.
func (s *Sheet) Chords() []model.IdChord {
	res := make([]model.IdChord, 0, len(s.ids))
	for _, i := range s.ids {
		w := s.words[i]
		res = append(res, model.IdChord{ID: w.ID, Chord: w.Chord})
	}
	return res
}

func (s *Sheet) Find(id int) (Word, bool) {
	if id < 0 || id >= len(s.ids) {
		return Word{}, false
	}
	return s.words[s.ids[id]], true
}

// WordAt returns the word covering a byte offset. The offset right after a
// word still belongs to it, like a cursor at the end of the word.
func (s *Sheet) WordAt(offset int) (Word, bool) {
	for _, w := range s.words {
		if offset >= w.Start && offset <= w.End {
			return w, true
		}
	}
	return Word{}, false
}

// ReplaceChord rewrites chord id in the text so that it parses to c, spelled
// in the key in effect at that word. It fails for unknown ids and for chords
// that have no code.
func (s *Sheet) ReplaceChord(id int, c model.Chord) (string, bool) {
	w, ok := s.Find(id)
	if !ok || len(c) == 0 {
		return "", false
	}
	code, ok := chord.CodeInKey(chord.Transpose(c, -12*w.Octave), w.Key)
	if !ok {
		return "", false
	}
	return s.Text[:w.Start] + code + s.Text[w.End:], true
}

// Spell rewrites every chord in the canonical spelling of its key.
func (s *Sheet) Spell() string {
	var sb strings.Builder
	last := 0
	for _, i := range s.ids {
		w := s.words[i]
		code, ok := chord.CodeInKey(chord.Transpose(w.Chord, -12*w.Octave), w.Key)
		if !ok {
			continue
		}
		sb.WriteString(s.Text[last:w.Start])
		sb.WriteString(code)
		last = w.End
	}
	sb.WriteString(s.Text[last:])
	return sb.String()
}
