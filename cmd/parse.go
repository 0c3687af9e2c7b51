package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jsphweid/chordtext/chord"
	"github.com/jsphweid/chordtext/pitch"
	"github.com/jsphweid/chordtext/sheet"
	"github.com/spf13/cobra"
)

var spell bool

var (
	chordColor   = color.New(color.FgGreen)
	flagColor    = color.New(color.FgCyan)
	invalidColor = color.New(color.FgRed)
	commentColor = color.New(color.Faint)
)

func init() {
	parseCmd.Flags().BoolVar(&spell, "spell", false, "Print the sheet with every chord in canonical spelling")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Lists the chords of a sheet",
	Long: `Lists every chord of a sheet with its id, canonical code and pitches.
Words that are not chords are shown in red. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := readSheet(cmd, args[0])
		if err != nil {
			return err
		}
		if spell {
			fmt.Fprint(cmd.OutOrStdout(), s.Spell())
			return nil
		}
		printSheet(cmd, s)
		return nil
	},
}

func pitchNames(pitches []int, key int) []string {
	flats := pitch.PrefersFlats(key)
	res := make([]string, len(pitches))
	for i, p := range pitches {
		res[i] = fmt.Sprintf("%s%d", pitch.Name(p, flats), pitch.Octave(p))
	}
	return res
}

func printSheet(cmd *cobra.Command, s *sheet.Sheet) {
	out := cmd.OutOrStdout()
	for _, w := range s.Words() {
		switch w.Kind {
		case sheet.Chord:
			code, ok := chord.CodeInKey(chord.Transpose(w.Chord, -12*w.Octave), w.Key)
			if !ok {
				code = w.Text
			}
			chordColor.Fprintf(out, "%3d  %-10s", w.ID, code)
			fmt.Fprintf(out, " %v\n", pitchNames(w.Chord, w.Key))
		case sheet.Flag:
			flagColor.Fprintf(out, "     %s\n", w.Text)
		case sheet.InvalidFlag:
			invalidColor.Fprintf(out, "     %s (line %d): invalid flag\n", w.Text, w.Line+1)
		case sheet.Text:
			invalidColor.Fprintf(out, "     %s (line %d): not a chord\n", w.Text, w.Line+1)
		case sheet.Comment:
			commentColor.Fprintf(out, "     %s\n", w.Text)
		}
	}
}
