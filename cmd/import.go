package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jsphweid/chordtext/constants"
	"github.com/jsphweid/chordtext/logger"
	"github.com/jsphweid/chordtext/midi"
	"github.com/jsphweid/chordtext/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	maxFiles  int
	showTimes bool
)

func init() {
	importCmd.Flags().IntVar(&maxFiles, "max", 0, "Stop after this many files (0 for all)")
	importCmd.Flags().BoolVar(&showTimes, "times", false, "Add the onset in seconds as a comment after each chord")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Writes the chords of MIDI files as sheets",
	Long: `Reads a .mid file, or every .mid file below a directory, and prints the
chords it finds as a sheet. Keys held together that have no chord symbol
are skipped. Without a path $CHORDTEXT_MEDIA_PATH is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := constants.GetMediaDir()
		if len(args) == 1 {
			path = args[0]
		}
		paths, err := util.GatherMidiPaths(path, maxFiles)
		if err != nil {
			return err
		}
		for _, p := range paths {
			s, err := midi.ReadMidiFile(p)
			if err != nil {
				logger.Log.Warn("skipping file", zap.String("path", p), zap.Error(err))
				continue
			}
			writeImported(cmd.OutOrStdout(), p, midi.ChordsFromSMF(s), showTimes)
		}
		return nil
	},
}

func writeImported(w io.Writer, path string, chords []midi.Imported, times bool) {
	fmt.Fprintf(w, "# %s\n", filepath.Base(path))
	var words []string
	for _, c := range chords {
		if c.Code == "" {
			logger.Log.Debug("no chord symbol", zap.Ints("pitches", c.Pitches), zap.Float64("seconds", c.Seconds))
			continue
		}
		if times {
			fmt.Fprintf(w, "%s # %.3fs\n", c.Code, c.Seconds)
			continue
		}
		words = append(words, c.Code)
	}
	if len(words) > 0 {
		fmt.Fprintln(w, strings.Join(words, " "))
	}
}
