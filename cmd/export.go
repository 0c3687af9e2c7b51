package cmd

import (
	"github.com/jsphweid/chordtext/config"
	"github.com/jsphweid/chordtext/logger"
	"github.com/jsphweid/chordtext/midi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <file> <out.mid>",
	Short: "Renders a sheet to a MIDI file",
	Long: `Plays every chord of a sheet four beats apart in the configured mode and
writes the notes that sound to a Standard MIDI File.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := readSheet(cmd, args[0])
		if err != nil {
			return err
		}
		opts, err := config.SessionOptions()
		if err != nil {
			return err
		}
		if err := midi.WriteFile(midi.RenderSheet(s, opts), args[1]); err != nil {
			return err
		}
		logger.Log.Info("exported",
			zap.String("path", args[1]),
			zap.Int("chords", len(s.Chords())),
			zap.String("mode", string(opts.Mode)),
		)
		return nil
	},
}
