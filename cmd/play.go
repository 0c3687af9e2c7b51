package cmd

import (
	"github.com/jsphweid/chordtext/config"
	"github.com/jsphweid/chordtext/logger"
	"github.com/jsphweid/chordtext/midi"
	"github.com/jsphweid/chordtext/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var beatsPerChord int

func init() {
	playCmd.Flags().IntVar(&beatsPerChord, "beats", midi.BeatsPerChord, "Beats between chord triggers")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Prints the audio commands for a sheet",
	Long: `Triggers every chord of a sheet in turn, as if the user clicked them on
the beat, and prints each batch of audio commands as one line of JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := readSheet(cmd, args[0])
		if err != nil {
			return err
		}
		opts, err := config.SessionOptions()
		if err != nil {
			return err
		}
		return play(session.New(session.WriterSink{W: cmd.OutOrStdout()}, opts, logger.Log), s.Text, beatsPerChord)
	},
}

func play(sess *session.Session, text string, beats int) error {
	sess.SetText(text)
	chords := sess.Flush().Chords()
	interval := float64(beats) * sess.Options().BeatInterval()

	for i, c := range chords {
		now := float64(i) * interval
		if sess.Tick(now) {
			logger.Log.Debug("sequence finished before next chord", zap.Float64("now", now))
		}
		if _, err := sess.Trigger(c.ID, now); err != nil {
			return err
		}
	}
	end := float64(len(chords)) * interval
	sess.Tick(end)
	_, err := sess.Stop(end)
	return err
}
