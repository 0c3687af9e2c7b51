package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/jsphweid/chordtext/config"
	"github.com/jsphweid/chordtext/constants"
	"github.com/jsphweid/chordtext/logger"
	"github.com/jsphweid/chordtext/sheet"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFile    string
	mode       string
	bpm        float64
)

var rootCmd = &cobra.Command{
	Use:   "chordtext",
	Short: "Chord progressions as text",
	Long: `chordtext parses chord progressions written as plain text, plays them
through a scheduler that keeps arpeggios on the beat, and converts them to
and from Standard MIDI Files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(constants.EnvFile); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "could not load .env")
		}
		if configPath == "" {
			configPath = constants.GetConfigPath()
		}
		if err := config.Init(configPath); err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("log-level") {
			config.Set("log.level", logLevel)
		}
		if flags.Changed("log-file") {
			config.Set("log.file", logFile)
		}
		if flags.Changed("mode") {
			config.Set("player.mode", mode)
		}
		if flags.Changed("bpm") {
			config.Set("player.bpm", bpm)
		}
		return logger.Initialize(config.GetString("log.level"), config.GetString("log.file"))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $CHORDTEXT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "pad", "Playback mode: pad, strum, arpeggio")
	rootCmd.PersistentFlags().Float64Var(&bpm, "bpm", 120, "Tempo in beats per minute")
}

// readSheet parses a sheet from a file, or from stdin when path is "-".
func readSheet(cmd *cobra.Command, path string) (*sheet.Sheet, error) {
	var dat []byte
	var err error
	if path == constants.Stdin {
		dat, err = io.ReadAll(cmd.InOrStdin())
	} else {
		dat, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read sheet %s", path)
	}
	return sheet.Parse(string(dat)), nil
}
