package config

import (
	"os"
	"strings"
	"time"

	"github.com/jsphweid/chordtext/session"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "CHORDTEXT"

// Init loads defaults, then the config file if there is one, then
// CHORDTEXT_* environment variables (CHORDTEXT_PLAYER_BPM for player.bpm).
func Init(configPath string) error {
	viper.Reset()
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return errors.Wrap(err, "could not find config file")
	}
	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "could not read config file %s", configPath)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cors_origins", []string{"*"})

	defaults := session.DefaultOptions()
	viper.SetDefault("player.mode", string(defaults.Mode))
	viper.SetDefault("player.bpm", defaults.BPM)
	viper.SetDefault("player.strum_interval", defaults.StrumInterval)
	viper.SetDefault("player.lowest_note", defaults.LowestNote)
	viper.SetDefault("player.keyboard_low", defaults.KeyboardLow)
	viper.SetDefault("session.debounce", defaults.Debounce)
	viper.SetDefault("session.frame", 16*time.Millisecond)
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Set overrides a value for this run only, e.g. from a command line flag.
func Set(key string, value any) {
	viper.Set(key, value)
}

// SessionOptions builds player settings from the player.* and session.*
// keys.
func SessionOptions() (session.Options, error) {
	mode, err := session.ParseMode(viper.GetString("player.mode"))
	if err != nil {
		return session.Options{}, err
	}
	opts := session.Options{
		Mode:          mode,
		BPM:           viper.GetFloat64("player.bpm"),
		StrumInterval: viper.GetFloat64("player.strum_interval"),
		LowestNote:    viper.GetInt("player.lowest_note"),
		KeyboardLow:   viper.GetInt("player.keyboard_low"),
		Debounce:      viper.GetDuration("session.debounce"),
	}
	if opts.BPM <= 0 {
		return session.Options{}, errors.Errorf("player.bpm must be positive, got %v", opts.BPM)
	}
	if opts.StrumInterval < 0 {
		return session.Options{}, errors.Errorf("player.strum_interval must not be negative, got %v", opts.StrumInterval)
	}
	return opts, nil
}
