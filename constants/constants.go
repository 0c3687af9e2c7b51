package constants

import "os"

// GetConfigPath is the config file used when --config is not given. Empty
// means defaults and environment only.
func GetConfigPath() string {
	return os.Getenv("CHORDTEXT_CONFIG")
}

// GetMediaDir is where import looks for .mid files when no path is given.
func GetMediaDir() string {
	path := os.Getenv("CHORDTEXT_MEDIA_PATH")
	if path != "" {
		return path
	}
	return "."
}

const EnvFile = ".env"

// Stdin as a file argument reads the sheet from standard input.
const Stdin = "-"
