package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMediaDir(t *testing.T) {
	t.Setenv("CHORDTEXT_MEDIA_PATH", "")
	assert.Equal(t, ".", GetMediaDir())
	t.Setenv("CHORDTEXT_MEDIA_PATH", "/data/midi")
	assert.Equal(t, "/data/midi", GetMediaDir())
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CHORDTEXT_CONFIG", "chordtext.yaml")
	assert.Equal(t, "chordtext.yaml", GetConfigPath())
}
