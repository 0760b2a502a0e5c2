package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/conf"
)

func TestStoreRoundTrip(t *testing.T) {
	s := &Store{FilePath: filepath.Join(t.TempDir(), "state.yml")}

	defaults := State{
		AspectRatioMode: conf.AspectRatioModeVertical,
		ScrollSpeed:     1.0,
	}

	// missing file returns defaults
	require.Equal(t, defaults, s.Load(defaults))

	err := s.Save(State{
		AspectRatioMode: conf.AspectRatioModeSquare,
		ScrollSpeed:     1.8,
	})
	require.NoError(t, err)

	out := s.Load(defaults)
	require.Equal(t, conf.AspectRatioModeSquare, out.AspectRatioMode)
	require.Equal(t, 1.8, out.ScrollSpeed)
}

func TestStoreCorruptedFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "state.yml")
	s := &Store{FilePath: fpath}

	defaults := State{
		AspectRatioMode: conf.AspectRatioModeHorizontal,
		ScrollSpeed:     0.5,
	}

	require.NoError(t, os.WriteFile(fpath, []byte("{{{ not yaml"), 0o644))
	require.Equal(t, defaults, s.Load(defaults))
}
