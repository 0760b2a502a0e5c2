package confwatcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfWatcher(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "promptcam.yml")

	err := os.WriteFile(fpath, []byte("{}\n"), 0o644)
	require.NoError(t, err)

	w := &ConfWatcher{FilePath: fpath}
	err = w.Initialize()
	require.NoError(t, err)
	defer w.Close()

	// the watcher rate-limits events; make sure the write happens
	// outside the startup window
	time.Sleep(10 * time.Millisecond)

	err = os.WriteFile(fpath, []byte("logLevel: debug\n"), 0o644)
	require.NoError(t, err)

	select {
	case <-w.Watch():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change signal")
	}
}
