package core

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/promptcam/promptcam/internal/defs"
)

func writeTempFile(byts []byte) (string, error) {
	tmpf, err := os.CreateTemp(os.TempDir(), "promptcam-")
	if err != nil {
		return "", err
	}
	defer tmpf.Close()

	_, err = tmpf.Write(byts)
	if err != nil {
		return "", err
	}

	return tmpf.Name(), nil
}

func newInstance(conf string) (*Core, bool) {
	if conf == "" {
		return New([]string{})
	}

	tmpf, err := writeTempFile([]byte(conf))
	if err != nil {
		return nil, false
	}
	defer os.Remove(tmpf)

	return New([]string{tmpf})
}

func httpRequest(t *testing.T, hc *http.Client, method string, ur string, in interface{}, out interface{}) {
	buf := func() io.Reader {
		if in == nil {
			return nil
		}
		byts, err := json.Marshal(in)
		require.NoError(t, err)
		return bytes.NewBuffer(byts)
	}()

	req, err := http.NewRequest(method, ur, buf)
	require.NoError(t, err)

	res, err := hc.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	if out == nil {
		return
	}

	err = json.NewDecoder(res.Body).Decode(out)
	require.NoError(t, err)
}

func TestCoreAPI(t *testing.T) {
	dir, err := os.MkdirTemp("", "promptcam-core")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	p, ok := newInstance("apiAddress: 127.0.0.1:9887\n" +
		"pprof: no\n" +
		"recordPath: " + filepath.Join(dir, "%Y-%m-%d_%H-%M-%S_%id") + "\n" +
		"stateFile: " + filepath.Join(dir, "state.yml") + "\n")
	require.True(t, ok)
	defer p.Close()

	tr := &http.Transport{}
	defer tr.CloseIdleConnections()
	hc := &http.Client{Transport: tr}

	var info defs.APIInfo
	httpRequest(t, hc, http.MethodGet, "http://127.0.0.1:9887/v1/info", nil, &info)
	require.Equal(t, version, info.Version)

	var state defs.APIState
	httpRequest(t, hc, http.MethodGet, "http://127.0.0.1:9887/v1/state", nil, &state)
	require.Equal(t, "idle", state.RecordingState)
	require.Equal(t, 3840, state.ActiveFormatWidth)
}

func TestCoreRecord(t *testing.T) {
	dir, err := os.MkdirTemp("", "promptcam-core")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	p, ok := newInstance("apiAddress: 127.0.0.1:9887\n" +
		"partDuration: 100ms\n" +
		"recordPath: " + filepath.Join(dir, "%Y-%m-%d_%H-%M-%S_%id") + "\n" +
		"stateFile: " + filepath.Join(dir, "state.yml") + "\n")
	require.True(t, ok)
	defer p.Close()

	tr := &http.Transport{}
	defer tr.CloseIdleConnections()
	hc := &http.Client{Transport: tr}

	var started defs.APIRecordingStart
	httpRequest(t, hc, http.MethodPost, "http://127.0.0.1:9887/v1/record/start", nil, &started)
	require.Len(t, started.ID, 36)

	// let the simulated camera produce a few frames
	time.Sleep(500 * time.Millisecond)

	var stopped defs.APIRecordingStop
	httpRequest(t, hc, http.MethodPost, "http://127.0.0.1:9887/v1/record/stop", nil, &stopped)
	require.NotEqual(t, "", stopped.Path)
	require.Greater(t, stopped.Duration, 0.0)

	_, err = os.Stat(stopped.Path)
	require.NoError(t, err)

	var list defs.APIRecordingList
	httpRequest(t, hc, http.MethodGet, "http://127.0.0.1:9887/v1/recordings/list", nil, &list)
	require.Equal(t, 1, list.ItemCount)
	require.Equal(t, started.ID, list.Items[0].ID)
}

func TestCoreModePersistence(t *testing.T) {
	dir, err := os.MkdirTemp("", "promptcam-core")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	stateFile := filepath.Join(dir, "state.yml")

	p, ok := newInstance("apiAddress: 127.0.0.1:9887\n" +
		"recordPath: " + filepath.Join(dir, "%Y-%m-%d_%H-%M-%S_%id") + "\n" +
		"stateFile: " + stateFile + "\n")
	require.True(t, ok)

	tr := &http.Transport{}
	defer tr.CloseIdleConnections()
	hc := &http.Client{Transport: tr}

	httpRequest(t, hc, http.MethodPost, "http://127.0.0.1:9887/v1/mode/square", nil, nil)

	var state defs.APIState
	httpRequest(t, hc, http.MethodGet, "http://127.0.0.1:9887/v1/state", nil, &state)
	require.Equal(t, 1440, state.ActiveFormatWidth)
	require.Equal(t, 1440, state.ActiveFormatHeight)

	p.Close()

	byts, err := os.ReadFile(stateFile)
	require.NoError(t, err)

	var saved struct {
		AspectRatioMode string `yaml:"aspectRatioMode"`
	}
	err = yaml.Unmarshal(byts, &saved)
	require.NoError(t, err)
	require.Equal(t, "square", saved.AspectRatioMode)
}

func TestCoreConfNotFound(t *testing.T) {
	_, ok := New([]string{"/nonexistent/promptcam.yml"})
	require.False(t, ok)
}
