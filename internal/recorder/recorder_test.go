package recorder

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/conf"
	"github.com/promptcam/promptcam/internal/test"
)

func newTestRecorder(t *testing.T) (*Recorder, *[]State) {
	dir, err := os.MkdirTemp("", "promptcam-recorder")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	g := &capture.Graph{
		Provider:        capture.NewSimulatedProvider(44100, 1),
		PreferUltraWide: true,
		TargetFPS:       30,
		OnVideoSample:   func(capture.Sample) {},
		OnAudioSample:   func(capture.Sample) {},
		Parent:          test.NilLogger,
	}
	err = g.Initialize(conf.AspectRatioModeVertical)
	require.NoError(t, err)
	t.Cleanup(g.Close)

	var states []State

	r := &Recorder{
		PathFormat:        filepath.Join(dir, "%Y-%m-%d_%H-%M-%S_%id"),
		Graph:             g,
		PartDuration:      10 * time.Millisecond,
		MaxPartSize:       50 * 1024 * 1024,
		AudioSampleRate:   44100,
		AudioChannelCount: 1,
		OnStateChange: func(s State) {
			states = append(states, s)
		},
		Parent: test.NilLogger,
	}
	r.Initialize()

	return r, &states
}

func TestRecorderStartStop(t *testing.T) {
	r, states := newTestRecorder(t)

	var completed []string
	r.OnComplete = func(path string, duration time.Duration) {
		completed = append(completed, path)
		require.Equal(t, 66*time.Millisecond, duration)
	}

	require.Equal(t, StateIdle, r.State())
	require.Equal(t, "", r.CurrentID())

	err := r.Start()
	require.NoError(t, err)
	require.Equal(t, StateRecording, r.State())
	require.NotEqual(t, "", r.CurrentID())

	err = r.Start()
	require.ErrorIs(t, err, ErrAlreadyRecording)

	r.WriteVideo(videoSample(5*time.Second, true))
	r.WriteVideo(videoSample(5*time.Second+33*time.Millisecond, false))
	r.WriteVideo(videoSample(5*time.Second+66*time.Millisecond, false))

	path, duration, err := r.Stop()
	require.NoError(t, err)
	require.NotEqual(t, "", path)
	require.Equal(t, 66*time.Millisecond, duration)
	require.Equal(t, StateIdle, r.State())

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.Equal(t, []string{path}, completed)
	require.Equal(t, []State{StateRecording, StateFinalizing, StateIdle}, *states)
}

func TestRecorderCancel(t *testing.T) {
	r, _ := newTestRecorder(t)

	completed := false
	r.OnComplete = func(string, time.Duration) {
		completed = true
	}

	err := r.Start()
	require.NoError(t, err)

	id := r.CurrentID()
	require.NotEqual(t, "", id)

	r.WriteVideo(videoSample(0, true))
	r.WriteVideo(videoSample(33*time.Millisecond, false))
	r.WriteVideo(videoSample(66*time.Millisecond, false))

	err = r.Cancel()
	require.NoError(t, err)
	require.Equal(t, StateIdle, r.State())
	require.False(t, completed)

	// nothing is left on disk
	entries, err := os.ReadDir(filepath.Dir(r.PathFormat))
	require.NoError(t, err)
	require.Equal(t, 0, len(entries))
}

func TestRecorderCancelWhileWriting(t *testing.T) {
	r, _ := newTestRecorder(t)

	err := r.Start()
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	// keep samples flowing while the recording is torn down
	go func() {
		defer wg.Done()
		pts := time.Duration(0)
		idr := true
		for {
			select {
			case <-stop:
				return
			default:
			}
			r.WriteVideo(videoSample(pts, idr))
			idr = false
			pts += 33 * time.Millisecond
		}
	}()

	time.Sleep(20 * time.Millisecond)

	err = r.Cancel()
	require.NoError(t, err)
	require.Equal(t, StateIdle, r.State())

	close(stop)
	wg.Wait()

	// late samples cannot resurrect the file
	entries, err := os.ReadDir(filepath.Dir(r.PathFormat))
	require.NoError(t, err)
	require.Equal(t, 0, len(entries))
}

func TestRecorderStopWhenIdle(t *testing.T) {
	r, states := newTestRecorder(t)

	path, duration, err := r.Stop()
	require.NoError(t, err)
	require.Equal(t, "", path)
	require.Equal(t, time.Duration(0), duration)

	require.NoError(t, r.Cancel())
	require.Equal(t, 0, len(*states))
}

func TestRecorderInterrupt(t *testing.T) {
	r, _ := newTestRecorder(t)

	// interrupting while idle is a no-op
	r.Interrupt("scene backgrounded")
	require.Equal(t, StateIdle, r.State())

	err := r.Start()
	require.NoError(t, err)

	r.WriteVideo(videoSample(0, true))
	r.WriteVideo(videoSample(33*time.Millisecond, false))

	r.Interrupt("scene backgrounded")
	require.Equal(t, StateIdle, r.State())

	entries, err := os.ReadDir(filepath.Dir(r.PathFormat))
	require.NoError(t, err)
	require.Equal(t, 0, len(entries))
}

func TestRecorderWriteWhenIdle(t *testing.T) {
	r, _ := newTestRecorder(t)

	// samples outside of the recording state are ignored
	r.WriteVideo(videoSample(0, true))
	r.WriteAudio(capture.Sample{
		Kind: capture.SampleAudio,
		AU:   [][]byte{{0x21, 0x10}},
		PTS:  0,
		NTP:  time.Now(),
	})

	require.Equal(t, StateIdle, r.State())
}
