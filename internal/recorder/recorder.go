package recorder

import (
	"errors"
	"sync"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
	"github.com/google/uuid"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/logger"
	"github.com/promptcam/promptcam/internal/recordstore"
)

// ErrAlreadyRecording is returned by Start when a recording is in progress.
var ErrAlreadyRecording = errors.New("already recording")

// State is the recording lifecycle state.
type State int

// states.
const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return "idle"
	}
}

// OnStateChangeFunc is the prototype of the function passed as OnStateChange.
type OnStateChangeFunc = func(State)

// OnCompleteFunc is the prototype of the function passed as OnComplete.
type OnCompleteFunc = func(path string, duration time.Duration)

// Recorder is the recording lifecycle state machine. It wraps a Muxer,
// feeding it samples from the capture graph while in the recording state
// and finalizing or discarding the file on the way back to idle.
type Recorder struct {
	PathFormat        string
	Graph             *capture.Graph
	PartDuration      time.Duration
	MaxPartSize       uint64
	AudioSampleRate   int
	AudioChannelCount int
	OnStateChange     OnStateChangeFunc
	OnComplete        OnCompleteFunc
	Parent            logger.Writer

	mutex sync.Mutex
	state State
	muxer *Muxer
	curID string
}

// Initialize initializes a Recorder.
func (r *Recorder) Initialize() {
	if r.OnStateChange == nil {
		r.OnStateChange = func(State) {
		}
	}
	if r.OnComplete == nil {
		r.OnComplete = func(string, time.Duration) {
		}
	}
}

// Log implements logger.Writer.
func (r *Recorder) Log(level logger.Level, format string, args ...interface{}) {
	r.Parent.Log(level, "[recorder] "+format, args...)
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// CurrentID returns the ID of the in-progress recording, if any.
func (r *Recorder) CurrentID() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.state != StateRecording {
		return ""
	}
	return r.curID
}

// Start opens a new recording session.
func (r *Recorder) Start() error {
	r.mutex.Lock()

	if r.state != StateIdle {
		r.mutex.Unlock()
		return ErrAlreadyRecording
	}

	format := r.Graph.ActiveFormat()
	mode := r.Graph.Mode()
	width, height := OutputGeometry(mode, format)
	sps, pps := r.Graph.VideoParams()

	id := uuid.New().String()
	path := recordstore.PathAddExtension(recordstore.Path{
		Start: time.Now(),
		ID:    id,
	}.Encode(r.PathFormat))

	mux := &Muxer{
		Path:   path,
		Width:  width,
		Height: height,
		SPS:    sps,
		PPS:    pps,
		AudioConfig: &mpeg4audio.AudioSpecificConfig{
			Type:         mpeg4audio.ObjectTypeAACLC,
			SampleRate:   r.AudioSampleRate,
			ChannelCount: r.AudioChannelCount,
		},
		PartDuration: r.PartDuration,
		MaxPartSize:  r.MaxPartSize,
		Parent:       r,
	}
	err := mux.Initialize()
	if err != nil {
		r.mutex.Unlock()
		return err
	}

	r.muxer = mux
	r.curID = id
	r.state = StateRecording
	r.mutex.Unlock()

	r.Log(logger.Info, "recording started, mode %s, geometry %dx%d, path %s",
		mode, width, height, path)
	r.OnStateChange(StateRecording)

	return nil
}

// WriteVideo forwards a video sample to the muxer.
// It is a no-op outside of the recording state.
func (r *Recorder) WriteVideo(s capture.Sample) {
	r.mutex.Lock()
	mux := r.muxer
	active := r.state == StateRecording
	r.mutex.Unlock()

	if !active {
		return
	}

	err := mux.WriteVideo(s)
	if err != nil {
		r.Log(logger.Error, "%v", err)
	}
}

// WriteAudio forwards an audio sample to the muxer.
// It is a no-op outside of the recording state.
func (r *Recorder) WriteAudio(s capture.Sample) {
	r.mutex.Lock()
	mux := r.muxer
	active := r.state == StateRecording
	r.mutex.Unlock()

	if !active {
		return
	}

	err := mux.WriteAudio(s)
	if err != nil {
		r.Log(logger.Error, "%v", err)
	}
}

// Stop finalizes the current recording and returns the file path and
// its duration. It is a no-op when no recording is in progress.
func (r *Recorder) Stop() (string, time.Duration, error) {
	mux := r.enterFinalizing()
	if mux == nil {
		return "", 0, nil
	}

	duration := mux.Duration()
	path, err := mux.Close(false)

	r.leaveFinalizing()

	if err != nil {
		r.Log(logger.Error, "recording failed: %v", err)
		return "", 0, err
	}

	r.Log(logger.Info, "recording stopped, duration %v", duration)

	if path != "" {
		r.OnComplete(path, duration)
	}

	return path, duration, nil
}

// Cancel discards the current recording, deleting any partial file.
// It is a no-op when no recording is in progress.
func (r *Recorder) Cancel() error {
	mux := r.enterFinalizing()
	if mux == nil {
		return nil
	}

	_, err := mux.Close(true)

	r.leaveFinalizing()

	r.Log(logger.Info, "recording canceled")
	return err
}

// Interrupt discards the current recording in response to an external
// event, such as the scene being backgrounded or a permission being
// revoked.
func (r *Recorder) Interrupt(reason string) {
	r.mutex.Lock()
	active := r.state == StateRecording
	r.mutex.Unlock()

	if !active {
		return
	}

	r.Log(logger.Warn, "recording interrupted: %s", reason)
	r.Cancel() //nolint:errcheck
}

func (r *Recorder) enterFinalizing() *Muxer {
	r.mutex.Lock()

	if r.state != StateRecording {
		r.mutex.Unlock()
		return nil
	}

	mux := r.muxer
	r.state = StateFinalizing
	r.mutex.Unlock()

	r.OnStateChange(StateFinalizing)
	return mux
}

func (r *Recorder) leaveFinalizing() {
	r.mutex.Lock()
	r.muxer = nil
	r.curID = ""
	r.state = StateIdle
	r.mutex.Unlock()

	r.OnStateChange(StateIdle)
}
