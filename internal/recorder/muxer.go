// Package recorder contains the recording pipeline.
package recorder

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"

	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/counterdumper"
	"github.com/promptcam/promptcam/internal/logger"
)

const videoTimeScale = 90000

func multiplyAndDivide(v, m, d int64) int64 {
	secs := v / d
	dec := v % d
	return (secs*m + dec*m/d)
}

func multiplyAndDivide2(v, m, d time.Duration) time.Duration {
	secs := v / d
	dec := v % d
	return (secs*m + dec*m/d)
}

func timestampToDuration(t int64, clockRate int) time.Duration {
	return multiplyAndDivide2(time.Duration(t), time.Second, time.Duration(clockRate))
}

func durationToTimestamp(d time.Duration, clockRate int) int64 {
	return multiplyAndDivide(int64(d), int64(clockRate), int64(time.Second))
}

type muxerSample struct {
	*fmp4.PartSample
	dts int64 // in track timescale units, relative to the session anchor
	ntp time.Time
}

// Muxer writes a single recording to disk as a fragmented MP4.
//
// The file is created lazily, when the first part is flushed; a recording
// that never received a sample leaves nothing on disk. The presentation
// timestamp of the first accepted sample becomes the session anchor and
// all subsequent timestamps are rebased onto it.
type Muxer struct {
	Path string

	// presentation geometry declared in the video track header,
	// as computed from the aspect ratio mode
	Width  int
	Height int
	SPS          []byte
	PPS          []byte
	AudioConfig  *mpeg4audio.AudioSpecificConfig
	PartDuration time.Duration
	MaxPartSize  uint64

	// Transform, when set, is applied to every sample before it is
	// appended. Timestamps are preserved regardless of what it does.
	Transform func(capture.Sample) capture.Sample

	Parent logger.Writer

	mutex              sync.Mutex
	fi                 *os.File
	tracks             []*muxerTrack
	videoTrack         *muxerTrack
	audioTrack         *muxerTrack
	curPart            *muxerPart
	nextSequenceNumber uint32
	videoStarted       bool
	anchorSet          bool
	anchor             time.Duration
	lastDTS            time.Duration
	closed             bool
	droppedSamples     *counterdumper.CounterDumper
}

// Initialize initializes a Muxer.
func (m *Muxer) Initialize() error {
	if m.SPS == nil || m.PPS == nil {
		return fmt.Errorf("H264 parameter sets not available")
	}

	m.videoTrack = &muxerTrack{
		m: m,
		initTrack: &fmp4.InitTrack{
			ID:        1,
			TimeScale: videoTimeScale,
			Codec: &mp4.CodecH264{
				SPS: m.SPS,
				PPS: m.PPS,
			},
		},
	}
	m.tracks = []*muxerTrack{m.videoTrack}

	if m.AudioConfig != nil {
		m.audioTrack = &muxerTrack{
			m: m,
			initTrack: &fmp4.InitTrack{
				ID:        2,
				TimeScale: uint32(m.AudioConfig.SampleRate),
				Codec: &mp4.CodecMPEG4Audio{
					Config: *m.AudioConfig,
				},
			},
		}
		m.tracks = append(m.tracks, m.audioTrack)
	}

	m.droppedSamples = &counterdumper.CounterDumper{
		OnReport: func(v uint64) {
			m.Log(logger.Warn, "%d sample(s) dropped (maximum part size reached)", v)
		},
	}
	m.droppedSamples.Start()

	return nil
}

// Log implements logger.Writer.
func (m *Muxer) Log(level logger.Level, format string, args ...interface{}) {
	m.Parent.Log(level, "[muxer] "+format, args...)
}

// WriteVideo appends a video sample.
func (m *Muxer) WriteVideo(s capture.Sample) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return nil
	}

	s = m.transform(s)

	randomAccess := false

	for _, nalu := range s.AU {
		if len(nalu) == 0 {
			continue
		}

		switch h264.NALUType(nalu[0] & 0x1F) {
		case h264.NALUTypeSPS:
			// parameter sets can be updated until the init section is
			// written to disk
			if m.fi == nil {
				m.videoTrack.initTrack.Codec.(*mp4.CodecH264).SPS = nalu
			}

		case h264.NALUTypePPS:
			if m.fi == nil {
				m.videoTrack.initTrack.Codec.(*mp4.CodecH264).PPS = nalu
			}

		case h264.NALUTypeIDR:
			randomAccess = true
		}
	}

	// wait for a random access point before writing anything
	if !m.videoStarted {
		if !randomAccess {
			return nil
		}
		m.videoStarted = true
	}

	rel, ok := m.relativize(s.PTS)
	if !ok {
		m.Log(logger.Warn, "video sample received too late, discarding")
		return nil
	}

	avcc, err := h264.AVCC(s.AU).Marshal()
	if err != nil {
		return err
	}

	return m.videoTrack.write(&muxerSample{
		PartSample: &fmp4.PartSample{
			IsNonSyncSample: !randomAccess,
			Payload:         avcc,
		},
		dts: durationToTimestamp(rel, videoTimeScale),
		ntp: s.NTP,
	})
}

// WriteAudio appends an audio sample.
func (m *Muxer) WriteAudio(s capture.Sample) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed || m.audioTrack == nil {
		return nil
	}

	s = m.transform(s)

	rel, ok := m.relativize(s.PTS)
	if !ok {
		m.Log(logger.Warn, "audio sample received too late, discarding")
		return nil
	}

	base := durationToTimestamp(rel, int(m.audioTrack.initTrack.TimeScale))

	for i, au := range s.AU {
		err := m.audioTrack.write(&muxerSample{
			PartSample: &fmp4.PartSample{
				Payload: au,
			},
			dts: base + int64(i)*mpeg4audio.SamplesPerAccessUnit,
			ntp: s.NTP,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (m *Muxer) transform(s capture.Sample) capture.Sample {
	if m.Transform == nil {
		return s
	}

	pts := s.PTS
	ntp := s.NTP
	out := m.Transform(s)
	out.PTS = pts
	out.NTP = ntp
	return out
}

// relativize rebases a capture timestamp onto the session anchor.
// The anchor is set by the first accepted sample and never moves;
// samples older than the anchor cannot be stored in the container.
func (m *Muxer) relativize(pts time.Duration) (time.Duration, bool) {
	if !m.anchorSet {
		m.anchor = pts
		m.anchorSet = true
	}

	rel := pts - m.anchor
	if rel < 0 {
		return 0, false
	}
	return rel, true
}

func (m *Muxer) writeSample(track *muxerTrack, sample *muxerSample) error {
	dts := timestampToDuration(sample.dts, int(track.initTrack.TimeScale))
	if dts > m.lastDTS {
		m.lastDTS = dts
	}

	if m.curPart == nil {
		m.curPart = &muxerPart{
			m:              m,
			sequenceNumber: m.nextSequenceNumber,
			startDTS:       dts,
		}
		m.curPart.initialize()
		m.nextSequenceNumber++
	} else if m.curPart.duration() >= m.PartDuration {
		err := m.curPart.close()
		m.curPart = nil

		if err != nil {
			return err
		}

		m.curPart = &muxerPart{
			m:              m,
			sequenceNumber: m.nextSequenceNumber,
			startDTS:       dts,
		}
		m.curPart.initialize()
		m.nextSequenceNumber++
	}

	err := m.curPart.write(track, sample, dts)
	if err == errMaxPartSize {
		m.droppedSamples.Increase()
		return nil
	}
	return err
}

// Duration returns the distance between the session anchor and the most
// recent sample.
func (m *Muxer) Duration() time.Duration {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	d := m.lastDTS
	for _, track := range m.tracks {
		if track.nextSample != nil {
			if v := timestampToDuration(track.nextSample.dts, int(track.initTrack.TimeScale)); v > d {
				d = v
			}
		}
	}
	return d
}

// Close stops accepting samples and finalizes or discards the file.
// It returns the file path on success, or an empty string when the
// recording was discarded or never produced a sample.
func (m *Muxer) Close(discard bool) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return "", nil
	}
	m.closed = true

	m.droppedSamples.Stop()

	for _, track := range m.tracks {
		if track.nextSample != nil {
			if v := timestampToDuration(track.nextSample.dts, int(track.initTrack.TimeScale)); v > m.lastDTS {
				m.lastDTS = v
			}
		}
	}

	var err error
	if m.curPart != nil && !discard {
		err = m.curPart.close()
	}
	m.curPart = nil

	created := m.fi != nil

	if m.fi != nil {
		err2 := m.fi.Close()
		if err == nil {
			err = err2
		}
		m.fi = nil

		if discard {
			os.Remove(m.Path)
		}
	}

	if err != nil {
		return "", err
	}
	if discard || !created {
		return "", nil
	}
	return m.Path, nil
}
