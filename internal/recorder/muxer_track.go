package recorder

import (
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
)

type muxerTrack struct {
	m         *Muxer
	initTrack *fmp4.InitTrack

	nextSample *muxerSample
}

// write stores a sample. Writing is deferred by one sample per track,
// since a sample's duration is only known once its successor arrives.
func (t *muxerTrack) write(sample *muxerSample) error {
	sample, t.nextSample = t.nextSample, sample
	if sample == nil {
		return nil
	}

	duration := t.nextSample.dts - sample.dts
	if duration < 0 {
		t.nextSample.dts = sample.dts
		duration = 0
	}

	sample.Duration = uint32(duration)

	return t.m.writeSample(t, sample)
}
