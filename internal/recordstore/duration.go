package recordstore

import (
	"fmt"
	"os"
	"time"

	amp4 "github.com/abema/go-mp4"
)

func durationMp4ToGo(v uint64, timeScale uint32) time.Duration {
	timeScale64 := uint64(timeScale)
	secs := v / timeScale64
	dec := v % timeScale64
	return time.Duration(secs)*time.Second + time.Duration(dec)*time.Second/time.Duration(timeScale64)
}

// Duration computes the duration of a recording by walking its fragments
// and summing the sample durations of each track. The track with the
// longest timeline wins.
func Duration(fpath string) (time.Duration, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	timeScales := make(map[uint32]uint32)
	elapsed := make(map[uint32]uint64)
	var curTrack uint32

	_, err = amp4.ReadBoxStructure(f, func(h *amp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type.String() {
		case "moov", "trak", "mdia", "moof", "traf":
			return h.Expand()

		case "tkhd":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			curTrack = box.(*amp4.Tkhd).TrackID

		case "mdhd":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			timeScales[curTrack] = box.(*amp4.Mdhd).Timescale

		case "tfhd":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			curTrack = box.(*amp4.Tfhd).TrackID

		case "tfdt":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			tfdt := box.(*amp4.Tfdt)
			if tfdt.Version == 1 {
				elapsed[curTrack] = tfdt.BaseMediaDecodeTimeV1
			} else {
				elapsed[curTrack] = uint64(tfdt.BaseMediaDecodeTimeV0)
			}

		case "trun":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			for _, e := range box.(*amp4.Trun).Entries {
				elapsed[curTrack] += uint64(e.SampleDuration)
			}
		}

		return nil, nil
	})
	if err != nil {
		return 0, err
	}

	if len(elapsed) == 0 {
		return 0, fmt.Errorf("no fragments found")
	}

	var max time.Duration
	for id, e := range elapsed {
		ts, ok := timeScales[id]
		if !ok || ts == 0 {
			return 0, fmt.Errorf("invalid track ID: %v", id)
		}
		if d := durationMp4ToGo(e, ts); d > max {
			max = d
		}
	}

	return max, nil
}
