package recorder

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	amp4 "github.com/abema/go-mp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4/seekablebuffer"

	"github.com/promptcam/promptcam/internal/logger"
)

var errMaxPartSize = errors.New("reached maximum part size")

// patchTrackGeometry overwrites the presentation width and height in the
// track header of the given track. The coded size in the sample
// description stays the one carried by the parameter sets; the track
// header is what declares the output geometry of the recording.
func patchTrackGeometry(buf *seekablebuffer.Buffer, trackID uint32, width int, height int) error {
	_, err := amp4.ReadBoxStructure(bytes.NewReader(buf.Bytes()), func(h *amp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type.String() {
		case "moov", "trak":
			return h.Expand()

		case "tkhd":
			box, _, err2 := h.ReadPayload()
			if err2 != nil {
				return nil, err2
			}
			tkhd := box.(*amp4.Tkhd)
			if tkhd.TrackID != trackID {
				return nil, nil
			}

			tkhd.Width = uint32(width) << 16
			tkhd.Height = uint32(height) << 16

			_, err2 = buf.Seek(int64(h.BoxInfo.Offset+h.BoxInfo.HeaderSize), io.SeekStart)
			if err2 != nil {
				return nil, err2
			}
			_, err2 = amp4.Marshal(buf, tkhd, amp4.Context{})
			return nil, err2
		}

		return nil, nil
	})
	return err
}

func writeInit(f io.Writer, m *Muxer) error {
	fmp4Tracks := make([]*fmp4.InitTrack, len(m.tracks))
	for i, track := range m.tracks {
		fmp4Tracks[i] = track.initTrack
	}

	init := fmp4.Init{
		Tracks: fmp4Tracks,
	}

	var buf seekablebuffer.Buffer
	err := init.Marshal(&buf)
	if err != nil {
		return err
	}

	if m.Width != 0 && m.Height != 0 {
		err = patchTrackGeometry(&buf, uint32(m.videoTrack.initTrack.ID), m.Width, m.Height)
		if err != nil {
			return err
		}
	}

	_, err = f.Write(buf.Bytes())
	return err
}

func writePart(
	f io.Writer,
	sequenceNumber uint32,
	partTracks map[*muxerTrack]*fmp4.PartTrack,
) error {
	fmp4PartTracks := make([]*fmp4.PartTrack, len(partTracks))
	i := 0
	for _, partTrack := range partTracks {
		fmp4PartTracks[i] = partTrack
		i++
	}

	part := &fmp4.Part{
		SequenceNumber: sequenceNumber,
		Tracks:         fmp4PartTracks,
	}

	var buf seekablebuffer.Buffer
	err := part.Marshal(&buf)
	if err != nil {
		return err
	}

	_, err = f.Write(buf.Bytes())
	return err
}

type muxerPart struct {
	m              *Muxer
	sequenceNumber uint32
	startDTS       time.Duration

	partTracks map[*muxerTrack]*fmp4.PartTrack
	size       uint64
	endDTS     time.Duration
}

func (p *muxerPart) initialize() {
	p.partTracks = make(map[*muxerTrack]*fmp4.PartTrack)
}

func (p *muxerPart) close() error {
	// a part whose samples were all rejected has nothing to flush
	if len(p.partTracks) == 0 {
		return nil
	}

	if p.m.fi == nil {
		p.m.Log(logger.Debug, "creating %s", p.m.Path)

		err := os.MkdirAll(filepath.Dir(p.m.Path), 0o755)
		if err != nil {
			return err
		}

		fi, err := os.Create(p.m.Path)
		if err != nil {
			return err
		}

		err = writeInit(fi, p.m)
		if err != nil {
			fi.Close()
			return err
		}

		p.m.fi = fi
	}

	return writePart(p.m.fi, p.sequenceNumber, p.partTracks)
}

func (p *muxerPart) write(track *muxerTrack, sample *muxerSample, dts time.Duration) error {
	size := uint64(len(sample.Payload))
	if (p.size + size) > p.m.MaxPartSize {
		return errMaxPartSize
	}
	p.size += size

	partTrack, ok := p.partTracks[track]
	if !ok {
		partTrack = &fmp4.PartTrack{
			ID:       track.initTrack.ID,
			BaseTime: uint64(sample.dts),
		}
		p.partTracks[track] = partTrack
	}

	partTrack.Samples = append(partTrack.Samples, sample.PartSample)

	endDTS := dts + timestampToDuration(int64(sample.Duration), int(track.initTrack.TimeScale))
	if endDTS > p.endDTS {
		p.endDTS = endDTS
	}

	return nil
}

func (p *muxerPart) duration() time.Duration {
	return p.endDTS - p.startDTS
}
