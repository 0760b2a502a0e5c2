package recordstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var pathCases = []struct {
	name   string
	format string
	fpath  string
	dec    Path
}{
	{
		"date and id",
		"recordings/%Y-%m-%d_%H-%M-%S_%id.mp4",
		"recordings/2015-05-19_22-15-25_7241e8b0-3a5e-4d1c-9e4a-08d24d0e5a3c.mp4",
		Path{
			Start: time.Date(2015, 5, 19, 22, 15, 25, 0, time.Local),
			ID:    "7241e8b0-3a5e-4d1c-9e4a-08d24d0e5a3c",
		},
	},
	{
		"unix seconds",
		"recordings/%s.mp4",
		"recordings/1621776371.mp4",
		Path{
			Start: time.Unix(1621776371, 0),
			ID:    "",
		},
	},
}

func TestPathDecode(t *testing.T) {
	for _, ca := range pathCases {
		t.Run(ca.name, func(t *testing.T) {
			var dec Path
			ok := dec.Decode(ca.format, ca.fpath)
			require.Equal(t, true, ok)
			require.Equal(t, ca.dec, dec)
		})
	}
}

func TestPathDecodeNoMatch(t *testing.T) {
	var dec Path
	ok := dec.Decode("recordings/%Y-%m-%d_%H-%M-%S_%id.mp4", "recordings/notarecording.mp4")
	require.Equal(t, false, ok)
}

func TestPathEncode(t *testing.T) {
	for _, ca := range pathCases {
		t.Run(ca.name, func(t *testing.T) {
			require.Equal(t, ca.fpath, ca.dec.Encode(ca.format))
		})
	}
}

func TestCommonPath(t *testing.T) {
	require.Equal(t, "/tmp/recordings", CommonPath("/tmp/recordings/%Y/%m/%d_%id.mp4"))
}
