package recordstore

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// ErrRecordingNotFound is returned when a recording does not exist.
var ErrRecordingNotFound = errors.New("recording not found")

// Recording is a finished recording on disk.
type Recording struct {
	Fpath string
	Start time.Time
	ID    string
}

// List returns all recordings matching the given path template,
// sorted by start time.
func List(pathFormat string) ([]*Recording, error) {
	pathFormat = PathAddExtension(pathFormat)

	// convert to an absolute path, otherwise the template and the paths
	// inside WalkDir won't have common elements
	pathFormat, _ = filepath.Abs(pathFormat)

	commonPath := CommonPath(pathFormat)
	var ret []*Recording

	err := filepath.WalkDir(commonPath, func(fpath string, info fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			var pa Path
			if ok := pa.Decode(pathFormat, fpath); ok {
				ret = append(ret, &Recording{
					Fpath: fpath,
					Start: pa.Start,
					ID:    pa.ID,
				})
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Start.Before(ret[j].Start)
	})

	return ret, nil
}

// Find returns the recording with the given ID.
func Find(pathFormat string, id string) (*Recording, error) {
	list, err := List(pathFormat)
	if err != nil {
		return nil, err
	}

	for _, rec := range list {
		if rec.ID == id {
			return rec, nil
		}
	}

	return nil, ErrRecordingNotFound
}
