// Package statestore persists the small set of user-facing values that
// survive across launches.
package statestore

import (
	"os"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/promptcam/promptcam/internal/conf"
)

// State contains the persisted values.
type State struct {
	AspectRatioMode conf.AspectRatioMode `yaml:"aspectRatioMode"`
	ScrollSpeed     float64              `yaml:"scrollSpeed"`
}

type yamlState struct {
	AspectRatioMode string  `yaml:"aspectRatioMode"`
	ScrollSpeed     float64 `yaml:"scrollSpeed"`
}

// Store reads and writes the persisted state file.
type Store struct {
	FilePath string

	mutex sync.Mutex
}

// Load reads the state file. A missing file is not an error:
// defaults are returned unchanged.
func (s *Store) Load(defaults State) State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	byts, err := os.ReadFile(s.FilePath)
	if err != nil {
		return defaults
	}

	var ys yamlState
	err = yaml.Unmarshal(byts, &ys)
	if err != nil {
		return defaults
	}

	out := defaults

	var mode conf.AspectRatioMode
	if err := mode.UnmarshalEnv("", ys.AspectRatioMode); err == nil {
		out.AspectRatioMode = mode
	}

	if ys.ScrollSpeed > 0 {
		out.ScrollSpeed = ys.ScrollSpeed
	}

	return out
}

// Save writes the state file atomically.
func (s *Store) Save(state State) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ys := yamlState{
		AspectRatioMode: state.AspectRatioMode.String(),
		ScrollSpeed:     state.ScrollSpeed,
	}

	byts, err := yaml.Marshal(ys)
	if err != nil {
		return err
	}

	tmpPath := s.FilePath + ".tmp"
	err = os.WriteFile(tmpPath, byts, 0o644)
	if err != nil {
		return err
	}

	return os.Rename(tmpPath, s.FilePath)
}
