// Package conf contains the struct that holds the configuration of the software.
package conf

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/promptcam/promptcam/internal/conf/env"
	"github.com/promptcam/promptcam/internal/conf/yamlwrapper"
	"github.com/promptcam/promptcam/internal/logger"
)

func firstThatExists(paths []string) string {
	for _, pa := range paths {
		_, err := os.Stat(pa)
		if err == nil {
			return pa
		}
	}
	return ""
}

// Conf is the configuration of the software.
type Conf struct {
	// Logging
	LogLevel        LogLevel        `json:"logLevel"`
	LogDestinations LogDestinations `json:"logDestinations"`
	LogFile         string          `json:"logFile"`

	// Control API
	API            bool     `json:"api"`
	APIAddress     string   `json:"apiAddress"`
	APIReadTimeout Duration `json:"apiReadTimeout"`

	// Profiling
	PPROF        bool   `json:"pprof"`
	PPROFAddress string `json:"pprofAddress"`

	// Capture
	CameraPreferUltraWide bool            `json:"cameraPreferUltraWide"`
	TargetFPS             FrameRate       `json:"targetFps"`
	AspectRatioMode       AspectRatioMode `json:"aspectRatioMode"`

	// Recording
	RecordPath          string     `json:"recordPath"`
	VideoBitrate        StringSize `json:"videoBitrate"`
	PartDuration        Duration   `json:"partDuration"`
	MaxPartSize         StringSize `json:"maxPartSize"`
	AudioSampleRate     int        `json:"audioSampleRate"`
	AudioChannelCount   int        `json:"audioChannelCount"`
	RunOnRecordComplete string     `json:"runOnRecordComplete"`

	// Export post-processing
	ExportSpeedFactor    float64 `json:"exportSpeedFactor"`
	ExportBackgroundBlur bool    `json:"exportBackgroundBlur"`

	// Scrolling
	ScrollTickInterval Duration `json:"scrollTickInterval"`
	ScrollSpeedMin     float64  `json:"scrollSpeedMin"`
	ScrollSpeedMax     float64  `json:"scrollSpeedMax"`
	ScrollSpeedStep    float64  `json:"scrollSpeedStep"`
	ScrollSpeedInitial float64  `json:"scrollSpeedInitial"`

	// Persisted UI state
	StateFile string `json:"stateFile"`
}

func (conf *Conf) setDefaults() {
	conf.LogLevel = LogLevel(logger.Info)
	conf.LogDestinations = LogDestinations{LogDestination(logger.DestinationStdout)}
	conf.LogFile = "promptcam.log"

	conf.API = true
	conf.APIAddress = "127.0.0.1:9997"
	conf.APIReadTimeout = Duration(10 * time.Second)

	conf.PPROFAddress = "127.0.0.1:9999"

	conf.CameraPreferUltraWide = true
	conf.TargetFPS = 30
	conf.AspectRatioMode = AspectRatioModeVertical

	conf.RecordPath = "recordings/%Y-%m-%d_%H-%M-%S_%id"
	conf.VideoBitrate = 10 * 1024 * 1024
	conf.PartDuration = Duration(1 * time.Second)
	conf.MaxPartSize = 50 * 1024 * 1024
	conf.AudioSampleRate = 44100
	conf.AudioChannelCount = 1

	conf.ExportSpeedFactor = 1

	conf.ScrollTickInterval = Duration(30 * time.Millisecond)
	conf.ScrollSpeedMin = 0.1
	conf.ScrollSpeedMax = 2.0
	conf.ScrollSpeedStep = 0.1
	conf.ScrollSpeedInitial = 1.0

	conf.StateFile = "promptcam_state.yml"
}

// Load loads the configuration from a file and from the environment.
func Load(fpath string, defaultConfPaths []string) (*Conf, string, error) {
	conf := &Conf{}

	fpath, err := conf.loadFromFile(fpath, defaultConfPaths)
	if err != nil {
		return nil, "", err
	}

	err = env.Load("PTC", conf)
	if err != nil {
		return nil, "", err
	}

	err = conf.Validate()
	if err != nil {
		return nil, "", err
	}

	return conf, fpath, nil
}

func (conf *Conf) loadFromFile(fpath string, defaultConfPaths []string) (string, error) {
	conf.setDefaults()

	if fpath == "" {
		fpath = firstThatExists(defaultConfPaths)

		// when the configuration file is not explicitly set,
		// it is optional.
		if fpath == "" {
			return "", nil
		}
	}

	byts, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}

	err = yamlwrapper.Unmarshal(byts, conf)
	if err != nil {
		return "", err
	}

	return fpath, nil
}

// Clone clones the configuration.
func (conf Conf) Clone() *Conf {
	enc, err := json.Marshal(conf)
	if err != nil {
		panic(err)
	}

	var dest Conf
	err = json.Unmarshal(enc, &dest)
	if err != nil {
		panic(err)
	}

	return &dest
}

// Validate checks the configuration for errors.
func (conf *Conf) Validate() error {
	if conf.TargetFPS <= 0 {
		return fmt.Errorf("'targetFps' must be greater than zero")
	}

	if conf.RecordPath == "" {
		return fmt.Errorf("'recordPath' must not be empty")
	}
	if !strings.Contains(conf.RecordPath, "%id") &&
		!strings.Contains(conf.RecordPath, "%s") &&
		!strings.Contains(conf.RecordPath, "%S") {
		return fmt.Errorf("'recordPath' must contain %%id, %%s or %%S to make recordings unique")
	}

	if conf.VideoBitrate == 0 {
		return fmt.Errorf("'videoBitrate' must be greater than zero")
	}

	if conf.PartDuration <= 0 {
		return fmt.Errorf("'partDuration' must be greater than zero")
	}

	if conf.MaxPartSize == 0 {
		return fmt.Errorf("'maxPartSize' must be greater than zero")
	}

	switch conf.AudioSampleRate {
	case 8000, 16000, 22050, 44100, 48000:
	default:
		return fmt.Errorf("unsupported 'audioSampleRate': %d", conf.AudioSampleRate)
	}

	if conf.AudioChannelCount != 1 && conf.AudioChannelCount != 2 {
		return fmt.Errorf("unsupported 'audioChannelCount': %d", conf.AudioChannelCount)
	}

	if conf.ExportSpeedFactor <= 0 {
		return fmt.Errorf("'exportSpeedFactor' must be greater than zero")
	}

	if conf.ScrollTickInterval <= 0 {
		return fmt.Errorf("'scrollTickInterval' must be greater than zero")
	}

	if conf.ScrollSpeedMin <= 0 ||
		conf.ScrollSpeedMax < conf.ScrollSpeedMin ||
		conf.ScrollSpeedStep <= 0 {
		return fmt.Errorf("invalid scroll speed range")
	}

	if conf.ScrollSpeedInitial < conf.ScrollSpeedMin ||
		conf.ScrollSpeedInitial > conf.ScrollSpeedMax {
		return fmt.Errorf("'scrollSpeedInitial' must be within the scroll speed range")
	}

	return nil
}
