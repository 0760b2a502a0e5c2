// Package core contains the main struct of the software.
package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	"github.com/promptcam/promptcam/internal/api"
	"github.com/promptcam/promptcam/internal/capture"
	"github.com/promptcam/promptcam/internal/conf"
	"github.com/promptcam/promptcam/internal/confwatcher"
	"github.com/promptcam/promptcam/internal/externalcmd"
	"github.com/promptcam/promptcam/internal/logger"
	"github.com/promptcam/promptcam/internal/postproc"
	"github.com/promptcam/promptcam/internal/pprof"
	"github.com/promptcam/promptcam/internal/recorder"
	"github.com/promptcam/promptcam/internal/rlimit"
	"github.com/promptcam/promptcam/internal/scroll"
	"github.com/promptcam/promptcam/internal/statestore"
)

var version = "v0.0.0"

var defaultConfPaths = []string{
	"promptcam.yml",
	"/usr/local/etc/promptcam.yml",
	"/usr/etc/promptcam.yml",
	"/etc/promptcam/promptcam.yml",
}

var cli struct {
	Version  bool   `help:"print version"`
	Confpath string `arg:"" default:""`
}

// Core is an instance of promptcam.
type Core struct {
	ctx             context.Context
	ctxCancel       func()
	confPath        string
	conf            *conf.Conf
	logger          *logger.Logger
	confWatcher     *confwatcher.ConfWatcher
	externalCmdPool *externalcmd.Pool
	stateStore      *statestore.Store
	graph           *capture.Graph
	recorder        *recorder.Recorder
	exporter        *postproc.Exporter
	scrollState     *scroll.State
	scrollEngine    *scroll.Engine
	surface         *scroll.Surface
	api             *api.API
	pprof           *pprof.PPROF

	// out
	done chan struct{}
}

// New allocates a Core.
func New(args []string) (*Core, bool) {
	parser, err := kong.New(&cli,
		kong.Description("promptcam "+version),
		kong.UsageOnError(),
		kong.ValueFormatter(func(value *kong.Value) string {
			switch value.Name {
			case "confpath":
				return "path to a config file. The default is promptcam.yml."

			default:
				return kong.DefaultHelpValueFormatter(value)
			}
		}))
	if err != nil {
		panic(err)
	}

	_, err = parser.Parse(args)
	parser.FatalIfErrorf(err)

	if cli.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, ctxCancel := context.WithCancel(context.Background())

	p := &Core{
		ctx:       ctx,
		ctxCancel: ctxCancel,
		done:      make(chan struct{}),
	}

	var confPath string
	p.conf, confPath, err = conf.Load(cli.Confpath, defaultConfPaths)
	if err != nil {
		fmt.Printf("ERR: %s\n", err)
		return nil, false
	}
	p.confPath = confPath

	err = p.createResources(true)
	if err != nil {
		if p.logger != nil {
			p.Log(logger.Error, "%s", err)
		} else {
			fmt.Printf("ERR: %s\n", err)
		}
		p.closeResources(nil)
		return nil, false
	}

	go p.run()

	return p, true
}

// Close closes Core and waits for all goroutines to return.
func (p *Core) Close() {
	p.ctxCancel()
	<-p.done
}

// Wait waits for the Core to exit.
func (p *Core) Wait() {
	<-p.done
}

// Log implements logger.Writer.
func (p *Core) Log(level logger.Level, format string, args ...interface{}) {
	p.logger.Log(level, format, args...)
}

func (p *Core) run() {
	defer close(p.done)

	confChanged := func() chan struct{} {
		if p.confWatcher != nil {
			return p.confWatcher.Watch()
		}
		return make(chan struct{})
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

outer:
	for {
		select {
		case <-confChanged:
			// a live recording must not lose its capture session or
			// muxer under a config swap. The change is picked up the
			// next time it is signaled while idle.
			if p.recorder.State() != recorder.StateIdle {
				p.Log(logger.Warn, "configuration file changed, ignoring while a recording is in progress")
				continue
			}

			p.Log(logger.Info, "reloading configuration (file changed)")

			newConf, _, err := conf.Load(p.confPath, nil)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

			err = p.reloadConf(newConf)
			if err != nil {
				p.Log(logger.Error, "%s", err)
				break outer
			}

		case <-interrupt:
			p.Log(logger.Info, "shutting down gracefully")
			break outer

		case <-p.ctx.Done():
			break outer
		}
	}

	p.ctxCancel()

	p.closeResources(nil)
}

func (p *Core) createResources(initial bool) error {
	var err error

	if p.logger == nil {
		p.logger = &logger.Logger{
			Level:        logger.Level(p.conf.LogLevel),
			Destinations: p.conf.LogDestinations.ToDestinations(),
			FilePath:     p.conf.LogFile,
			SysLogPrefix: "promptcam",
		}
		err = p.logger.Initialize()
		if err != nil {
			return err
		}
	}

	if initial {
		p.Log(logger.Info, "promptcam %s", version)
		if p.confPath == "" {
			p.Log(logger.Warn, "configuration file not found, using defaults")
		}

		// on Linux, try to raise the number of file descriptors that can be opened
		// do not check for errors
		rlimit.Raise() //nolint:errcheck

		gin.SetMode(gin.ReleaseMode)

		p.externalCmdPool = &externalcmd.Pool{}
		p.externalCmdPool.Initialize()
	}

	if p.conf.StateFile != "" && p.stateStore == nil {
		p.stateStore = &statestore.Store{
			FilePath: p.conf.StateFile,
		}
	}

	// values persisted across launches win over the configuration
	persisted := statestore.State{
		AspectRatioMode: p.conf.AspectRatioMode,
		ScrollSpeed:     p.conf.ScrollSpeedInitial,
	}
	if p.stateStore != nil {
		persisted = p.stateStore.Load(persisted)
	}

	if p.recorder == nil {
		p.recorder = &recorder.Recorder{
			PathFormat:        p.conf.RecordPath,
			PartDuration:      time.Duration(p.conf.PartDuration),
			MaxPartSize:       uint64(p.conf.MaxPartSize),
			AudioSampleRate:   p.conf.AudioSampleRate,
			AudioChannelCount: p.conf.AudioChannelCount,
			OnComplete:        p.onRecordComplete,
			Parent:            p,
		}
	}

	if p.graph == nil {
		rec := p.recorder
		p.graph = &capture.Graph{
			Provider:        capture.NewSimulatedProvider(p.conf.AudioSampleRate, p.conf.AudioChannelCount),
			PreferUltraWide: p.conf.CameraPreferUltraWide,
			TargetFPS:       float64(p.conf.TargetFPS),
			OnVideoSample:   rec.WriteVideo,
			OnAudioSample:   rec.WriteAudio,
			Parent:          p,
		}
		err = p.graph.Initialize(persisted.AspectRatioMode)
		if err != nil {
			return err
		}

		p.recorder.Graph = p.graph
		p.recorder.Initialize()
	}

	if p.exporter == nil {
		p.exporter = &postproc.Exporter{
			SpeedFactor:    p.conf.ExportSpeedFactor,
			BackgroundBlur: p.conf.ExportBackgroundBlur,
			VideoBitrate:   uint64(p.conf.VideoBitrate),
			Parent:         p,
		}
		p.exporter.Initialize()
	}

	if p.scrollEngine == nil {
		p.scrollState = &scroll.State{}
		p.scrollEngine = &scroll.Engine{
			State:        p.scrollState,
			TickInterval: time.Duration(p.conf.ScrollTickInterval),
			SpeedMin:     p.conf.ScrollSpeedMin,
			SpeedMax:     p.conf.ScrollSpeedMax,
			SpeedStep:    p.conf.ScrollSpeedStep,
			SpeedInitial: persisted.ScrollSpeed,
			Parent:       p,
		}
		p.scrollEngine.Initialize()

		p.surface = &scroll.Surface{
			State: p.scrollState,
		}
	}

	if p.conf.PPROF && p.pprof == nil {
		p.pprof = &pprof.PPROF{
			Address:     p.conf.PPROFAddress,
			ReadTimeout: time.Duration(p.conf.APIReadTimeout),
			Parent:      p,
		}
		err = p.pprof.Initialize()
		if err != nil {
			return err
		}
	}

	if p.conf.API && p.api == nil {
		p.api = &api.API{
			Version:      version,
			Started:      time.Now(),
			Address:      p.conf.APIAddress,
			ReadTimeout:  time.Duration(p.conf.APIReadTimeout),
			PathFormat:   p.conf.RecordPath,
			Graph:        p.graph,
			Recorder:     p.recorder,
			ScrollEngine: p.scrollEngine,
			Surface:      p.surface,
			Parent:       p,
		}
		err = p.api.Initialize()
		if err != nil {
			return err
		}
	}

	if initial && p.confPath != "" {
		p.confWatcher = &confwatcher.ConfWatcher{FilePath: p.confPath}
		err = p.confWatcher.Initialize()
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Core) closeResources(newConf *conf.Conf) {
	closeLogger := newConf == nil ||
		newConf.LogLevel != p.conf.LogLevel ||
		!reflect.DeepEqual(newConf.LogDestinations, p.conf.LogDestinations) ||
		newConf.LogFile != p.conf.LogFile

	closeRecorder := newConf == nil ||
		newConf.RecordPath != p.conf.RecordPath ||
		newConf.PartDuration != p.conf.PartDuration ||
		newConf.MaxPartSize != p.conf.MaxPartSize ||
		newConf.AudioSampleRate != p.conf.AudioSampleRate ||
		newConf.AudioChannelCount != p.conf.AudioChannelCount ||
		newConf.RunOnRecordComplete != p.conf.RunOnRecordComplete

	closeGraph := newConf == nil ||
		newConf.CameraPreferUltraWide != p.conf.CameraPreferUltraWide ||
		newConf.TargetFPS != p.conf.TargetFPS ||
		newConf.AudioSampleRate != p.conf.AudioSampleRate ||
		newConf.AudioChannelCount != p.conf.AudioChannelCount ||
		closeRecorder

	closeRecorder = closeRecorder || closeGraph

	closeExporter := newConf == nil ||
		newConf.ExportSpeedFactor != p.conf.ExportSpeedFactor ||
		newConf.ExportBackgroundBlur != p.conf.ExportBackgroundBlur ||
		newConf.VideoBitrate != p.conf.VideoBitrate

	closeScrollEngine := newConf == nil ||
		newConf.ScrollTickInterval != p.conf.ScrollTickInterval ||
		newConf.ScrollSpeedMin != p.conf.ScrollSpeedMin ||
		newConf.ScrollSpeedMax != p.conf.ScrollSpeedMax ||
		newConf.ScrollSpeedStep != p.conf.ScrollSpeedStep

	closePPROF := newConf == nil ||
		newConf.PPROF != p.conf.PPROF ||
		newConf.PPROFAddress != p.conf.PPROFAddress ||
		newConf.APIReadTimeout != p.conf.APIReadTimeout

	closeAPI := newConf == nil ||
		newConf.API != p.conf.API ||
		newConf.APIAddress != p.conf.APIAddress ||
		newConf.APIReadTimeout != p.conf.APIReadTimeout ||
		newConf.RecordPath != p.conf.RecordPath ||
		closeGraph || closeRecorder || closeScrollEngine

	closeStateStore := newConf == nil ||
		newConf.StateFile != p.conf.StateFile

	if p.stateStore != nil && p.graph != nil && p.scrollEngine != nil {
		p.saveState()
	}

	if closeAPI && p.api != nil {
		p.api.Close()
		p.api = nil
	}

	if closePPROF && p.pprof != nil {
		p.pprof.Close()
		p.pprof = nil
	}

	if closeScrollEngine && p.scrollEngine != nil {
		p.scrollEngine.Close()
		p.scrollEngine = nil
		p.scrollState = nil
		p.surface = nil
	}

	if closeRecorder && p.recorder != nil {
		// finalize rather than discard: an interrupted take is still
		// worth keeping.
		if p.recorder.State() != recorder.StateIdle {
			p.recorder.Stop() //nolint:errcheck
		}
		p.recorder = nil
	}

	if closeGraph && p.graph != nil {
		p.graph.Close()
		p.graph = nil
	}

	if closeExporter {
		p.exporter = nil
	}

	if closeStateStore {
		p.stateStore = nil
	}

	if newConf == nil {
		if p.confWatcher != nil {
			p.confWatcher.Close()
			p.confWatcher = nil
		}

		if p.externalCmdPool != nil {
			p.Log(logger.Info, "waiting for running hooks")
			p.externalCmdPool.Close()
		}
	}

	if closeLogger && p.logger != nil {
		p.logger.Close()
		p.logger = nil
	}
}

func (p *Core) reloadConf(newConf *conf.Conf) error {
	p.closeResources(newConf)
	p.conf = newConf
	return p.createResources(false)
}

func (p *Core) saveState() {
	err := p.stateStore.Save(statestore.State{
		AspectRatioMode: p.graph.Mode(),
		ScrollSpeed:     p.scrollEngine.State.Speed(),
	})
	if err != nil {
		p.Log(logger.Warn, "unable to save state: %s", err)
	}
}

// APISetMode implements api.Parent. It switches the aspect ratio mode
// and persists the choice.
func (p *Core) APISetMode(mode conf.AspectRatioMode) error {
	if p.recorder.State() != recorder.StateIdle {
		return fmt.Errorf("cannot switch aspect ratio mode while recording")
	}

	err := p.graph.SetMode(mode)
	if err != nil {
		return err
	}

	if p.stateStore != nil {
		p.saveState()
	}

	return nil
}

func (p *Core) onRecordComplete(path string, duration time.Duration) {
	exporter := p.exporter
	runOnRecordComplete := p.conf.RunOnRecordComplete
	pool := p.externalCmdPool

	go func() {
		if exporter.Enabled() {
			_, err := exporter.Export(path)
			if err != nil {
				p.Log(logger.Error, "%s", err)
			}
		}

		if runOnRecordComplete != "" {
			env := externalcmd.Environment{
				"PTC_PATH":     path,
				"PTC_DURATION": strconv.FormatFloat(duration.Seconds(), 'f', -1, 64),
			}

			p.Log(logger.Info, "runOnRecordComplete command launched")
			externalcmd.NewCmd(
				pool,
				runOnRecordComplete,
				env,
				func(code int) {
					p.Log(logger.Info, "runOnRecordComplete command exited: %d", code)
				})
		}
	}()
}
