package capture

import (
	"sync"
	"time"
)

// canned H.264 parameter sets used by the simulated camera (1920x1080 baseline).
var (
	simulatedSPS = []byte{
		0x67, 0x42, 0xc0, 0x28, 0xd9, 0x00, 0x78, 0x02,
		0x27, 0xe5, 0x84, 0x00, 0x00, 0x03, 0x00, 0x04,
		0x00, 0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60, 0xc9, 0x20,
	}
	simulatedPPS = []byte{0x08, 0x06, 0x07, 0x08}
)

// a silent AAC-LC access unit.
var silentAU = []byte{0x21, 0x10, 0x04, 0x60, 0x8c, 0x1c}

const simulatedIDRInterval = 30

// SimulatedCamera is a camera that synthesizes H.264 access units at the
// configured frame rate. It is used in development and in tests, where
// real capture hardware is unavailable.
type SimulatedCamera struct {
	DeviceID        string
	DevicePosition  Position
	DeviceUltraWide bool
	DeviceFormats   []Format

	mutex         sync.Mutex
	active        Format
	frameDuration time.Duration

	terminate chan struct{}
	done      chan struct{}
}

// ID implements Camera.
func (c *SimulatedCamera) ID() string { return c.DeviceID }

// Position implements Camera.
func (c *SimulatedCamera) Position() Position { return c.DevicePosition }

// UltraWide implements Camera.
func (c *SimulatedCamera) UltraWide() bool { return c.DeviceUltraWide }

// Formats implements Camera.
func (c *SimulatedCamera) Formats() []Format {
	out := make([]Format, len(c.DeviceFormats))
	copy(out, c.DeviceFormats)
	return out
}

// ActiveFormat implements Camera.
func (c *SimulatedCamera) ActiveFormat() Format {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.active == (Format{}) && len(c.DeviceFormats) > 0 {
		return c.DeviceFormats[0]
	}
	return c.active
}

// SetActiveFormat implements Camera.
func (c *SimulatedCamera) SetActiveFormat(f Format, frameDuration time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.active = f
	c.frameDuration = frameDuration
	return nil
}

// VideoParams implements Camera.
func (c *SimulatedCamera) VideoParams() ([]byte, []byte) {
	return simulatedSPS, simulatedPPS
}

// Start implements Camera.
func (c *SimulatedCamera) Start(consume func(Sample)) error {
	c.mutex.Lock()
	frameDuration := c.frameDuration
	c.mutex.Unlock()

	if frameDuration == 0 {
		frameDuration = 33 * time.Millisecond
	}

	c.terminate = make(chan struct{})
	c.done = make(chan struct{})

	go c.run(consume, frameDuration)

	return nil
}

// Stop implements Camera.
func (c *SimulatedCamera) Stop() {
	if c.terminate == nil {
		return
	}
	close(c.terminate)
	<-c.done
	c.terminate = nil
}

func (c *SimulatedCamera) run(consume func(Sample), frameDuration time.Duration) {
	defer close(c.done)

	t := time.NewTicker(frameDuration)
	defer t.Stop()

	start := time.Now()
	frame := 0

	for {
		select {
		case <-c.terminate:
			return

		case now := <-t.C:
			var au [][]byte
			if (frame % simulatedIDRInterval) == 0 {
				au = [][]byte{simulatedSPS, simulatedPPS, {0x05, 0x00}}
			} else {
				au = [][]byte{{0x01, 0x00}}
			}
			frame++

			consume(Sample{
				Kind: SampleVideo,
				AU:   au,
				PTS:  now.Sub(start),
				NTP:  now,
			})
		}
	}
}

// SimulatedMicrophone is a microphone that synthesizes silent AAC access
// units.
type SimulatedMicrophone struct {
	Rate     int
	Channels int

	terminate chan struct{}
	done      chan struct{}
}

// ID implements Microphone.
func (m *SimulatedMicrophone) ID() string { return "simulated-mic" }

// SampleRate implements Microphone.
func (m *SimulatedMicrophone) SampleRate() int { return m.Rate }

// ChannelCount implements Microphone.
func (m *SimulatedMicrophone) ChannelCount() int { return m.Channels }

// Start implements Microphone.
func (m *SimulatedMicrophone) Start(consume func(Sample)) error {
	m.terminate = make(chan struct{})
	m.done = make(chan struct{})

	go m.run(consume)

	return nil
}

// Stop implements Microphone.
func (m *SimulatedMicrophone) Stop() {
	if m.terminate == nil {
		return
	}
	close(m.terminate)
	<-m.done
	m.terminate = nil
}

func (m *SimulatedMicrophone) run(consume func(Sample)) {
	defer close(m.done)

	// one AAC access unit covers 1024 PCM samples
	interval := time.Duration(1024) * time.Second / time.Duration(m.Rate)

	t := time.NewTicker(interval)
	defer t.Stop()

	start := time.Now()

	for {
		select {
		case <-m.terminate:
			return

		case now := <-t.C:
			consume(Sample{
				Kind: SampleAudio,
				AU:   [][]byte{silentAU},
				PTS:  now.Sub(start),
				NTP:  now,
			})
		}
	}
}

// SimulatedProvider is a Provider backed by simulated devices.
type SimulatedProvider struct {
	PermissionGranted bool
	CameraList        []Camera
	Mic               Microphone
}

// NewSimulatedProvider allocates a SimulatedProvider with a plausible
// front camera pair.
func NewSimulatedProvider(sampleRate int, channelCount int) *SimulatedProvider {
	return &SimulatedProvider{
		PermissionGranted: true,
		CameraList: []Camera{
			&SimulatedCamera{
				DeviceID:        "front-ultrawide",
				DevicePosition:  PositionFront,
				DeviceUltraWide: true,
				DeviceFormats: []Format{
					{Width: 3840, Height: 2160, MinFrameRate: 1, MaxFrameRate: 30, Encoding: PixelEncoding420Video},
					{Width: 1920, Height: 1080, MinFrameRate: 1, MaxFrameRate: 60, Encoding: PixelEncoding420Video},
					{Width: 1440, Height: 1440, MinFrameRate: 1, MaxFrameRate: 30, Encoding: PixelEncoding420Video},
				},
			},
			&SimulatedCamera{
				DeviceID:       "front-wide",
				DevicePosition: PositionFront,
				DeviceFormats: []Format{
					{Width: 4032, Height: 3024, MinFrameRate: 1, MaxFrameRate: 30, Encoding: PixelEncoding420Video},
					{Width: 1920, Height: 1080, MinFrameRate: 1, MaxFrameRate: 60, Encoding: PixelEncoding420Video},
				},
			},
		},
		Mic: &SimulatedMicrophone{Rate: sampleRate, Channels: channelCount},
	}
}

// Cameras implements Provider.
func (p *SimulatedProvider) Cameras() ([]Camera, error) {
	if !p.PermissionGranted {
		return nil, ErrPermissionDenied
	}
	return p.CameraList, nil
}

// Microphone implements Provider.
func (p *SimulatedProvider) Microphone() (Microphone, error) {
	if !p.PermissionGranted {
		return nil, ErrPermissionDenied
	}
	return p.Mic, nil
}
