package audio

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// FramesPerBuffer is the chunk size read from the device, 64ms at 16kHz.
const FramesPerBuffer = 1024

// Source yields fixed-size mono 16-bit chunks.
type Source interface {
	SampleRate() int
	ReadChunk() ([]int16, error)
}

// MicConfig selects and configures the input device.
type MicConfig struct {
	Device     string
	Excluded   []string
	SampleRate int
}

// Microphone is a portaudio input stream. It must be closed after use.
type Microphone struct {
	stream     *portaudio.Stream
	buf        []int16
	sampleRate int
	device     string
	closeOnce  sync.Once
}

// Probe reports the input device Open would use, without opening a stream.
func Probe(cfg MicConfig) (string, error) {
	if err := portaudio.Initialize(); err != nil {
		return "", apperrors.Wrap(err, apperrors.AudioDevice, "failed to initialize audio")
	}
	defer portaudio.Terminate()

	dev, err := selectDevice(cfg)
	if err != nil {
		return "", err
	}
	return dev.Name, nil
}

// Open initializes portaudio and starts capturing from the selected device.
func Open(cfg MicConfig) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "failed to initialize audio")
	}

	dev, err := selectDevice(cfg)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, err
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: 1,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: FramesPerBuffer,
	}

	buf := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "failed to open microphone").WithMetadata("device", dev.Name)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "failed to start microphone").WithMetadata("device", dev.Name)
	}

	slog.Debug("microphone opened", "device", dev.Name, "sample_rate", cfg.SampleRate)
	return &Microphone{stream: stream, buf: buf, sampleRate: cfg.SampleRate, device: dev.Name}, nil
}

func selectDevice(cfg MicConfig) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "failed to list audio devices")
	}

	infos := make([]deviceInfo, len(devices))
	for i, d := range devices {
		infos[i] = deviceInfo{Name: d.Name, MaxInputChannels: d.MaxInputChannels}
	}
	if i := pickDevice(infos, cfg.Device, cfg.Excluded); i >= 0 {
		return devices[i], nil
	}
	if cfg.Device != "" {
		return nil, apperrors.Newf(apperrors.AudioDevice, "no input device matches %q", cfg.Device)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "no default input device")
	}
	return dev, nil
}

// Device returns the name of the open device.
func (m *Microphone) Device() string { return m.device }

// SampleRate returns the capture rate in Hz.
func (m *Microphone) SampleRate() int { return m.sampleRate }

// ReadChunk blocks for the next FramesPerBuffer samples.
func (m *Microphone) ReadChunk() ([]int16, error) {
	if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, apperrors.Wrap(err, apperrors.AudioDevice, "microphone read failed")
	}
	return append([]int16(nil), m.buf...), nil
}

// Close stops the stream and releases portaudio.
func (m *Microphone) Close() error {
	var err error
	m.closeOnce.Do(func() {
		_ = m.stream.Stop()
		err = m.stream.Close()
		_ = portaudio.Terminate()
	})
	return err
}
