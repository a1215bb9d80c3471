package session

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource is the primary capture path: a low-latency mono input
// stream whose hardware callback drives the pipeline.
type PortAudioSource struct {
	framesPerBuffer int

	stream      *portaudio.Stream
	initialized bool
}

// NewPortAudioSource creates a portaudio-backed capture source.
func NewPortAudioSource() *PortAudioSource {
	return &PortAudioSource{framesPerBuffer: 512}
}

// Open initializes portaudio and opens the default input device.
func (p *PortAudioSource) Open(sampleRate int, onSamples func([]float32)) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	p.initialized = true

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), p.framesPerBuffer,
		func(in []float32) {
			onSamples(in)
		})
	if err != nil {
		_ = portaudio.Terminate()
		p.initialized = false
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	p.stream = stream
	return nil
}

func (p *PortAudioSource) Start() error {
	if p.stream == nil {
		return ErrNotInitialized
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("starting capture stream: %w", err)
	}
	return nil
}

func (p *PortAudioSource) Stop() error {
	if p.stream == nil {
		return nil
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("stopping capture stream: %w", err)
	}
	return nil
}

func (p *PortAudioSource) Close() error {
	var first error
	if p.stream != nil {
		first = p.stream.Close()
		p.stream = nil
	}
	if p.initialized {
		if err := portaudio.Terminate(); err != nil && first == nil {
			first = err
		}
		p.initialized = false
	}
	return first
}
