package pulseaudio

import (
	"sync"
)

type AudioServerKind string

const (
	ServerPulse    AudioServerKind = "pulseaudio"
	ServerPipeWire AudioServerKind = "pipewire"
)

// client is the part of *pulseaudio.Client used for the master volume.
type client interface {
	Volume() (float32, error)
	Updates() (<-chan struct{}, error)
	Close()
}

// PulseAudioBackend reports the server's master volume.
type PulseAudioBackend struct {
	mu     sync.Mutex
	client client
	kind   AudioServerKind
}
