package serial

import (
	"io"
	"time"
)

// Port is a serial connection to the timer firmware. Tests substitute an
// in-memory implementation.
type Port interface {
	io.ReadWriteCloser

	Flush() error
}

// Config holds serial port settings.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC ignores it
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the firmware's USB CDC console uses.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
