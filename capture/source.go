package capture

import (
	"fmt"
	"strings"
)

// Source is the audio-input boundary. Implementations deliver fixed-size
// mono float32 chunks at a configured sample rate.
//
// Read blocks until one chunk is available, bounded in practice by one
// chunk's real-time duration. A transient read failure is returned as an
// ordinary error and means "no chunk this tick"; the capture loop logs it
// and continues.
type Source interface {
	// Start begins capture
	Start() error

	// Read fills buf with the next chunk of samples
	Read(buf []float32) error

	// Stop halts capture; Start may be called again afterwards
	Stop() error

	// Close releases the underlying device. The source is unusable after
	// Close. Must be safe to call more than once.
	Close() error
}

// ErrorCategory classifies device-initialization failures into
// user-actionable buckets
type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryPermission
	CategoryDeviceNotFound
	CategoryFormatUnsupported
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryPermission:
		return "permission"
	case CategoryDeviceNotFound:
		return "device-not-found"
	case CategoryFormatUnsupported:
		return "format-unsupported"
	default:
		return "unknown"
	}
}

// DeviceError is a structured, user-actionable device failure. It is
// surfaced once at startup; the application is expected to degrade to a
// disabled/mock capture mode rather than abort.
type DeviceError struct {
	Category ErrorCategory
	Op       string // "initialize", "open", "start"
	Err      error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s failed (%s): %v", e.Op, e.Category, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Advice returns troubleshooting guidance for the error category,
// suitable for direct display
func (e *DeviceError) Advice() string {
	switch e.Category {
	case CategoryPermission:
		return "Microphone access was denied. Grant microphone permission to this application in your system settings."
	case CategoryDeviceNotFound:
		return "No microphone was found. Connect an input device or select one in your system sound settings."
	case CategoryFormatUnsupported:
		return "The microphone does not support the requested sample rate. Try 44100 Hz or the device default."
	default:
		return "Audio capture could not be started. Check that another application is not holding the microphone."
	}
}

// classify maps an underlying device error to a category by its message.
// The portaudio binding exposes errors as opaque strings, so substring
// matching is the only classification available.
func classify(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "denied") || strings.Contains(msg, "access"):
		return CategoryPermission
	case strings.Contains(msg, "no default input") || strings.Contains(msg, "no device") || strings.Contains(msg, "device unavailable") || strings.Contains(msg, "not found"):
		return CategoryDeviceNotFound
	case strings.Contains(msg, "sample rate") || strings.Contains(msg, "format") || strings.Contains(msg, "invalid"):
		return CategoryFormatUnsupported
	default:
		return CategoryUnknown
	}
}
