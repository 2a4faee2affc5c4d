// internal/config/normalize.go
package config

import "github.com/tamzrod/harp-analoginput/internal/status"

const (
	DefaultBaudRate  = 1000000
	DefaultTimeoutMs = 500
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.BaudRate == 0 {
		cfg.Device.BaudRate = DefaultBaudRate
	}
	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = DefaultTimeoutMs
	}

	for i := range cfg.Mirror.Targets {
		t := &cfg.Mirror.Targets[i]
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultTimeoutMs
		}
	}

	s := cfg.Mirror.Status
	if s == nil {
		return
	}

	// ASCII already validated
	if len(s.DeviceName) > status.DeviceNameMaxChars {
		s.DeviceName = s.DeviceName[:status.DeviceNameMaxChars]
	}
}
