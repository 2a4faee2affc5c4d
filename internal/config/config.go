// internal/config/config.go
package config

type Config struct {
	Device DeviceConfig `yaml:"device"`
	Mirror MirrorConfig `yaml:"mirror"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Simulate replaces the serial port with an in-process device.
	Simulate bool `yaml:"simulate"`
}

// ---- MIRROR ----

type MirrorConfig struct {
	IntervalMs int `yaml:"interval_ms"`

	// Registers are names or addresses, mirrored in the listed order.
	// Each register takes Descriptor.WordCount() consecutive holding registers.
	Registers []string `yaml:"registers"`

	Targets []TargetConfig `yaml:"targets"`

	// Device status block (optional, opt-in)
	Status *StatusConfig `yaml:"status"`
}

// ---- TARGET ----

type TargetConfig struct {
	ID        uint32 `yaml:"id"`
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Offset    uint16 `yaml:"offset"` // first holding register of the mirror
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STATUS ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
}
