// internal/analoginput/info.go
package analoginput

import (
	"context"
	"fmt"

	"github.com/tamzrod/harp-analoginput/internal/registers"
)

// DeviceInfo is the identity block of the Harp core registers.
type DeviceInfo struct {
	WhoAmI          uint16
	HardwareVersion Version
	AssemblyVersion uint8
	CoreVersion     Version
	FirmwareVersion Version
	SerialNumber    uint16
	Name            string
}

type Version struct {
	Major uint8
	Minor uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Info reads the identity block one register at a time.
func (d *Device) Info(ctx context.Context) (DeviceInfo, error) {
	var (
		info DeviceInfo
		err  error
	)

	read8 := func(c *registers.Codec[uint8], dst *uint8) {
		if err != nil {
			return
		}
		*dst, err = Read(ctx, d, c)
	}

	if info.WhoAmI, err = Read(ctx, d, registers.WhoAmI); err != nil {
		return DeviceInfo{}, err
	}

	read8(registers.HardwareVersionHigh, &info.HardwareVersion.Major)
	read8(registers.HardwareVersionLow, &info.HardwareVersion.Minor)
	read8(registers.AssemblyVersion, &info.AssemblyVersion)
	read8(registers.CoreVersionHigh, &info.CoreVersion.Major)
	read8(registers.CoreVersionLow, &info.CoreVersion.Minor)
	read8(registers.FirmwareVersionHigh, &info.FirmwareVersion.Major)
	read8(registers.FirmwareVersionLow, &info.FirmwareVersion.Minor)
	if err != nil {
		return DeviceInfo{}, err
	}

	if info.SerialNumber, err = Read(ctx, d, registers.SerialNumber); err != nil {
		return DeviceInfo{}, err
	}
	if info.Name, err = Read(ctx, d, registers.DeviceName); err != nil {
		return DeviceInfo{}, err
	}

	return info, nil
}
