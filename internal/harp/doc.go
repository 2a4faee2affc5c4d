// internal/harp/doc.go

// Package harp implements the Harp binary message envelope.
//
// Every exchange with a Harp device is a single framed message:
//
//	[TYPE][LEN][ADDRESS][PORT][PAYLOAD_TYPE][TIMESTAMP(6)?][PAYLOAD...][CHECKSUM]
//
// Where:
//   - TYPE = Read (1), Write (2) or Event (3); bit 3 (0x08) flags an error reply
//   - LEN = number of bytes following LEN, checksum included
//   - PORT = 255 when addressing the device itself
//   - PAYLOAD_TYPE = element type; bit 4 (0x10) flags a timestamped message
//   - TIMESTAMP = uint32 seconds + uint16 ticks of 32 µs, little-endian
//   - CHECKSUM = low byte of the sum of all preceding bytes
//
// The package only frames and unframes. It knows nothing about registers;
// payload interpretation lives in the registers package.
package harp
