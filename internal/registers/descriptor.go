// internal/registers/descriptor.go
package registers

import (
	"strings"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

// Access describes which message types a register answers to.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite
	AccessEvent
)

// Can reports whether every bit of x is granted.
func (a Access) Can(x Access) bool {
	return a&x == x
}

func (a Access) String() string {
	var parts []string
	if a.Can(AccessRead) {
		parts = append(parts, "Read")
	}
	if a.Can(AccessWrite) {
		parts = append(parts, "Write")
	}
	if a.Can(AccessEvent) {
		parts = append(parts, "Event")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Descriptor is the fixed wire shape of one register.
type Descriptor struct {
	Address     uint8
	Name        string
	Type        harp.PayloadType
	Length      int // element count
	Access      Access
	Description string
}

// Size is the payload length in bytes.
func (d Descriptor) Size() int {
	return d.Length * d.Type.ElementSize()
}

// WordCount is the number of 16-bit words the payload occupies once mirrored.
// Byte-wide elements take one word each.
func (d Descriptor) WordCount() int {
	per := d.Type.ElementSize() / 2
	if per == 0 {
		per = 1
	}
	return d.Length * per
}
