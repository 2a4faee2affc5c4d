// internal/registers/table.go
package registers

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/harp-analoginput/internal/harp"
)

//go:embed device.yml
var deviceYAML []byte

//go:embed device.schema.json
var deviceSchemaJSON string

// DeviceFile is the declarative register map.
type DeviceFile struct {
	Device    string                   `yaml:"device"`
	WhoAmI    uint16                   `yaml:"whoAmI"`
	Registers map[string]RegisterEntry `yaml:"registers"`
}

type RegisterEntry struct {
	Address     uint8    `yaml:"address"`
	Type        string   `yaml:"type"`
	Length      int      `yaml:"length"` // 0 means 1
	Access      []string `yaml:"access"`
	MaskType    string   `yaml:"maskType"`
	Description string   `yaml:"description"`
}

// Table maps register addresses and names to codecs.
// It is built once and never mutated afterwards.
type Table struct {
	byAddr  map[uint8]Register
	byName  map[string]Register // lower-case keys
	ordered []Register
}

// NewTable builds the AnalogInput table from the embedded register map.
func NewTable() (*Table, error) {
	return buildTable(deviceYAML)
}

func buildTable(data []byte) (*Table, error) {
	file, err := LoadDeviceFile(data)
	if err != nil {
		return nil, err
	}
	if file.WhoAmI != IdentityCode {
		return nil, fmt.Errorf("registers: register map is for device %d, want %d", file.WhoAmI, IdentityCode)
	}

	known := make(map[uint8]Register)
	for _, c := range codecs() {
		known[c.Descriptor().Address] = c
	}

	t := &Table{
		byAddr: make(map[uint8]Register, len(file.Registers)),
		byName: make(map[string]Register, len(file.Registers)),
	}

	// map iteration order is random; sort names so errors are stable
	names := make([]string, 0, len(file.Registers))
	for name := range file.Registers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := file.Registers[name]

		if prev, dup := t.byAddr[e.Address]; dup {
			return nil, fmt.Errorf("registers: %s and %s share address %d",
				prev.Descriptor().Name, name, e.Address)
		}

		c, ok := known[e.Address]
		if !ok {
			return nil, fmt.Errorf("registers: %s at address %d has no codec", name, e.Address)
		}
		if err := checkEntry(name, e, c.Descriptor()); err != nil {
			return nil, err
		}

		t.byAddr[e.Address] = c
		t.byName[strings.ToLower(name)] = c
		t.ordered = append(t.ordered, c)
	}

	for addr, c := range known {
		if _, ok := t.byAddr[addr]; !ok {
			return nil, fmt.Errorf("registers: %s (address %d) missing from register map",
				c.Descriptor().Name, addr)
		}
	}

	sort.Slice(t.ordered, func(i, j int) bool {
		return t.ordered[i].Descriptor().Address < t.ordered[j].Descriptor().Address
	})

	return t, nil
}

// checkEntry compares a declared register against its compiled codec.
func checkEntry(name string, e RegisterEntry, d Descriptor) error {
	if name != d.Name {
		return fmt.Errorf("registers: address %d is %s in the map but %s in code", e.Address, name, d.Name)
	}

	typ, err := harp.ParsePayloadType(e.Type)
	if err != nil {
		return fmt.Errorf("registers: %s: %w", name, err)
	}
	if typ != d.Type {
		return fmt.Errorf("registers: %s: map says %s, code says %s", name, typ, d.Type)
	}

	length := e.Length
	if length == 0 {
		length = 1
	}
	if length != d.Length {
		return fmt.Errorf("registers: %s: map says length %d, code says %d", name, length, d.Length)
	}

	var access Access
	for _, a := range e.Access {
		switch a {
		case "Read":
			access |= AccessRead
		case "Write":
			access |= AccessWrite
		case "Event":
			access |= AccessEvent
		}
	}
	if access != d.Access {
		return fmt.Errorf("registers: %s: map says access %s, code says %s", name, access, d.Access)
	}

	return nil
}

// LoadDeviceFile decodes a register map and validates it against the
// embedded JSON schema.
func LoadDeviceFile(data []byte) (*DeviceFile, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	// the validator wants JSON values (float64 numbers, string-keyed maps)
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registers: parse register map: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("registers: convert register map: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("registers: convert register map: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("registers: register map schema validation failed: %w", err)
	}

	var file DeviceFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("registers: decode register map: %w", err)
	}
	return &file, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("device.schema.json", strings.NewReader(deviceSchemaJSON)); err != nil {
		return nil, fmt.Errorf("registers: add schema resource: %w", err)
	}
	schema, err := compiler.Compile("device.schema.json")
	if err != nil {
		return nil, fmt.Errorf("registers: compile schema: %w", err)
	}
	return schema, nil
}

// ---- queries ----

// Lookup returns the descriptor at addr.
func (t *Table) Lookup(addr uint8) (Descriptor, error) {
	r, err := t.Register(addr)
	if err != nil {
		return Descriptor{}, err
	}
	return r.Descriptor(), nil
}

// Register returns the codec at addr, or *UnknownRegisterError.
func (t *Table) Register(addr uint8) (Register, error) {
	r, ok := t.byAddr[addr]
	if !ok {
		return nil, &UnknownRegisterError{Address: addr}
	}
	return r, nil
}

// ByName looks a register up by name, ignoring case.
func (t *Table) ByName(name string) (Register, bool) {
	r, ok := t.byName[strings.ToLower(name)]
	return r, ok
}

// Resolve accepts a register name or a decimal/hex address.
func (t *Table) Resolve(ref string) (Register, error) {
	if r, ok := t.ByName(ref); ok {
		return r, nil
	}
	n, err := strconv.ParseUint(ref, 0, 8)
	if err != nil {
		return nil, fmt.Errorf("registers: unknown register %q", ref)
	}
	return t.Register(uint8(n))
}

// All returns every register in address order.
func (t *Table) All() []Register {
	return append([]Register(nil), t.ordered...)
}
