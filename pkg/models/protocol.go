// Package models defines the protocol, slot and step models shared across the SDS protocol step.
package models

// ProtocolFamily is the only protocol family identifier this step understands.
const ProtocolFamily = "sds-protocol"

// UnconfiguredProtocol is the placeholder protocol name of a step that has not been configured yet.
const UnconfiguredProtocol = "--"

// SlotType is the tag of a protocol input slot. It decides which validator a candidate
// artifact is checked with.
type SlotType string

const (
	SlotTypeIdentifierFile SlotType = "identifier_file" // Path to an existing regular file
	SlotTypeDirectory      SlotType = "directory"       // Path to an existing directory
	SlotTypeDict           SlotType = "dict"            // In-memory key/value structure
)

// DirectoryMimetype is the media type displayed for directory slots.
const DirectoryMimetype = "inode/directory"

// Slot is one declared input position of a protocol.
type Slot struct {
	Type        SlotType `json:"type"                validate:"required,oneof=identifier_file directory dict"`
	Mimetype    string   `json:"mimetype,omitempty"`
	Info        string   `json:"info"`
	Destination string   `json:"destination"`
	Optional    bool     `json:"optional"`
	Value       any      `json:"value"`
}

// IsSet reports whether the slot holds an assigned value.
func (s Slot) IsSet() bool {
	return s.Value != nil
}

// IdentifierFileSlot creates an empty slot expecting a path to a regular file.
func IdentifierFileSlot(mimetype, info, destination string) Slot {
	return Slot{
		Type:        SlotTypeIdentifierFile,
		Mimetype:    mimetype,
		Info:        info,
		Destination: destination,
	}
}

// DirectorySlot creates an empty slot expecting a path to a directory.
func DirectorySlot(info, destination string) Slot {
	return Slot{
		Type:        SlotTypeDirectory,
		Mimetype:    DirectoryMimetype,
		Info:        info,
		Destination: destination,
	}
}

// DictSlot creates an empty slot expecting an in-memory dictionary.
func DictSlot(info, destination string) Slot {
	return Slot{
		Type:        SlotTypeDict,
		Info:        info,
		Destination: destination,
	}
}

// AsOptional returns a copy of the slot that may be left unfilled.
func (s Slot) AsOptional() Slot {
	s.Optional = true

	return s
}

// Protocol is a versioned schema describing the ordered inputs required to produce a dataset.
type Protocol struct {
	ID      string `json:"id"      validate:"required"`
	Version string `json:"version" validate:"required"`
	Name    string `json:"name"    validate:"required"`
	Kind    string `json:"kind,omitempty"`
	Info    string `json:"info"`
	Inputs  []Slot `json:"inputs"  validate:"dive"`
}

// Clone returns a deep copy of the protocol's structure. Slot values are copied by reference.
func (p *Protocol) Clone() *Protocol {
	if p == nil {
		return nil
	}

	c := *p
	c.Inputs = make([]Slot, len(p.Inputs))
	copy(c.Inputs, p.Inputs)

	return &c
}

// Reset clears every slot value.
func (p *Protocol) Reset() {
	for i := range p.Inputs {
		p.Inputs[i].Value = nil
	}
}

// WithAssignment returns a copy of the protocol populated with the given assignment.
// The receiver is left untouched.
func (p *Protocol) WithAssignment(a Assignment) *Protocol {
	c := p.Clone()
	c.Reset()
	a.Apply(c)

	return c
}

// Binding records that the candidate at DataIndex was accepted by the slot at SlotIndex.
type Binding struct {
	SlotIndex int `json:"slot_index"`
	DataIndex int `json:"data_index"`
	Value     any `json:"value"`
}

// Assignment is the outcome of one successful match, ordered by slot index.
type Assignment struct {
	Protocol string    `json:"protocol"`
	Bindings []Binding `json:"bindings"`
}

// Len returns the number of filled slots.
func (a Assignment) Len() int {
	return len(a.Bindings)
}

// Value returns the value bound to the slot at index, if any.
func (a Assignment) Value(slotIndex int) (any, bool) {
	for _, b := range a.Bindings {
		if b.SlotIndex == slotIndex {
			return b.Value, true
		}
	}

	return nil, false
}

// Apply writes every bound value into the protocol's slots.
func (a Assignment) Apply(p *Protocol) {
	for _, b := range a.Bindings {
		p.Inputs[b.SlotIndex].Value = b.Value
	}
}
