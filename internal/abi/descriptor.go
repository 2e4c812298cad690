package abi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
)

// Errors.
var (
	ErrFunctionNotFound = errors.New("function not found in ABI")
	ErrEventNotFound    = errors.New("event not found in ABI")
	ErrUnknownType      = errors.New("unsupported ABI type")
	ErrBuiltinNotFound  = errors.New("built-in ABI not found")
)

// Entry types found in a Cairo 1 ABI.
const (
	TypeFunction    = "function"
	TypeInterface   = "interface"
	TypeImpl        = "impl"
	TypeStruct      = "struct"
	TypeEnum        = "enum"
	TypeConstructor = "constructor"
	TypeEvent       = "event"
)

// Mutability classes.
const (
	View     = "view"
	External = "external"
)

// Event member kinds.
const (
	KindKey    = "key"
	KindData   = "data"
	KindNested = "nested"
	KindStruct = "struct"
	KindEnum   = "enum"
)

// Entry is one item of a Cairo ABI.
type Entry struct {
	Type            string    `json:"type"`
	Name            string    `json:"name"`
	InterfaceName   string    `json:"interface_name,omitempty"`
	Inputs          []Param   `json:"inputs,omitempty"`
	Outputs         []Output  `json:"outputs,omitempty"`
	StateMutability string    `json:"state_mutability,omitempty"`
	Items           []Entry   `json:"items,omitempty"`
	Members         []Member  `json:"members,omitempty"`
	Kind            string    `json:"kind,omitempty"`
	Variants        []Variant `json:"variants,omitempty"`
}

// Param is a named function input.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Output is a function output.
type Output struct {
	Type string `json:"type"`
}

// Member is a struct or event field. Kind is "key" or "data" on events.
type Member struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind,omitempty"`
}

// Variant is an enum variant.
type Variant struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind,omitempty"`
}

// IsView reports whether the function is read-only.
func (e Entry) IsView() bool {
	return e.Type == TypeFunction && e.StateMutability == View
}

// IsExternal reports whether the function mutates state.
func (e Entry) IsExternal() bool {
	return e.Type == TypeFunction && e.StateMutability == External
}

// KeyMembers returns the event fields carried in the event keys.
func (e Entry) KeyMembers() []Member { return e.membersOfKind(KindKey) }

// DataMembers returns the event fields carried in the event data.
func (e Entry) DataMembers() []Member { return e.membersOfKind(KindData) }

func (e Entry) membersOfKind(kind string) []Member {
	var out []Member
	for _, m := range e.Members {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Descriptor is an indexed, read-only view of a contract ABI.
type Descriptor struct {
	entries   []Entry
	functions map[string]*Entry
	events    map[string]*Entry // qualified name -> struct event
	byKey     map[string]string // selector hex -> qualified name
}

// Parse decodes a Cairo ABI JSON document.
func Parse(data []byte) (*Descriptor, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing ABI: %w", err)
	}
	return New(entries)
}

// Load reads a Cairo ABI JSON file from disk.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ABI: %w", err)
	}
	return Parse(data)
}

// New indexes already-decoded ABI entries.
func New(entries []Entry) (*Descriptor, error) {
	d := &Descriptor{
		entries:   entries,
		functions: make(map[string]*Entry),
		events:    make(map[string]*Entry),
		byKey:     make(map[string]string),
	}

	for i := range entries {
		e := &entries[i]
		switch e.Type {
		case TypeFunction:
			d.functions[e.Name] = e
		case TypeInterface:
			for j := range e.Items {
				if e.Items[j].Type == TypeFunction {
					d.functions[e.Items[j].Name] = &e.Items[j]
				}
			}
		case TypeEvent:
			if e.Kind == KindStruct {
				d.events[e.Name] = e
			}
		}
	}

	// Cairo 1 components emit keys[0] = sn_keccak(variant name).
	for _, e := range entries {
		if e.Type != TypeEvent || e.Kind != KindEnum {
			continue
		}
		for _, v := range e.Variants {
			if _, ok := d.events[v.Type]; ok {
				d.byKey[selectorKey(v.Name)] = v.Type
			}
		}
	}
	// Struct events that are not enum variants are keyed by their short name.
	for name := range d.events {
		k := selectorKey(ShortName(name))
		if _, ok := d.byKey[k]; !ok {
			d.byKey[k] = name
		}
	}

	if len(d.functions) == 0 {
		return nil, errors.New("ABI declares no functions")
	}
	return d, nil
}

// Entries returns the raw ABI entries.
func (d *Descriptor) Entries() []Entry { return d.entries }

// Functions returns every callable function, interface items included.
func (d *Descriptor) Functions() []*Entry {
	out := make([]*Entry, 0, len(d.functions))
	for _, e := range d.functions {
		out = append(out, e)
	}
	return out
}

// Function finds a function by name.
func (d *Descriptor) Function(name string) (*Entry, error) {
	e, ok := d.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	return e, nil
}

// Event finds a struct event by its fully-qualified name.
func (d *Descriptor) Event(qualified string) (*Entry, error) {
	e, ok := d.events[qualified]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, qualified)
	}
	return e, nil
}

// EventNameForKey maps an emitted keys[0] selector to a qualified event name.
func (d *Descriptor) EventNameForKey(key *big.Int) (string, bool) {
	if key == nil {
		return "", false
	}
	name, ok := d.byKey["0x"+key.Text(16)]
	return name, ok
}

// CalldataWidth returns how many felts the function's inputs occupy.
func (d *Descriptor) CalldataWidth(fn *Entry) (int, error) {
	total := 0
	for _, p := range fn.Inputs {
		w, err := TypeWidth(p.Type)
		if err != nil {
			return 0, fmt.Errorf("input %s: %w", p.Name, err)
		}
		total += w
	}
	return total, nil
}

// ShortName strips the module path from a qualified name:
// "starknet_erc20::erc_20::ERC20::Transfer" -> "Transfer".
func ShortName(qualified string) string {
	if i := strings.LastIndex(qualified, "::"); i >= 0 {
		return qualified[i+2:]
	}
	return qualified
}

// TypeWidth returns the number of felts a core type is serialized into.
func TypeWidth(typ string) (int, error) {
	switch typ {
	case TypeU256:
		return 2, nil
	case TypeFelt, TypeAddress, TypeBool, TypeU8, TypeU16, TypeU32, TypeU64, TypeU128:
		return 1, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownType, typ)
}

func selectorKey(name string) string {
	return "0x" + Selector(name).Text(16)
}
