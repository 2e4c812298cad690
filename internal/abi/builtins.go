package abi

import "sort"

// Builtin describes a contract interface compiled into the binary. New
// built-ins register themselves from init() in their own <name>_abi.go file.
type Builtin struct {
	ID          string // machine key, e.g. "erc20"
	Name        string // human label
	Description string
	Entries     []Entry
}

var builtinRegistry = map[string]Builtin{}

// RegisterBuiltin adds a built-in ABI to the registry.
func RegisterBuiltin(b Builtin) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (Builtin, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// BuiltinDescriptor indexes a built-in ABI.
func BuiltinDescriptor(id string) (*Descriptor, error) {
	b, ok := builtinRegistry[id]
	if !ok {
		return nil, ErrBuiltinNotFound
	}
	return New(b.Entries)
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
