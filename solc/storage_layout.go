// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solc reads the storageLayout output of the Solidity compiler into
// type descriptors.
package solc

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

// Entry is a state variable or a struct member.
type Entry struct {
	Label  string `json:"label"`
	Offset uint8  `json:"offset"`
	Slot   string `json:"slot"`
	Type   string `json:"type"`
}

// Type is an entry of the types table.
type Type struct {
	Encoding      string  `json:"encoding"`
	Label         string  `json:"label"`
	NumberOfBytes string  `json:"numberOfBytes"`
	Base          string  `json:"base,omitempty"`
	Key           string  `json:"key,omitempty"`
	Value         string  `json:"value,omitempty"`
	Members       []Entry `json:"members,omitempty"`
}

// StorageLayout is the storageLayout object of one contract.
type StorageLayout struct {
	Storage []Entry         `json:"storage"`
	Types   map[string]Type `json:"types"`
}

// Variable is a state variable with its declared placement.
type Variable struct {
	Name   string
	Slot   thor.Bytes32
	Offset uint8
	Type   *layout.Descriptor
}

// Parse decodes a storageLayout object.
func Parse(data []byte) (*StorageLayout, error) {
	var sl StorageLayout
	if err := json.Unmarshal(data, &sl); err != nil {
		return nil, errors.Wrap(err, "decode storage layout")
	}
	return &sl, nil
}

// Load reads a storageLayout object from a file.
func Load(path string) (*StorageLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read storage layout")
	}
	return Parse(data)
}

// Variables returns the state variables in declaration order.
func (sl *StorageLayout) Variables() ([]Variable, error) {
	vars := make([]Variable, 0, len(sl.Storage))
	for _, e := range sl.Storage {
		d, err := sl.Descriptor(e.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "variable %s", e.Label)
		}
		slot, err := parseSlot(e.Slot)
		if err != nil {
			return nil, errors.WithMessagef(err, "variable %s", e.Label)
		}
		vars = append(vars, Variable{Name: e.Label, Slot: slot, Offset: e.Offset, Type: d})
	}
	return vars, nil
}

// Lookup returns the variable with the given name.
func (sl *StorageLayout) Lookup(name string) (Variable, error) {
	for _, e := range sl.Storage {
		if e.Label == name {
			d, err := sl.Descriptor(e.Type)
			if err != nil {
				return Variable{}, err
			}
			slot, err := parseSlot(e.Slot)
			if err != nil {
				return Variable{}, err
			}
			return Variable{Name: e.Label, Slot: slot, Offset: e.Offset, Type: d}, nil
		}
	}
	return Variable{}, errors.Errorf("no state variable %q", name)
}

// Contract returns the state variables as one struct. Contract storage is
// laid out like a struct rooted at slot 0.
func (sl *StorageLayout) Contract() (*layout.Descriptor, error) {
	fields := make([]layout.Field, 0, len(sl.Storage))
	for _, e := range sl.Storage {
		d, err := sl.Descriptor(e.Type)
		if err != nil {
			return nil, errors.WithMessagef(err, "variable %s", e.Label)
		}
		fields = append(fields, layout.Member(e.Label, d))
	}
	return layout.Struct(fields...), nil
}

// Descriptor converts the type with the given id.
func (sl *StorageLayout) Descriptor(id string) (*layout.Descriptor, error) {
	t, ok := sl.Types[id]
	if !ok {
		return nil, errors.Wrapf(layout.ErrMalformed, "unknown type id %s", id)
	}
	switch t.Encoding {
	case "inplace":
		switch {
		case len(t.Members) > 0:
			fields := make([]layout.Field, 0, len(t.Members))
			for _, m := range t.Members {
				d, err := sl.Descriptor(m.Type)
				if err != nil {
					return nil, errors.WithMessagef(err, "member %s", m.Label)
				}
				fields = append(fields, layout.Member(m.Label, d))
			}
			return layout.Struct(fields...), nil
		case t.Base != "":
			elem, err := sl.Descriptor(t.Base)
			if err != nil {
				return nil, err
			}
			length, err := arrayLength(t.Label)
			if err != nil {
				return nil, err
			}
			return layout.Array(elem, length), nil
		}
		return primitive(t)
	case "dynamic_array":
		elem, err := sl.Descriptor(t.Base)
		if err != nil {
			return nil, err
		}
		return layout.Slice(elem), nil
	case "mapping":
		key, err := sl.Descriptor(t.Key)
		if err != nil {
			return nil, err
		}
		value, err := sl.Descriptor(t.Value)
		if err != nil {
			return nil, err
		}
		return layout.Map(key, value), nil
	case "bytes":
		if t.Label == "string" {
			return layout.String(), nil
		}
		return layout.DynamicBytes(), nil
	}
	return nil, errors.Wrapf(layout.ErrUnsupported, "encoding %q of %s", t.Encoding, id)
}

func primitive(t Type) (*layout.Descriptor, error) {
	size, err := strconv.ParseUint(t.NumberOfBytes, 10, 8)
	if err != nil || size == 0 || size > thor.SlotSize {
		return nil, errors.Wrapf(layout.ErrMalformed, "%s of %q bytes", t.Label, t.NumberOfBytes)
	}
	label := t.Label
	switch {
	case label == "bool":
		return layout.Bool(), nil
	case label == "address", label == "address payable",
		strings.HasPrefix(label, "contract "), strings.HasPrefix(label, "interface "):
		return layout.Address(), nil
	case strings.HasPrefix(label, "uint"), strings.HasPrefix(label, "enum "):
		return layout.Uint(int(size) * 8), nil
	case strings.HasPrefix(label, "int"):
		return layout.Int(int(size) * 8), nil
	case strings.HasPrefix(label, "bytes"):
		return layout.FixedBytes(int(size)), nil
	}
	// user defined value types and anything else of the right width
	return layout.Uint(int(size) * 8), nil
}

// arrayLength returns the outermost length of a static array label such as
// "uint8[3][2]".
func arrayLength(label string) (uint64, error) {
	open := strings.LastIndexByte(label, '[')
	if open < 0 || !strings.HasSuffix(label, "]") {
		return 0, errors.Wrapf(layout.ErrMalformed, "array label %q", label)
	}
	n, err := strconv.ParseUint(label[open+1:len(label)-1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(layout.ErrMalformed, "array label %q", label)
	}
	return n, nil
}

func parseSlot(s string) (thor.Bytes32, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return thor.Bytes32{}, errors.Wrapf(layout.ErrMalformed, "slot %q", s)
	}
	return thor.Uint256ToBytes32(v), nil
}
