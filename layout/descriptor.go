// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the variant of a type descriptor or a resolved node.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindStruct
	KindStaticArray
	KindDynamicArray
	KindMapping
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStruct:
		return "struct"
	case KindStaticArray:
		return "static-array"
	case KindDynamicArray:
		return "dynamic-array"
	case KindMapping:
		return "mapping"
	case KindBytes:
		return "bytes"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is a named member of a struct descriptor.
type Field struct {
	Name string
	Type *Descriptor
}

// Member is shorthand for Field{Name: name, Type: t}.
func Member(name string, t *Descriptor) Field {
	return Field{Name: name, Type: t}
}

// Descriptor describes a Solidity storage type. Only the fields relevant to
// Kind are meaningful.
type Descriptor struct {
	Kind Kind

	// primitive
	Width      uint8 // in bytes, 1..32
	Signed     bool
	IsAddress  bool
	IsBool     bool
	FixedBytes bool // bytesN, right padded when used as a mapping key

	// bytes
	IsString bool

	Fields []Field     // struct
	Elem   *Descriptor // static and dynamic arrays
	Length uint64      // static array
	Key    *Descriptor // mapping
	Value  *Descriptor // mapping
}

// width converts a size to a primitive width. Sizes outside 1..32 bytes
// give width 0, which Validate rejects.
func width(size, unit int) uint8 {
	if size < unit || size > 32*unit || size%unit != 0 {
		return 0
	}
	return uint8(size / unit)
}

// Uint returns the descriptor of uintN. N must be a multiple of 8 in 8..256.
func Uint(bits int) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Width: width(bits, 8)}
}

// Int returns the descriptor of intN.
func Int(bits int) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Width: width(bits, 8), Signed: true}
}

// Address returns the descriptor of address.
func Address() *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Width: 20, IsAddress: true}
}

// Bool returns the descriptor of bool.
func Bool() *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Width: 1, IsBool: true}
}

// FixedBytes returns the descriptor of bytesN.
func FixedBytes(n int) *Descriptor {
	return &Descriptor{Kind: KindPrimitive, Width: width(n, 1), FixedBytes: true}
}

// DynamicBytes returns the descriptor of bytes.
func DynamicBytes() *Descriptor {
	return &Descriptor{Kind: KindBytes}
}

// String returns the descriptor of string.
func String() *Descriptor {
	return &Descriptor{Kind: KindBytes, IsString: true}
}

// Struct returns a struct descriptor with fields in declaration order.
func Struct(fields ...Field) *Descriptor {
	return &Descriptor{Kind: KindStruct, Fields: fields}
}

// Array returns the descriptor of elem[length].
func Array(elem *Descriptor, length uint64) *Descriptor {
	return &Descriptor{Kind: KindStaticArray, Elem: elem, Length: length}
}

// Slice returns the descriptor of elem[].
func Slice(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindDynamicArray, Elem: elem}
}

// Map returns the descriptor of mapping(key => value).
func Map(key, value *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindMapping, Key: key, Value: value}
}

// Packable reports whether values of the type may share a slot with siblings.
func (d *Descriptor) Packable() bool {
	return d.Kind == KindPrimitive && d.Width < 32
}

// Dynamic reports whether the type's data lives at hashed locations.
func (d *Descriptor) Dynamic() bool {
	return d.Kind == KindDynamicArray || d.Kind == KindMapping || d.Kind == KindBytes
}

// String returns the canonical type string, e.g. "mapping(address=>uint256)".
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.write(&sb)
	return sb.String()
}

func (d *Descriptor) write(sb *strings.Builder) {
	if d == nil {
		sb.WriteString("<nil>")
		return
	}
	switch d.Kind {
	case KindPrimitive:
		switch {
		case d.IsAddress:
			sb.WriteString("address")
		case d.IsBool:
			sb.WriteString("bool")
		case d.FixedBytes:
			fmt.Fprintf(sb, "bytes%d", d.Width)
		case d.Signed:
			fmt.Fprintf(sb, "int%d", int(d.Width)*8)
		default:
			fmt.Fprintf(sb, "uint%d", int(d.Width)*8)
		}
	case KindStruct:
		sb.WriteString("struct{")
		for i, f := range d.Fields {
			if i > 0 {
				sb.WriteByte(';')
			}
			f.Type.write(sb)
			sb.WriteByte(' ')
			sb.WriteString(f.Name)
		}
		sb.WriteByte('}')
	case KindStaticArray:
		d.Elem.write(sb)
		fmt.Fprintf(sb, "[%d]", d.Length)
	case KindDynamicArray:
		d.Elem.write(sb)
		sb.WriteString("[]")
	case KindMapping:
		sb.WriteString("mapping(")
		d.Key.write(sb)
		sb.WriteString("=>")
		d.Value.write(sb)
		sb.WriteByte(')')
	case KindBytes:
		if d.IsString {
			sb.WriteString("string")
		} else {
			sb.WriteString("bytes")
		}
	default:
		sb.WriteString(d.Kind.String())
	}
}

// Validate checks the descriptor recursively. It returns an error wrapping
// ErrMalformed or ErrUnsupported.
func (d *Descriptor) Validate() error {
	if d == nil {
		return errors.Wrap(ErrMalformed, "nil descriptor")
	}
	switch d.Kind {
	case KindPrimitive:
		if d.Width == 0 || d.Width > 32 {
			return errors.Wrapf(ErrMalformed, "primitive width %d", d.Width)
		}
		flags := 0
		for _, f := range []bool{d.IsAddress, d.IsBool, d.FixedBytes} {
			if f {
				flags++
			}
		}
		if flags > 1 || (flags == 1 && d.Signed) {
			return errors.Wrapf(ErrMalformed, "conflicting primitive flags on %v", d)
		}
		if d.IsAddress && d.Width != 20 {
			return errors.Wrapf(ErrMalformed, "address width %d", d.Width)
		}
		if d.IsBool && d.Width != 1 {
			return errors.Wrapf(ErrMalformed, "bool width %d", d.Width)
		}
	case KindStruct:
		if len(d.Fields) == 0 {
			return errors.Wrap(ErrMalformed, "struct without fields")
		}
		seen := make(map[string]struct{}, len(d.Fields))
		for _, f := range d.Fields {
			if f.Name == "" {
				return errors.Wrap(ErrMalformed, "unnamed struct field")
			}
			if _, dup := seen[f.Name]; dup {
				return errors.Wrapf(ErrMalformed, "duplicate struct field %q", f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := f.Type.Validate(); err != nil {
				return errors.WithMessagef(err, "field %s", f.Name)
			}
		}
	case KindStaticArray, KindDynamicArray:
		if d.Kind == KindStaticArray && d.Length == 0 {
			return errors.Wrap(ErrMalformed, "zero length static array")
		}
		if err := d.Elem.Validate(); err != nil {
			return errors.WithMessage(err, "array element")
		}
		if d.Elem.Kind == KindMapping {
			return errors.Wrapf(ErrUnsupported, "mapping as array element in %v", d)
		}
	case KindMapping:
		if err := d.Key.Validate(); err != nil {
			return errors.WithMessage(err, "mapping key")
		}
		if d.Key.Kind != KindPrimitive && d.Key.Kind != KindBytes {
			return errors.Wrapf(ErrUnsupported, "%v as mapping key", d.Key)
		}
		if err := d.Value.Validate(); err != nil {
			return errors.WithMessage(err, "mapping value")
		}
	case KindBytes:
	default:
		return errors.Wrapf(ErrMalformed, "unknown kind %v", d.Kind)
	}
	return nil
}
