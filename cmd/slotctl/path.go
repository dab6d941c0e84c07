// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/solc"
	"github.com/roy9527/tempo/solidity"
)

// target is a parsed path expression. The contract storage is addressed as
// one struct rooted at slot 0, so the first selector names the variable.
type target struct {
	contract *layout.Descriptor
	path     []solidity.Selector
	typ      *layout.Descriptor // type at the end of the path
}

// parsePath parses expressions such as
//
//	balances[0x7567d83b7b8d80addcb281a71d54fc7b3364ffed]
//	info.c
//	notes["hello"]
//	history[2]
func parsePath(sl *solc.StorageLayout, expr string) (*target, error) {
	contract, err := sl.Contract()
	if err != nil {
		return nil, err
	}
	name, rest := splitIdent(expr)
	if name == "" {
		return nil, errors.Errorf("path %q: expected variable name", expr)
	}
	v, err := sl.Lookup(name)
	if err != nil {
		return nil, err
	}
	t := &target{
		contract: contract,
		path:     []solidity.Selector{solidity.Field(name)},
		typ:      v.Type,
	}

	for rest != "" {
		switch rest[0] {
		case '.':
			var field string
			field, rest = splitIdent(rest[1:])
			if t.typ.Kind != layout.KindStruct {
				return nil, errors.Errorf("path %q: .%s on %v", expr, field, t.typ)
			}
			ft, ok := fieldType(t.typ, field)
			if !ok {
				return nil, errors.Errorf("path %q: no field %q in %v", expr, field, t.typ)
			}
			t.path = append(t.path, solidity.Field(field))
			t.typ = ft
		case '[':
			var inner string
			if inner, rest, err = splitBracket(rest); err != nil {
				return nil, errors.WithMessagef(err, "path %q", expr)
			}
			switch t.typ.Kind {
			case layout.KindStaticArray, layout.KindDynamicArray:
				i, err := strconv.ParseUint(inner, 0, 64)
				if err != nil {
					return nil, errors.Errorf("path %q: bad index %q", expr, inner)
				}
				t.path = append(t.path, solidity.Index(i))
				t.typ = t.typ.Elem
			case layout.KindMapping:
				if s, err := strconv.Unquote(inner); err == nil {
					inner = s
				}
				raw, err := parseValue(t.typ.Key, inner)
				if err != nil {
					return nil, errors.WithMessagef(err, "path %q: key", expr)
				}
				t.path = append(t.path, solidity.Key(raw))
				t.typ = t.typ.Value
			default:
				return nil, errors.Errorf("path %q: index into %v", expr, t.typ)
			}
		default:
			return nil, errors.Errorf("path %q: unexpected %q", expr, rest)
		}
	}
	return t, nil
}

func fieldType(d *layout.Descriptor, name string) (*layout.Descriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func splitIdent(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// splitBracket splits "[inner]rest". A quoted inner may contain brackets.
func splitBracket(s string) (string, string, error) {
	if len(s) > 1 && s[1] == '"' {
		for i := 2; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case '"':
				if i+1 < len(s) && s[i+1] == ']' {
					return s[1 : i+1], s[i+2:], nil
				}
				return "", "", errors.New("expected ] after quoted key")
			}
		}
		return "", "", errors.New("unterminated quoted key")
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", errors.New("unterminated [")
	}
	return s[1:end], s[end+1:], nil
}
