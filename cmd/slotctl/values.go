// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/roy9527/tempo/codec"
	"github.com/roy9527/tempo/layout"
	"github.com/roy9527/tempo/thor"
)

// parseValue converts the command line form of a value of type d into the
// byte form the engine takes.
func parseValue(d *layout.Descriptor, text string) ([]byte, error) {
	switch d.Kind {
	case layout.KindPrimitive:
		switch {
		case d.IsBool:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return nil, errors.Errorf("bad bool %q", text)
			}
			return codec.EncodeBool(b), nil
		case d.IsAddress:
			addr, err := thor.ParseAddress(text)
			if err != nil {
				return nil, err
			}
			return codec.EncodeAddress(*addr), nil
		case d.FixedBytes:
			b, err := hexutil.Decode(text)
			if err != nil {
				return nil, errors.Wrapf(err, "bad %v %q", d, text)
			}
			if len(b) > int(d.Width) {
				return nil, errors.Wrapf(codec.ErrValueTooWide, "%d bytes for %v", len(b), d)
			}
			// bytesN values are left aligned
			out := make([]byte, d.Width)
			copy(out, b)
			return out, nil
		case d.Signed:
			v, ok := new(big.Int).SetString(text, 0)
			if !ok {
				return nil, errors.Errorf("bad %v %q", d, text)
			}
			return codec.EncodeInt(v, d.Width)
		}
		v, err := parseUint(text)
		if err != nil {
			return nil, errors.Wrapf(err, "bad %v %q", d, text)
		}
		return codec.EncodeUint(v, d.Width)
	case layout.KindBytes:
		if d.IsString {
			return []byte(text), nil
		}
		return hexutil.Decode(text)
	}
	// aggregates take the concatenation of their leaves
	return hexutil.Decode(text)
}

func parseUint(text string) (*uint256.Int, error) {
	v, ok := new(big.Int).SetString(text, 0)
	if !ok || v.Sign() < 0 {
		return nil, errors.New("not an unsigned integer")
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, codec.ErrValueTooWide
	}
	return u, nil
}

// formatValue renders a value read from storage.
func formatValue(d *layout.Descriptor, b []byte) string {
	switch d.Kind {
	case layout.KindPrimitive:
		switch {
		case d.IsBool:
			return strconv.FormatBool(codec.DecodeBool(b))
		case d.IsAddress:
			return codec.DecodeAddress(b).String()
		case d.FixedBytes:
			return hexutil.Encode(b)
		case d.Signed:
			return codec.DecodeInt(b).String()
		}
		return codec.DecodeUint(b).Dec()
	case layout.KindBytes:
		if d.IsString {
			return strconv.Quote(string(b))
		}
	}
	return hexutil.Encode(b)
}
