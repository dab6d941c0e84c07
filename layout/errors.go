// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package layout

import "github.com/pkg/errors"

var (
	// ErrUnsupported is returned when a type combination has no storage rule,
	// e.g. a mapping used as an array element or as a mapping key.
	ErrUnsupported = errors.New("layout: unsupported type")
	// ErrMalformed is returned for internally inconsistent descriptors.
	ErrMalformed = errors.New("layout: malformed type")
)
