// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"github.com/ethereum/go-ethereum/params"
)

// Gas charged for storage access by native code.
const (
	SloadGas       uint64 = params.SloadGasEIP150 // 200
	SstoreSetGas   uint64 = params.SstoreSetGas   // 20000
	SstoreResetGas uint64 = params.SstoreResetGas // 5000

	// TransientGas is charged for every TLOAD and TSTORE (EIP-1153).
	TransientGas uint64 = params.WarmStorageReadCostEIP2929 // 100
)

// SlotSize is the width of one storage slot in bytes.
const SlotSize = 32
