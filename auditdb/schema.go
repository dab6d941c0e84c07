// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auditdb

const auditTableSchema = `
CREATE TABLE IF NOT EXISTS audit (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	caller BLOB(20) NOT NULL,
	contract BLOB(20) NOT NULL,
	slot BLOB(32) NOT NULL,
	byteOffset INTEGER NOT NULL,
	byteLength INTEGER NOT NULL,
	oldValue BLOB(32) NOT NULL,
	newValue BLOB(32) NOT NULL
);

CREATE INDEX IF NOT EXISTS contractSlotIndex ON audit(contract, slot);
CREATE INDEX IF NOT EXISTS callerIndex ON audit(caller);
`
