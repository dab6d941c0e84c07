// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gate

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/roy9527/tempo/thor"
)

type policyFile struct {
	CheckReads bool       `yaml:"check_reads"`
	Rules      []ruleFile `yaml:"rules"`
}

type ruleFile struct {
	Caller   string   `yaml:"caller"`
	Contract string   `yaml:"contract"`
	From     string   `yaml:"from"`
	To       string   `yaml:"to"`
	Access   []string `yaml:"access"`
}

// LoadPolicy reads a YAML capability policy from path.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read policy")
	}
	return ParsePolicy(data)
}

// ParsePolicy parses a YAML capability policy:
//
//	check_reads: true
//	rules:
//	  - caller: "0x..."     # omitted or "*" for any caller
//	    contract: "0x..."
//	    from: "0"           # decimal or 0x-prefixed hex, defaults to 0
//	    to: "0xff"          # defaults to 2^256-1
//	    access: [read, write]
func ParsePolicy(data []byte) (*Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrap(err, "decode policy")
	}
	table := NewTable()
	for i, rf := range pf.Rules {
		rule, err := rf.rule()
		if err != nil {
			return nil, errors.WithMessagef(err, "rule %d", i)
		}
		table.Add(rule)
	}
	return &Policy{Table: table, CheckReads: pf.CheckReads}, nil
}

func (rf *ruleFile) rule() (Rule, error) {
	var rule Rule
	if rf.Caller != "" && rf.Caller != "*" {
		caller, err := thor.ParseAddress(rf.Caller)
		if err != nil {
			return Rule{}, errors.Wrap(err, "caller")
		}
		rule.Caller = caller
	}
	contract, err := thor.ParseAddress(rf.Contract)
	if err != nil {
		return Rule{}, errors.Wrap(err, "contract")
	}
	rule.Contract = *contract

	rule.Slots = AllSlots
	if rf.From != "" {
		if rule.Slots.From, err = ParseSlot(rf.From); err != nil {
			return Rule{}, errors.WithMessage(err, "from")
		}
	}
	if rf.To != "" {
		if rule.Slots.To, err = ParseSlot(rf.To); err != nil {
			return Rule{}, errors.WithMessage(err, "to")
		}
	}
	if !rule.Slots.Contains(Single(rule.Slots.From)) {
		return Rule{}, errors.New("empty slot range")
	}

	for _, a := range rf.Access {
		switch strings.ToLower(a) {
		case "read":
			rule.Read = true
		case "write":
			rule.Write = true
		default:
			return Rule{}, errors.Errorf("unknown access %q", a)
		}
	}
	return rule, nil
}

// ParseSlot parses a slot number given in decimal or 0x-prefixed hex.
func ParseSlot(s string) (thor.Bytes32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		h := s[2:]
		if len(h)%2 == 1 {
			h = "0" + h
		}
		b, err := hex.DecodeString(h)
		if err != nil || len(b) == 0 || len(b) > thor.SlotSize {
			return thor.Bytes32{}, errors.Errorf("invalid hex slot %q", s)
		}
		return thor.BytesToBytes32(b), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return thor.Bytes32{}, errors.Wrapf(err, "invalid slot %q", s)
	}
	return thor.Uint256ToBytes32(v), nil
}
