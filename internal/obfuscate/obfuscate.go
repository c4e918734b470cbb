package obfuscate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"scir/internal/ir"
)

// ErrEmptySalt is returned when a run is attempted without a salt. An
// unsalted renaming would be trivially reversible by rainbow table.
var ErrEmptySalt = errors.New("obfuscation salt must not be empty")

// Run renames the module's identifiers according to the config and returns
// the renamed copy together with the mapping. The input module is never
// touched, and on any error nothing is returned: a partially renamed module
// does not exist. Only identifier strings change; blocks, values, types,
// and instructions are byte-for-byte the module's own.
func Run(m *ir.Module, cfg Config) (*ir.Module, *Mapping, error) {
	if cfg.Salt == "" {
		return nil, nil, ErrEmptySalt
	}
	n := &namer{salt: []byte(cfg.Salt), retries: cfg.MaxCollisionRetries, mapping: NewMapping(cfg.Level)}

	contract, err := n.rename("contract", "c_", m.Name)
	if err != nil {
		return nil, nil, err
	}

	funcNames := make(map[string]string)
	eventNames := make(map[string]string)
	slotNames := make(map[string]string)
	if cfg.Level >= LevelFunctions {
		for _, f := range m.Functions {
			obf, err := n.rename("function", "f_", f.Name)
			if err != nil {
				return nil, nil, err
			}
			funcNames[f.Name] = obf
		}
		for _, e := range m.Events {
			obf, err := n.rename("event", "e_", e.Name)
			if err != nil {
				return nil, nil, err
			}
			eventNames[e.Name] = obf
		}
	}
	if cfg.Level >= LevelFull {
		for _, s := range m.Slots {
			if s.Name == "" {
				continue
			}
			obf, err := n.rename("slot", "s_", s.Name)
			if err != nil {
				return nil, nil, err
			}
			slotNames[s.Name] = obf
		}
	}

	out := m.Clone()
	out.Name = contract
	for i := range out.Slots {
		if obf, ok := slotNames[out.Slots[i].Name]; ok {
			out.Slots[i].Name = obf
		}
	}
	for i := range out.Events {
		if obf, ok := eventNames[out.Events[i].Name]; ok {
			out.Events[i].Name = obf
		}
	}
	for _, f := range out.Functions {
		if obf, ok := funcNames[f.Name]; ok {
			f.Name = obf
		}
		if cfg.Level >= LevelFull {
			// Parameters carry no information worth hashing; they become
			// positional and are not recorded in the mapping.
			for i := range f.Params {
				f.Params[i].Name = fmt.Sprintf("p%d", i)
			}
		}
		for _, blk := range f.Blocks {
			for _, in := range blk.Instrs {
				switch in.Op {
				case ir.OpCall:
					if obf, ok := funcNames[in.Callee]; ok {
						in.Callee = obf
					}
				case ir.OpLog:
					if obf, ok := eventNames[in.Callee]; ok {
						in.Callee = obf
					}
				}
			}
		}
	}
	return out, n.mapping, nil
}

// namer derives obfuscated names. HMAC-SHA256 keyed by the salt digests
// "kind:name"; the first 12 hex characters keep names short while leaving
// collisions rare enough that the retry suffix almost never appears.
type namer struct {
	salt    []byte
	retries int
	mapping *Mapping
}

func (n *namer) rename(kind, prefix, original string) (string, error) {
	mac := hmac.New(sha256.New, n.salt)
	fmt.Fprintf(mac, "%s:%s", kind, original)
	digest := hex.EncodeToString(mac.Sum(nil))

	base := prefix + digest[:12]
	candidate := base
	for attempt := 0; ; attempt++ {
		if err := n.mapping.Add(candidate, original); err == nil {
			return candidate, nil
		}
		if attempt >= n.retries {
			return "", fmt.Errorf("could not find a free name for %s %q after %d retries", kind, original, n.retries)
		}
		candidate = fmt.Sprintf("%s_%d", base, attempt+1)
	}
}
