package obfuscate

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Pair is one renaming, obfuscated name to original.
type Pair struct {
	Obfuscated string `msgpack:"obfuscated"`
	Original   string `msgpack:"original"`
}

// Mapping records every renaming of one obfuscation run in insertion order.
// Obfuscated names are unique keys; lookups work in both directions.
type Mapping struct {
	level  Level
	pairs  []Pair
	byObf  map[string]string
	byOrig map[string]string
}

// NewMapping starts an empty mapping for the given retention level.
func NewMapping(level Level) *Mapping {
	return &Mapping{
		level:  level,
		byObf:  make(map[string]string),
		byOrig: make(map[string]string),
	}
}

// Level reports the retention level the mapping was recorded at.
func (m *Mapping) Level() Level {
	return m.level
}

// Len reports the number of recorded renamings.
func (m *Mapping) Len() int {
	return len(m.pairs)
}

// Pairs returns the renamings in insertion order.
func (m *Mapping) Pairs() []Pair {
	return append([]Pair(nil), m.pairs...)
}

// Add records one renaming. An obfuscated name that is already taken is
// rejected; the caller disambiguates and retries.
func (m *Mapping) Add(obfuscated, original string) error {
	if _, taken := m.byObf[obfuscated]; taken {
		return fmt.Errorf("obfuscated name %s is already taken", obfuscated)
	}
	m.pairs = append(m.pairs, Pair{Obfuscated: obfuscated, Original: original})
	m.byObf[obfuscated] = original
	m.byOrig[original] = obfuscated
	return nil
}

// Original resolves an obfuscated name back to its original.
func (m *Mapping) Original(obfuscated string) (string, bool) {
	orig, ok := m.byObf[obfuscated]
	return orig, ok
}

// Obfuscated resolves an original name to its obfuscated form.
func (m *Mapping) Obfuscated(original string) (string, bool) {
	obf, ok := m.byOrig[original]
	return obf, ok
}

// Rewrite replaces every obfuscated identifier occurring in text with its
// original name. Longer names are replaced first so that a disambiguated
// name is never clipped by its base form.
func (m *Mapping) Rewrite(text string) string {
	ordered := append([]Pair(nil), m.pairs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Obfuscated) > len(ordered[j].Obfuscated)
	})
	for _, p := range ordered {
		text = strings.ReplaceAll(text, p.Obfuscated, p.Original)
	}
	return text
}

type mappingFile struct {
	Level int    `msgpack:"level"`
	Pairs []Pair `msgpack:"pairs"`
}

// Save persists the mapping. The salt is deliberately not part of the
// artifact; the mapping alone never lets a holder re-derive the renaming
// for other inputs.
func (m *Mapping) Save(path string) error {
	data, err := msgpack.Marshal(mappingFile{Level: int(m.level), Pairs: m.pairs})
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	return nil
}

// Load reads a mapping persisted by Save.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}
	var raw mappingFile
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	m := NewMapping(Level(raw.Level))
	for _, p := range raw.Pairs {
		if err := m.Add(p.Obfuscated, p.Original); err != nil {
			return nil, fmt.Errorf("corrupt mapping: %w", err)
		}
	}
	return m, nil
}
