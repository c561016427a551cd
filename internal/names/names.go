// Package names maps the country names used by the circuit dataset to the
// names used by the world-atlas topology.
//
// The table is an ordered list of (alias, canonical) pairs. Unlike a map
// literal, a list keeps duplicates visible: New rejects a table that names
// the same alias twice instead of letting the later entry win.
package names

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultTable []byte

// Pair is one alias table entry.
type Pair struct {
	Alias     string `yaml:"alias"`
	Canonical string `yaml:"canonical"`
}

// Mapper resolves aliases to canonical names. A Mapper is immutable and
// safe for concurrent use.
type Mapper struct {
	pairs []Pair
	index map[string]string
}

// DuplicateAliasError reports every alias that appears more than once in a
// table, together with all canonical values given for it.
type DuplicateAliasError struct {
	Duplicates map[string][]string
}

func (e *DuplicateAliasError) Error() string {
	aliases := make([]string, 0, len(e.Duplicates))
	for alias := range e.Duplicates {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	parts := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		parts = append(parts, fmt.Sprintf("%q -> %s", alias, strings.Join(quoteAll(e.Duplicates[alias]), ", ")))
	}
	return fmt.Sprintf("duplicate aliases in name table: %s", strings.Join(parts, "; "))
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// New builds a Mapper from an ordered list of pairs.
//
// Aliases are compared after NFC normalization. If any alias occurs more
// than once, New returns a *DuplicateAliasError and no Mapper.
func New(pairs []Pair) (*Mapper, error) {
	index := make(map[string]string, len(pairs))
	seen := make(map[string][]string)
	for _, p := range pairs {
		key := normalize(p.Alias)
		seen[key] = append(seen[key], p.Canonical)
		index[key] = normalize(p.Canonical)
	}

	dups := make(map[string][]string)
	for alias, canonicals := range seen {
		if len(canonicals) > 1 {
			dups[alias] = canonicals
		}
	}
	if len(dups) > 0 {
		return nil, &DuplicateAliasError{Duplicates: dups}
	}

	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return &Mapper{pairs: cp, index: index}, nil
}

// Default returns the Mapper built from the embedded alias table.
func Default() (*Mapper, error) {
	pairs, err := Parse(bytes.NewReader(defaultTable))
	if err != nil {
		return nil, fmt.Errorf("embedded alias table: %w", err)
	}
	return New(pairs)
}

// Parse reads a YAML alias table (a list of alias/canonical objects) and
// checks it against the table schema.
func Parse(r io.Reader) ([]Pair, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading alias table: %w", err)
	}

	var pairs []Pair
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&pairs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding alias table: %w", err)
	}
	for i, p := range pairs {
		if strings.TrimSpace(p.Alias) == "" {
			return nil, fmt.Errorf("alias table entry %d: empty alias", i)
		}
	}
	if err := checkSchema(data); err != nil {
		return nil, err
	}
	return pairs, nil
}

// Load builds a Mapper from a YAML file. An empty path selects the
// embedded table.
func Load(path string) (*Mapper, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening alias table: %w", err)
	}
	defer f.Close()

	pairs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(pairs)
}

// Map returns the canonical name for name, or name itself when the table
// has no entry for it.
func (m *Mapper) Map(name string) string {
	if canonical, ok := m.index[normalize(name)]; ok {
		return canonical
	}
	return name
}

// Equal reports whether a country name taken from the geometry dataset
// matches the (possibly aliased) highlight name. An empty highlight never
// matches.
func (m *Mapper) Equal(dataName, highlight string) bool {
	if highlight == "" {
		return false
	}
	return normalize(dataName) == normalize(m.Map(highlight))
}

// Pairs returns a copy of the table in declaration order.
func (m *Mapper) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Len returns the number of aliases.
func (m *Mapper) Len() int {
	return len(m.pairs)
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
