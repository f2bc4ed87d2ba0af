// Package popularity supplies the external per-key weight blended into
// search scores. Raw counts are normalized by the largest count so every
// weight falls in [0,1]. The table is swapped atomically, so readers never
// block and may briefly see the previous table.
package popularity

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// Source is anything that can report a popularity weight for a key.
type Source interface {
	Weight(key string) float64
}

// Table is a concurrency-safe, atomically replaced popularity table.
type Table struct {
	weights atomic.Pointer[map[string]float64]
}

var _ Source = (*Table)(nil)

// NewTable creates an empty table; every key weighs 0.
func NewTable() *Table {
	t := &Table{}
	empty := map[string]float64{}
	t.weights.Store(&empty)
	return t
}

// Weight returns the normalized weight of key, ignoring case.
func (t *Table) Weight(key string) float64 {
	return (*t.weights.Load())[strings.ToLower(key)]
}

// Len returns the number of keys with a weight.
func (t *Table) Len() int {
	return len(*t.weights.Load())
}

// SetCounts replaces the table with counts normalized by their maximum.
// Negative counts are dropped; keys differing only in case are summed.
func (t *Table) SetCounts(counts map[string]float64) {
	folded := make(map[string]float64, len(counts))
	for k, v := range counts {
		if v > 0 {
			folded[strings.ToLower(k)] += v
		}
	}
	var top float64
	for _, v := range folded {
		top = max(top, v)
	}
	for k, v := range folded {
		folded[k] = v / top
	}
	t.weights.Store(&folded)
}

// ReadCounts decodes a JSON object mapping keys to raw counts.
func ReadCounts(r io.Reader) (map[string]float64, error) {
	var counts map[string]float64
	if err := json.NewDecoder(r).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decode popularity counts: %w", err)
	}
	return counts, nil
}

// LoadFile replaces the table with the counts stored in path. On error the
// current table is kept.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	counts, err := ReadCounts(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	t.SetCounts(counts)
	return nil
}
