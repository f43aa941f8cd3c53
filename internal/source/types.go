// Package source discovers and decodes analysis payload files.
package source

import "github.com/theirongolddev/footprint/internal/model"

// Top-level payload keys.
const (
	keyStatementID       = "statement_id"
	keySummary           = "summary"
	keyTotals            = "totals"
	keyBudget            = "budget_comparison_by_category"
	keyUncategorized     = "uncategorized"
	keyTransactionsCount = "transactions_count"
)

// DiscoveredFile represents a payload file found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Name      string // file name without the .json extension
	Dir       string // sub-directory relative to the scan root, "" for top level
	ModTimeNs int64
	SizeBytes int64
}

// ParseResult holds the output of parsing a single payload file.
type ParseResult struct {
	File    DiscoveredFile
	Payload model.Payload
	Err     error
}

// object is a decoded JSON object that remembers key insertion order.
// Duplicate keys keep their first position and take the last value.
type object struct {
	keys []string
	vals map[string]any
}

func newObject() *object {
	return &object{vals: make(map[string]any)}
}

func (o *object) set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *object) get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}
