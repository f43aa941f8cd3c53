package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/footprint/internal/model"
)

// ErrNoPayload is returned when the input holds no JSON object.
var ErrNoPayload = errors.New("no payload object")

// maxPayloadBytes caps how much of a payload file is read.
const maxPayloadBytes = 16 << 20

// ParseFile reads and decodes one payload file. When the payload carries no
// statement_id the file name stands in for it.
func ParseFile(df DiscoveredFile) ParseResult {
	result := ParseResult{File: df}

	f, err := os.Open(df.Path)
	if err != nil {
		result.Err = fmt.Errorf("opening %s: %w", df.Path, err)
		return result
	}
	defer func() { _ = f.Close() }()

	p, err := ParsePayload(io.LimitReader(f, maxPayloadBytes))
	if err != nil {
		result.Err = fmt.Errorf("parsing %s: %w", df.Path, err)
		return result
	}
	if p.StatementID == "" {
		p.StatementID = df.Name
	}
	result.Payload = p
	return result
}

// ParseBytes decodes a payload held in memory.
func ParseBytes(data []byte) (model.Payload, error) {
	return ParsePayload(bytes.NewReader(data))
}

// ParsePayload decodes an analysis payload, keeping summary and budget keys in
// document order. Numbers are kept as json.Number. Blocks of the wrong shape
// degrade to empty; only malformed JSON or a non-object document is an error.
func ParsePayload(r io.Reader) (model.Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.Payload{}, ErrNoPayload
		}
		return model.Payload{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return model.Payload{}, errors.New("trailing data after payload object")
	}

	obj, ok := root.(*object)
	if !ok {
		return model.Payload{}, ErrNoPayload
	}

	var p model.Payload
	if v, ok := obj.get(keyStatementID); ok {
		p.StatementID = strings.TrimSpace(scalarText(v))
	}
	if v, ok := obj.get(keySummary); ok {
		p.Summary = buildSummary(v)
	}
	if v, ok := obj.get(keyTotals); ok {
		if t, ok := v.(*object); ok {
			p.Totals = &model.RawTotals{
				TotalAllotted: leaf(t, "total_allotted_emission"),
				TotalActual:   leaf(t, "total_actual_emission"),
			}
		}
	}
	if v, ok := obj.get(keyBudget); ok {
		p.BudgetComparison = buildBudget(v)
	}
	p.Uncategorized = leaf(obj, keyUncategorized)
	p.TransactionsCount = leaf(obj, keyTransactionsCount)

	return p, nil
}

func buildSummary(v any) model.RawSummary {
	obj, ok := v.(*object)
	if !ok {
		return model.RawSummary{}
	}

	summary := make(model.RawSummary, 0, len(obj.keys))
	for _, name := range obj.keys {
		cat := model.RawCategory{Name: name}
		if subs, ok := obj.vals[name].(*object); ok {
			cat.Subcategories = make([]model.RawSubcategory, 0, len(subs.keys))
			for _, subName := range subs.keys {
				sub := model.RawSubcategory{Name: subName}
				if fields, ok := subs.vals[subName].(*object); ok {
					sub.Amount = leaf(fields, "amount")
					sub.Emission = leaf(fields, "emission")
				}
				cat.Subcategories = append(cat.Subcategories, sub)
			}
		}
		summary = append(summary, cat)
	}
	return summary
}

func buildBudget(v any) model.BudgetBlock {
	obj, ok := v.(*object)
	if !ok {
		return model.BudgetBlock{}
	}

	block := make(model.BudgetBlock, 0, len(obj.keys))
	for _, name := range obj.keys {
		entry := model.RawBudget{Category: name}
		if fields, ok := obj.vals[name].(*object); ok {
			entry.BudgetedKg = leaf(fields, "budgeted_kg")
			entry.ActualKg = leaf(fields, "actual_kg")
			entry.DeltaKg = leaf(fields, "delta_kg")
			entry.DeltaPct = leaf(fields, "delta_pct")
			entry.Status = leaf(fields, "status")
		}
		block = append(block, entry)
	}
	return block
}

// leaf returns a scalar field. Nested objects are dropped to nil; arrays are
// kept with any objects inside them dropped, so model values only ever hold
// JSON scalars and arrays of them.
func leaf(o *object, key string) any {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	return scrub(v)
}

func scrub(v any) any {
	switch x := v.(type) {
	case *object:
		return nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = scrub(e)
		}
		return out
	}
	return v
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return ""
}

// decodeValue reads one JSON value from dec. Objects become *object, arrays
// []any, and scalars stay as the decoder returns them.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				obj.set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return tok, nil
	}
}

// unexpectedEOF keeps a truncated document from looking like an empty one.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
