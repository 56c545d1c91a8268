package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode converts a typed entity into a Record via its JSON form.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var rec Record
	if err := decodeJSON(data, &rec); err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return rec, nil
}

// Decode fills the typed entity v from rec.
func Decode(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decoding record %s: %w", rec.ID(), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding record %s: %w", rec.ID(), err)
	}
	return nil
}

// marshalData produces the storage document: snake_case keys, without the
// store-managed id and created_at.
func marshalData(rec Record) ([]byte, error) {
	doc := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == keyID || k == keyCreatedAt {
			continue
		}
		doc[k] = v
	}
	return json.Marshal(SnakeKeys(doc))
}

func unmarshalData(data []byte) (Record, error) {
	var doc map[string]any
	if err := decodeJSON(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return Record(CamelKeys(doc).(map[string]any)), nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
