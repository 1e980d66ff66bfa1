package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = []byte("null")

// decodeList decodes a Canvas body into a slice whatever its shape.
// An object becomes a one-element slice, null or empty becomes an empty slice.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode canvas list: %w", err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("decode canvas object: %w", err)
	}
	return []T{item}, nil
}

// decodeOne decodes a single-resource body; an empty list means not found.
func decodeOne[T any](body []byte) (*T, error) {
	items, err := decodeList[T](body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}
