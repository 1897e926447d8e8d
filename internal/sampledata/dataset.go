package sampledata

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// DataSet holds named lists of sample values. Get cycles through each list.
type DataSet struct {
	mu     sync.Mutex
	values map[string][]any
	cursor map[string]int
}

// NewDataSet returns a dataset over values.
func NewDataSet(values map[string][]any) *DataSet {
	ds := &DataSet{values: map[string][]any{}, cursor: map[string]int{}}

	for k, v := range values {
		ds.values[k] = append([]any(nil), v...)
	}

	return ds
}

// ParseDataSet decodes a YAML mapping of key to value list. A scalar value
// is treated as a one-element list.
func ParseDataSet(data []byte) (*DataSet, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	values := make(map[string][]any, len(raw))
	for k, v := range raw {
		values[k] = asList(v)
	}

	return NewDataSet(values), nil
}

// Get returns the next value for key, wrapping around at the end of the list.
func (d *DataSet) Get(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.values[key]
	if len(list) == 0 {
		return nil, false
	}

	i := d.cursor[key]
	d.cursor[key] = (i + 1) % len(list)

	return list[i], true
}

// Set replaces the values for key and restarts its cycle.
func (d *DataSet) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.values[key] = asList(value)
	d.cursor[key] = 0
}

// Len returns the number of keys in the dataset.
func (d *DataSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.values)
}

func asList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}
