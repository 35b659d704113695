package main

import "fmt"

// DefaultPoolOffset is the first index of a record pool, keeping pool uids clear of range datasets.
const DefaultPoolOffset int64 = 1_000_000

// RecordFunc maps an index to one record.
type RecordFunc[T any] func(index int64) (T, error)

// DatasetKind names a record shape; it is also the directory and database name of its datasets.
type DatasetKind string

const (
	StructuredKind   DatasetKind = "structured"
	ContactKind      DatasetKind = "contact"
	UnstructuredKind DatasetKind = "unstructured"
	KeyedKind        DatasetKind = "keyed"
)

// DatasetKinds lists every kind in generation order.
var DatasetKinds = []DatasetKind{StructuredKind, ContactKind, UnstructuredKind, KeyedKind}

func ParseDatasetKind(s string) (DatasetKind, error) {
	for _, k := range DatasetKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// seedOffset is the position of k in DatasetKinds, added to the generation seed so every kind
// draws from its own stream regardless of which kinds are generated together.
func (k DatasetKind) seedOffset() int64 {
	for i, kind := range DatasetKinds {
		if kind == k {
			return int64(i)
		}
	}
	return 0
}

// RecordFunc returns the generator method producing records of kind k.
func (k DatasetKind) RecordFunc(g *DocumentGenerator) RecordFunc[any] {
	switch k {
	case ContactKind:
		return asAny[StructuredRecord](g.Contact)
	case UnstructuredKind:
		return asAny[UnstructuredRecord](g.Unstructured)
	case KeyedKind:
		return asAny[KeyedRecord](g.Keyed)
	default:
		return asAny[StructuredRecord](g.Structured)
	}
}

func asAny[T any](gen RecordFunc[T]) RecordFunc[any] {
	return func(index int64) (any, error) {
		record, err := gen(index)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

// BuildRange maps gen over [0, count) in order.
func BuildRange[T any](gen RecordFunc[T], count int64) ([]T, error) {
	return buildIndexes(gen, 0, count)
}

// BuildPool maps gen over [baseOffset, baseOffset+size).
func BuildPool[T any](gen RecordFunc[T], size, baseOffset int64) ([]T, error) {
	return buildIndexes(gen, baseOffset, size)
}

// BulkBuild builds datasets of 10, 100, 1000, ... records up to limit and hands each to emit.
func BulkBuild[T any](gen RecordFunc[T], limit int64, emit func(size int64, records []T) error) error {
	for size := int64(10); size <= limit; size *= 10 {
		records, err := BuildRange(gen, size)
		if err != nil {
			return err
		}
		if err := emit(size, records); err != nil {
			return err
		}
	}
	return nil
}

func buildIndexes[T any](gen RecordFunc[T], start, count int64) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("record count must not be negative: %d", count)
	}
	records := make([]T, 0, count)
	for i := start; i < start+count; i++ {
		record, err := gen(i)
		if err != nil {
			return nil, fmt.Errorf("generating record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}
