package main

import "errors"

var (
	// ErrNegativeIndex is returned by the record generators for indexes below zero.
	ErrNegativeIndex = errors.New("record index must not be negative")

	// ErrIndexOutOfRange is returned by the name and keyed generators for indexes whose generated
	// keys would not fit in an int64.
	ErrIndexOutOfRange = errors.New("record index out of range")

	// ErrInvalidBase26 is returned when decoding a string that is not an uppercase letter sequence.
	ErrInvalidBase26 = errors.New("invalid base-26 string")

	// ErrMetricsUnavailable is reported by a MetricsSource for counters the host does not expose.
	ErrMetricsUnavailable = errors.New("metric not available on this host")

	// ErrOperationFailed wraps the error of a measured operation.
	ErrOperationFailed = errors.New("measured operation failed")

	// ErrPersistence wraps failures while writing or reading datasets and reports.
	ErrPersistence = errors.New("persistence failed")

	// ErrUnknownKind is returned for dataset kinds other than the supported ones.
	ErrUnknownKind = errors.New("unknown dataset kind")
)
