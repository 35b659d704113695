package main

import (
	"context"
	"fmt"
	"time"
)

// DefaultSampleInterval is the pause between samples when Measure gets a non-positive interval.
const DefaultSampleInterval = 200 * time.Millisecond

// Operation is anything Measure can time.
type Operation interface {
	Execute(ctx context.Context) error
}

// OperationFunc adapts a function to Operation.
type OperationFunc func(ctx context.Context) error

func (f OperationFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Measurement is the outcome of one Measure call.
type Measurement struct {
	Baseline     Snapshot   `bson:"baseline"`
	Samples      []Snapshot `bson:"samples"`
	ResponseTime float64    `bson:"response_time"` // seconds
}

// Measure takes a baseline snapshot, then runs op while one sampler goroutine snapshots the host
// every interval. Samples are numbered from 1 without gaps. A snapshot that completes after the
// sampler was told to stop is dropped.
//
// The sampler is always stopped and joined before Measure returns, also when op fails or panics.
// On failure the partial samples are discarded and the error is wrapped with ErrOperationFailed.
// Measure imposes no timeout on op.
func Measure(ctx context.Context, snapshotter Snapshotter, interval time.Duration, op Operation) (*Measurement, error) {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	baseline := snapshotter.Snapshot(ctx)

	samplerCtx, stop := context.WithCancel(ctx)
	done := make(chan []Snapshot, 1)
	go sample(samplerCtx, snapshotter, interval, done)

	var samples []Snapshot
	joined := false
	join := func() {
		if !joined {
			stop()
			samples = <-done
			joined = true
		}
	}
	defer join()

	start := time.Now()
	err := op.Execute(ctx)
	elapsed := time.Since(start)

	join()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}

	return &Measurement{
		Baseline:     baseline,
		Samples:      samples,
		ResponseTime: elapsed.Seconds(),
	}, nil
}

// sample owns its slice and hands it over on done once ctx is cancelled.
func sample(ctx context.Context, snapshotter Snapshotter, interval time.Duration, done chan<- []Snapshot) {
	var samples []Snapshot
	defer func() {
		done <- samples
	}()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for seq := 1; ; seq++ {
		snap := snapshotter.Snapshot(ctx)
		if ctx.Err() != nil {
			return
		}
		snap.Sample = seq
		samples = append(samples, snap)

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
