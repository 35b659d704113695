package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

// Generate writes the bulk datasets and the record pool of every configured kind. Kinds are
// generated concurrently; each has its own randomizer seeded from Seed and the kind, so the
// output of a kind does not depend on the others.
func Generate(ctx context.Context, config GenerateConfig) error {
	rate := metrics.NewMeter()
	defer rate.Stop()

	done := make(chan struct{})
	defer close(done)
	go logRate(rate, time.Second, done)

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range config.Kinds {
		docGen := NewDocumentGenerator(NewRandomizer(config.Seed + kind.seedOffset()))
		g.Go(func() error {
			return generateKind(ctx, config, kind, metered(kind.RecordFunc(docGen), rate))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Generation completed", "records", rate.Count(), "mean_rate", rate.RateMean())
	return nil
}

// logRate logs the generation rate every period until done is closed.
func logRate(rate metrics.Meter, period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			log.Printf("Timestamp: %d, Record Count: %d, Mean Rate: %.2f records/sec, m1_rate: %.2f",
				time.Now().Unix(), rate.Count(), rate.RateMean(), rate.Rate1())
		}
	}
}

// metered marks rate for every record gen produces.
func metered(gen RecordFunc[any], rate metrics.Meter) RecordFunc[any] {
	return func(index int64) (any, error) {
		record, err := gen(index)
		if err == nil {
			rate.Mark(1)
		}
		return record, err
	}
}

func generateKind(ctx context.Context, config GenerateConfig, kind DatasetKind, gen RecordFunc[any]) error {
	err := BulkBuild(gen, config.Limit, func(size int64, records []any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := DatasetPath(config.OutDir, kind, size, config.Gzip)
		if err := WriteDataset(path, records); err != nil {
			return err
		}
		log.Info("Dataset written", "kind", kind, "path", path, "records", size)
		return nil
	})
	if err != nil {
		return err
	}

	if config.PoolSize == 0 {
		return nil
	}
	pool, err := BuildPool(gen, config.PoolSize, DefaultPoolOffset)
	if err != nil {
		return err
	}
	path := PoolPath(config.OutDir, kind, config.Gzip)
	if err := WriteDataset(path, pool); err != nil {
		return err
	}
	log.Info("Data pool written", "kind", kind, "path", path, "records", len(pool))
	return nil
}
