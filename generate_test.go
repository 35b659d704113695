package main

import (
	"context"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	config := GenerateConfig{
		OutDir:   dir,
		Kinds:    []DatasetKind{StructuredKind, KeyedKind},
		Limit:    150,
		PoolSize: 5,
		Seed:     3,
	}
	require.NoError(t, Generate(context.Background(), config))

	for _, kind := range config.Kinds {
		paths, err := ListDatasets(dir, kind)
		require.NoError(t, err)
		assert.Equal(t, []string{DatasetPath(dir, kind, 10, false), DatasetPath(dir, kind, 100, false)}, paths)

		docs, err := ReadDataset(DatasetPath(dir, kind, 100, false))
		require.NoError(t, err)
		assert.Len(t, docs, 100)

		pool, err := ReadDataset(PoolPath(dir, kind, false))
		require.NoError(t, err)
		require.Len(t, pool, 5)
		assert.EqualValues(t, DefaultPoolOffset, toInt64(pool[0][0].Value))
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	config := GenerateConfig{Kinds: []DatasetKind{UnstructuredKind}, Limit: 10, Seed: 11, Gzip: true}

	config.OutDir = t.TempDir()
	require.NoError(t, Generate(context.Background(), config))
	first, err := ReadDataset(DatasetPath(config.OutDir, UnstructuredKind, 10, true))
	require.NoError(t, err)

	config.OutDir = t.TempDir()
	require.NoError(t, Generate(context.Background(), config))
	second, err := ReadDataset(DatasetPath(config.OutDir, UnstructuredKind, 10, true))
	require.NoError(t, err)

	assert.Equal(t, withoutTimestamps(first), withoutTimestamps(second))
	assert.NoFileExists(t, PoolPath(config.OutDir, UnstructuredKind, true))
}

func TestGenerateKindIndependentOfSelection(t *testing.T) {
	alone := GenerateConfig{OutDir: t.TempDir(), Kinds: []DatasetKind{UnstructuredKind}, Limit: 100, Seed: 5}
	together := GenerateConfig{OutDir: t.TempDir(), Kinds: []DatasetKind{StructuredKind, UnstructuredKind}, Limit: 100, Seed: 5}
	require.NoError(t, Generate(context.Background(), alone))
	require.NoError(t, Generate(context.Background(), together))

	first, err := ReadDataset(DatasetPath(alone.OutDir, UnstructuredKind, 100, false))
	require.NoError(t, err)
	second, err := ReadDataset(DatasetPath(together.OutDir, UnstructuredKind, 100, false))
	require.NoError(t, err)
	assert.Equal(t, withoutTimestamps(first), withoutTimestamps(second))

	offsets := map[int64]bool{}
	for _, kind := range DatasetKinds {
		offsets[kind.seedOffset()] = true
	}
	assert.Len(t, offsets, len(DatasetKinds))
}

func TestLogRateStopsOnDone(t *testing.T) {
	rate := metrics.NewMeter()
	defer rate.Stop()

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		logRate(rate, time.Millisecond, done)
		close(exited)
	}()

	time.Sleep(5 * time.Millisecond)
	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("rate logger still running after done was closed")
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Generate(ctx, GenerateConfig{OutDir: t.TempDir(), Kinds: []DatasetKind{StructuredKind}, Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetered(t *testing.T) {
	rate := metrics.NewMeter()
	defer rate.Stop()

	gen := metered(StructuredKind.RecordFunc(newTestGenerator(0)), rate)
	for i := int64(-2); i < 5; i++ {
		_, _ = gen(i)
	}
	assert.Equal(t, int64(5), rate.Count())
}

// withoutTimestamps drops the wall clock field, the only one not derived from the seed.
func withoutTimestamps(docs []bson.D) []bson.D {
	out := make([]bson.D, len(docs))
	for i, doc := range docs {
		for _, e := range doc {
			if e.Key != "timestamp" {
				out[i] = append(out[i], e)
			}
		}
	}
	return out
}
