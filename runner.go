package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
)

// Runner measures the query battery of one dataset kind against every dataset file of that kind.
type Runner struct {
	db          CollectionProvider
	snapshotter Snapshotter
	config      RunConfig
	summary     *responseSummary
}

func NewRunner(db CollectionProvider, snapshotter Snapshotter, config RunConfig) *Runner {
	return &Runner{
		db:          db,
		snapshotter: snapshotter,
		config:      config,
		summary:     newResponseSummary(),
	}
}

// Run benchmarks every dataset of the configured kind and writes one result file per dataset
// plus a response time summary.
func (r *Runner) Run(ctx context.Context) error {
	kind := r.config.Kind
	paths, err := ListDatasets(r.config.DataDir, kind)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no %s datasets found in %s", kind, r.config.DataDir)
	}

	rnd := NewRandomizer(r.config.Seed)
	pool, err := LoadDataPool(kind, r.config.DataDir, r.config.PoolSize, kind.RecordFunc(NewDocumentGenerator(rnd)))
	if err != nil {
		return err
	}
	queries := QueriesFor(kind, rnd)

	for _, path := range paths {
		if err := r.runDataset(ctx, path, pool, queries); err != nil {
			return err
		}
	}

	summaryPath := filepath.Join(r.config.LogDir, fmt.Sprintf("%s_summary.csv", kind))
	if err := r.summary.WriteCSV(summaryPath); err != nil {
		return err
	}
	log.Info("Benchmarking completed", "summary", summaryPath)
	return nil
}

func (r *Runner) runDataset(ctx context.Context, path string, pool *DataPool, queries []QueryOp) error {
	log.Info("Opening dataset", "path", path)
	docs, err := ReadDataset(path)
	if err != nil {
		return err
	}
	data := documents(docs)
	name := CollectionName(path)
	coll := r.db.Collection(name)

	var results bson.D
	for _, query := range queries {
		for i := 0; i < r.config.Repetitions; i++ {
			log.Info("Running test", "collection", name, "query", query.Name, "iteration", i)
			measures, err := r.collectMeasure(ctx, name, coll, data, query, pool)
			if err != nil {
				return fmt.Errorf("%s %s iteration %d: %w", name, query.Name, i, err)
			}
			results = append(results, bson.E{Key: fmt.Sprintf("%s_%s_%d", name, query.Name, i), Value: measures})
		}
	}

	out := filepath.Join(r.config.LogDir, fmt.Sprintf("%s_%s.json", r.config.Kind, name))
	if err := WriteResults(out, results); err != nil {
		return err
	}
	log.Info("Saved results", "path", out)
	return nil
}

// collectMeasure measures dropping the collection, recreating it from data and then the query.
func (r *Runner) collectMeasure(ctx context.Context, name string, coll CollectionAPI, data []interface{}, query QueryOp, pool *DataPool) (bson.D, error) {
	measures := make(bson.D, 0, 3)
	var last *Measurement
	for _, step := range []QueryOp{DropOp, CreateOp(data), query} {
		m, err := Measure(ctx, r.snapshotter, r.config.Interval, step.Operation(coll, pool))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name, err)
		}
		measures = append(measures, bson.E{Key: step.Name, Value: m})
		last = m
	}
	r.summary.Record(name, query.Name, last.ResponseTime)
	return measures, nil
}

// WriteResults stores a result document as indented relaxed Extended JSON.
func WriteResults(path string, results bson.D) error {
	if results == nil {
		results = bson.D{}
	}
	data, err := bson.MarshalExtJSONIndent(results, false, false, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encoding results: %w", ErrPersistence, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

type summaryKey struct {
	collection string
	query      string
}

// responseSummary keeps one response time histogram per collection and query, in first-seen order.
type responseSummary struct {
	order []summaryKey
	hists map[summaryKey]*hdrhistogram.Histogram
}

func newResponseSummary() *responseSummary {
	return &responseSummary{hists: make(map[summaryKey]*hdrhistogram.Histogram)}
}

// Record adds a response time in seconds.
func (s *responseSummary) Record(collection, query string, seconds float64) {
	key := summaryKey{collection: collection, query: query}
	h, ok := s.hists[key]
	if !ok {
		// 1us to 1h, 3 significant figures
		h = hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)
		s.hists[key] = h
		s.order = append(s.order, key)
	}
	us := int64(seconds * 1e6)
	if us < 1 {
		us = 1
	}
	if err := h.RecordValue(us); err != nil {
		log.Warn("response time out of histogram range", "query", query, "seconds", seconds)
	}
}

func usToSeconds(us int64) string {
	return fmt.Sprintf("%.6f", float64(us)/1e6)
}

// WriteCSV writes count, mean, p50, p95, p99 and max response time in seconds per row.
func (s *responseSummary) WriteCSV(path string) error {
	records := [][]string{{"collection", "query", "count", "mean", "p50", "p95", "p99", "max"}}
	for _, key := range s.order {
		h := s.hists[key]
		records = append(records, []string{
			key.collection,
			key.query,
			fmt.Sprintf("%d", h.TotalCount()),
			fmt.Sprintf("%.6f", h.Mean()/1e6),
			usToSeconds(h.ValueAtQuantile(50)),
			usToSeconds(h.ValueAtQuantile(95)),
			usToSeconds(h.ValueAtQuantile(99)),
			usToSeconds(h.Max()),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
