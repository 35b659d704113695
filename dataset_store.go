package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	datasetExt = ".jsonl"
	gzipExt    = ".gz"
	poolDir    = "datapool"

	maxDocumentLine = 16 * 1024 * 1024 // BSON documents are capped at 16MiB
)

// DatasetPath is where BulkBuild output of the given size is stored: <dir>/<kind>/data_<size>.jsonl[.gz]
func DatasetPath(dir string, kind DatasetKind, size int64, compress bool) string {
	return withGzip(filepath.Join(dir, string(kind), fmt.Sprintf("data_%d%s", size, datasetExt)), compress)
}

// PoolPath is where the record pool of a kind is stored: <dir>/datapool/<kind>.jsonl[.gz]
func PoolPath(dir string, kind DatasetKind, compress bool) string {
	return withGzip(filepath.Join(dir, poolDir, string(kind)+datasetExt), compress)
}

func withGzip(path string, compress bool) string {
	if compress {
		return path + gzipExt
	}
	return path
}

// CollectionName derives the collection a dataset file is loaded into from its file name.
func CollectionName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), gzipExt)
	return strings.TrimSuffix(name, datasetExt)
}

// ListDatasets returns the dataset files of a kind, sorted by name.
func ListDatasets(dir string, kind DatasetKind) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("%w: listing datasets: %w", ErrPersistence, err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, datasetExt) || strings.HasSuffix(name, datasetExt+gzipExt)) {
			continue
		}
		paths = append(paths, filepath.Join(dir, string(kind), name))
	}
	sort.Strings(paths)
	return paths, nil
}

// WriteDataset stores records as relaxed Extended JSON, one document per line, which mongoimport
// reads as is. Paths ending in .gz are gzip compressed.
func WriteDataset[T any](path string, records []T) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer func() {
		if cerr := fp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrPersistence, cerr)
		}
	}()

	var w io.Writer = fp
	var gz *gzip.Writer
	if strings.HasSuffix(path, gzipExt) {
		gz, err = gzip.NewWriterLevel(fp, gzip.BestSpeed)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		w = gz
	}

	bw := bufio.NewWriterSize(w, 1<<20)
	for i, record := range records {
		line, err := bson.MarshalExtJSON(record, false, false)
		if err != nil {
			return fmt.Errorf("%w: encoding record %d: %w", ErrPersistence, i, err)
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	return nil
}

// ReadDataset loads a file written by WriteDataset. Values keep their nesting; integers come back
// as the smallest BSON integer type holding them.
func ReadDataset(path string) ([]bson.D, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer fp.Close()

	var r io.Reader = fp
	if strings.HasSuffix(path, gzipExt) {
		gz, err := gzip.NewReader(fp)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		defer gz.Close()
		r = gz
	}

	var docs []bson.D
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxDocumentLine)
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc bson.D
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrPersistence, path, line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return docs, nil
}
