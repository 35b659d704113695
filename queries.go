package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DataPool holds the records inserted by the insert and replace queries. Their uids start at
// DefaultPoolOffset, so they never collide with the dataset under test.
type DataPool struct {
	One  interface{}
	Many []interface{}
}

// LoadDataPool reads the pool file of kind from dataDir. Without a pool file the pool is built
// in memory with size records.
func LoadDataPool(kind DatasetKind, dataDir string, size int64, gen RecordFunc[any]) (*DataPool, error) {
	one, err := gen(DefaultPoolOffset)
	if err != nil {
		return nil, err
	}
	pool := &DataPool{One: one}

	for _, compress := range []bool{false, true} {
		path := PoolPath(dataDir, kind, compress)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		docs, err := ReadDataset(path)
		if err != nil {
			return nil, err
		}
		pool.Many = documents(docs)
		log.Info("Loaded data pool", "path", path, "records", len(pool.Many))
		return pool, nil
	}

	many, err := BuildPool(gen, size, DefaultPoolOffset)
	if err != nil {
		return nil, err
	}
	pool.Many = many
	log.Info("Built data pool in memory", "kind", kind, "records", len(many))
	return pool, nil
}

func documents(docs []bson.D) []interface{} {
	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

// QueryOp is one named database action of the benchmark battery.
type QueryOp struct {
	Name string
	Run  func(ctx context.Context, coll CollectionAPI, pool *DataPool) error
}

// Operation binds the query to a collection and pool for Measure.
func (q QueryOp) Operation(coll CollectionAPI, pool *DataPool) Operation {
	return OperationFunc(func(ctx context.Context) error {
		return q.Run(ctx, coll, pool)
	})
}

// DropOp removes the collection.
var DropOp = QueryOp{Name: "delete", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
	return coll.Drop(ctx)
}}

// CreateOp fills the collection with data.
func CreateOp(data []interface{}) QueryOp {
	return QueryOp{Name: "create", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
		return insertMany(ctx, coll, data)
	}}
}

func insertMany(ctx context.Context, coll CollectionAPI, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

// middleUID is the uid in the middle of a range dataset.
func middleUID(ctx context.Context, coll CollectionAPI) (int64, error) {
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return total / 2, nil
}

func findOne(ctx context.Context, coll CollectionAPI, filter interface{}) error {
	err := coll.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

func findAll(ctx context.Context, coll CollectionAPI, filter interface{}) error {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return err
	}
	_, err = drainCursor(ctx, cursor)
	return err
}

func aggregate(ctx context.Context, coll CollectionAPI, pipeline mongo.Pipeline) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	_, err = drainCursor(ctx, cursor)
	return err
}

func insertOneOp(name string) QueryOp {
	return QueryOp{Name: name, Run: func(ctx context.Context, coll CollectionAPI, pool *DataPool) error {
		_, err := coll.InsertOne(ctx, pool.One)
		return err
	}}
}

func insertManyOp(name string) QueryOp {
	return QueryOp{Name: name, Run: func(ctx context.Context, coll CollectionAPI, pool *DataPool) error {
		return insertMany(ctx, coll, pool.Many)
	}}
}

func readOneOp(name string) QueryOp {
	return QueryOp{Name: name, Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
		uid, err := middleUID(ctx, coll)
		if err != nil {
			return err
		}
		return findOne(ctx, coll, uidFilter(uid))
	}}
}

func updateOneOp(name string, update bson.M) QueryOp {
	return QueryOp{Name: name, Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
		uid, err := middleUID(ctx, coll)
		if err != nil {
			return err
		}
		_, err = coll.UpdateOne(ctx, uidFilter(uid), update)
		return err
	}}
}

func replaceOneOp(name string) QueryOp {
	return QueryOp{Name: name, Run: func(ctx context.Context, coll CollectionAPI, pool *DataPool) error {
		uid, err := middleUID(ctx, coll)
		if err != nil {
			return err
		}
		_, err = coll.ReplaceOne(ctx, uidFilter(uid), pool.One)
		return err
	}}
}

// StructuredQueries is the battery run against user and contact datasets.
func StructuredQueries(rnd *Randomizer) []QueryOp {
	queries := NewQueryGenerator(rnd)
	return []QueryOp{
		insertOneOp("insertOneStruct"),
		insertManyOp("insertManyStruct"),
		readOneOp("readOneStruct"),
		{Name: "readManyStruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			return findAll(ctx, coll, uidModFilter(4))
		}},
		{Name: "readRandomStruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			total, err := coll.CountDocuments(ctx, bson.M{})
			if err != nil {
				return err
			}
			return findOne(ctx, coll, queries.Generate(total))
		}},
		updateOneOp("updateOneStruct", bson.M{"$set": bson.M{"birthday": "1-1-2000", "age": 25}}),
		{Name: "updateManyStruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			_, err := coll.UpdateMany(ctx,
				bson.M{"address.city": "Calgary"},
				bson.M{"$set": bson.M{"address.city": "Lethbridge"}})
			return err
		}},
		replaceOneOp("replaceOneStruct"),
		{Name: "aggregateStruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			return aggregate(ctx, coll, ageVariancePipeline())
		}},
		{Name: "insertThenUpdateStruct", Run: insertThenUpdate},
	}
}

// insertThenUpdate inserts the pool record and then updates it by uid.
func insertThenUpdate(ctx context.Context, coll CollectionAPI, pool *DataPool) error {
	if _, err := coll.InsertOne(ctx, pool.One); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if _, err := coll.UpdateOne(ctx, uidFilter(DefaultPoolOffset), bson.M{"$set": bson.M{"age": 25}}); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// UnstructuredQueries is the battery run against unstructured datasets.
func UnstructuredQueries() []QueryOp {
	return []QueryOp{
		insertOneOp("insertOneUnstruct"),
		insertManyOp("insertManyUnstruct"),
		readOneOp("readOneUnstruct"),
		{Name: "readManyUnstruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			return findAll(ctx, coll, bson.M{"archived": true})
		}},
		updateOneOp("updateOneUnstruct", bson.M{"$set": bson.M{"likes": 0}}),
		{Name: "updateManyUnstruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			_, err := coll.UpdateMany(ctx,
				bson.M{"likes": bson.M{"$lt": 1000}},
				bson.M{"$set": bson.M{"archived": true}})
			return err
		}},
		replaceOneOp("replaceOneUnstruct"),
		{Name: "aggregateUnstruct", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			return aggregate(ctx, coll, engagementPipeline())
		}},
	}
}

// KeyedQueries only relies on uid, the one key every keyed record has.
func KeyedQueries() []QueryOp {
	return []QueryOp{
		insertOneOp("insertOneKeyed"),
		insertManyOp("insertManyKeyed"),
		readOneOp("readOneKeyed"),
		{Name: "readManyKeyed", Run: func(ctx context.Context, coll CollectionAPI, _ *DataPool) error {
			return findAll(ctx, coll, uidModFilter(4))
		}},
		replaceOneOp("replaceOneKeyed"),
	}
}

// QueriesFor returns the battery for datasets of kind.
func QueriesFor(kind DatasetKind, rnd *Randomizer) []QueryOp {
	switch kind {
	case UnstructuredKind:
		return UnstructuredQueries()
	case KeyedKind:
		return KeyedQueries()
	default:
		return StructuredQueries(rnd)
	}
}
