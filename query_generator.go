package main

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// uidFilter matches the record generated from index uid.
func uidFilter(uid int64) bson.M {
	return bson.M{"uid": uid}
}

// uidModFilter matches every record whose uid is divisible by mod.
func uidModFilter(mod int) bson.M {
	return bson.M{"$expr": bson.M{"$eq": bson.A{bson.M{"$mod": bson.A{"$uid", mod}}, 0}}}
}

// ageVariancePipeline returns the population variance of age over the whole collection.
func ageVariancePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "stdDev": bson.M{"$stdDevPop": "$age"}}}},
		{{Key: "$project", Value: bson.M{"variance": bson.M{"$multiply": bson.A{"$stdDev", "$stdDev"}}}}},
	}
}

// engagementPipeline averages likes and the number of comments of unstructured records.
// Records without comments count as zero comments.
func engagementPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"avgLikes": bson.M{"$avg": "$likes"},
			"avgComments": bson.M{"$avg": bson.M{
				"$size": bson.M{"$ifNull": bson.A{"$comments", bson.A{}}},
			}},
		}}},
	}
}

// QueryGenerator provides random point-read filters over a dataset of known size
type QueryGenerator struct {
	rnd *Randomizer
}

// NewQueryGenerator initializes a new QueryGenerator drawing from rnd
func NewQueryGenerator(rnd *Randomizer) *QueryGenerator {
	return &QueryGenerator{rnd: rnd}
}

// Generate returns a filter for a uid in [0,total), or for uid 0 on an empty collection
func (g *QueryGenerator) Generate(total int64) bson.M {
	if total <= 0 {
		return uidFilter(0)
	}
	return uidFilter(g.rnd.RandomInt63n(total))
}
