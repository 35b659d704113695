package main

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Address is the nested address document of a structured record.
type Address struct {
	Street string `bson:"street"`
	City   string `bson:"city"`
	Postal string `bson:"postal,omitempty"`
}

// StructuredRecord mimics the data kept for a user of a web service.
type StructuredRecord struct {
	UID      int64   `bson:"uid"`
	Age      int     `bson:"age"`
	Name     string  `bson:"name"`
	Email    string  `bson:"email"`
	Address  Address `bson:"address"`
	Birthday string  `bson:"birthday"`
}

// UnstructuredRecord has a fixed set of optional slots. A nil slot is absent from the encoded
// document; a non-nil empty Comments slice is encoded as an empty array.
type UnstructuredRecord struct {
	UID       int64     `bson:"uid"`
	Archived  *bool     `bson:"archived,omitempty"`
	Comments  *[]string `bson:"comments,omitempty"`
	Image     *string   `bson:"image,omitempty"`
	Likes     *int64    `bson:"likes,omitempty"`
	Timestamp *string   `bson:"timestamp,omitempty"`
}

// FieldKind tags the value held by a KeyedField.
type FieldKind int

const (
	IntField FieldKind = iota
	FloatField
	WordField
)

func (k FieldKind) String() string {
	switch k {
	case IntField:
		return "int"
	case FloatField:
		return "float"
	case WordField:
		return "word"
	default:
		return "unknown"
	}
}

// KeyedField is one generated field of a KeyedRecord. Only the member selected by Kind is set.
type KeyedField struct {
	Key   string
	Kind  FieldKind
	Int   int64
	Float float64
	Word  string
}

// Value returns the member selected by Kind.
func (f KeyedField) Value() interface{} {
	switch f.Kind {
	case IntField:
		return f.Int
	case FloatField:
		return f.Float
	default:
		return f.Word
	}
}

// KeyedRecord is a record whose keys are generated from its index, so its shape varies per record.
type KeyedRecord struct {
	UID    int64
	Fields []KeyedField
}

// MarshalBSON encodes the record as a flat document: uid first, then the fields in order.
func (r KeyedRecord) MarshalBSON() ([]byte, error) {
	doc := make(bson.D, 0, len(r.Fields)+1)
	doc = append(doc, bson.E{Key: "uid", Value: r.UID})
	for _, f := range r.Fields {
		doc = append(doc, bson.E{Key: f.Key, Value: f.Value()})
	}
	return bson.Marshal(doc)
}
