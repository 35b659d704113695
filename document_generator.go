package main

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// nameOffset shifts indexes to the first six letter string, "AAAAAA", so both name halves
	// have at least three letters.
	nameOffset int64 = 12_356_630

	// maxNameIndex is the largest index whose name key still fits in an int64.
	maxNameIndex = math.MaxInt64 - nameOffset

	maxKeyedFields = 9

	streetModulus   = 131072
	quadrantModulus = 4

	postalLetterModulus = 17576 // 26^3
	postalLetterOffset  = 702   // first three letter string
	birthdayLayout      = "02-01-2006"
	timestampLayout     = "02-01-2006 15:04:05"
)

var quadrants = []string{"NW", "NE", "SE", "SW"}

var cities = []string{
	"Calgary", "Edmonton", "Halifax", "Hamilton",
	"Kitchener", "London", "Montreal", "Oshawa",
	"Ottawa", "Quebec City", "Saskatoon", "Toronto",
	"Vancouver", "Victoria", "Windsor", "Winnipeg",
}

var commentWords = []string{
	"ex", "elit", "commodo", "ipsum", "aute", "nisi", "aliquip", "occaecat", "sunt",
	"officia", "dolore", "reprehenderit", "mollit", "consectetur", "veniam", "velit",
	"cillum", "labore", "esse", "qui", "laboris", "dolor", "nulla", "in", "do", "eu",
	"tempor", "ut", "duis", "sed", "quis", "voluptate", "nostrud", "pariatur.", "adipiscing",
	"id", "irure", "anim", "proident", "cupidatat", "et", "laborum", "incididunt", "non",
	"ea", "est", "excepteur", "exercitation", "amet", "ullamco", "consequat", "fugiat",
	"ad", "culpa", "sit", "deserunt", "magna", "eiusmod", "lorem", "sint", "aliqua", "minim", "enim",
}

// DocumentGenerator maps record indexes to documents. Name, address, age and birthday depend on
// the index only; the optional fields of unstructured and keyed records come from rnd and are
// reproducible for a fixed seed and call order.
type DocumentGenerator struct {
	rnd *Randomizer
	now func() time.Time
}

func NewDocumentGenerator(rnd *Randomizer) *DocumentGenerator {
	return &DocumentGenerator{
		rnd: rnd,
		now: time.Now,
	}
}

// WithClock replaces the wall clock used for birthdays and timestamps.
func (g *DocumentGenerator) WithClock(now func() time.Time) *DocumentGenerator {
	g.now = now
	return g
}

func checkIndex(index int64) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeIndex, index)
	}
	return nil
}

// checkNameIndex also rejects indexes whose keys index+nameOffset .. index+span+nameOffset overflow.
func checkNameIndex(index, span int64) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if index > maxNameIndex-span {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// GenerateName returns a first and last name of at least three letters each.
func GenerateName(index int64) (string, string, error) {
	if err := checkNameIndex(index, 0); err != nil {
		return "", "", err
	}
	name := EncodeBase26(index + nameOffset)
	mid := len(name) / 2
	return capitalize(name[:mid]), capitalize(name[mid:]), nil
}

// addressParts cascades the index through street number, quadrant and city.
func addressParts(index int64) (int64, int, int) {
	q, street := index/streetModulus, index%streetModulus
	q, quad := q/quadrantModulus, q%quadrantModulus
	return street, int(quad), int(q & 15)
}

// GenerateAddress enumerates street, then quadrant, then city. The catalog wraps around after
// streetModulus*4*16 indexes.
func GenerateAddress(index int64) (Address, error) {
	if err := checkIndex(index); err != nil {
		return Address{}, err
	}
	street, quad, city := addressParts(index)
	return Address{
		Street: fmt.Sprintf("%d Street %s", street, quadrants[quad]),
		City:   cities[city],
	}, nil
}

// GeneratePostal returns a "A1A 1A1" style postal code, or "" for a negative index.
func GeneratePostal(index int64) string {
	if index < 0 {
		return ""
	}
	s := EncodeBase26(index%postalLetterModulus + postalLetterOffset)
	n := strconv.FormatInt(100+index%900, 10)
	return string([]byte{s[0], n[0], s[1], ' ', n[1], s[2], n[2]})
}

// GenerateBirthday is now minus age years minus index&255 days.
func (g *DocumentGenerator) GenerateBirthday(age int, index int64) time.Time {
	days := int(index & 255)
	return g.now().AddDate(-age, 0, 0).AddDate(0, 0, -days)
}

// Structured returns the user record for index.
func (g *DocumentGenerator) Structured(index int64) (StructuredRecord, error) {
	first, last, err := GenerateName(index)
	if err != nil {
		return StructuredRecord{}, err
	}
	address, err := GenerateAddress(index)
	if err != nil {
		return StructuredRecord{}, err
	}
	age := int(index&127) + 8
	birthday := g.GenerateBirthday(age, index)

	return StructuredRecord{
		UID:      index,
		Age:      age,
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s%d@mail.com", strings.ToLower(first), strings.ToLower(last), birthday.Year()),
		Address:  address,
		Birthday: birthday.Format(birthdayLayout),
	}, nil
}

// Contact returns the contact-card variant of a structured record: a wider age range, the name
// initials as city and a postal code.
func (g *DocumentGenerator) Contact(index int64) (StructuredRecord, error) {
	first, last, err := GenerateName(index)
	if err != nil {
		return StructuredRecord{}, err
	}
	age := 18 + int(index%72)

	return StructuredRecord{
		UID:   index,
		Age:   age,
		Name:  first + " " + last,
		Email: first + "." + last + "@example.com",
		Address: Address{
			Street: fmt.Sprintf("%d %s St", index%10000, first),
			City:   first[:1] + last[:1],
			Postal: GeneratePostal(index),
		},
		Birthday: g.GenerateBirthday(age, index).Format(birthdayLayout),
	}, nil
}

// Unstructured rolls the presence of every optional slot independently.
func (g *DocumentGenerator) Unstructured(index int64) (UnstructuredRecord, error) {
	if err := checkIndex(index); err != nil {
		return UnstructuredRecord{}, err
	}
	record := UnstructuredRecord{UID: index}

	if !g.rnd.Chance(11) {
		archived := true
		record.Archived = &archived
	} else if g.rnd.Chance(11) {
		archived := false
		record.Archived = &archived
	}

	if g.rnd.Chance(11) {
		comments := g.comments(index, int(index&3))
		record.Comments = &comments
	}

	if g.rnd.Chance(4) {
		image, err := g.imageName()
		if err != nil {
			return UnstructuredRecord{}, err
		}
		record.Image = &image
	}

	if g.rnd.Chance(11) {
		likes := index & 65535
		record.Likes = &likes
	}

	if g.rnd.Chance(11) {
		ts := g.now().Format(timestampLayout)
		record.Timestamp = &ts
	}

	return record, nil
}

func (g *DocumentGenerator) comments(index int64, num int) []string {
	comments := make([]string, 0, num)
	words := make([]string, int(index&15)+5)
	for i := 0; i < num; i++ {
		for j := range words {
			words[j] = g.rnd.Choice(commentWords)
		}
		comments = append(comments, strings.Join(words, " "))
	}
	return comments
}

func (g *DocumentGenerator) imageName() (string, error) {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:6]) + ".jpg", nil
}

// Keyed returns a record with index%9+1 generated fields whose value kind rotates with the index.
func (g *DocumentGenerator) Keyed(index int64) (KeyedRecord, error) {
	if err := checkNameIndex(index, maxKeyedFields-1); err != nil {
		return KeyedRecord{}, err
	}
	numFields := int(index%maxKeyedFields) + 1
	record := KeyedRecord{UID: index, Fields: make([]KeyedField, 0, numFields)}

	for i := 0; i < numFields; i++ {
		field := KeyedField{Key: EncodeBase26(index + int64(i) + nameOffset)}
		switch (index + int64(i)) % 3 {
		case 0:
			field.Kind = IntField
			field.Int = int64(g.rnd.RandomIntn(10001))
		case 1:
			field.Kind = FloatField
			field.Float = g.rnd.RandomFloat64() * 100
		default:
			field.Kind = WordField
			field.Word = EncodeBase26(nameOffset + g.rnd.RandomInt63n(90_000_001))
		}
		record.Fields = append(record.Fields, field)
	}
	return record, nil
}
