// Package datagen produces batches of synthetic trip records for driving
// and testing table writes.
package datagen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
)

// PartitionPaths are the region partitions trips fall into.
var PartitionPaths = []string{
	"americas/united_states/san_francisco",
	"americas/brazil/sao_paulo",
	"asia/india/chennai",
}

// Field names of a trip record.
const (
	FieldUUID          = "uuid"
	FieldPartitionPath = "partitionpath"
	FieldTs            = "ts"
	FieldRider         = "rider"
	FieldDriver        = "driver"
	FieldBeginLat      = "begin_lat"
	FieldBeginLon      = "begin_lon"
	FieldEndLat        = "end_lat"
	FieldEndLon        = "end_lon"
	FieldFare          = "fare"
)

// Schema is the Arrow schema of a trips batch.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: FieldUUID, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: FieldPartitionPath, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: FieldTs, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: FieldRider, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: FieldDriver, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: FieldBeginLat, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: FieldBeginLon, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: FieldEndLat, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: FieldEndLon, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: FieldFare, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
}

// tripKey identifies a generated trip for later updates and deletes.
type tripKey struct {
	uuid          string
	partitionPath string
}

// Generator emits trips batches. Updates and deletes reuse the keys of
// previously generated inserts, so a seeded generator drives a
// reproducible write sequence.
type Generator struct {
	rnd   *rand.Rand
	label string
	keys  []tripKey
}

// NewGenerator creates a generator. The same seed yields the same
// sequence of batches, record keys included.
func NewGenerator(seed int64) *Generator {
	rnd := rand.New(rand.NewSource(seed))
	return &Generator{
		rnd:   rnd,
		label: fmt.Sprintf("%03d", rnd.Intn(1000)),
	}
}

// KeyCount returns the number of distinct keys issued so far.
func (g *Generator) KeyCount() int {
	return len(g.keys)
}

// GenerateInserts produces a batch of n new trips and remembers their
// keys.
func (g *Generator) GenerateInserts(n int) arrow.Record {
	keys := make([]tripKey, n)
	for i := range keys {
		keys[i] = tripKey{
			uuid:          uuid.Must(uuid.NewRandomFromReader(g.rnd)).String(),
			partitionPath: PartitionPaths[g.rnd.Intn(len(PartitionPaths))],
		}
	}
	g.keys = append(g.keys, keys...)
	return g.buildBatch(keys)
}

// GenerateUpdates produces a batch of n trips reusing previously issued
// keys, with fresh fares, coordinates, and timestamps.
func (g *Generator) GenerateUpdates(n int) arrow.Record {
	keys := make([]tripKey, n)
	for i := range keys {
		keys[i] = g.keys[g.rnd.Intn(len(g.keys))]
	}
	return g.buildBatch(keys)
}

// GenerateDeletes produces a batch naming n previously issued keys, in
// issue order. Rows carry the key fields plus a fresh timestamp.
func (g *Generator) GenerateDeletes(n int) arrow.Record {
	if n > len(g.keys) {
		n = len(g.keys)
	}
	return g.buildBatch(g.keys[:n])
}

// buildBatch builds one trips record batch for the given keys.
func (g *Generator) buildBatch(keys []tripKey) arrow.Record {
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), Schema())
	defer builder.Release()

	uuidB := builder.Field(0).(*array.StringBuilder)
	partitionB := builder.Field(1).(*array.StringBuilder)
	tsB := builder.Field(2).(*array.Int64Builder)
	riderB := builder.Field(3).(*array.StringBuilder)
	driverB := builder.Field(4).(*array.StringBuilder)
	beginLatB := builder.Field(5).(*array.Float64Builder)
	beginLonB := builder.Field(6).(*array.Float64Builder)
	endLatB := builder.Field(7).(*array.Float64Builder)
	endLonB := builder.Field(8).(*array.Float64Builder)
	fareB := builder.Field(9).(*array.Float64Builder)

	now := time.Now().UnixMilli()
	for _, key := range keys {
		uuidB.Append(key.uuid)
		partitionB.Append(key.partitionPath)
		tsB.Append(now - g.rnd.Int63n(7*24*time.Hour.Milliseconds()))
		riderB.Append("rider-" + g.label)
		driverB.Append("driver-" + g.label)
		beginLatB.Append(g.rnd.Float64())
		beginLonB.Append(g.rnd.Float64())
		endLatB.Append(g.rnd.Float64())
		endLonB.Append(g.rnd.Float64())
		fareB.Append(g.rnd.Float64() * 100)
	}

	return builder.NewRecord()
}
