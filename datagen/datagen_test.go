package datagen

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
)

func TestGenerateInserts(t *testing.T) {
	g := NewGenerator(42)
	rec := g.GenerateInserts(10)
	defer rec.Release()

	if rec.NumRows() != 10 {
		t.Fatalf("NumRows = %d, want 10", rec.NumRows())
	}
	if !rec.Schema().Equal(Schema()) {
		t.Error("batch schema should match Schema()")
	}
	if g.KeyCount() != 10 {
		t.Errorf("KeyCount = %d, want 10", g.KeyCount())
	}

	partitions := rec.Column(1).(*array.String)
	known := make(map[string]struct{}, len(PartitionPaths))
	for _, p := range PartitionPaths {
		known[p] = struct{}{}
	}
	for i := 0; i < int(rec.NumRows()); i++ {
		if _, ok := known[partitions.Value(i)]; !ok {
			t.Errorf("row %d partition %q not in PartitionPaths", i, partitions.Value(i))
		}
	}

	fares := rec.Column(9).(*array.Float64)
	for i := 0; i < int(rec.NumRows()); i++ {
		if fares.Value(i) < 0 || fares.Value(i) >= 100 {
			t.Errorf("row %d fare %f out of range", i, fares.Value(i))
		}
	}
}

func TestGenerateUpdatesReuseKeys(t *testing.T) {
	g := NewGenerator(42)
	inserts := g.GenerateInserts(5)
	defer inserts.Release()

	issued := make(map[string]string)
	uuids := inserts.Column(0).(*array.String)
	partitions := inserts.Column(1).(*array.String)
	for i := 0; i < int(inserts.NumRows()); i++ {
		issued[uuids.Value(i)] = partitions.Value(i)
	}

	updates := g.GenerateUpdates(8)
	defer updates.Release()

	if updates.NumRows() != 8 {
		t.Fatalf("NumRows = %d, want 8", updates.NumRows())
	}
	upUUIDs := updates.Column(0).(*array.String)
	upPartitions := updates.Column(1).(*array.String)
	for i := 0; i < int(updates.NumRows()); i++ {
		partition, ok := issued[upUUIDs.Value(i)]
		if !ok {
			t.Errorf("update row %d key %s was never issued", i, upUUIDs.Value(i))
			continue
		}
		if partition != upPartitions.Value(i) {
			t.Errorf("update row %d moved partition: %s vs %s", i, upPartitions.Value(i), partition)
		}
	}

	// Updates do not mint new keys
	if g.KeyCount() != 5 {
		t.Errorf("KeyCount = %d, want 5", g.KeyCount())
	}
}

func TestGenerateDeletesBounded(t *testing.T) {
	g := NewGenerator(1)
	rec := g.GenerateInserts(3)
	rec.Release()

	deletes := g.GenerateDeletes(10)
	defer deletes.Release()

	if deletes.NumRows() != 3 {
		t.Errorf("NumRows = %d, want 3", deletes.NumRows())
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(7).GenerateInserts(4)
	defer a.Release()
	b := NewGenerator(7).GenerateInserts(4)
	defer b.Release()

	au := a.Column(0).(*array.String)
	bu := b.Column(0).(*array.String)
	ap := a.Column(1).(*array.String)
	bp := b.Column(1).(*array.String)
	for i := 0; i < 4; i++ {
		if au.Value(i) != bu.Value(i) {
			t.Errorf("row %d key differs across same-seed generators", i)
		}
		if ap.Value(i) != bp.Value(i) {
			t.Errorf("row %d partition differs across same-seed generators", i)
		}
	}
}
