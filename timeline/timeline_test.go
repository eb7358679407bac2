package timeline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	lakeio "github.com/go-lakehouse/go-lakehouse/io"
)

func TestCommitSerializeRoundTrip(t *testing.T) {
	cm := &CommitMetadata{
		Instant:   Instant{Time: "20210728141108123", Action: ActionCommit},
		Operation: "upsert",
		AddedFiles: []DataFile{
			{
				PartitionPath:   "americas/brazil/sao_paulo",
				Path:            "/tmp/trips/americas/brazil/sao_paulo/a.parquet",
				Name:            "a.parquet",
				RecordCount:     7,
				FileSizeInBytes: 1024,
			},
			{
				PartitionPath:   "asia/india/chennai",
				Path:            "/tmp/trips/asia/india/chennai/b.parquet",
				Name:            "b.parquet",
				RecordCount:     3,
				FileSizeInBytes: 512,
			},
		},
		ReplacedFiles: []string{"/tmp/trips/asia/india/chennai/old.parquet"},
	}

	data, err := SerializeCommit(cm)
	if err != nil {
		t.Fatalf("SerializeCommit failed: %v", err)
	}

	got, err := ReadCommit(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCommit failed: %v", err)
	}

	if !reflect.DeepEqual(got, cm) {
		t.Errorf("round trip = %+v, want %+v", got, cm)
	}
}

func writeTestCommit(t *testing.T, tl *Timeline, action Action, operation string, added []DataFile, replaced []string) Instant {
	t.Helper()

	ts, err := tl.NextInstantTime()
	if err != nil {
		t.Fatalf("NextInstantTime failed: %v", err)
	}

	cm := &CommitMetadata{
		Instant:       Instant{Time: ts, Action: action},
		Operation:     operation,
		AddedFiles:    added,
		ReplacedFiles: replaced,
	}
	if err := tl.WriteCommit(context.Background(), cm); err != nil {
		t.Fatalf("WriteCommit failed: %v", err)
	}
	return cm.Instant
}

func TestTimelineLoadEmpty(t *testing.T) {
	ctx := context.Background()
	fio := lakeio.NewLocalFileIO()

	tl, err := Load(ctx, fio, t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !tl.Empty() {
		t.Error("new timeline should be empty")
	}
	if _, err := tl.Latest(); !errors.Is(err, ErrNoCompletedInstants) {
		t.Errorf("Latest error = %v, want ErrNoCompletedInstants", err)
	}
}

func TestTimelineWriteAndReload(t *testing.T) {
	ctx := context.Background()
	fio := lakeio.NewLocalFileIO()
	basePath := t.TempDir()

	tl, err := Load(ctx, fio, basePath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	df := DataFile{PartitionPath: "asia/india/chennai", Path: basePath + "/f.parquet", Name: "f.parquet", RecordCount: 1, FileSizeInBytes: 10}
	first := writeTestCommit(t, tl, ActionCommit, "insert", []DataFile{df}, nil)
	second := writeTestCommit(t, tl, ActionReplaceCommit, "insert_overwrite", nil, []string{df.Path})

	reloaded, err := Load(ctx, fio, basePath)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	want := []Instant{first, second}
	if !reflect.DeepEqual(reloaded.Instants(), want) {
		t.Errorf("Instants = %v, want %v", reloaded.Instants(), want)
	}

	latest, err := reloaded.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != second {
		t.Errorf("Latest = %v, want %v", latest, second)
	}

	cm, err := reloaded.ReadCommitMetadata(ctx, first)
	if err != nil {
		t.Fatalf("ReadCommitMetadata failed: %v", err)
	}
	if cm.Operation != "insert" || len(cm.AddedFiles) != 1 {
		t.Errorf("commit metadata = %+v", cm)
	}
}

func TestTimelineAsOf(t *testing.T) {
	tl := &Timeline{instants: []Instant{
		{Time: "20210728141108000", Action: ActionCommit},
		{Time: "20210728141109000", Action: ActionCommit},
		{Time: "20210728141110000", Action: ActionCommit},
	}}

	got, err := tl.AsOf("20210728141109500")
	if err != nil {
		t.Fatalf("AsOf failed: %v", err)
	}
	if got.Time != "20210728141109000" {
		t.Errorf("AsOf = %s, want 20210728141109000", got.Time)
	}

	// Exact match is inclusive
	got, err = tl.AsOf("20210728141110000")
	if err != nil {
		t.Fatalf("AsOf failed: %v", err)
	}
	if got.Time != "20210728141110000" {
		t.Errorf("AsOf = %s, want 20210728141110000", got.Time)
	}

	if _, err := tl.AsOf("20210728141107999"); !errors.Is(err, ErrInstantNotFound) {
		t.Errorf("AsOf before first commit = %v, want ErrInstantNotFound", err)
	}
}

func TestTimelineBetween(t *testing.T) {
	tl := &Timeline{instants: []Instant{
		{Time: "20210728141108000", Action: ActionCommit},
		{Time: "20210728141109000", Action: ActionCommit},
		{Time: "20210728141110000", Action: ActionCommit},
	}}

	// Begin is exclusive, end inclusive
	got := tl.Between("20210728141108000", "20210728141110000")
	if len(got) != 2 || got[0].Time != "20210728141109000" || got[1].Time != "20210728141110000" {
		t.Errorf("Between = %v", got)
	}

	// Sentinel begin covers the whole timeline
	got = tl.Between("000", "")
	if len(got) != 3 {
		t.Errorf("Between from sentinel = %v", got)
	}

	got = tl.Between("20210728141110000", "")
	if len(got) != 0 {
		t.Errorf("Between past latest = %v", got)
	}
}

func TestNextInstantTimeMonotonic(t *testing.T) {
	// Latest instant far in the future forces the bump path.
	tl := &Timeline{instants: []Instant{
		{Time: "99991231235959000", Action: ActionCommit},
	}}

	ts, err := tl.NextInstantTime()
	if err != nil {
		t.Fatalf("NextInstantTime failed: %v", err)
	}
	if ts != "99991231235959001" {
		t.Errorf("NextInstantTime = %s, want 99991231235959001", ts)
	}
}

func TestActiveFilesReplay(t *testing.T) {
	ctx := context.Background()
	fio := lakeio.NewLocalFileIO()
	basePath := t.TempDir()

	tl, err := Load(ctx, fio, basePath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	a := DataFile{PartitionPath: "p1", Path: "/t/p1/a.parquet", Name: "a.parquet", RecordCount: 2, FileSizeInBytes: 20}
	b := DataFile{PartitionPath: "p2", Path: "/t/p2/b.parquet", Name: "b.parquet", RecordCount: 3, FileSizeInBytes: 30}
	first := writeTestCommit(t, tl, ActionCommit, "insert", []DataFile{a, b}, nil)

	// Upsert rewrites partition p1
	a2 := DataFile{PartitionPath: "p1", Path: "/t/p1/a2.parquet", Name: "a2.parquet", RecordCount: 2, FileSizeInBytes: 22}
	second := writeTestCommit(t, tl, ActionCommit, "upsert", []DataFile{a2}, []string{a.Path})

	files, err := tl.ActiveFiles(ctx, second)
	if err != nil {
		t.Fatalf("ActiveFiles failed: %v", err)
	}
	if !reflect.DeepEqual(files, []DataFile{a2, b}) {
		t.Errorf("ActiveFiles = %v, want %v", files, []DataFile{a2, b})
	}

	// Snapshot at the first instant still sees the original file
	files, err = tl.ActiveFiles(ctx, first)
	if err != nil {
		t.Fatalf("ActiveFiles failed: %v", err)
	}
	if !reflect.DeepEqual(files, []DataFile{a, b}) {
		t.Errorf("ActiveFiles as of first = %v, want %v", files, []DataFile{a, b})
	}
}
