package timeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-lakehouse/go-lakehouse/io"
)

// DirName is the directory under the table base path that holds the
// timeline.
const DirName = ".timeline"

var (
	// ErrNoCompletedInstants indicates the timeline holds no commits yet.
	ErrNoCompletedInstants = errors.New("timeline has no completed instants")

	// ErrInstantNotFound indicates no completed instant satisfies the
	// requested point in time.
	ErrInstantNotFound = errors.New("no completed instant at or before requested time")
)

// Timeline is the ordered set of completed instants of one table. A commit
// becomes visible the moment its manifest lands in the timeline directory,
// so reloading the directory is how readers observe concurrent writers.
type Timeline struct {
	basePath string
	fio      io.FileIO
	instants []Instant
}

// Load reads the timeline of the table at basePath. An empty or missing
// timeline directory yields an empty timeline.
func Load(ctx context.Context, fio io.FileIO, basePath string) (*Timeline, error) {
	dir := io.Join(basePath, DirName)
	files, err := fio.ListFiles(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline %s: %w", dir, err)
	}

	t := &Timeline{basePath: basePath, fio: fio}
	for _, f := range files {
		if instant, ok := parseInstantFileName(io.BaseName(f)); ok {
			t.instants = append(t.instants, instant)
		}
	}

	sort.Slice(t.instants, func(i, j int) bool {
		return t.instants[i].Time < t.instants[j].Time
	})
	return t, nil
}

// Instants returns the completed instants in commit order.
func (t *Timeline) Instants() []Instant {
	out := make([]Instant, len(t.instants))
	copy(out, t.instants)
	return out
}

// InstantTimes returns the completed instant times in commit order.
func (t *Timeline) InstantTimes() []string {
	times := make([]string, len(t.instants))
	for i, in := range t.instants {
		times[i] = in.Time
	}
	return times
}

// Empty reports whether the timeline has no completed instants.
func (t *Timeline) Empty() bool {
	return len(t.instants) == 0
}

// Latest returns the most recent completed instant.
func (t *Timeline) Latest() (Instant, error) {
	if len(t.instants) == 0 {
		return Instant{}, ErrNoCompletedInstants
	}
	return t.instants[len(t.instants)-1], nil
}

// AsOf returns the most recent completed instant at or before the given
// instant-comparable timestamp.
func (t *Timeline) AsOf(ts string) (Instant, error) {
	for i := len(t.instants) - 1; i >= 0; i-- {
		if CompareInstantTimes(t.instants[i].Time, ts) <= 0 {
			return t.instants[i], nil
		}
	}
	return Instant{}, fmt.Errorf("%w: %s", ErrInstantNotFound, ts)
}

// Between returns the completed instants with begin < time <= end. An empty
// end means no upper bound.
func (t *Timeline) Between(begin, end string) []Instant {
	var out []Instant
	for _, in := range t.instants {
		if CompareInstantTimes(in.Time, begin) <= 0 {
			continue
		}
		if end != "" && CompareInstantTimes(in.Time, end) > 0 {
			continue
		}
		out = append(out, in)
	}
	return out
}

// NextInstantTime allocates a new instant time strictly greater than every
// completed instant. Wall clock regressions are absorbed by bumping one
// millisecond past the latest instant.
func (t *Timeline) NextInstantTime() (string, error) {
	candidate := FormatInstantTime(time.Now())
	if len(t.instants) == 0 {
		return candidate, nil
	}

	latest := t.instants[len(t.instants)-1]
	if CompareInstantTimes(candidate, latest.Time) > 0 {
		return candidate, nil
	}

	at, err := latest.Timestamp()
	if err != nil {
		return "", err
	}
	return FormatInstantTime(at.Add(time.Millisecond)), nil
}

// WriteCommit persists a commit manifest to the timeline directory and adds
// its instant to this timeline. Writing the manifest is the commit point.
func (t *Timeline) WriteCommit(ctx context.Context, cm *CommitMetadata) error {
	data, err := SerializeCommit(cm)
	if err != nil {
		return err
	}

	location := io.Join(t.basePath, DirName, cm.Instant.FileName())
	if err := io.WriteAll(ctx, t.fio, location, data); err != nil {
		return fmt.Errorf("failed to write commit %s: %w", cm.Instant.Time, err)
	}

	t.instants = append(t.instants, cm.Instant)
	return nil
}

// ReadCommitMetadata loads the commit manifest of one instant.
func (t *Timeline) ReadCommitMetadata(ctx context.Context, instant Instant) (*CommitMetadata, error) {
	location := io.Join(t.basePath, DirName, instant.FileName())
	data, err := io.ReadAll(ctx, t.fio, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", instant.Time, err)
	}
	return ReadCommit(bytes.NewReader(data))
}

// ActiveFiles replays the timeline up to and including the given instant
// and returns the live data files of that snapshot, ordered by partition
// then path.
func (t *Timeline) ActiveFiles(ctx context.Context, upTo Instant) ([]DataFile, error) {
	live := make(map[string]DataFile)
	for _, in := range t.instants {
		if CompareInstantTimes(in.Time, upTo.Time) > 0 {
			break
		}

		cm, err := t.ReadCommitMetadata(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, path := range cm.ReplacedFiles {
			delete(live, path)
		}
		for _, df := range cm.AddedFiles {
			live[df.Path] = df
		}
	}

	files := make([]DataFile, 0, len(live))
	for _, df := range live {
		files = append(files, df)
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].PartitionPath != files[j].PartitionPath {
			return files[i].PartitionPath < files[j].PartitionPath
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}
