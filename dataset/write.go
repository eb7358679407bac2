package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-lakehouse/go-lakehouse/timeline"
)

// Write applies one batch of rows to the table and commits it. The incoming
// rows carry logical columns only; meta columns are stamped during the
// write. Returns the committed instant.
func (d *Dataset) Write(ctx context.Context, rows []Row, opts *WriteOptions) (timeline.Instant, error) {
	if err := d.checkWriteOptions(opts); err != nil {
		return timeline.Instant{}, err
	}

	ts, err := d.tl.NextInstantTime()
	if err != nil {
		return timeline.Instant{}, err
	}

	action := timeline.ActionCommit
	if opts.Operation == OperationInsertOverwrite {
		action = timeline.ActionReplaceCommit
	}
	instant := timeline.Instant{Time: ts, Action: action}

	var tasks []writeTask
	var replaced []string

	switch opts.Operation {
	case OperationInsert:
		for _, part := range d.groupByPartition(rows) {
			tasks = append(tasks, part)
		}

	case OperationUpsert:
		deduped := d.precombine(rows, opts.PrecombineField)
		live, err := d.liveFilesByPartition(ctx)
		if err != nil {
			return timeline.Instant{}, err
		}
		for _, part := range d.groupByPartition(deduped) {
			keys := d.recordKeys(part.rows)
			carried, err := d.partitionRowsExcluding(ctx, live[part.partition], keys)
			if err != nil {
				return timeline.Instant{}, err
			}
			replaced = append(replaced, filePaths(live[part.partition])...)
			part.rows = append(carried, part.rows...)
			tasks = append(tasks, part)
		}

	case OperationDelete:
		live, err := d.liveFilesByPartition(ctx)
		if err != nil {
			return timeline.Instant{}, err
		}
		for _, part := range d.groupByPartition(rows) {
			if len(live[part.partition]) == 0 {
				continue
			}
			keys := d.recordKeys(part.rows)
			remaining, err := d.partitionRowsExcluding(ctx, live[part.partition], keys)
			if err != nil {
				return timeline.Instant{}, err
			}
			replaced = append(replaced, filePaths(live[part.partition])...)
			if len(remaining) > 0 {
				tasks = append(tasks, writeTask{partition: part.partition, rows: remaining})
			}
		}

	case OperationInsertOverwrite:
		live, err := d.liveFilesByPartition(ctx)
		if err != nil {
			return timeline.Instant{}, err
		}
		for _, part := range d.groupByPartition(rows) {
			replaced = append(replaced, filePaths(live[part.partition])...)
			tasks = append(tasks, part)
		}

	default:
		return timeline.Instant{}, fmt.Errorf("%w: %s", ErrUnknownOperation, opts.Operation)
	}

	added, err := d.writePartitions(ctx, instant.Time, tasks, opts.Parallelism)
	if err != nil {
		return timeline.Instant{}, err
	}

	cm := &timeline.CommitMetadata{
		Instant:       instant,
		Operation:     opts.Operation,
		AddedFiles:    added,
		ReplacedFiles: replaced,
	}
	if err := d.tl.WriteCommit(ctx, cm); err != nil {
		return timeline.Instant{}, err
	}
	return instant, nil
}

// checkWriteOptions verifies the option map agrees with the persisted
// descriptor. A table keeps the key configuration of its first write.
func (d *Dataset) checkWriteOptions(opts *WriteOptions) error {
	for _, chk := range []struct {
		key  string
		got  string
		want string
	}{
		{OptTableName, opts.TableName, d.desc.Name},
		{OptRecordKeyField, opts.RecordKeyField, d.desc.RecordKeyField},
		{OptPartitionPathField, opts.PartitionPathField, d.desc.PartitionPathField},
		{OptPrecombineField, opts.PrecombineField, d.desc.PrecombineField},
	} {
		if chk.got != chk.want {
			return &ValidationError{
				Option: chk.key,
				Reason: fmt.Sprintf("%q does not match table configuration %q", chk.got, chk.want),
			}
		}
	}
	return nil
}

// writeTask is one partition's worth of rows to write as a new file slice.
type writeTask struct {
	partition string
	rows      []Row
}

// groupByPartition splits rows by partition path value, ordered by
// partition for deterministic commits.
func (d *Dataset) groupByPartition(rows []Row) []writeTask {
	grouped := make(map[string][]Row)
	for _, row := range rows {
		p := FormatValue(row[d.desc.PartitionPathField])
		grouped[p] = append(grouped[p], row)
	}

	partitions := make([]string, 0, len(grouped))
	for p := range grouped {
		partitions = append(partitions, p)
	}
	sort.Strings(partitions)

	tasks := make([]writeTask, len(partitions))
	for i, p := range partitions {
		tasks[i] = writeTask{partition: p, rows: grouped[p]}
	}
	return tasks
}

// precombine deduplicates a batch by record key; for duplicate keys the row
// with the greatest precombine value wins, later rows breaking ties.
func (d *Dataset) precombine(rows []Row, precombineField string) []Row {
	byKey := make(map[string]int)
	var out []Row
	for _, row := range rows {
		key := FormatValue(row[d.desc.RecordKeyField])
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, row)
			continue
		}
		if !Compare(row[precombineField], out[idx][precombineField], OpLt) {
			out[idx] = row
		}
	}
	return out
}

// recordKeys collects the formatted record keys of a batch.
func (d *Dataset) recordKeys(rows []Row) map[string]struct{} {
	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		keys[FormatValue(row[d.desc.RecordKeyField])] = struct{}{}
	}
	return keys
}

// liveFilesByPartition returns the live data files of the latest snapshot
// grouped by partition. An empty timeline yields an empty map.
func (d *Dataset) liveFilesByPartition(ctx context.Context) (map[string][]timeline.DataFile, error) {
	latest, err := d.tl.Latest()
	if err != nil {
		if d.tl.Empty() {
			return map[string][]timeline.DataFile{}, nil
		}
		return nil, err
	}

	files, err := d.tl.ActiveFiles(ctx, latest)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]timeline.DataFile)
	for _, f := range files {
		grouped[f.PartitionPath] = append(grouped[f.PartitionPath], f)
	}
	return grouped, nil
}

// partitionRowsExcluding reads the stored rows of a partition's files,
// dropping rows whose record key is in the exclusion set. Returned rows
// keep their meta columns and are carried into the rewritten file slice.
func (d *Dataset) partitionRowsExcluding(ctx context.Context, files []timeline.DataFile, exclude map[string]struct{}) ([]Row, error) {
	var carried []Row
	for _, f := range files {
		rows, err := d.readDataFile(ctx, f.Path)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			key := FormatValue(row[RecordKeyField])
			if _, drop := exclude[key]; !drop {
				carried = append(carried, row)
			}
		}
	}
	return carried, nil
}

func filePaths(files []timeline.DataFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// writePartitions writes the partition file slices, at most parallelism at
// a time, and returns the commit manifest entries in task order.
func (d *Dataset) writePartitions(ctx context.Context, instantTime string, tasks []writeTask, parallelism int) ([]timeline.DataFile, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	if parallelism < 1 {
		parallelism = 1
	}

	added := make([]timeline.DataFile, len(tasks))
	sem := make(chan struct{}, parallelism)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task writeTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			df, err := d.writeDataFile(ctx, task.partition, instantTime, i, task.rows)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to write partition %s: %w", task.partition, err)
				return
			}
			added[i] = df
		}(i, task)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return added, nil
}
