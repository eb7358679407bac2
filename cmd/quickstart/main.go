// Command quickstart drives a scripted tour of the lakehouse engine
// against a trips table: inserts, updates, snapshot and time travel
// queries, incremental and point-in-time reads, soft and hard deletes,
// and an insert-overwrite of one partition.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	golakehouse "github.com/go-lakehouse/go-lakehouse"
	"github.com/go-lakehouse/go-lakehouse/datagen"
	"github.com/go-lakehouse/go-lakehouse/dataset"
	"github.com/go-lakehouse/go-lakehouse/query"
	"github.com/go-lakehouse/go-lakehouse/timeline"
)

const (
	snapshotView    = "trips_snapshot"
	incrementalView = "trips_incremental"
	pointInTimeView = "trips_point_in_time"
	timeTravelView  = "time_travel_query"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("quickstart", flag.ContinueOnError)
	flags.SetOutput(stderr)
	basePath := flags.String("base-path", "", "table base path (default: a fresh temp directory)")
	seed := flags.Int64("seed", 46474747, "data generator seed")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: quickstart [flags] <tableName>\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return 1
	}

	path := *basePath
	if path == "" {
		dir, err := os.MkdirTemp("", "lakehouse_trips_cow")
		if err != nil {
			fmt.Fprintf(stderr, "quickstart: %v\n", err)
			return 1
		}
		path = dir
	}

	if err := run(flags.Arg(0), path, *seed, stdout); err != nil {
		fmt.Fprintf(stderr, "quickstart: %v\n", err)
		return 1
	}
	return 0
}

func run(tableName, basePath string, seed int64, out io.Writer) error {
	ctx := context.Background()

	engine, err := golakehouse.Open(ctx,
		golakehouse.WithLocalStorage(basePath),
		golakehouse.WithCompression(golakehouse.CompressionSnappy),
		golakehouse.WithSQLExtension(query.NewPlanner()),
	)
	if err != nil {
		return err
	}

	q := &quickstart{
		engine:    engine,
		gen:       datagen.NewGenerator(seed),
		tableName: tableName,
		basePath:  basePath,
		out:       out,
	}

	steps := []struct {
		title string
		fn    func(context.Context) error
	}{
		{"Insert Data", q.insertData},
		{"Query Data", q.queryData},
		{"Update Data", q.updateData},
		{"Query Data", q.queryData},
		{"Time Travel Query", q.timeTravelQuery},
		{"Incremental Query", q.incrementalQuery},
		{"Point-in-time Query", q.pointInTimeQuery},
		{"Soft Deletes", q.softDeletes},
		{"Query Data", q.queryData},
		{"Hard Deletes", q.hardDeletes},
		{"Query Data", q.queryData},
		{"Insert Overwrite", q.insertOverwrite},
		{"Query Data", q.queryData},
	}
	for _, step := range steps {
		fmt.Fprintf(out, "=== %s ===\n", step.title)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
	}
	return nil
}

type quickstart struct {
	engine    *golakehouse.Engine
	gen       *datagen.Generator
	tableName string
	basePath  string
	out       io.Writer

	// commit times collected by the incremental query step
	commits []string
}

// writeOptions builds the option map shared by every write.
func (q *quickstart) writeOptions(operation string) map[string]string {
	return map[string]string{
		dataset.OptTableName:          q.tableName,
		dataset.OptRecordKeyField:     datagen.FieldUUID,
		dataset.OptPartitionPathField: datagen.FieldPartitionPath,
		dataset.OptPrecombineField:    datagen.FieldTs,
		dataset.OptOperation:          operation,
		dataset.OptParallelism:        "2",
	}
}

// refreshSnapshotView reads the latest snapshot and registers it as the
// trips_snapshot view.
func (q *quickstart) refreshSnapshotView(ctx context.Context) error {
	df, err := q.engine.Read(ctx, q.basePath, nil)
	if err != nil {
		return err
	}
	q.engine.CreateOrReplaceView(snapshotView, df)
	return nil
}

func (q *quickstart) insertData(ctx context.Context) error {
	inserts := q.gen.GenerateInserts(10)
	defer inserts.Release()

	_, err := q.engine.Write(ctx, q.basePath, inserts, q.writeOptions(dataset.OperationUpsert))
	return err
}

func (q *quickstart) updateData(ctx context.Context) error {
	updates := q.gen.GenerateUpdates(10)
	defer updates.Release()

	_, err := q.engine.Write(ctx, q.basePath, updates, q.writeOptions(dataset.OperationUpsert))
	return err
}

func (q *quickstart) queryData(ctx context.Context) error {
	if err := q.refreshSnapshotView(ctx); err != nil {
		return err
	}

	df, err := q.engine.SQL(ctx, "SELECT fare, begin_lon, begin_lat, ts FROM trips_snapshot WHERE fare > 20.0")
	if err != nil {
		return err
	}
	df.Show(q.out)

	df, err = q.engine.SQL(ctx, "SELECT _commit_time, _record_key, _partition_path, rider, driver, fare FROM trips_snapshot")
	if err != nil {
		return err
	}
	df.Show(q.out)
	return nil
}

// timeTravelQuery reads the table as of the first commit, expressed in
// each accepted timestamp form.
func (q *quickstart) timeTravelQuery(ctx context.Context) error {
	commits, err := q.engine.Commits(ctx, q.basePath)
	if err != nil {
		return err
	}

	forms, err := asOfForms(commits[0])
	if err != nil {
		return err
	}
	for _, asOf := range forms {
		df, err := q.engine.Read(ctx, q.basePath, map[string]string{
			dataset.OptAsOfInstant: asOf,
		})
		if err != nil {
			return fmt.Errorf("as of %q: %w", asOf, err)
		}
		q.engine.CreateOrReplaceView(timeTravelView, df)

		result, err := q.engine.SQL(ctx, "SELECT begin_lat, begin_lon, driver, end_lat, end_lon, fare, partitionpath, rider, ts, uuid FROM time_travel_query")
		if err != nil {
			return err
		}
		fmt.Fprintf(q.out, "as of %s: %d rows\n", asOf, result.Count())
		result.Show(q.out)
	}
	return nil
}

// asOfForms renders one commit time in the three accepted as-of forms:
// seconds precision, full timestamp, and date only.
func asOfForms(instantTime string) ([]string, error) {
	t, err := time.Parse(timeline.InstantTimeLayout, instantTime[:14])
	if err != nil {
		return nil, fmt.Errorf("malformed commit time %q: %w", instantTime, err)
	}
	return []string{
		instantTime[:14],
		t.Format("2006-01-02 15:04:05") + "." + instantTime[14:],
		t.Format("2006-01-02"),
	}, nil
}

func (q *quickstart) incrementalQuery(ctx context.Context) error {
	if err := q.refreshSnapshotView(ctx); err != nil {
		return err
	}

	df, err := q.engine.SQL(ctx, "SELECT DISTINCT(_commit_time) AS commit_time FROM trips_snapshot ORDER BY commit_time LIMIT 50")
	if err != nil {
		return err
	}
	q.commits = q.commits[:0]
	for _, row := range df.Rows() {
		q.commits = append(q.commits, row["commit_time"].(string))
	}
	if len(q.commits) < 2 {
		return fmt.Errorf("need at least two commits, have %d", len(q.commits))
	}
	beginTime := q.commits[len(q.commits)-2]

	incremental, err := q.engine.Read(ctx, q.basePath, map[string]string{
		dataset.OptQueryType:    dataset.QueryTypeIncremental,
		dataset.OptBeginInstant: beginTime,
	})
	if err != nil {
		return err
	}
	q.engine.CreateOrReplaceView(incrementalView, incremental)

	result, err := q.engine.SQL(ctx, "SELECT _commit_time, fare, begin_lon, begin_lat, ts FROM trips_incremental WHERE fare > 20.0")
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "changes after %s:\n", beginTime)
	result.Show(q.out)
	return nil
}

func (q *quickstart) pointInTimeQuery(ctx context.Context) error {
	endTime := q.commits[len(q.commits)-2]

	pointInTime, err := q.engine.Read(ctx, q.basePath, map[string]string{
		dataset.OptQueryType:    dataset.QueryTypeIncremental,
		dataset.OptBeginInstant: dataset.BeginInstantEarliest,
		dataset.OptEndInstant:   endTime,
	})
	if err != nil {
		return err
	}
	q.engine.CreateOrReplaceView(pointInTimeView, pointInTime)

	result, err := q.engine.SQL(ctx, "SELECT _commit_time, fare, begin_lon, begin_lat, ts FROM trips_point_in_time WHERE fare > 20.0")
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "changes through %s:\n", endTime)
	result.Show(q.out)
	return nil
}

// softDeletes nullifies the non-key fields of two records by upserting
// them back; the row count stays the same while the non-null rider count
// drops by two.
func (q *quickstart) softDeletes(ctx context.Context) error {
	if err := q.reportRiderCounts(ctx); err != nil {
		return err
	}

	picked, err := q.engine.SQL(ctx, "SELECT * FROM trips_snapshot LIMIT 2")
	if err != nil {
		return err
	}

	kept := []string{datagen.FieldUUID, datagen.FieldPartitionPath, datagen.FieldTs}
	softRows := make([]dataset.Row, 0, picked.Count())
	for _, row := range picked.Rows() {
		soft := make(dataset.Row, len(kept))
		for _, field := range kept {
			soft[field] = row[field]
		}
		softRows = append(softRows, soft)
	}

	rec, err := dataset.RecordFromRows(datagen.Schema(), softRows)
	if err != nil {
		return err
	}
	defer rec.Release()

	if _, err := q.engine.Write(ctx, q.basePath, rec, q.writeOptions(dataset.OperationUpsert)); err != nil {
		return err
	}

	if err := q.refreshSnapshotView(ctx); err != nil {
		return err
	}
	return q.reportRiderCounts(ctx)
}

func (q *quickstart) reportRiderCounts(ctx context.Context) error {
	total, err := q.engine.SQL(ctx, "SELECT uuid, partitionpath FROM trips_snapshot")
	if err != nil {
		return err
	}
	nonNull, err := q.engine.SQL(ctx, "SELECT uuid, partitionpath FROM trips_snapshot WHERE rider IS NOT NULL")
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "trip count: %d, non null rider count: %d\n", total.Count(), nonNull.Count())
	return nil
}

// hardDeletes removes two records from the table; the row count drops by
// two.
func (q *quickstart) hardDeletes(ctx context.Context) error {
	if err := q.refreshSnapshotView(ctx); err != nil {
		return err
	}

	total, err := q.engine.SQL(ctx, "SELECT uuid, partitionpath FROM trips_snapshot")
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "total count: %d\n", total.Count())

	picked, err := q.engine.SQL(ctx, "SELECT uuid, partitionpath FROM trips_snapshot LIMIT 2")
	if err != nil {
		return err
	}

	deleteRows := make([]dataset.Row, 0, picked.Count())
	for _, row := range picked.Rows() {
		deleteRows = append(deleteRows, dataset.Row{
			datagen.FieldUUID:          row[datagen.FieldUUID],
			datagen.FieldPartitionPath: row[datagen.FieldPartitionPath],
			datagen.FieldTs:            int64(0),
		})
	}

	rec, err := dataset.RecordFromRows(datagen.Schema(), deleteRows)
	if err != nil {
		return err
	}
	defer rec.Release()

	if _, err := q.engine.Write(ctx, q.basePath, rec, q.writeOptions(dataset.OperationDelete)); err != nil {
		return err
	}

	if err := q.refreshSnapshotView(ctx); err != nil {
		return err
	}
	total, err = q.engine.SQL(ctx, "SELECT uuid, partitionpath FROM trips_snapshot")
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "total count: %d\n", total.Count())
	return nil
}

// insertOverwrite replaces the san_francisco partition with freshly
// generated trips, listing the table keys before and after.
func (q *quickstart) insertOverwrite(ctx context.Context) error {
	if err := q.showKeys(ctx); err != nil {
		return err
	}

	overwritePartition := datagen.PartitionPaths[0]
	var overwriteRows []dataset.Row
	for len(overwriteRows) == 0 {
		batch := q.gen.GenerateInserts(10)
		rows := dataset.RowsFromRecord(batch)
		batch.Release()
		for _, row := range rows {
			if row[datagen.FieldPartitionPath] == overwritePartition {
				overwriteRows = append(overwriteRows, row)
			}
		}
	}

	rec, err := dataset.RecordFromRows(datagen.Schema(), overwriteRows)
	if err != nil {
		return err
	}
	defer rec.Release()

	if _, err := q.engine.Write(ctx, q.basePath, rec, q.writeOptions(dataset.OperationInsertOverwrite)); err != nil {
		return err
	}
	return q.showKeys(ctx)
}

func (q *quickstart) showKeys(ctx context.Context) error {
	df, err := q.engine.Read(ctx, q.basePath, nil)
	if err != nil {
		return err
	}
	df.Select(datagen.FieldUUID, datagen.FieldPartitionPath).
		Sort(datagen.FieldPartitionPath, datagen.FieldUUID).
		Show(q.out)
	return nil
}
