// Package golakehouse implements a copy-on-write lakehouse table format
// with an Arrow-based read and write API.
//
// Tables live under a base path on local storage or S3. Every write is a
// commit on the table's timeline, identified by a millisecond instant
// time, and rows are merged by record key within partitions. Supported
// operations include:
//
//   - Upsert, insert, delete, and insert-overwrite writes
//   - Snapshot queries at the latest commit
//   - Time travel queries at a past instant
//   - Incremental queries over a commit time range
//
// # Quick Start
//
// Create an engine on local storage:
//
//	engine, err := golakehouse.Open(ctx,
//	    golakehouse.WithLocalStorage("/tmp/warehouse"),
//	)
//
// Write a batch of records:
//
//	commitTime, err := engine.Write(ctx, "trips", batch, map[string]string{
//	    "table.name":                  "trips",
//	    "write.recordkey.field":       "uuid",
//	    "write.partitionpath.field":   "partitionpath",
//	    "write.precombine.field":      "ts",
//	})
//
// Read it back:
//
//	df, err := engine.Read(ctx, "trips", nil)
//
// Travel to a past commit:
//
//	df, err := engine.Read(ctx, "trips", map[string]string{
//	    "read.as.of.instant": "2021-07-28 14:11:08.000",
//	})
//
// # Architecture
//
// The engine is a thin facade over the storage packages:
//
//   - io: FileIO abstraction with local filesystem and S3 backends
//   - meta: table descriptor and schema, bridged to Arrow
//   - timeline: commit instants and Avro commit manifests
//   - dataset: the write and read paths over parquet file slices
//   - query: an optional SQL planner, installed via WithSQLExtension
//
// # Write Operations
//
// Writes default to upsert: incoming rows replace rows with the same
// record key, and duplicate incoming keys are deduplicated by keeping the
// greatest precombine value. Insert appends without merging, delete
// removes rows by record key, and insert_overwrite replaces every
// partition touched by the incoming batch.
package golakehouse
