// Package sqlite contains the SQLite repository for segmentation
// results.
//
// All database read/write operations for segmentation runs and their
// per-cluster summaries belong here rather than in the domain package.
// This keeps the segmentation algorithms free of SQL noise and makes it
// easy to swap storage backends for testing.
package sqlite
