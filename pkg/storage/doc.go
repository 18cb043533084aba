// Package storage implements the snapshot persistence gateway over three
// interchangeable backends: a MongoDB collection, an S3-compatible object
// store, and flat JSON files. The Multi wrapper fans writes out to the
// configured target set and serves reads from the first backend that has
// the snapshot.
//
// All backends share the same contract: Upsert overwrites the previous
// snapshot for a username (last write wins, no versioning) and Get returns
// ErrNotFound for absent keys rather than an error.
package storage
