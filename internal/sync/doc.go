// Package sync keeps per content type search indices in step with the content store.
//
// A Synchronizer owns three flows:
//
//   - ReindexAll drops and rebuilds the index of every searchable content type,
//     applies the derived mapping and imports all published records.
//   - OnSave upserts a single record, updating the document when it already exists.
//   - OnDelete removes a single record, treating a missing document as a normal outcome.
//
// Nothing is retried. Failures of one step are recorded and the run moves on,
// so a broken content type never blocks the others. Human readable progress of
// the last full reindex is kept in a DebugLog for display on the management page.
package sync
