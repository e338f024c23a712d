// Package sources provides the content stores records are read from during a
// full reindex.
//
// Two implementations exist:
//
//   - file reads a YAML or JSON document listing records, re-read on every call
//   - database queries a content_records table through database/sql, using
//     pgx for postgres and modernc.org/sqlite for sqlite
//
// Both convert stored datetime strings of datetime typed fields into time
// values, so the synchronizer sees the same types a CMS storage layer hands out.
package sources
