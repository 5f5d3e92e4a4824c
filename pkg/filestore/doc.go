// Package filestore provides the file lifecycle coordination between an
// object store and a relational metadata table.
//
// It exposes a single Service interface that orchestrates upload, list,
// download, and delete of files, keeping the two stores consistent with an
// object-write-first ordering. Implementations of repositories (e.g., memory,
// SQLite, Postgres) and blob stores (e.g., memory, MinIO, S3) are provided
// under subpackages.
//
// Consistency Model
//
// No transaction spans the two stores. Upload writes the blob before the
// metadata row, so an insert failure leaves an orphaned blob with no
// referencing record; the admin package provides a reconciliation sweep for
// those. Delete removes the blob before the row, so a crash between the two
// steps never leaves a row pointing at a missing blob through the normal
// flow.
package filestore
