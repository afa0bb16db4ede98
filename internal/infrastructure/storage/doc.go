// Package storage provides the durable client-side storage behind the
// session and tabs stores.
//
// A Store maps a namespace to one opaque snapshot. Backends:
//   - FileStore: one JSON file per namespace, optionally zstd-compressed
//   - SQLiteStore: a snapshots table in a local SQLite file
//   - RedisStore: shared across shells of the same user
//   - MemoryStore: tests and throwaway shells
//
// Record[T] is the typed adapter the stores use: it encodes snapshots with
// sonic and treats a missing namespace as "nothing saved yet".
//
// Example Usage:
//
//	store, err := storage.Open(ctx, cfg.Storage)
//	rec := storage.NewRecord[types.TabsState](store, "erp-tabs-storage")
//	state, found, err := rec.Load(ctx)
package storage
