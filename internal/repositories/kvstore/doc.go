// Package kvstore is the durable key-value layer under the credential store.
//
// Every backend stores string values under string keys and satisfies
// Repository. Get reports a missing key with common.ErrorNotFound; Remove of
// a missing key is not an error. Backends that can read-modify-write a key
// atomically also implement Updater.
//
// Backends:
//   - SQLiteRepository   on-device database (modernc.org/sqlite), the default
//   - PostgresRepository shared database (pgx)
//   - RedisRepository    Redis (go-redis)
//   - S3Repository       one object per key in an S3-compatible bucket
//   - MemoryRepository   process memory, for tests and throwaway runs
package kvstore
