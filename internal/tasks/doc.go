// Package tasks implements the aggregation and batched-write pipelines
// behind the JSON API.
//
// The core abstraction is [Engine], which owns the upstream catalog client
// and a [Pacer]. The engine resolves free-text queries to a single artist,
// folds tracks from several upstream sources into a deduplicated set, and
// writes user-selected tracks to a playlist in bounded batches.
//
// Serialized upstream loops (per-album track fetches, batch appends) go
// through the pacer because Spotify enforces a sliding-window rate limit
// across the whole token. Concurrent fan-out would trade latency for 429s,
// so the loops stay sequential and the pacer spaces the calls out.
package tasks
