// Package cache memoizes health snapshots so that expensive probes run at
// most once per TTL, however often the endpoint is polled.
//
// Contributor wraps a single contributor under a fixed key; Middleware
// derives keys from observe.ComponentMeta and skips components tagged as
// liveness or realtime. Policy.TTLFor chooses a TTL per status so failures
// can be cached for a shorter time, or not at all.
//
// MemoryCache grows without bound; LRUCache caps the number of snapshots.
package cache
