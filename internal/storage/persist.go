package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/focusdeck/focusdeck/internal/logger"
)

// Adapter persists the logical state across the five bucket keys,
// writing only buckets whose serialized slice actually changed since
// the last round.
type Adapter struct {
	kv KV

	mu       sync.Mutex
	baseline map[string]string // bucket key -> last-persisted slice JSON
}

// NewAdapter creates an adapter over the given key-value store
func NewAdapter(kv KV) *Adapter {
	return &Adapter{
		kv:       kv,
		baseline: make(map[string]string),
	}
}

// Load reads all five buckets in parallel and merges the present ones
// into a single state. When no bucket exists it falls back to the
// legacy single-bucket layout. found is false when neither exists.
// A corrupt value is treated as a cache miss, never an error.
func (a *Adapter) Load(ctx context.Context) (State, bool, error) {
	type result struct {
		key   string
		value string
		found bool
		err   error
	}

	results := make([]result, len(BucketKeys))
	var wg sync.WaitGroup
	for i, key := range BucketKeys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			v, ok, err := a.kv.Get(ctx, key)
			results[i] = result{key: key, value: v, found: ok, err: err}
		}(i, key)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return State{}, false, fmt.Errorf("failed to read bucket %s: %w", r.key, r.err)
		}
	}

	any := false
	for _, r := range results {
		if r.found {
			any = true
			break
		}
	}

	if !any {
		return a.loadLegacy(ctx)
	}

	var st State
	version := 0
	baseline := make(map[string]string)
	for _, r := range results {
		if !r.found {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(r.value), &env); err != nil {
			logger.Warn("Corrupt bucket treated as missing", logger.F("key", r.key), logger.F("error", err))
			continue
		}
		if err := MergeSlice(&st, r.key, env.State); err != nil {
			logger.Warn("Unreadable bucket slice treated as missing", logger.F("key", r.key), logger.F("error", err))
			continue
		}
		// Versions are written uniformly across buckets; any one wins.
		version = env.Version
		baseline[r.key] = string(env.State)
	}

	a.mu.Lock()
	a.baseline = baseline
	a.mu.Unlock()

	logger.Debug("State loaded", logger.F("version", version), logger.F("buckets", len(baseline)))
	return st, true, nil
}

// loadLegacy reads the pre-split single bucket
func (a *Adapter) loadLegacy(ctx context.Context) (State, bool, error) {
	value, found, err := a.kv.Get(ctx, KeyLegacy)
	if err != nil {
		return State{}, false, fmt.Errorf("failed to read legacy bucket: %w", err)
	}
	if !found {
		return State{}, false, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		logger.Warn("Corrupt legacy bucket treated as missing", logger.F("error", err))
		return State{}, false, nil
	}

	var st State
	if err := json.Unmarshal(env.State, &st); err != nil {
		logger.Warn("Unreadable legacy state treated as missing", logger.F("error", err))
		return State{}, false, nil
	}

	// Seed the change-detection baseline from the legacy content so the
	// next save only writes buckets that actually diverged from it.
	baseline := make(map[string]string)
	for _, key := range BucketKeys {
		slice, err := ProjectSlice(st, key)
		if err != nil {
			continue
		}
		data, err := json.Marshal(slice)
		if err != nil {
			continue
		}
		baseline[key] = string(data)
	}

	a.mu.Lock()
	a.baseline = baseline
	a.mu.Unlock()

	logger.Info("Loaded state from legacy bucket", logger.F("version", env.Version))
	return st, true, nil
}

// Save writes each bucket whose slice changed since the last persisted
// round. It returns the keys that were written. Buckets that fail to
// write keep their old baseline so the next save retries them.
func (a *Adapter) Save(ctx context.Context, st State) ([]string, error) {
	a.mu.Lock()
	baseline := make(map[string]string, len(a.baseline))
	for k, v := range a.baseline {
		baseline[k] = v
	}
	a.mu.Unlock()

	var written []string
	var firstErr error
	next := make(map[string]string, len(BucketKeys))

	for _, key := range BucketKeys {
		slice, err := ProjectSlice(st, key)
		if err != nil {
			return written, err
		}
		data, err := json.Marshal(slice)
		if err != nil {
			return written, fmt.Errorf("failed to serialize bucket %s: %w", key, err)
		}

		if string(data) == baseline[key] {
			next[key] = baseline[key]
			continue
		}

		env, err := json.Marshal(envelope{State: data, Version: CurrentVersion})
		if err != nil {
			return written, fmt.Errorf("failed to serialize envelope %s: %w", key, err)
		}

		if err := a.kv.Set(ctx, key, string(env)); err != nil {
			logger.Error("Bucket write failed", logger.F("key", key), logger.F("error", err))
			if firstErr == nil {
				firstErr = err
			}
			// Keep the stale baseline so this bucket is retried.
			next[key] = baseline[key]
			continue
		}

		next[key] = string(data)
		written = append(written, key)
	}

	a.mu.Lock()
	a.baseline = next
	a.mu.Unlock()

	if len(written) > 0 {
		logger.Debug("State saved", logger.F("buckets", written))
	}
	return written, firstErr
}

// Remove deletes all five buckets plus the legacy bucket and resets
// the change-detection baseline.
func (a *Adapter) Remove(ctx context.Context) error {
	var firstErr error
	for _, key := range append(append([]string{}, BucketKeys...), KeyLegacy) {
		if err := a.kv.Del(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.mu.Lock()
	a.baseline = make(map[string]string)
	a.mu.Unlock()

	return firstErr
}
