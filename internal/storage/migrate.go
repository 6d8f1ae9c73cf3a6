package storage

import (
	"context"
	"encoding/json"

	"github.com/focusdeck/focusdeck/internal/logger"
)

// MigrateStorage splits a legacy single-bucket layout into the five
// bucket keys, then deletes the legacy bucket. It runs once at process
// start before anything else touches storage and is idempotent: a
// second run finds no legacy bucket and does nothing.
//
// A legacy bucket that cannot be parsed aborts the migration without
// writing or deleting anything; ambiguous input must never destroy
// data.
func MigrateStorage(ctx context.Context, kv KV) error {
	value, found, err := kv.Get(ctx, KeyLegacy)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	var env struct {
		State   json.RawMessage `json:"state"`
		Version int             `json:"version"`
	}
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		logger.Error("Legacy bucket unparsable, migration aborted", logger.F("error", err))
		return nil
	}
	if len(env.State) == 0 {
		logger.Warn("Legacy bucket has no state field, migration skipped")
		return nil
	}

	var st State
	if err := json.Unmarshal(env.State, &st); err != nil {
		logger.Error("Legacy state unparsable, migration aborted", logger.F("error", err))
		return nil
	}

	// Field presence in the raw legacy object decides which buckets to
	// write; a bucket with no source fields at all is skipped.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.State, &fields); err != nil {
		logger.Error("Legacy state not an object, migration aborted", logger.F("error", err))
		return nil
	}

	migrated := 0
	for _, key := range BucketKeys {
		present := false
		for _, f := range sourceFields(key) {
			if _, ok := fields[f]; ok {
				present = true
				break
			}
		}
		if !present {
			continue
		}

		slice, err := ProjectSlice(st, key)
		if err != nil {
			return err
		}
		data, err := json.Marshal(slice)
		if err != nil {
			return err
		}
		out, err := json.Marshal(envelope{State: data, Version: env.Version})
		if err != nil {
			return err
		}
		if err := kv.Set(ctx, key, string(out)); err != nil {
			return err
		}
		migrated++
	}

	if err := kv.Del(ctx, KeyLegacy); err != nil {
		return err
	}

	logger.Info("Storage migrated to bucketed layout", logger.F("buckets", migrated))
	return nil
}
