package storage

import (
	"context"
	"encoding/json"
	"testing"
)

func legacyEnvelope(t *testing.T, state interface{}, version int) string {
	t.Helper()
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}
	env, err := json.Marshal(map[string]interface{}{
		"state":   json.RawMessage(data),
		"version": version,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(env)
}

func TestMigrateSplitsLegacyBucket(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	legacy := map[string]interface{}{
		"projects":          []map[string]string{{"id": "p1", "name": "Work"}},
		"tasks":             []map[string]string{{"id": "t1", "projectId": "p1", "title": "x"}},
		"archivedTasks":     []map[string]string{},
		"selectedProjectId": "p1",
		"isPro":             true,
		"activeView":        "board",
	}
	if err := kv.Set(ctx, KeyLegacy, legacyEnvelope(t, legacy, 1)); err != nil {
		t.Fatal(err)
	}

	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, found, _ := kv.Get(ctx, KeyLegacy); found {
		t.Error("legacy bucket survived migration")
	}
	for _, key := range BucketKeys {
		if _, found, _ := kv.Get(ctx, key); !found {
			t.Errorf("bucket %s not written", key)
		}
	}

	// The split buckets load back into the same state
	st, found, err := NewAdapter(kv).Load(ctx)
	if err != nil || !found {
		t.Fatalf("load after migrate: found=%v err=%v", found, err)
	}
	if len(st.Projects) != 1 || st.Projects[0].Name != "Work" {
		t.Errorf("projects = %+v", st.Projects)
	}
	if st.SelectedProjectID != "p1" {
		t.Errorf("selection = %q", st.SelectedProjectID)
	}
	if !st.IsPro {
		t.Error("isPro lost in migration")
	}
	if st.ActiveView != "board" {
		t.Errorf("activeView = %q", st.ActiveView)
	}
}

func TestMigratePreservesVersion(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	legacy := map[string]interface{}{
		"projects": []map[string]string{},
	}
	if err := kv.Set(ctx, KeyLegacy, legacyEnvelope(t, legacy, 7)); err != nil {
		t.Fatal(err)
	}
	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatal(err)
	}

	value, found, _ := kv.Get(ctx, KeyProjects)
	if !found {
		t.Fatal("projects bucket not written")
	}
	var env struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		t.Fatal(err)
	}
	if env.Version != 7 {
		t.Errorf("version = %d, want the legacy envelope's 7", env.Version)
	}
}

func TestMigrateSkipsBucketsWithoutSourceFields(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	// Only task fields present; auth and settings buckets must not be
	// fabricated.
	legacy := map[string]interface{}{
		"tasks": []map[string]string{{"id": "t1", "projectId": "p1", "title": "x"}},
	}
	if err := kv.Set(ctx, KeyLegacy, legacyEnvelope(t, legacy, 1)); err != nil {
		t.Fatal(err)
	}
	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatal(err)
	}

	if _, found, _ := kv.Get(ctx, KeyTasks); !found {
		t.Error("tasks bucket not written")
	}
	for _, key := range []string{KeyProjects, KeyArchive, KeyAuth, KeySettings} {
		if _, found, _ := kv.Get(ctx, key); found {
			t.Errorf("bucket %s written with no source data", key)
		}
	}
}

func TestMigrateNoLegacyIsNoOp(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if kv.Writes() != 0 {
		t.Errorf("migration wrote %d keys with nothing to migrate", kv.Writes())
	}
}

func TestMigrateIdempotent(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	legacy := map[string]interface{}{
		"projects": []map[string]string{{"id": "p1", "name": "Work"}},
	}
	if err := kv.Set(ctx, KeyLegacy, legacyEnvelope(t, legacy, 1)); err != nil {
		t.Fatal(err)
	}

	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatal(err)
	}
	writes := kv.Writes()

	// The second run finds no legacy bucket and must do nothing
	if err := MigrateStorage(ctx, kv); err != nil {
		t.Fatal(err)
	}
	if kv.Writes() != writes {
		t.Error("second migration run wrote keys")
	}
}

func TestMigrateAbortsOnUnparsableLegacy(t *testing.T) {
	for _, tc := range []struct {
		name  string
		value string
	}{
		{"envelope not json", "{broken"},
		{"state not json", `{"state": "{broken", "version": 1}`},
		{"state not an object", `{"state": [1,2,3], "version": 1}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			kv := NewMemKV()
			ctx := context.Background()

			if err := kv.Set(ctx, KeyLegacy, tc.value); err != nil {
				t.Fatal(err)
			}

			if err := MigrateStorage(ctx, kv); err != nil {
				t.Fatalf("migrate returned error: %v", err)
			}

			// Ambiguous input must never destroy the legacy data
			if _, found, _ := kv.Get(ctx, KeyLegacy); !found {
				t.Error("legacy bucket deleted despite unparsable content")
			}
			for _, key := range BucketKeys {
				if _, found, _ := kv.Get(ctx, key); found {
					t.Errorf("bucket %s written despite unparsable legacy", key)
				}
			}
		})
	}
}
