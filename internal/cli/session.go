package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/focusdeck/focusdeck/internal/config"
	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/focusdeck/focusdeck/internal/storage"
	"github.com/focusdeck/focusdeck/internal/store"
	"github.com/focusdeck/focusdeck/internal/sync"
)

// cliSession bundles the open storage, the hydrated store and the sync
// plumbing for the duration of one command.
type cliSession struct {
	kv      *storage.SQLiteKV
	adapter *storage.Adapter
	store   *store.Store
	client  *sync.Client
	engine  *sync.Engine
	cfg     *config.Config
}

// openSession opens local storage, runs the legacy migration, loads the
// persisted state and wires the sync engine against the configured
// server.
func openSession(ctx context.Context) (*cliSession, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	kv, err := storage.OpenDefaultKV()
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := storage.MigrateStorage(ctx, kv); err != nil {
		kv.Close()
		return nil, fmt.Errorf("storage migration failed: %w", err)
	}

	adapter := storage.NewAdapter(kv)
	st, _, err := adapter.Load(ctx)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	s := store.New()
	s.Restore(st)

	client := sync.NewClient(cfg.ServerURL, func() string {
		if sess := s.Session(); sess != nil {
			return sess.Token
		}
		return ""
	})
	engine := sync.NewEngine(s, client)

	return &cliSession{
		kv:      kv,
		adapter: adapter,
		store:   s,
		client:  client,
		engine:  engine,
		cfg:     cfg,
	}, nil
}

// Save persists the current store state, writing only changed buckets.
func (cs *cliSession) Save(ctx context.Context) error {
	written, err := cs.adapter.Save(ctx, cs.store.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	logger.Debug("State saved", logger.F("buckets", strings.Join(written, ",")))
	return nil
}

// Close releases the storage handle.
func (cs *cliSession) Close() {
	_ = cs.kv.Close()
}

// MaybeSync runs a full sync pass when the user is entitled to sync.
// A forced request (--sync) from a non-entitled account prints an
// upgrade hint instead of silently doing nothing. Failures are
// reported but never fail the command.
func (cs *cliSession) MaybeSync(ctx context.Context, force bool) {
	sess := cs.store.Session()
	if sess == nil || sess.IsExpired() {
		return
	}
	if !cs.store.IsPro() {
		if force {
			fmt.Println("Sync requires a pro account. Run 'focusdeck auth upgrade'.")
		}
		return
	}

	fmt.Println("Syncing...")
	if err := cs.engine.FullSync(ctx); err != nil {
		fmt.Printf("Sync failed: %v\n", err)
		return
	}
	if err := cs.Save(ctx); err != nil {
		logger.Warn("Failed to save after sync", logger.F("error", err.Error()))
	}
	fmt.Println("Synced")
}

// resolveTask finds a task (active or archived) by full id or unique
// prefix. The bool reports whether the match came from the archive.
func (cs *cliSession) resolveTask(idOrPrefix string) (string, bool, error) {
	var matches []string
	var archived []bool

	for _, t := range cs.store.Tasks() {
		if t.ID == idOrPrefix {
			return t.ID, false, nil
		}
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t.ID)
			archived = append(archived, false)
		}
	}
	for _, t := range cs.store.ArchivedTasks() {
		if t.ID == idOrPrefix {
			return t.ID, true, nil
		}
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t.ID)
			archived = append(archived, true)
		}
	}

	switch len(matches) {
	case 0:
		return "", false, fmt.Errorf("no task matching %q", idOrPrefix)
	case 1:
		return matches[0], archived[0], nil
	default:
		return "", false, fmt.Errorf("ambiguous task id %q (%d matches)", idOrPrefix, len(matches))
	}
}

// resolveProject finds a project by id, unique id prefix or exact name.
func (cs *cliSession) resolveProject(idOrName string) (string, error) {
	var matches []string
	for _, p := range cs.store.Projects() {
		if p.ID == idOrName || p.Name == idOrName {
			return p.ID, nil
		}
		if strings.HasPrefix(p.ID, idOrName) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no project matching %q", idOrName)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous project %q (%d matches)", idOrName, len(matches))
	}
}
