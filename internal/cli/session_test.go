package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/focusdeck/focusdeck/internal/config"
	"github.com/focusdeck/focusdeck/internal/model"
	"github.com/focusdeck/focusdeck/internal/storage"
	"github.com/focusdeck/focusdeck/internal/store"
	"github.com/focusdeck/focusdeck/internal/sync"
)

// countingRemote counts engine calls so tests can tell whether a sync
// pass actually ran.
type countingRemote struct {
	calls int
}

func (r *countingRemote) SelectProjects(ctx context.Context) ([]sync.ProjectRow, error) {
	r.calls++
	return nil, nil
}

func (r *countingRemote) SelectTasks(ctx context.Context, archived bool) ([]sync.TaskRow, error) {
	r.calls++
	return nil, nil
}

func (r *countingRemote) UpsertProjects(ctx context.Context, rows []sync.ProjectRow) error {
	r.calls++
	return nil
}

func (r *countingRemote) UpsertTasks(ctx context.Context, archived bool, rows []sync.TaskRow) error {
	r.calls++
	return nil
}

func (r *countingRemote) DeleteProjects(ctx context.Context, ids []string) error {
	r.calls++
	return nil
}

func (r *countingRemote) DeleteTasks(ctx context.Context, archived bool, ids []string) error {
	r.calls++
	return nil
}

func (r *countingRemote) FetchProfile(ctx context.Context) (*model.Profile, error) {
	return &model.Profile{UserID: "u1"}, nil
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func testSession(isPro bool) (*cliSession, *countingRemote) {
	st := store.New()
	st.SetSession(&model.Session{
		UserID:    "u1",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}, &model.User{ID: "u1", Username: "kim"})
	st.SetProfile(&model.Profile{UserID: "u1", IsPro: isPro})

	remote := &countingRemote{}
	return &cliSession{
		adapter: storage.NewAdapter(storage.NewMemKV()),
		store:   st,
		engine:  sync.NewEngine(st, remote),
		cfg:     &config.Config{},
	}, remote
}

func TestMaybeSyncFreeAccountHint(t *testing.T) {
	cs, remote := testSession(false)

	out := captureStdout(t, func() {
		cs.MaybeSync(context.Background(), true)
	})
	if !strings.Contains(out, "pro account") {
		t.Errorf("forced sync on free account printed %q, want upgrade hint", out)
	}
	if strings.Contains(out, "Synced") {
		t.Errorf("free account told a sync happened: %q", out)
	}
	if remote.calls != 0 {
		t.Errorf("free account reached the remote %d times", remote.calls)
	}
}

func TestMaybeSyncFreeAccountQuietWithoutForce(t *testing.T) {
	cs, remote := testSession(false)

	out := captureStdout(t, func() {
		cs.MaybeSync(context.Background(), false)
	})
	if out != "" {
		t.Errorf("unforced sync on free account printed %q", out)
	}
	if remote.calls != 0 {
		t.Errorf("free account reached the remote %d times", remote.calls)
	}
}

func TestMaybeSyncProAccountRuns(t *testing.T) {
	cs, remote := testSession(true)

	out := captureStdout(t, func() {
		cs.MaybeSync(context.Background(), false)
	})
	if !strings.Contains(out, "Synced") {
		t.Errorf("pro sync printed %q", out)
	}
	if remote.calls == 0 {
		t.Error("pro account never reached the remote")
	}
}

func TestMaybeSyncSkipsWithoutSession(t *testing.T) {
	cs, remote := testSession(true)
	cs.store.ClearAuth()

	out := captureStdout(t, func() {
		cs.MaybeSync(context.Background(), true)
	})
	if out != "" {
		t.Errorf("logged-out sync printed %q", out)
	}
	if remote.calls != 0 {
		t.Errorf("logged-out session reached the remote %d times", remote.calls)
	}
}
