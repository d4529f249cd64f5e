// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
	"github.com/xkilldash9x/storefront-e2e/internal/runner"
	"github.com/xkilldash9x/storefront-e2e/internal/store"
)

// noBrowser is a session provider whose sessions never start.
type noBrowser struct {
	mu     sync.Mutex
	starts int
}

func (p *noBrowser) Start(context.Context) (runner.Session, error) {
	p.mu.Lock()
	p.starts++
	p.mu.Unlock()
	return nil, errors.New("no chrome in this sandbox")
}

func (p *noBrowser) Stop(context.Context, runner.Session) error {
	return errors.New("nothing was started")
}

// fakeStore keeps runs in memory.
type fakeStore struct {
	mu        sync.Mutex
	runs      map[string]*runner.Report
	recent    []store.RunSummary
	schemaErr error
	created   int
	cleaned   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: map[string]*runner.Report{}}
}

func (f *fakeStore) Create(context.Context, config.Interface) (runStore, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return f, func() {
		f.mu.Lock()
		f.cleaned++
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) EnsureSchema(context.Context) error { return f.schemaErr }

func (f *fakeStore) PersistRun(_ context.Context, r *runner.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[r.RunID] = r
	return nil
}

func (f *fakeStore) LoadRun(_ context.Context, id string) (*runner.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, store.ErrRunNotFound
	}
	return r, nil
}

func (f *fakeStore) RecentRuns(_ context.Context, limit int) ([]store.RunSummary, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

// testDeps wires fakes for the browser and the database.
func testDeps(sessions *noBrowser, st *fakeStore) dependencies {
	return dependencies{
		sessions: func(config.Interface, *zap.Logger) (runner.SessionProvider, func(context.Context) error) {
			return sessions, func(context.Context) error { return nil }
		},
		stores: st,
	}
}

// execute runs a fresh command tree and captures everything it prints.
func execute(t *testing.T, deps dependencies, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(deps)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(args, "--log-level=error"))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeConfig creates a config file in a temp dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
