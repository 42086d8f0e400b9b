package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperService_Sweep(t *testing.T) {
	svc, workDir := newTestService(t, &fakeConverter{}, nil)

	now := time.Now()
	old := now.Add(-2 * time.Hour)

	mkdir := func(name string, mtime time.Time) string {
		path := filepath.Join(workDir, name)
		require.NoError(t, os.MkdirAll(filepath.Join(path, "pass1"), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(path, "pass1", "deck.pptx"), make([]byte, 10), 0o600))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}

	stale := mkdir("job-1-abc", old)
	fresh := mkdir("job-2-def", now)
	foreign := mkdir("other-3", old)

	sweeper := newSweeperService(svc)
	sweeper.now = func() time.Time { return now }

	removed, reclaimed := sweeper.sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, int64(10), reclaimed)

	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, foreign)
}

func TestSweeperService_MissingWorkDir(t *testing.T) {
	svc, workDir := newTestService(t, &fakeConverter{}, nil)
	svc.cfg.Normalizer.WorkDir = filepath.Join(workDir, "missing")

	removed, reclaimed := newSweeperService(svc).sweep()
	assert.Zero(t, removed)
	assert.Zero(t, reclaimed)
}

func TestNormalizeService_StartSweeper(t *testing.T) {
	svc, workDir := newTestService(t, &fakeConverter{}, func(cfg *config.Config) {
		cfg.Sweeper.MaxAgeMS = 1
	})

	stale := filepath.Join(workDir, "job-9-xyz")
	require.NoError(t, os.Mkdir(stale, 0o750))
	past := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(stale, past, past))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(stale)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
