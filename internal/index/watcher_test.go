package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/leit/internal/storage"
	"github.com/starford/leit/internal/testutil"
)

// watcherTestEnv sets up a vault dir, storage, and indexer for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *Indexer) {
	t.Helper()
	vaultDir, source := testutil.TestVault(t)
	return vaultDir, source, testIndexer(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	vaultDir, source, ix := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, ix, source, vaultDir, testLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New\nfresh content"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return ix.IsIndexed("new.md")
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "indexed:new.md" {
				return true
			}
		}
		return false
	}, "expected indexed:new.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, source, ix := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, source, vaultDir, testLogger(), nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)

	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return ix.IsIndexed("subdir/deep.md")
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	vaultDir, source, ix := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "del.md"), []byte("# Delete Me"), 0o644)
	if _, err := ix.Rebuild(context.Background(), source, nil); err != nil {
		t.Fatal(err)
	}
	if !ix.IsIndexed("del.md") {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, source, vaultDir, testLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(vaultDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !ix.IsIndexed("del.md")
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir, source, ix := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte("# Rename"), 0o644)
	if _, err := ix.Rebuild(context.Background(), source, nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, source, vaultDir, testLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !ix.IsIndexed("old.md") && ix.IsIndexed("renamed.md")
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestWatcher_UpdateTripsExclusion(t *testing.T) {
	vaultDir, source, ix := watcherTestEnv(t)
	ix.SetExclusionRules(nil, []string{"secret"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, ix, source, vaultDir, testLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(vaultDir, "doc.md")
	_ = os.WriteFile(file, []byte("plain text"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return ix.IsIndexed("doc.md")
	}, "file not indexed by watcher")

	_ = os.WriteFile(file, []byte("plain text #secret"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !ix.IsIndexed("doc.md")
	}, "document with excluded tag should be dropped on update")

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, e := range events {
		if e == "removed:doc.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, want removed:doc.md", events)
	}
}
