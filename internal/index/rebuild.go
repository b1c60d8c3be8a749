package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/starford/leit/internal/apperr"
	"github.com/starford/leit/internal/models"
	"github.com/starford/leit/internal/storage"
)

type rebuildOutcome int

const (
	outcomeIndexed rebuildOutcome = iota
	outcomeSkipped
	outcomeFailed
	// outcomeDropped marks a file still on disk whose record was removed
	// because the current exclusion rules cover it.
	outcomeDropped
)

// Rebuild walks the vault and brings the index fully up to date:
//   - new and changed documents are analyzed and upserted
//   - unchanged documents (same modification time or content checksum)
//     are skipped
//   - documents gone from disk are removed
//   - exclusion rules are re-evaluated, so a rebuild drops records the
//     current rules exclude even when the file itself is unchanged
//
// Only one rebuild runs at a time; a second call returns ErrRebuildRunning.
// Document work fans out over a worker pool. Cancellation is honored between
// documents: work already applied stays in the index and the call returns
// ErrRebuildCancelled together with the partial stats. A document that fails
// to read or analyze is logged and counted, never fatal.
func (ix *Indexer) Rebuild(ctx context.Context, source storage.Provider, onProgress ProgressFunc) (RebuildStats, error) {
	if !ix.rebuilding.CompareAndSwap(false, true) {
		return RebuildStats{}, apperr.ErrRebuildRunning
	}
	defer ix.rebuilding.Store(false)

	metas, err := source.List("")
	if err != nil {
		return RebuildStats{}, fmt.Errorf("index: list vault: %w", err)
	}

	pool, err := ants.NewPool(ix.workers)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("index: worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats = RebuildStats{Total: len(metas)}
		done  int
	)
	record := func(outcome rebuildOutcome) {
		mu.Lock()
		switch outcome {
		case outcomeIndexed:
			stats.Indexed++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeDropped:
			stats.Skipped++
			stats.Removed++
		case outcomeFailed:
			stats.Failed++
		}
		done++
		fraction := float64(done) / float64(stats.Total)
		mu.Unlock()
		if onProgress != nil {
			onProgress(fraction)
		}
	}

	for _, m := range metas {
		if ctx.Err() != nil {
			break
		}
		meta := m
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// Tasks in flight at cancellation return unrecorded; the
			// stats cover processed documents only.
			if ctx.Err() != nil {
				return
			}
			record(ix.rebuildOne(source, meta))
		})
		if submitErr != nil {
			wg.Done()
			ix.logger.Warn("rebuild: submit failed",
				slog.String("path", meta.Path),
				slog.String("error", submitErr.Error()))
			record(outcomeFailed)
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		ix.logger.Info("rebuild: cancelled",
			slog.Int("indexed", stats.Indexed),
			slog.Int("total", stats.Total))
		return stats, apperr.ErrRebuildCancelled
	}

	// Remove records whose files are gone.
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}
	for _, p := range ix.store.paths() {
		if _, ok := disk[p]; !ok {
			ix.store.remove(p)
			stats.Removed++
			ix.logger.Debug("rebuild: removed stale", slog.String("path", p))
		}
	}

	ix.logger.Info("rebuild: finished",
		slog.Int("total", stats.Total),
		slog.Int("indexed", stats.Indexed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("failed", stats.Failed),
		slog.Int("removed", stats.Removed))
	return stats, nil
}

// rebuildOne processes a single document during a rebuild. Unchanged
// documents are not re-analyzed, but the current exclusion rules still
// apply to their stored tags and path.
func (ix *Indexer) rebuildOne(source storage.Provider, meta models.DocumentMeta) rebuildOutcome {
	rec, ok := ix.store.get(meta.Path)
	unchanged := ok && (rec.LastModified.Equal(meta.ModTime) ||
		(meta.Checksum != "" && rec.Checksum == meta.Checksum))
	if unchanged {
		if !ix.excluded(meta.Path, rec.Tags) {
			return outcomeSkipped
		}
		ix.store.remove(meta.Path)
		ix.logger.Debug("rebuild: dropped excluded document", slog.String("path", meta.Path))
		return outcomeDropped
	}

	wasIndexed := ix.store.has(meta.Path)
	data, err := source.Read(meta.Path)
	if err != nil {
		ix.logger.Warn("rebuild: read failed",
			slog.String("path", meta.Path),
			slog.String("error", err.Error()))
		return outcomeFailed
	}
	if err := ix.IndexDocument(meta.Path, meta.Filename, meta.ModTime, string(data)); err != nil {
		ix.logger.Warn("rebuild: index failed",
			slog.String("path", meta.Path),
			slog.String("error", err.Error()))
		return outcomeFailed
	}
	if !ix.store.has(meta.Path) {
		// The current rules exclude this document.
		if wasIndexed {
			return outcomeDropped
		}
		return outcomeSkipped
	}
	return outcomeIndexed
}
