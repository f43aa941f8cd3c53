package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// LoadWithCache discovers payload files, diffs them against the cache, parses
// only the changed ones and returns the combined snapshots, newest first.
// A file also counts as changed when its snapshot was derived under different
// options. Snapshots of files that no longer exist are pruned.
func LoadWithCache(dir string, opts Options, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files)},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	fingerprint := opts.Fingerprint()

	// Diff: partition into changed and unchanged
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})
	present := make(map[string]struct{}, len(files))

	for _, f := range files {
		present[f.Path] = struct{}{}
		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == f.ModTimeNs && cached.SizeBytes == f.SizeBytes && cached.Fingerprint == fingerprint {
			unchanged[f.Path] = struct{}{}
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if pruned, err := cache.PruneMissing(present); err == nil {
		result.Pruned = pruned
	}

	if len(unchanged) > 0 {
		cached, err := cache.LoadSnapshots()
		if err != nil {
			return nil, fmt.Errorf("loading cached snapshots: %w", err)
		}
		for _, s := range cached {
			if _, ok := unchanged[s.FilePath]; ok {
				result.Snapshots = append(result.Snapshots, s)
				result.ParsedFiles++
			}
		}
	}

	if len(toReparse) > 0 {
		parsed := parseAll(toReparse, opts, func(n int) {
			if progressFn != nil {
				progressFn(n+result.CacheHits, result.TotalFiles)
			}
		})

		for _, pf := range parsed {
			if pf.err != nil {
				result.FileErrors++
				continue
			}
			result.ParsedFiles++
			result.Snapshots = append(result.Snapshots, pf.snap)
			_ = cache.SaveSnapshot(pf.snap, store.FileInfo{
				MtimeNs:     pf.file.ModTimeNs,
				SizeBytes:   pf.file.SizeBytes,
				Fingerprint: fingerprint,
			})
		}
	}

	sortSnapshots(result.Snapshots)
	return result, nil
}

func sortSnapshots(snaps []model.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].AnalyzedAt.Equal(snaps[j].AnalyzedAt) {
			return snaps[i].AnalyzedAt.After(snaps[j].AnalyzedAt)
		}
		return snaps[i].FilePath < snaps[j].FilePath
	})
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "footprint")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "footprint")
}

// CachePath returns the full path to the history database.
func CachePath() string {
	return filepath.Join(CacheDir(), "history.db")
}
