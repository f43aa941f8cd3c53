package pipeline

import (
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/source"
)

// LoadResult holds the output of loading every payload in a directory.
type LoadResult struct {
	Snapshots   []model.Snapshot
	TotalFiles  int
	ParsedFiles int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options controls how payloads are recomputed during a load. Zero values
// select the built-in table and DefaultRecommendations.
type Options struct {
	Reductions      config.ReductionTable
	Recommendations int
}

func (o Options) table() config.ReductionTable {
	if o.Reductions == nil {
		return config.DefaultReductions
	}
	return o.Reductions
}

func (o Options) limit() int {
	if o.Recommendations == 0 {
		return DefaultRecommendations
	}
	return o.Recommendations
}

// Derive recomputes one payload with these options.
func (o Options) Derive(p model.Payload) model.DerivedState {
	return RecomputeWith(p, o.table(), o.limit())
}

// Fingerprint identifies the effective reduction table and recommendation
// limit. Snapshots cached under a different fingerprint are stale.
func (o Options) Fingerprint() string {
	h, err := hashstructure.Hash(struct {
		Reductions      config.ReductionTable
		Recommendations int
	}{o.table(), o.limit()}, hashstructure.FormatV2, nil)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(h, 16)
}

// Load discovers every payload file in dir, recomputes each one independently
// and returns a snapshot per file. Parsing uses a bounded worker pool.
func Load(dir string, opts Options, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	parsed := parseAll(files, opts, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	for _, pf := range parsed {
		if pf.err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.Snapshots = append(result.Snapshots, pf.snap)
	}
	sortSnapshots(result.Snapshots)

	return result, nil
}

type parsedFile struct {
	file source.DiscoveredFile
	snap model.Snapshot
	err  error
}

// parseAll parses and summarizes files concurrently, keeping input order.
// onDone receives the running count of finished files.
func parseAll(files []source.DiscoveredFile, opts Options, onDone func(int)) []parsedFile {
	out := make([]parsedFile, len(files))
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(workerCount(len(files)))

	for i := range files {
		i := i
		g.Go(func() error {
			pr := source.ParseFile(files[i])
			pf := parsedFile{file: files[i], err: pr.Err}
			if pr.Err == nil {
				pf.snap = Summarize(opts.Derive(pr.Payload), files[i].Path, AnalyzedAt(files[i]))
			}
			out[i] = pf

			onDone(int(processed.Add(1)))
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func workerCount(n int) int {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 4
	}
	if workers > n {
		workers = n
	}
	return workers
}

// AnalyzedAt is the time a snapshot of f is stamped with: the file's
// modification time, so history ordering follows the files and not the load.
func AnalyzedAt(f source.DiscoveredFile) time.Time {
	if f.ModTimeNs == 0 {
		return time.Now()
	}
	return time.Unix(0, f.ModTimeNs)
}
