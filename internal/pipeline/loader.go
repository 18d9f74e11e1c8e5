package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/cardperks/internal/config"
	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/source"
)

// Sources names the export folder for each card.
type Sources struct {
	PersonalDir string
	BusinessDir string
}

// SourcesFrom resolves the export folders from cfg.
func SourcesFrom(cfg config.Config) Sources {
	return Sources{
		PersonalDir: config.SourceDir(cfg, cfg.Sources.PersonalDir),
		BusinessDir: config.SourceDir(cfg, cfg.Sources.BusinessDir),
	}
}

// Dir returns the folder for a card kind.
func (s Sources) Dir(kind model.CardKind) string {
	if kind == model.Business {
		return s.BusinessDir
	}
	return s.PersonalDir
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Personal     model.Ledger
	Business     model.Ledger
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	Transactions int
	MissingDirs  []string
}

// Ledger returns the processed ledger for a card kind.
func (r *LoadResult) Ledger(kind model.CardKind) model.Ledger {
	if kind == model.Business {
		return r.Business
	}
	return r.Personal
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every export for both cards and builds their ledgers.
func Load(ctx context.Context, src Sources, rules Rules, progressFn ProgressFunc) (*LoadResult, error) {
	files, missing, err := discover(ctx, src)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{TotalFiles: len(files), MissingDirs: missing}
	results := parseAll(files, 0, len(files), progressFn)

	byKind := make(map[model.CardKind][]model.Transaction)
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			log.Warn().Err(pr.Err).Str("file", files[i].Path).Msg("unreadable csv file")
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		byKind[files[i].Kind] = append(byKind[files[i].Kind], pr.Transactions...)
	}

	if err := buildLedgers(ctx, result, byKind, rules); err != nil {
		return nil, err
	}
	return result, nil
}

// discover scans both card folders concurrently. Files come back personal
// first, each card's files sorted by path.
func discover(ctx context.Context, src Sources) ([]source.DiscoveredFile, []string, error) {
	found := make([][]source.DiscoveredFile, len(model.Kinds))
	g, _ := errgroup.WithContext(ctx)
	for i, kind := range model.Kinds {
		g.Go(func() error {
			dir := src.Dir(kind)
			files, err := source.ScanDir(dir, kind)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", dir, err)
			}
			found[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var files []source.DiscoveredFile
	var missing []string
	for i, kind := range model.Kinds {
		dir := src.Dir(kind)
		if !source.Exists(dir) {
			missing = append(missing, dir)
			log.Warn().Str("dir", dir).Str("card", string(kind)).Msg("transaction folder does not exist")
		}
		files = append(files, found[i]...)
	}
	return files, missing, nil
}

// parseAll parses files on a bounded worker pool. Progress is reported as
// offset+n of total.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	results := make([]source.ParseResult, len(files))
	if len(files) == 0 {
		return results
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// buildLedgers processes each card's transactions concurrently.
func buildLedgers(ctx context.Context, result *LoadResult, byKind map[model.CardKind][]model.Transaction, rules Rules) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Personal = Process(model.Personal, byKind[model.Personal], rules)
		return nil
	})
	g.Go(func() error {
		result.Business = Process(model.Business, byKind[model.Business], rules)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	result.Transactions = len(byKind[model.Personal]) + len(byKind[model.Business])
	return ctx.Err()
}
