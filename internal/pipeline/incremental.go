package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/source"
	"github.com/theirongolddev/cardperks/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Pruned    int
}

// LoadWithCache discovers exports, diffs them against the cache by mtime
// and size, parses only changed files, and builds ledgers from the union.
func LoadWithCache(ctx context.Context, src Sources, rules Rules, cache *store.Store, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, missing, err := discover(ctx, src)
	if err != nil {
		return nil, err
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{TotalFiles: len(files), MissingDirs: missing},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	type stamp struct{ mtime, size int64 }
	stamps := make(map[string]stamp, len(files))
	present := make(map[string]struct{}, len(files))
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]store.FileInfo)

	for _, f := range files {
		present[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			toReparse = append(toReparse, f)
			continue
		}
		stamps[f.Path] = stamp{info.ModTime().UnixNano(), info.Size()}

		cached, ok := tracked[f.Path]
		if ok && cached.Kind == f.Kind && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged[f.Path] = cached
		} else {
			toReparse = append(toReparse, f)
		}
	}

	// Drop files that disappeared from disk.
	for path := range tracked {
		if _, ok := present[path]; !ok {
			if err := cache.DeleteFile(path); err != nil {
				log.Warn().Err(err).Str("file", path).Msg("pruning cached file")
				continue
			}
			result.Pruned++
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	perFile := make(map[string][]model.Transaction, len(files))
	if len(unchanged) > 0 {
		cached, err := cache.LoadFileTransactions()
		if err != nil {
			return nil, fmt.Errorf("loading cached transactions: %w", err)
		}
		for path, fi := range unchanged {
			perFile[path] = cached[path]
			result.ParsedFiles++
			result.ParseErrors += fi.ParseErrors
		}
		if progressFn != nil {
			progressFn(result.CacheHits, result.TotalFiles)
		}
	}

	parsed := parseAll(toReparse, result.CacheHits, result.TotalFiles, progressFn)
	failed := make(map[string]struct{})
	for i, pr := range parsed {
		f := toReparse[i]
		if pr.Err != nil {
			result.FileErrors++
			failed[f.Path] = struct{}{}
			log.Warn().Err(pr.Err).Str("file", f.Path).Msg("unreadable csv file")
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		perFile[f.Path] = pr.Transactions

		if st, ok := stamps[f.Path]; ok {
			fi := store.FileInfo{Kind: f.Kind, MtimeNs: st.mtime, SizeBytes: st.size, ParseErrors: pr.ParseErrors}
			if err := cache.SaveFile(f.Path, fi, pr.Transactions); err != nil {
				log.Warn().Err(err).Str("file", f.Path).Msg("caching parsed file")
			}
		}
	}

	// Reassemble in discovery order so row order matches a cold load.
	byKind := make(map[model.CardKind][]model.Transaction)
	for _, f := range files {
		if _, bad := failed[f.Path]; bad {
			continue
		}
		byKind[f.Kind] = append(byKind[f.Kind], perFile[f.Path]...)
	}

	if err := buildLedgers(ctx, &result.LoadResult, byKind, rules); err != nil {
		return nil, err
	}
	return result, nil
}
