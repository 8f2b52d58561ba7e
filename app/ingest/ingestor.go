package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solgood44/podcastlibrary/app/database"
	"github.com/solgood44/podcastlibrary/app/feed"
	"github.com/solgood44/podcastlibrary/app/retry"
	"github.com/solgood44/podcastlibrary/app/sources"
)

// A last_refreshed timestamp this close to "now" suggests a prior run was
// interrupted between the metadata upsert and episode insertion. Such feeds
// are refetched unconditionally and checked item by item.
const recentRefreshThreshold = 10 * time.Minute

// Ingestor sequences a full ingestion run: activity classification,
// conditional fetching, normalization, episode upserts, and final
// reconciliation against the source list.
type Ingestor struct {
	opts       Options
	fetcher    *Fetcher
	parser     *feed.Parser
	podcasts   database.PodcastRepository
	episodes   *EpisodeIngestor
	classifier *ActivityClassifier
	reconciler *Reconciler
	retryCfg   retry.Config
	now        func() time.Time
}

func New(opts Options, fetcher *Fetcher, parser *feed.Parser,
	podcasts database.PodcastRepository, episodes database.EpisodeRepository) *Ingestor {
	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}

	retryCfg := retry.DefaultConfig

	return &Ingestor{
		opts:       opts,
		fetcher:    fetcher,
		parser:     parser,
		podcasts:   podcasts,
		episodes:   NewEpisodeIngestor(episodes, retryCfg),
		classifier: NewActivityClassifier(podcasts, episodes, opts.ActiveDays, retryCfg),
		reconciler: NewReconciler(podcasts, retryCfg),
		retryCfg:   retryCfg,
		now:        time.Now,
	}
}

// Run processes the source list and returns aggregate statistics. Per-feed
// failures are counted, never fatal; only configuration faults and store
// connectivity abort a run.
func (in *Ingestor) Run(ctx context.Context, allSources []sources.Source) (*RunStats, error) {
	logger := slog.With("run_id", uuid.NewString())
	stats := &RunStats{}

	feeds := allSources
	if in.opts.OnlyDaily {
		feeds = filterDaily(feeds)
		if len(feeds) == 0 {
			logger.Warn("No feeds flagged as daily in the source list")
			return stats, nil
		}
		logger.Info("Processing only daily feeds", "count", len(feeds))
	}

	if in.opts.ActiveOnly && in.opts.BatchSize == 0 {
		urls := make([]string, 0, len(feeds))
		for _, src := range feeds {
			urls = append(urls, src.FeedURL)
		}

		active, err := in.classifier.ActiveFeedURLs(ctx, urls)
		if err != nil {
			return stats, err
		}

		var kept []sources.Source
		for _, src := range feeds {
			if active[src.FeedURL] {
				kept = append(kept, src)
			}
		}
		if dormant := len(feeds) - len(kept); dormant > 0 {
			logger.Info("Skipping dormant feeds",
				"active", len(kept), "dormant", dormant, "window_days", in.opts.ActiveDays)
		}
		feeds = kept
	}

	if in.opts.BatchSize > 0 && len(feeds) > in.opts.BatchSize {
		logger.Warn("Limiting run to a feed batch", "batch_size", in.opts.BatchSize, "total", len(feeds))
		feeds = feeds[:in.opts.BatchSize]
	}

	logger.Info("Processing feeds", "count", len(feeds), "workers", in.opts.WorkerCount)

	in.processAll(ctx, logger, feeds, stats)

	// Reconciliation runs only after every worker has finished, and only
	// when the run covered the complete source list.
	if in.opts.DeleteMissing && in.opts.BatchSize == 0 && !in.opts.OnlyDaily && ctx.Err() == nil {
		urls := make([]string, 0, len(allSources))
		for _, src := range allSources {
			urls = append(urls, src.FeedURL)
		}

		deleted, err := in.reconciler.Run(ctx, urls)
		if err != nil {
			logger.Error("Reconciliation failed", "error", err)
		}
		stats.Deleted = deleted
	} else if in.opts.DeleteMissing {
		logger.Info("Skipping reconciliation for partial run")
	}

	logger.Info("Ingestion run complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errored,
		"new_episodes", stats.NewEpisodes,
		"deleted", stats.Deleted)

	return stats, nil
}

// processAll fans feeds out to a bounded worker pool and folds the per-feed
// results into stats. Feeds share no state beyond the store, so they are
// processed concurrently without cross-feed locks.
func (in *Ingestor) processAll(ctx context.Context, logger *slog.Logger, feeds []sources.Source, stats *RunStats) {
	if len(feeds) == 0 {
		return
	}

	workers := min(in.opts.WorkerCount, len(feeds))
	jobs := make(chan sources.Source)
	results := make(chan feedResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				results <- in.processFeed(ctx, logger, src)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, src := range feeds {
			select {
			case jobs <- src:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		switch result.status {
		case statusProcessed:
			stats.Processed++
		case statusSkipped:
			stats.Skipped++
		case statusErrored:
			stats.Errored++
		}
		stats.NewEpisodes += result.newEpisodes
	}
}

func (in *Ingestor) processFeed(ctx context.Context, logger *slog.Logger, src sources.Source) feedResult {
	log := logger.With("feed_url", src.FeedURL)

	if ctx.Err() != nil {
		log.Debug("Run canceled before feed was attempted")
		return feedResult{status: statusErrored}
	}

	var cache *database.CacheInfo
	if !in.opts.ForceRefresh {
		err := retry.Do(ctx, in.retryCfg, func() error {
			var opErr error
			cache, opErr = in.podcasts.GetCacheInfo(ctx, src.FeedURL)
			return opErr
		})
		if err != nil {
			log.Error("Failed to load cache info", "error", err)
			return feedResult{status: statusErrored}
		}
	}

	var etag, lastModified string
	recentlyRefreshed := false
	if cache != nil {
		etag, lastModified = cache.ETag, cache.LastModified
		if cache.LastRefreshed != nil &&
			in.now().UTC().Sub(cache.LastRefreshed.UTC()) < recentRefreshThreshold {
			recentlyRefreshed = true
		}
	}

	if recentlyRefreshed {
		log.Info("Feed was refreshed moments ago, forcing full reprocess")
		etag, lastModified = "", ""
	}

	var fetched *FetchResult
	err := retry.Do(ctx, in.retryCfg, func() error {
		var opErr error
		fetched, opErr = in.fetcher.Fetch(ctx, src.FeedURL, etag, lastModified)
		return opErr
	})
	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			log.Warn("Feed returned HTTP error", "status_code", fetchErr.StatusCode)
		} else {
			log.Error("Failed to fetch feed", "error", err)
		}
		return feedResult{status: statusErrored}
	}

	if fetched.NotModified {
		log.Debug("Feed unchanged, skipping")
		return feedResult{status: statusSkipped}
	}

	metadata, items, err := in.parser.Run(fetched.Body, src.GenreOverride)
	if err != nil {
		log.Error("Failed to parse feed", "error", err)
		return feedResult{status: statusErrored}
	}

	meta := database.PodcastMeta{
		Title:        metadata.Title,
		Author:       metadata.Author,
		ImageURL:     metadata.ImageURL,
		Description:  metadata.Description,
		Genres:       metadata.Genres,
		Slug:         feed.Slugify(metadata.Title),
		ETag:         fetched.ETag,
		LastModified: fetched.LastModified,
	}

	// last_refreshed is stamped before episode processing begins; the
	// crash-recovery heuristic depends on that ordering.
	var podcastID string
	err = retry.Do(ctx, in.retryCfg, func() error {
		var opErr error
		podcastID, opErr = in.podcasts.Upsert(ctx, src.FeedURL, meta, in.now().UTC())
		return opErr
	})
	if err != nil {
		log.Error("Failed to upsert podcast", "error", err)
		return feedResult{status: statusErrored}
	}

	forceFullCheck := recentlyRefreshed || in.opts.ForceRefresh
	if !forceFullCheck {
		hasNew, err := in.episodes.HasNewEpisodes(ctx, podcastID, items)
		if err != nil {
			log.Error("Failed to check for new episodes", "error", err)
			return feedResult{status: statusErrored}
		}
		if !hasNew {
			log.Debug("No new episodes, skipping")
			return feedResult{status: statusSkipped}
		}
	}

	inserted, err := in.episodes.InsertAll(ctx, podcastID, items)
	if err != nil {
		log.Error("Failed to insert episodes", "error", err)
		return feedResult{status: statusErrored, newEpisodes: inserted}
	}

	log.Info("Processed feed", "items", len(items), "new_episodes", inserted)
	return feedResult{status: statusProcessed, newEpisodes: inserted}
}

func filterDaily(feeds []sources.Source) []sources.Source {
	var daily []sources.Source
	for _, src := range feeds {
		if src.Daily {
			daily = append(daily, src)
		}
	}
	return daily
}
