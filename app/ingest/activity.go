package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solgood44/podcastlibrary/app/database"
	"github.com/solgood44/podcastlibrary/app/retry"
)

// Store lookups are batched to stay clear of protocol-level request-size
// limits on large feed sets.
const lookupBatchSize = 400

// ActivityClassifier decides which feeds this run should process at all.
// A feed is active when it is new, has no recorded episodes, or its latest
// episode was published within the freshness window.
type ActivityClassifier struct {
	podcasts   database.PodcastRepository
	episodes   database.EpisodeRepository
	retryCfg   retry.Config
	activeDays int
	now        func() time.Time
}

func NewActivityClassifier(podcasts database.PodcastRepository, episodes database.EpisodeRepository,
	activeDays int, retryCfg retry.Config) *ActivityClassifier {
	return &ActivityClassifier{
		podcasts:   podcasts,
		episodes:   episodes,
		retryCfg:   retryCfg,
		activeDays: activeDays,
		now:        time.Now,
	}
}

// ActiveFeedURLs returns the subset of feedURLs that must be processed this
// run. When latest-episode aggregates cannot be computed it fails open and
// returns every feed as active.
func (c *ActivityClassifier) ActiveFeedURLs(ctx context.Context, feedURLs []string) (map[string]bool, error) {
	active := make(map[string]bool)
	if len(feedURLs) == 0 {
		return active, nil
	}

	idsByURL := make(map[string]string)
	for start := 0; start < len(feedURLs); start += lookupBatchSize {
		batch := feedURLs[start:min(start+lookupBatchSize, len(feedURLs))]

		var ids map[string]string
		err := retry.Do(ctx, c.retryCfg, func() error {
			var opErr error
			ids, opErr = c.podcasts.FindIDsByFeedURLs(ctx, batch)
			return opErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to look up existing podcasts: %w", err)
		}
		for url, id := range ids {
			idsByURL[url] = id
		}
	}

	// New feeds are always processed.
	for _, url := range feedURLs {
		if _, ok := idsByURL[url]; !ok {
			active[url] = true
		}
	}
	if len(idsByURL) == 0 {
		return active, nil
	}

	podcastIDs := make([]string, 0, len(idsByURL))
	for _, id := range idsByURL {
		podcastIDs = append(podcastIDs, id)
	}

	latest := make(map[string]time.Time)
	for start := 0; start < len(podcastIDs); start += lookupBatchSize {
		batch := podcastIDs[start:min(start+lookupBatchSize, len(podcastIDs))]

		var dates map[string]time.Time
		err := retry.Do(ctx, c.retryCfg, func() error {
			var opErr error
			dates, opErr = c.episodes.LatestPubDates(ctx, batch)
			return opErr
		})
		if err != nil {
			// Fail open: skipping potentially-active feeds is worse than
			// doing extra work.
			slog.Warn("Could not get latest episode dates, processing all feeds", "error", err)
			for _, url := range feedURLs {
				active[url] = true
			}
			return active, nil
		}
		for id, date := range dates {
			latest[id] = date
		}
	}

	cutoff := c.now().UTC().AddDate(0, 0, -c.activeDays)
	for url, id := range idsByURL {
		latestDate, ok := latest[id]
		if !ok {
			// No dated episodes recorded yet.
			active[url] = true
			continue
		}
		if !latestDate.UTC().Before(cutoff) {
			active[url] = true
		}
	}

	return active, nil
}
