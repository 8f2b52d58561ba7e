package ingest

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/solgood44/podcastlibrary/app/database"
	"github.com/solgood44/podcastlibrary/app/feed"
	"github.com/solgood44/podcastlibrary/app/retry"
)

// Number of leading items sampled by the cheap new-episode pre-check.
// Feeds that do not prepend newest-first can hide new episodes outside the
// sample; the crash-recovery and force-refresh paths bypass it entirely.
const newEpisodeSampleSize = 5

// EpisodeIngestor deduplicates and idempotently inserts episodes per feed.
type EpisodeIngestor struct {
	episodes database.EpisodeRepository
	retryCfg retry.Config
}

func NewEpisodeIngestor(episodes database.EpisodeRepository, retryCfg retry.Config) *EpisodeIngestor {
	return &EpisodeIngestor{episodes: episodes, retryCfg: retryCfg}
}

// HasNewEpisodes samples the first few items and reports whether any of
// them are not yet stored.
func (e *EpisodeIngestor) HasNewEpisodes(ctx context.Context, podcastID string, items []*gofeed.Item) (bool, error) {
	if podcastID == "" || len(items) == 0 {
		return false, nil
	}

	for _, item := range items[:min(newEpisodeSampleSize, len(items))] {
		episode, ok := feed.NormalizeItem(item)
		if !ok {
			continue
		}

		var exists bool
		err := retry.Do(ctx, e.retryCfg, func() error {
			var opErr error
			exists, opErr = e.episodes.Exists(ctx, podcastID, episode.GUID)
			return opErr
		})
		if err != nil {
			return false, fmt.Errorf("failed to check episode existence: %w", err)
		}
		if !exists {
			return true, nil
		}
	}

	return false, nil
}

// InsertAll attempts to insert every processable item and returns the
// number actually inserted. Items without a guid are skipped; uniqueness
// violations count as successful no-ops.
func (e *EpisodeIngestor) InsertAll(ctx context.Context, podcastID string, items []*gofeed.Item) (int, error) {
	inserted := 0
	for _, item := range items {
		episode, ok := feed.NormalizeItem(item)
		if !ok {
			continue
		}

		record := database.Episode{
			PodcastID:       podcastID,
			GUID:            episode.GUID,
			Title:           episode.Title,
			Description:     episode.Description,
			AudioURL:        episode.AudioURL,
			PubDate:         episode.PublishedAt,
			DurationSeconds: episode.DurationSeconds,
			ImageURL:        episode.ImageURL,
		}

		var outcome database.InsertOutcome
		err := retry.Do(ctx, e.retryCfg, func() error {
			var opErr error
			outcome, opErr = e.episodes.Insert(ctx, record)
			return opErr
		})
		if err != nil {
			return inserted, fmt.Errorf("failed to insert episode %s: %w", episode.GUID, err)
		}

		if outcome == database.Inserted {
			inserted++
		}
	}

	return inserted, nil
}
