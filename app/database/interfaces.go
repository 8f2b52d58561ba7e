package database

import (
	"context"
	"time"
)

// InsertOutcome reports what an episode insert did. A uniqueness violation
// is a successful no-op, not an error.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

type PodcastRepository interface {
	// GetCacheInfo returns cache tokens and last refresh state for a feed
	// URL, or nil when the podcast is not in the store.
	GetCacheInfo(ctx context.Context, feedURL string) (*CacheInfo, error)

	// Upsert inserts or updates a podcast by feed URL and stamps
	// last_refreshed. Returns the podcast id.
	Upsert(ctx context.Context, feedURL string, meta PodcastMeta, refreshedAt time.Time) (string, error)

	// FindIDsByFeedURLs maps feed URLs to podcast ids for the URLs that
	// exist in the store.
	FindIDsByFeedURLs(ctx context.Context, feedURLs []string) (map[string]string, error)

	AllFeedURLs(ctx context.Context) ([]string, error)
	DeleteByFeedURL(ctx context.Context, feedURL string) error
	Count(ctx context.Context) (int, error)
}

type EpisodeRepository interface {
	// Insert attempts a direct insert. A (podcast_id, guid) uniqueness
	// violation yields AlreadyExists with a nil error.
	Insert(ctx context.Context, episode Episode) (InsertOutcome, error)

	Exists(ctx context.Context, podcastID, guid string) (bool, error)

	// LatestPubDates returns the most recent episode publish date per
	// podcast id. Podcasts without dated episodes are absent from the map.
	LatestPubDates(ctx context.Context, podcastIDs []string) (map[string]time.Time, error)
}
