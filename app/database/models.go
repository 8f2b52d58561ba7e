package database

import (
	"time"
)

// Podcast is a podcast record, uniquely identified by its feed URL.
type Podcast struct {
	ID            string
	FeedURL       string
	Title         string
	Author        string
	ImageURL      string
	Description   string
	Genres        []string
	Slug          string
	ETag          string
	LastModified  string
	LastRefreshed *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PodcastMeta carries the upsertable podcast attributes derived from a feed.
type PodcastMeta struct {
	Title        string
	Author       string
	ImageURL     string
	Description  string
	Genres       []string
	Slug         string
	ETag         string
	LastModified string
}

// CacheInfo is the per-feed state consulted before fetching: the cache
// token pair and the timestamp of the last successful processing attempt.
type CacheInfo struct {
	ID            string
	ETag          string
	LastModified  string
	LastRefreshed *time.Time
}

// Episode is an episode record, uniquely identified by (podcast_id, guid).
// Episodes are immutable once inserted.
type Episode struct {
	ID              string
	PodcastID       string
	GUID            string
	Title           string
	Description     string
	AudioURL        string
	PubDate         *time.Time
	DurationSeconds *int64
	ImageURL        string
	CreatedAt       time.Time
}
