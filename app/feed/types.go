package feed

import (
	"time"
)

// Metadata is the canonical podcast-level shape extracted from a feed.
type Metadata struct {
	Title       string
	Author      string
	ImageURL    string
	Description string
	Genres      []string
}

// Item is the canonical episode-level shape derived from a raw feed item.
type Item struct {
	GUID            string
	Title           string
	Description     string
	AudioURL        string
	ImageURL        string
	PublishedAt     *time.Time
	DurationSeconds *int64
}
