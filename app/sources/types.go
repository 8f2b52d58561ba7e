package sources

// Source is a single row from the feeds CSV.
type Source struct {
	FeedURL       string
	GenreOverride string // comma-separated list replacing feed-derived genres
	Daily         bool   // row is flagged for daily-only runs
}
