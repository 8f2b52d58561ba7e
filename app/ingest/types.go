package ingest

// Options controls a single ingestion run. It is built once at process
// start and passed in explicitly.
type Options struct {
	BatchSize     int  // limit feeds processed this run, 0 = all
	ForceRefresh  bool // bypass all cache tokens and sampling shortcuts
	DeleteMissing bool // enable reconciliation against the source list
	OnlyDaily     bool // process only feeds flagged as daily
	ActiveOnly    bool // skip feeds with no recent episodes
	ActiveDays    int  // freshness window for the activity check
	WorkerCount   int  // bounded worker pool size
}

// RunStats is the aggregate outcome of a run. A run always finishes with
// these counts, even when individual feeds failed.
type RunStats struct {
	Processed   int
	Skipped     int
	Errored     int
	Deleted     int
	NewEpisodes int
}

type feedStatus int

const (
	statusProcessed feedStatus = iota
	statusSkipped
	statusErrored
)

// feedResult is the per-feed outcome folded into RunStats.
type feedResult struct {
	status      feedStatus
	newEpisodes int
}
