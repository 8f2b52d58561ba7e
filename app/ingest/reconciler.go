package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/solgood44/podcastlibrary/app/database"
	"github.com/solgood44/podcastlibrary/app/retry"
)

// Reconciler deletes podcasts whose feed URL is no longer in the source
// list. Episode deletion cascades at the schema level.
type Reconciler struct {
	podcasts database.PodcastRepository
	retryCfg retry.Config
}

func NewReconciler(podcasts database.PodcastRepository, retryCfg retry.Config) *Reconciler {
	return &Reconciler{podcasts: podcasts, retryCfg: retryCfg}
}

// Run computes the set difference between stored feed URLs and the source
// list and deletes the extras. Individual delete failures are logged and
// skipped so one bad row cannot block the rest.
func (r *Reconciler) Run(ctx context.Context, sourceURLs []string) (int, error) {
	if len(sourceURLs) == 0 {
		return 0, nil
	}

	inSource := make(map[string]bool, len(sourceURLs))
	for _, url := range sourceURLs {
		inSource[url] = true
	}

	var stored []string
	err := retry.Do(ctx, r.retryCfg, func() error {
		var opErr error
		stored, opErr = r.podcasts.AllFeedURLs(ctx)
		return opErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list stored podcasts: %w", err)
	}

	deleted := 0
	for _, url := range stored {
		if inSource[url] {
			continue
		}

		err := retry.Do(ctx, r.retryCfg, func() error {
			return r.podcasts.DeleteByFeedURL(ctx, url)
		})
		if err != nil {
			slog.Error("Failed to delete podcast missing from source list", "feed_url", url, "error", err)
			continue
		}

		slog.Info("Deleted podcast missing from source list", "feed_url", url)
		deleted++
	}

	return deleted, nil
}
