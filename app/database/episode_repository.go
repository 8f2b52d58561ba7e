package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error code for unique_violation.
const uniqueViolationCode = "23505"

var _ EpisodeRepository = (*EpisodeRepo)(nil)

// EpisodeRepo handles database operations for episodes.
type EpisodeRepo struct {
	db *sqlx.DB
}

func NewEpisodeRepo(db *sqlx.DB) *EpisodeRepo {
	return &EpisodeRepo{db: db}
}

func (r *EpisodeRepo) Insert(ctx context.Context, episode Episode) (InsertOutcome, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO episodes (podcast_id, guid, title, description, audio_url, pub_date, duration_seconds, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, episode.PodcastID, episode.GUID, episode.Title, episode.Description,
		episode.AudioURL, episode.PubDate, episode.DurationSeconds, episode.ImageURL)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			return AlreadyExists, nil
		}
		return 0, fmt.Errorf("failed to insert episode: %w", err)
	}

	return Inserted, nil
}

func (r *EpisodeRepo) Exists(ctx context.Context, podcastID, guid string) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM episodes WHERE podcast_id = $1 AND guid = $2 LIMIT 1
	`, podcastID, guid).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check episode existence: %w", err)
	}

	return true, nil
}

func (r *EpisodeRepo) LatestPubDates(ctx context.Context, podcastIDs []string) (map[string]time.Time, error) {
	if len(podcastIDs) == 0 {
		return map[string]time.Time{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT podcast_id, MAX(pub_date)
		FROM episodes
		WHERE podcast_id = ANY($1)
		GROUP BY podcast_id
	`, pq.Array(podcastIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest publish dates: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]time.Time)
	for rows.Next() {
		var (
			podcastID string
			pubDate   sql.NullTime
		)
		if err := rows.Scan(&podcastID, &pubDate); err != nil {
			return nil, fmt.Errorf("failed to scan publish date row: %w", err)
		}
		if pubDate.Valid {
			latest[podcastID] = pubDate.Time
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publish date rows: %w", err)
	}

	return latest, nil
}
