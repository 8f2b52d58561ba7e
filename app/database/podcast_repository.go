package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var _ PodcastRepository = (*PodcastRepo)(nil)

// PodcastRepo handles database operations for podcasts.
type PodcastRepo struct {
	db *sqlx.DB
}

func NewPodcastRepo(db *sqlx.DB) *PodcastRepo {
	return &PodcastRepo{db: db}
}

func (r *PodcastRepo) GetCacheInfo(ctx context.Context, feedURL string) (*CacheInfo, error) {
	var (
		info          CacheInfo
		etag          sql.NullString
		lastModified  sql.NullString
		lastRefreshed sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, etag, last_modified, last_refreshed
		FROM podcasts
		WHERE feed_url = $1
	`, feedURL).Scan(&info.ID, &etag, &lastModified, &lastRefreshed)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast cache info: %w", err)
	}

	info.ETag = etag.String
	info.LastModified = lastModified.String
	if lastRefreshed.Valid {
		t := lastRefreshed.Time
		info.LastRefreshed = &t
	}

	return &info, nil
}

func (r *PodcastRepo) Upsert(ctx context.Context, feedURL string, meta PodcastMeta, refreshedAt time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO podcasts (feed_url, title, author, image_url, description, genre, slug, etag, last_modified, last_refreshed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (feed_url) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			image_url = EXCLUDED.image_url,
			description = EXCLUDED.description,
			genre = EXCLUDED.genre,
			slug = EXCLUDED.slug,
			etag = EXCLUDED.etag,
			last_modified = EXCLUDED.last_modified,
			last_refreshed = EXCLUDED.last_refreshed,
			updated_at = NOW()
		RETURNING id
	`, feedURL, meta.Title, meta.Author, meta.ImageURL, meta.Description,
		pq.Array(meta.Genres), meta.Slug, meta.ETag, meta.LastModified, refreshedAt).Scan(&id)

	if err != nil {
		return "", fmt.Errorf("failed to upsert podcast: %w", err)
	}

	return id, nil
}

func (r *PodcastRepo) FindIDsByFeedURLs(ctx context.Context, feedURLs []string) (map[string]string, error) {
	if len(feedURLs) == 0 {
		return map[string]string{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, feed_url
		FROM podcasts
		WHERE feed_url = ANY($1)
	`, pq.Array(feedURLs))
	if err != nil {
		return nil, fmt.Errorf("failed to look up podcasts by feed URL: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var id, feedURL string
		if err := rows.Scan(&id, &feedURL); err != nil {
			return nil, fmt.Errorf("failed to scan podcast row: %w", err)
		}
		ids[feedURL] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating podcast rows: %w", err)
	}

	return ids, nil
}

func (r *PodcastRepo) AllFeedURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT feed_url FROM podcasts`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan feed URL: %w", err)
		}
		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed URL rows: %w", err)
	}

	return urls, nil
}

// DeleteByFeedURL removes a podcast; episodes cascade at the schema level.
func (r *PodcastRepo) DeleteByFeedURL(ctx context.Context, feedURL string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM podcasts WHERE feed_url = $1`, feedURL)
	if err != nil {
		return fmt.Errorf("failed to delete podcast: %w", err)
	}
	return nil
}

func (r *PodcastRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM podcasts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get podcast count: %w", err)
	}
	return count, nil
}
