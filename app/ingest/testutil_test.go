package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/solgood44/podcastlibrary/app/database"
)

// fakePodcastRepo is a mutex-guarded in-memory PodcastRepository. Error
// fields, when set, are returned by the corresponding method.
type fakePodcastRepo struct {
	mu       sync.Mutex
	podcasts map[string]*database.Podcast // keyed by feed URL
	nextID   int

	cacheErr  error
	upsertErr error
	findErr   error
	listErr   error
	deleteErr error
}

func newFakePodcastRepo() *fakePodcastRepo {
	return &fakePodcastRepo{podcasts: make(map[string]*database.Podcast)}
}

func (r *fakePodcastRepo) seed(feedURL, id string, etag, lastModified string, lastRefreshed *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.podcasts[feedURL] = &database.Podcast{
		ID:            id,
		FeedURL:       feedURL,
		ETag:          etag,
		LastModified:  lastModified,
		LastRefreshed: lastRefreshed,
	}
}

func (r *fakePodcastRepo) GetCacheInfo(_ context.Context, feedURL string) (*database.CacheInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheErr != nil {
		return nil, r.cacheErr
	}
	p, ok := r.podcasts[feedURL]
	if !ok {
		return nil, nil
	}
	return &database.CacheInfo{
		ID:            p.ID,
		ETag:          p.ETag,
		LastModified:  p.LastModified,
		LastRefreshed: p.LastRefreshed,
	}, nil
}

func (r *fakePodcastRepo) Upsert(_ context.Context, feedURL string, meta database.PodcastMeta, refreshedAt time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return "", r.upsertErr
	}
	p, ok := r.podcasts[feedURL]
	if !ok {
		r.nextID++
		p = &database.Podcast{ID: fmt.Sprintf("podcast-%d", r.nextID), FeedURL: feedURL}
		r.podcasts[feedURL] = p
	}
	p.Title = meta.Title
	p.Author = meta.Author
	p.ImageURL = meta.ImageURL
	p.Description = meta.Description
	p.Genres = meta.Genres
	p.Slug = meta.Slug
	p.ETag = meta.ETag
	p.LastModified = meta.LastModified
	p.LastRefreshed = &refreshedAt
	return p.ID, nil
}

func (r *fakePodcastRepo) FindIDsByFeedURLs(_ context.Context, feedURLs []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	ids := make(map[string]string)
	for _, url := range feedURLs {
		if p, ok := r.podcasts[url]; ok {
			ids[url] = p.ID
		}
	}
	return ids, nil
}

func (r *fakePodcastRepo) AllFeedURLs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	urls := make([]string, 0, len(r.podcasts))
	for url := range r.podcasts {
		urls = append(urls, url)
	}
	return urls, nil
}

func (r *fakePodcastRepo) DeleteByFeedURL(_ context.Context, feedURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.podcasts, feedURL)
	return nil
}

func (r *fakePodcastRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.podcasts), nil
}

// fakeEpisodeRepo is a mutex-guarded in-memory EpisodeRepository keyed by
// (podcast id, guid).
type fakeEpisodeRepo struct {
	mu       sync.Mutex
	episodes map[string]map[string]database.Episode

	insertErr error
	existsErr error
	latestErr error
}

func newFakeEpisodeRepo() *fakeEpisodeRepo {
	return &fakeEpisodeRepo{episodes: make(map[string]map[string]database.Episode)}
}

func (r *fakeEpisodeRepo) seed(podcastID, guid string, pubDate *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.episodes[podcastID] == nil {
		r.episodes[podcastID] = make(map[string]database.Episode)
	}
	r.episodes[podcastID][guid] = database.Episode{PodcastID: podcastID, GUID: guid, PubDate: pubDate}
}

func (r *fakeEpisodeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, byGUID := range r.episodes {
		total += len(byGUID)
	}
	return total
}

func (r *fakeEpisodeRepo) Insert(_ context.Context, episode database.Episode) (database.InsertOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return database.Inserted, r.insertErr
	}
	if r.episodes[episode.PodcastID] == nil {
		r.episodes[episode.PodcastID] = make(map[string]database.Episode)
	}
	if _, ok := r.episodes[episode.PodcastID][episode.GUID]; ok {
		return database.AlreadyExists, nil
	}
	r.episodes[episode.PodcastID][episode.GUID] = episode
	return database.Inserted, nil
}

func (r *fakeEpisodeRepo) Exists(_ context.Context, podcastID, guid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.episodes[podcastID][guid]
	return ok, nil
}

func (r *fakeEpisodeRepo) LatestPubDates(_ context.Context, podcastIDs []string) (map[string]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	latest := make(map[string]time.Time)
	for _, id := range podcastIDs {
		for _, episode := range r.episodes[id] {
			if episode.PubDate == nil {
				continue
			}
			if current, ok := latest[id]; !ok || episode.PubDate.After(current) {
				latest[id] = *episode.PubDate
			}
		}
	}
	return latest, nil
}
