package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
)

// itunes:author is extracted with a direct text search over the raw bytes
// because feed parsers sometimes drop namespaced channel fields. Some feeds
// also use a non-namespaced <itunes_author> spelling.
var (
	itunesAuthorRe    = regexp.MustCompile(`(?is)<itunes:author[^>]*>(.*?)</itunes:author>`)
	itunesAuthorAltRe = regexp.MustCompile(`(?is)<itunes_author[^>]*>(.*?)</itunes_author>`)
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes into podcast metadata and the raw item list.
// genreOverride, when non-empty, replaces the feed-derived genre list
// outright (comma-separated, trimmed).
func (p *Parser) Run(data []byte, genreOverride string) (*Metadata, []*gofeed.Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Author:      p.extractAuthor(data, parsed),
		ImageURL:    p.extractImageURL(parsed),
		Description: p.extractDescription(parsed),
		Genres:      extractGenres(parsed),
	}

	if genreOverride != "" {
		metadata.Genres = splitOverride(genreOverride)
	}

	return metadata, parsed.Items, nil
}

// extractAuthor resolves the podcast author via the priority chain:
// raw-bytes itunes:author, parser-level iTunes author, generic author.
func (p *Parser) extractAuthor(data []byte, parsed *gofeed.Feed) string {
	if m := itunesAuthorRe.FindSubmatch(data); m != nil {
		if author := strings.TrimSpace(string(m[1])); author != "" {
			return author
		}
	}
	if m := itunesAuthorAltRe.FindSubmatch(data); m != nil {
		if author := strings.TrimSpace(string(m[1])); author != "" {
			return author
		}
	}

	if parsed.ITunesExt != nil && parsed.ITunesExt.Author != "" {
		return parsed.ITunesExt.Author
	}

	for _, author := range parsed.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	if parsed.Author != nil {
		return parsed.Author.Name
	}

	return ""
}

func (p *Parser) extractImageURL(parsed *gofeed.Feed) string {
	if parsed.Image != nil && parsed.Image.URL != "" {
		return parsed.Image.URL
	}
	if parsed.ITunesExt != nil {
		return parsed.ITunesExt.Image
	}
	return ""
}

func (p *Parser) extractDescription(parsed *gofeed.Feed) string {
	if parsed.ITunesExt != nil && parsed.ITunesExt.Subtitle != "" {
		return parsed.ITunesExt.Subtitle
	}
	return parsed.Description
}

// NormalizeItem converts a raw feed item into the canonical episode shape.
// It returns false when the item has no usable guid and must be skipped.
func NormalizeItem(item *gofeed.Item) (Item, bool) {
	guid := cmp.Or(item.GUID, item.Link)
	if guid == "" {
		return Item{}, false
	}

	normalized := Item{
		GUID:        guid,
		Title:       item.Title,
		Description: item.Description,
		PublishedAt: item.PublishedParsed,
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		normalized.AudioURL = item.Enclosures[0].URL
	}

	if item.Image != nil && item.Image.URL != "" {
		normalized.ImageURL = item.Image.URL
	} else if item.ITunesExt != nil {
		normalized.ImageURL = item.ITunesExt.Image
	}

	if item.ITunesExt != nil {
		normalized.DurationSeconds = ParseDuration(item.ITunesExt.Duration)
	}

	return normalized, true
}

// ParseDuration parses an episode duration given as H:MM:SS, MM:SS, or a
// raw integer-seconds string. Unparseable values yield nil.
func ParseDuration(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 && len(parts) != 3 {
			return nil
		}
		values := make([]int64, 0, len(parts))
		for _, part := range parts {
			v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || v < 0 {
				return nil
			}
			values = append(values, v)
		}
		var seconds int64
		if len(values) == 3 {
			seconds = values[0]*3600 + values[1]*60 + values[2]
		} else {
			seconds = values[0]*60 + values[1]
		}
		return &seconds
	}

	seconds, err := strconv.ParseInt(s, 10, 64)
	if err != nil || seconds < 0 {
		return nil
	}
	return &seconds
}

func splitOverride(override string) []string {
	var genres []string
	for _, part := range strings.Split(override, ",") {
		if part = strings.TrimSpace(part); part != "" {
			genres = append(genres, part)
		}
	}
	return genres
}
