package sources

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Column alias lists, matched case-sensitively, first match wins.
var (
	urlColumns   = []string{"SOURCE RSS FEED", "feed_url", "url", "rss", "RSS"}
	genreColumns = []string{"genre", "Genre", "GENRE", "category", "Category", "CATEGORY"}
	dailyColumns = []string{"daily", "Daily", "DAILY", "frequency", "Frequency"}
)

var dailyTruthy = map[string]bool{
	"1":     true,
	"true":  true,
	"yes":   true,
	"daily": true,
	"day":   true,
}

// Load reads the source list from a CSV file. Rows without a recognizable
// feed URL are dropped.
func Load(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feeds file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := columnIndex[name]; !ok {
			columnIndex[name] = i
		}
	}

	urlIdx := findColumn(columnIndex, urlColumns)
	genreIdx := findColumn(columnIndex, genreColumns)
	dailyIdx := findColumn(columnIndex, dailyColumns)

	if urlIdx < 0 {
		return nil, fmt.Errorf("no feed URL column found (expected one of %v)", urlColumns)
	}

	var feeds []Source
	for _, row := range records[1:] {
		feedURL := fieldAt(row, urlIdx)
		if feedURL == "" {
			continue
		}

		src := Source{FeedURL: feedURL}
		src.GenreOverride = fieldAt(row, genreIdx)
		if v := strings.ToLower(fieldAt(row, dailyIdx)); dailyTruthy[v] {
			src.Daily = true
		}

		feeds = append(feeds, src)
	}

	return feeds, nil
}

func findColumn(columnIndex map[string]int, candidates []string) int {
	for _, name := range candidates {
		if idx, ok := columnIndex[name]; ok {
			return idx
		}
	}
	return -1
}

func fieldAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
