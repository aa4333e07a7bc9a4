package tasks

import (
	"sort"
	"strings"

	"github.com/desertthunder/ytsync/internal/models"
	"github.com/desertthunder/ytsync/internal/shared"
)

// fuzzyContains reports whether needle appears in haystack. Exact substring
// match first; for multi-word needles, at least 70% of the words appearing
// individually also counts (handles "The Weeknd" vs "Weeknd").
//
// Both arguments must already be normalized.
func fuzzyContains(haystack, needle string) bool {
	if strings.Contains(haystack, needle) {
		return true
	}

	words := strings.Fields(needle)
	if len(words) <= 1 {
		return false
	}

	matches := 0
	for _, word := range words {
		if strings.Contains(haystack, word) {
			matches++
		}
	}
	return float64(matches) >= float64(len(words))*0.7
}

// trackMatchesItem reports whether a destination item's title contains both
// the source track's title and artist, after normalization. Used for the
// direct-match step of resolution: an item already in the playlist is
// authoritative and skips both cache and search.
func trackMatchesItem(track models.Track, itemTitle string) bool {
	title := shared.Normalize(itemTitle)
	return strings.Contains(title, shared.Normalize(track.Title)) &&
		strings.Contains(title, shared.Normalize(track.Artist))
}

// scoredCandidate pairs a search result with its match score.
type scoredCandidate struct {
	result models.SearchResult
	score  int
}

// bestMatch scores search candidates for a track and returns the winner's
// video ID, or "" when no candidate scores positively.
//
// Scoring:
//   - +10: title contains track title (eligibility gate; candidates
//     without it are skipped entirely)
//   - +10: title contains artist
//   - +5: channel contains artist (likely the official channel)
//   - +3: title contains "official"
//   - +2: title contains "audio" (prefer audio over video)
//   - +3: channel contains "vevo"
//   - -10: title contains "cover"
//   - -5: title contains "remix" unless the source title has it
//   - -3: title contains "live" unless the source title has it
//   - -10: title contains "karaoke" or "instrumental"
//
// Ties keep search ranking order: the sort is stable, so the first-listed
// candidate wins.
func bestMatch(results []models.SearchResult, track models.Track) string {
	trackTitle := shared.Normalize(track.Title)
	artist := shared.Normalize(track.Artist)

	sourceHasRemix := strings.Contains(trackTitle, "remix")
	sourceHasLive := strings.Contains(trackTitle, "live")

	var scored []scoredCandidate

	for _, result := range results {
		title := shared.Normalize(result.Title)
		channel := shared.Normalize(result.Channel)

		if !fuzzyContains(title, trackTitle) {
			continue
		}
		score := 10

		if fuzzyContains(title, artist) {
			score += 10
		}
		if fuzzyContains(channel, artist) {
			score += 5
		}

		if strings.Contains(title, "official") {
			score += 3
		}
		if strings.Contains(title, "audio") {
			score += 2
		}
		if strings.Contains(channel, "vevo") {
			score += 3
		}

		if strings.Contains(title, "cover") {
			score -= 10
		}
		if strings.Contains(title, "remix") && !sourceHasRemix {
			score -= 5
		}
		if strings.Contains(title, "live") && !sourceHasLive {
			score -= 3
		}
		if strings.Contains(title, "karaoke") || strings.Contains(title, "instrumental") {
			score -= 10
		}

		if score > 0 {
			scored = append(scored, scoredCandidate{result: result, score: score})
		}
	}

	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	return scored[0].result.VideoID
}
