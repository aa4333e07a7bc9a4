// package cache implements the disk-backed video ID cache.
//
// Search against the destination costs 100 quota units per track, so every
// resolved (title, artist) -> videoId mapping is kept in a JSON file for 30
// days. The file is only rewritten when an entry actually changed, via an
// atomic replace so a crash never leaves a torn file behind.
package cache

import (
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsync/internal/shared"
)

// TTL after which a cached mapping is no longer trusted.
const TTL = 30 * 24 * time.Hour

// keySeparator joins the normalized title and artist. NUL cannot appear in
// either field, so keys are unambiguous.
const keySeparator = "\x00"

// Entry is a single cached mapping.
type Entry struct {
	VideoID  string `json:"video_id"`
	CachedAt int64  `json:"cached_at"`
}

// VideoCache is a disk-backed (title, artist) -> videoId mapping with
// expiry. Not safe for concurrent use; runs are strictly sequential.
type VideoCache struct {
	path    string
	entries map[string]Entry
	dirty   bool
	logger  *log.Logger
	now     func() time.Time
}

// Opts contains configuration options for creating a VideoCache.
type Opts struct {
	Path   string
	Logger *log.Logger
	Now    func() time.Time // defaults to time.Now
}

// New loads the cache file at opts.Path, upgrading legacy bare-string
// values and pruning entries older than the TTL. A missing or unreadable
// file yields an empty cache; the cache is best-effort and never fatal.
func New(opts Opts) *VideoCache {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &VideoCache{
		path:    opts.Path,
		entries: make(map[string]Entry),
		logger:  opts.Logger,
		now:     opts.Now,
	}

	c.load()
	c.pruneExpired()
	return c
}

// load reads the cache file. Values are decoded leniently: the current
// format is an Entry object, the legacy format a bare video ID string.
// Legacy values are upgraded in place with the current timestamp and mark
// the store dirty so the next save rewrites them structured.
func (c *VideoCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache load failed", "path", c.path, "err", err)
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		c.logger.Warn("cache file corrupt, starting empty", "path", c.path, "err", err)
		return
	}

	upgraded := 0
	for key, value := range raw {
		var legacy string
		if err := json.Unmarshal(value, &legacy); err == nil {
			c.entries[key] = Entry{VideoID: legacy, CachedAt: c.now().Unix()}
			c.dirty = true
			upgraded++
			continue
		}

		var entry Entry
		if err := json.Unmarshal(value, &entry); err == nil && entry.VideoID != "" {
			c.entries[key] = entry
		}
	}

	if upgraded > 0 {
		c.logger.Info("upgraded legacy cache entries", "count", upgraded)
	}
	c.logger.Debug("loaded cached mappings", "count", len(c.entries))
}

// pruneExpired drops entries older than the TTL and dirties the store if
// any were removed.
func (c *VideoCache) pruneExpired() {
	now := c.now().Unix()
	pruned := 0

	for key, entry := range c.entries {
		if now-entry.CachedAt > int64(TTL.Seconds()) {
			delete(c.entries, key)
			pruned++
		}
	}

	if pruned > 0 {
		c.dirty = true
		c.logger.Info("pruned expired cache entries", "count", pruned)
	}
}

// key normalizes the (title, artist) pair into the canonical cache key.
func key(title, artist string) string {
	return shared.Normalize(title) + keySeparator + shared.Normalize(artist)
}

// Get returns the cached video ID for the pair, or "" on a miss. An entry
// past the TTL is evicted as a side effect and reported as a miss.
func (c *VideoCache) Get(title, artist string) string {
	k := key(title, artist)
	entry, ok := c.entries[k]
	if !ok {
		return ""
	}

	if c.now().Unix()-entry.CachedAt > int64(TTL.Seconds()) {
		delete(c.entries, k)
		c.dirty = true
		return ""
	}

	return entry.VideoID
}

// Set inserts or overwrites the mapping for the pair. A write that does
// not change the stored video ID leaves the store clean, so refreshing the
// cache from authoritative playlist data does not force a file rewrite.
func (c *VideoCache) Set(title, artist, videoID string) {
	k := key(title, artist)
	if current, ok := c.entries[k]; ok && current.VideoID == videoID {
		return
	}

	c.entries[k] = Entry{VideoID: videoID, CachedAt: c.now().Unix()}
	c.dirty = true
}

// Len returns the number of cached mappings.
func (c *VideoCache) Len() int {
	return len(c.entries)
}

// Clear drops every entry and dirties the store.
func (c *VideoCache) Clear() {
	if len(c.entries) == 0 {
		return
	}
	c.entries = make(map[string]Entry)
	c.dirty = true
}

// Save writes the cache file via atomic replace. No-op when clean. I/O
// failures are logged and swallowed: losing cache writes costs quota on
// the next run but never fails the current one.
func (c *VideoCache) Save() {
	if !c.dirty {
		return
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Error("cache marshal failed", "err", err)
		return
	}

	if err := shared.AtomicWriteFile(c.path, data); err != nil {
		c.logger.Error("cache save failed", "path", c.path, "err", err)
		return
	}

	c.dirty = false
}
