// Package store keeps the boundary server's on-disk state: a cache of
// catalogue validation responses and a watcher for the config file.
package store

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/termwise/pkg/course"
)

// ValidationCache remembers upstream validation responses per term and
// course-code set.
type ValidationCache struct {
	d   *diskv.Diskv
	ttl time.Duration
	now func() time.Time
}

type cacheRecord struct {
	Stored time.Time       `json:"stored"`
	Body   json.RawMessage `json:"body"`
}

// NewValidationCache opens a cache rooted at basePath. A ttl of zero or less
// disables lookups; writes still land on disk.
func NewValidationCache(basePath string, ttl time.Duration) (*ValidationCache, error) {
	if basePath == "" {
		return nil, errors.New("store: cache base path required")
	}
	return &ValidationCache{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Get returns a cached response younger than the ttl.
func (c *ValidationCache) Get(term course.Term, codes []string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	rec, err := c.read(toKey(term, codes))
	if err != nil {
		return nil, false
	}
	if c.now().Sub(rec.Stored) > c.ttl {
		return nil, false
	}
	return rec.Body, true
}

// Put stores body for the term and code set.
func (c *ValidationCache) Put(term course.Term, codes []string, body []byte) error {
	if c == nil {
		return nil
	}
	if !json.Valid(body) {
		return errors.New("store: refusing to cache invalid JSON")
	}
	data, err := json.Marshal(cacheRecord{Stored: c.now(), Body: body})
	if err != nil {
		return err
	}
	if err := c.d.Write(toKey(term, codes), data); err != nil {
		return fmt.Errorf("store: write cache: %w", err)
	}
	return nil
}

// Purge erases expired entries and returns how many were removed.
func (c *ValidationCache) Purge(ctx context.Context) (int, error) {
	if c == nil {
		return 0, nil
	}
	var stale []string
	for key := range c.d.Keys(ctx.Done()) {
		rec, err := c.read(key)
		if err != nil || c.now().Sub(rec.Stored) > c.ttl {
			stale = append(stale, key)
		}
	}
	removed := 0
	for _, key := range stale {
		if err := c.d.Erase(key); err != nil {
			return removed, fmt.Errorf("store: erase %s: %w", key, err)
		}
		removed++
	}
	return removed, ctx.Err()
}

func (c *ValidationCache) read(key string) (*cacheRecord, error) {
	val, err := c.d.Read(key)
	if err != nil {
		return nil, err
	}
	rec := &cacheRecord{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `term-md5(codes)`. Codes are upper-cased and sorted so the
// order they were entered in does not matter.
func toKey(term course.Term, codes []string) string {
	norm := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			norm = append(norm, c)
		}
	}
	sort.Strings(norm)
	sum := md5.Sum([]byte(strings.Join(norm, ",")))
	return fmt.Sprintf("%s-%x", term, sum)
}
