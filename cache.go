package metard

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

func keyFor(path string, info os.FileInfo) cacheKey {
	return cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}
}

// recordCache hands out clones so callers can never alter a cached record.
type recordCache struct {
	lru *lru.Cache[cacheKey, Record]
}

func newRecordCache(size int) (*recordCache, error) {
	c, err := lru.New[cacheKey, Record](size)
	if err != nil {
		return nil, err
	}
	return &recordCache{lru: c}, nil
}

func (c *recordCache) get(k cacheKey) (Record, bool) {
	rec, ok := c.lru.Get(k)
	if !ok {
		return Record{}, false
	}
	return rec.Clone(), true
}

func (c *recordCache) add(k cacheKey, rec Record) {
	c.lru.Add(k, rec.Clone())
}
