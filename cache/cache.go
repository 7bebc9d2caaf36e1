package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// File cache for rendered blog post HTML. Files are keyed by post ID
// plus a hash of the markdown source, so editing a post naturally
// misses the stale entry; old files are swept by ClearOldCache.

const cacheRoot = "cache"

// GetCachePath returns the cache file path for a post's rendered body.
func GetCachePath(postID uint, content string) string {
	hash := xxhash.Sum64String(content)
	return filepath.Join(cacheRoot, fmt.Sprintf("post_%d_%016x.html", postID, hash))
}

func EnsureCacheDir() error {
	return os.MkdirAll(cacheRoot, 0755)
}

// WriteCache stores rendered HTML for a post.
func WriteCache(postID uint, content, html string) error {
	if err := EnsureCacheDir(); err != nil {
		return err
	}
	return os.WriteFile(GetCachePath(postID, content), []byte(html), 0644)
}

// ReadCache returns the rendered HTML for a post if a fresh entry exists.
func ReadCache(postID uint, content string, maxAge time.Duration) (string, bool) {
	cachePath := GetCachePath(postID, content)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ClearCache removes every cached rendering of a post, whatever the
// content hash. Used when a post is deleted.
func ClearCache(postID uint) error {
	pattern := filepath.Join(cacheRoot, fmt.Sprintf("post_%d_*.html", postID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ClearOldCache removes cache files older than maxAge.
func ClearOldCache(maxAge time.Duration) error {
	return filepath.Walk(cacheRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}
		return nil
	})
}
