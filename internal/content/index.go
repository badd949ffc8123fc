// Package content tracks which blog posts exist on disk. View counting must
// refuse slugs that have no backing post, otherwise the blog_views table
// fills with junk rows from crawlers probing arbitrary URLs.
package content

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/devfolio/portfolio-backend/internal/safego"
)

// Index answers whether a slug corresponds to a published post.
type Index interface {
	Exists(slug string) bool
}

// DirIndex indexes a directory of markdown posts. The slug for a post is its
// filename without the .md/.mdx extension. A filesystem watcher keeps the
// index current as posts are added or removed, so the server never needs a
// restart to start counting views for a new post.
type DirIndex struct {
	dir    string
	logger *slog.Logger

	mu    sync.RWMutex
	slugs map[string]struct{}

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewDirIndex scans dir and starts watching it. A missing or unreadable dir
// is not fatal: the index starts empty and logs a warning, which keeps the
// server bootable on a fresh deployment with no posts yet.
func NewDirIndex(dir string, logger *slog.Logger) *DirIndex {
	idx := &DirIndex{
		dir:    dir,
		logger: logger,
		slugs:  make(map[string]struct{}),
		done:   make(chan struct{}),
	}

	if err := idx.rescan(); err != nil {
		logger.Warn("content directory not readable, starting with empty index",
			"dir", dir, "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("content watcher unavailable, index will not follow changes", "error", err)
		return idx
	}
	if err := watcher.Add(dir); err != nil {
		logger.Warn("content watcher could not watch directory", "dir", dir, "error", err)
		watcher.Close()
		return idx
	}

	idx.watcher = watcher
	safego.Go(idx.watch)
	return idx
}

// Exists reports whether a post with the given slug is on disk.
func (idx *DirIndex) Exists(slug string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.slugs[slug]
	return ok
}

// Slugs returns a snapshot of all indexed slugs, sorted order not guaranteed.
func (idx *DirIndex) Slugs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.slugs))
	for slug := range idx.slugs {
		out = append(out, slug)
	}
	return out
}

// Close stops the filesystem watcher.
func (idx *DirIndex) Close() error {
	close(idx.done)
	if idx.watcher != nil {
		return idx.watcher.Close()
	}
	return nil
}

func (idx *DirIndex) rescan() error {
	entries, err := os.ReadDir(idx.dir)
	if err != nil {
		return err
	}

	next := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slug, ok := slugFromFilename(entry.Name()); ok {
			next[slug] = struct{}{}
		}
	}

	idx.mu.Lock()
	idx.slugs = next
	idx.mu.Unlock()
	return nil
}

func (idx *DirIndex) watch() {
	for {
		select {
		case <-idx.done:
			return
		case event, ok := <-idx.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// A rescan is cheap at blog scale and simpler than tracking
			// per-event adds and removes through renames.
			if err := idx.rescan(); err != nil {
				idx.logger.Warn("content rescan failed", "error", err)
			}
		case err, ok := <-idx.watcher.Errors:
			if !ok {
				return
			}
			idx.logger.Warn("content watcher error", "error", err)
		}
	}
}

func slugFromFilename(name string) (string, bool) {
	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case ".md", ".mdx":
	default:
		return "", false
	}
	slug := strings.TrimSuffix(name, ext)
	if slug == "" || strings.HasPrefix(slug, ".") {
		return "", false
	}
	return slug, true
}

// StaticIndex is a fixed set of slugs, used in tests and for deployments
// that inject the post list directly.
type StaticIndex map[string]struct{}

// NewStaticIndex builds a StaticIndex from a slug list.
func NewStaticIndex(slugs ...string) StaticIndex {
	idx := make(StaticIndex, len(slugs))
	for _, slug := range slugs {
		idx[slug] = struct{}{}
	}
	return idx
}

// Exists reports whether the slug is in the set.
func (s StaticIndex) Exists(slug string) bool {
	_, ok := s[slug]
	return ok
}
