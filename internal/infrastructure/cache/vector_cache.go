// Package cache keeps computed embedding vectors on disk so repeated queries
// do not pay for a remote embedding call.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/doeshing/termind/internal/domain"
)

// VectorEntry is one cached embedding.
type VectorEntry struct {
	Key       string    `json:"key"`
	Model     string    `json:"model"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// FileCache stores vectors as JSON blobs addressed by hash key.
type FileCache struct {
	dir        string
	mu         sync.Mutex
	maxEntries int
}

// NewFileCache returns a cache rooted at dir.
func NewFileCache(dir string, maxEntries int) *FileCache {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultEmbeddingCacheEntries
	}
	return &FileCache{dir: dir, maxEntries: maxEntries}
}

// Key derives the cache key for text embedded by model.
func Key(model, text string) string {
	sum := blake3.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:16])
}

// Get retrieves a cached vector.
func (c *FileCache) Get(key string) ([]float32, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entry VectorEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}
	if len(entry.Vector) == 0 {
		return nil, false, nil
	}
	return entry.Vector, true, nil
}

// Put stores a vector and trims the cache to its bound.
func (c *FileCache) Put(key, model string, vector []float32) error {
	if key == "" || len(vector) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.Marshal(VectorEntry{Key: key, Model: model, Vector: vector, CreatedAt: time.Now()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.pathFor(key), data, 0o644); err != nil {
		return err
	}
	return c.evictIfNeeded()
}

// Dir exposes the cache directory path.
func (c *FileCache) Dir() string {
	return c.dir
}

// Clear removes all cached entries.
func (c *FileCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Len counts cached entries.
func (c *FileCache) Len() (int, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == ".json" {
			n++
		}
	}
	return n, nil
}

func (c *FileCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) evictIfNeeded() error {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(files) <= c.maxEntries {
		return nil
	}
	type fileInfo struct {
		name string
		mod  time.Time
	}
	var infos []fileInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].mod.Before(infos[j].mod) })
	for len(infos) > c.maxEntries {
		_ = os.Remove(filepath.Join(c.dir, infos[0].name))
		infos = infos[1:]
	}
	return nil
}
