// Package assets lays out the on-disk item store and caches payloads
// read from it.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// File names inside an item folder.
const (
	ModelFile    = "model.exr"
	TextureFile  = "texture1.png"
	MeshFile     = "model.obj"
	MaterialFile = "material.yaml"
	PrefabFile   = "item.yaml"
)

// Store maps item ids to folders under <root>/items.
type Store struct {
	root  string
	cache *Cache
}

// NewStore creates a store rooted at root. Nothing is created on disk.
func NewStore(root string) *Store {
	return &Store{
		root:  root,
		cache: NewCache(),
	}
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// ItemsDir returns the directory holding all item folders.
func (s *Store) ItemsDir() string {
	return filepath.Join(s.root, "items")
}

// ItemDir returns the folder of one item.
func (s *Store) ItemDir(itemID int) string {
	return filepath.Join(s.ItemsDir(), strconv.Itoa(itemID))
}

// ModelPath returns where the fetched model payload is stored.
func (s *Store) ModelPath(itemID int) string {
	return filepath.Join(s.ItemDir(itemID), ModelFile)
}

// TexturePath returns where the fetched texture is stored.
func (s *Store) TexturePath(itemID int) string {
	return filepath.Join(s.ItemDir(itemID), TextureFile)
}

// MeshPath returns where the decoded mesh is written.
func (s *Store) MeshPath(itemID int) string {
	return filepath.Join(s.ItemDir(itemID), MeshFile)
}

// MaterialPath returns where the generated material is written.
func (s *Store) MaterialPath(itemID int) string {
	return filepath.Join(s.ItemDir(itemID), MaterialFile)
}

// PrefabPath returns where the generated prefab is written.
func (s *Store) PrefabPath(itemID int) string {
	return filepath.Join(s.ItemDir(itemID), PrefabFile)
}

// Prepare creates the items directory and a folder for every id.
func (s *Store) Prepare(itemIDs []int) error {
	if err := os.MkdirAll(s.ItemsDir(), 0755); err != nil {
		return fmt.Errorf("creating items folder: %w", err)
	}
	for _, id := range itemIDs {
		if err := os.MkdirAll(s.ItemDir(id), 0755); err != nil {
			return fmt.Errorf("creating folder for item %d: %w", id, err)
		}
	}
	return nil
}

// Load reads a file, serving repeated reads from the cache.
func (s *Store) Load(path string) ([]byte, error) {
	if data, ok := s.cache.Get(path); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.cache.Set(path, data)
	return data, nil
}

// WriteFile writes data to path and refreshes the cache entry.
func (s *Store) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	s.cache.Set(path, data)
	return nil
}

// Invalidate drops a cached path, for files rewritten outside the store.
func (s *Store) Invalidate(path string) {
	s.cache.Delete(path)
}

// CacheStats returns cache hit and miss counts.
func (s *Store) CacheStats() (hits, misses int) {
	return s.cache.Stats()
}

// Cache is a simple in-memory cache for loaded payloads.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
