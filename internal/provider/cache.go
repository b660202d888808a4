package provider

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Cache stores fetched documents on disk as zstd-compressed files, one per
// (kind, id). It is safe for concurrent use.
type Cache struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCache opens (creating if needed) a document cache rooted at dir.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Cache{dir: dir, enc: enc, dec: dec}, nil
}

func (c *Cache) path(kind string, id int64) string {
	return filepath.Join(c.dir, kind, fmt.Sprintf("%d.json.zst", id))
}

// Has reports whether a document is cached.
func (c *Cache) Has(kind string, id int64) bool {
	_, err := os.Stat(c.path(kind, id))
	return err == nil
}

// Get returns a cached document. A corrupt entry reads as a miss.
func (c *Cache) Get(kind string, id int64) ([]byte, bool) {
	raw, err := os.ReadFile(c.path(kind, id))
	if err != nil {
		return nil, false
	}
	data, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put compresses and stores a document, replacing any previous entry.
func (c *Cache) Put(kind string, id int64, data []byte) error {
	dst := c.path(kind, id)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(c.enc.EncodeAll(data, nil)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Close releases the decoder's goroutines.
func (c *Cache) Close() {
	c.dec.Close()
	c.enc.Close()
}
