package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// Load opens a diskv backed Store using the provided config. A nil config is
// loaded from viper.
func Load(cfg Config) (Store, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return Open(cfg)
}

// Open creates the directories named by cfg and returns a Store over them.
func Open(cfg Config) (Store, error) {
	dataPath := cfg.DataPath()
	tempPath := cfg.TempPath()
	if dataPath == "" {
		return nil, errors.New("store: data path unknown")
	}
	for _, dir := range []string{dataPath, tempPath} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: ensure %s: %w", dir, err)
		}
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          dataPath,
		TempDir:           tempPath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		// No read cache: another process may change any key, and a cached
		// value would outlive that change.
		CacheSizeMax: 0,
		FilePerm:     0o600,
		PathPerm:     0o700,
	}), basePath: dataPath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) Read(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return val, nil
}

func (p *persistence) Write(key string, val []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := p.d.Write(key, val); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (p *persistence) Erase(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := p.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

func (p *persistence) Has(key string) bool {
	if checkKey(key) != nil {
		return false
	}
	return p.d.Has(key)
}

func (p *persistence) Keys(ctx context.Context) []string {
	keys := make([]string, 0)
	for key := range p.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// EraseAll removes every key. The data directory is recreated so the store
// stays usable afterwards.
func (p *persistence) EraseAll() error {
	if err := p.d.EraseAll(); err != nil {
		return fmt.Errorf("store: erase all: %w", err)
	}
	if err := os.MkdirAll(p.basePath, 0o700); err != nil {
		return fmt.Errorf("store: ensure %s: %w", p.basePath, err)
	}
	return nil
}

// Keys map one to one onto file names in the data directory.
func keyToPathTransform(s string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{},
		FileName: s,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
