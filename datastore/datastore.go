// Package datastore is a small JSON-file key/value store. Values live in
// memory as encoded JSON and are flushed to disk periodically and on Close.
package datastore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/keshon/menubot/pkg/logger"
)

var ErrClosed = errors.New("datastore is closed")

type Config struct {
	FilePath string
	// AutoSaveInterval is the flush period; zero disables the background loop.
	AutoSaveInterval time.Duration
	Logger           logger.Logger
}

func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
	}
}

type DataStore struct {
	mu       sync.RWMutex
	data     map[string]json.RawMessage
	file     string
	checksum [sha256.Size]byte
	closed   bool

	log    logger.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

func NewWithConfig(cfg Config) (*DataStore, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	ds := &DataStore{
		data: make(map[string]json.RawMessage),
		file: cfg.FilePath,
		log:  logger.OrNoop(cfg.Logger).With(logger.String("component", "datastore")),
	}
	if err := ds.load(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel
	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx, cfg.AutoSaveInterval)
	}
	return ds, nil
}

// Get decodes the value under key into out. It reports false when the key
// is absent.
func (ds *DataStore) Get(key string, out any) (bool, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	if ds.closed {
		return false, ErrClosed
	}
	raw, ok := ds.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Put stores value under key, replacing any previous value.
func (ds *DataStore) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = raw
	return nil
}

// Update reads key into a value of type T, applies fn and stores the result,
// all under one lock.
func Update[T any](ds *DataStore, key string, fn func(*T) error) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	var v T
	if raw, ok := ds.data[key]; ok {
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}
	if err := fn(&v); err != nil {
		return err
	}
	raw, err := json.Marshal(&v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	ds.data[key] = raw
	return nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	delete(ds.data, key)
	ds.mu.Unlock()
}

// Keys returns the stored keys in order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	ds.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// SaveToFile forces an immediate flush.
func (ds *DataStore) SaveToFile() error {
	ds.mu.RLock()
	closed := ds.closed
	ds.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ds.save()
}

// Close stops the background loop and flushes once more.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	ds.cancel()
	ds.wg.Wait()
	return ds.save()
}

func (ds *DataStore) save() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := json.MarshalIndent(ds.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	sum := sha256.Sum256(data)
	if sum == ds.checksum {
		return nil
	}
	if err := writeFileAtomic(ds.file, data); err != nil {
		return err
	}
	ds.checksum = sum
	return nil
}

func (ds *DataStore) load() error {
	data, err := os.ReadFile(ds.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &ds.data); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	ds.checksum = sha256.Sum256(data)
	return nil
}

// writeFileAtomic writes to a temp file, syncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) autoSave(ctx context.Context, every time.Duration) {
	defer ds.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.save(); err != nil {
				ds.log.Error("auto-save failed", logger.Err(err))
			}
		}
	}
}
