package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStorage wraps MemoryStorage with JSON-lines persistence. Links are
// appended to the configured file and reloaded on startup; clicks go to a
// sibling ".clicks" file and are write-only.
type FileStorage struct {
	*MemoryStorage

	links  *os.File
	clicks *os.File
	logger *zap.Logger
}

func NewFileStorage(path string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}

	links, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0660)
	if err != nil {
		return nil, err
	}

	clicks, err := os.OpenFile(path+".clicks", os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0660)
	if err != nil {
		links.Close()
		return nil, err
	}

	mem, err := CreateMemoryStorage()
	if err != nil {
		links.Close()
		clicks.Close()
		return nil, err
	}

	fs := &FileStorage{
		MemoryStorage: mem,
		links:         links,
		clicks:        clicks,
		logger:        logger,
	}

	if err := fs.load(); err != nil {
		links.Close()
		clicks.Close()
		return nil, err
	}

	return fs, nil
}

func (fs *FileStorage) load() error {
	scanner := bufio.NewScanner(fs.links)
	for scanner.Scan() {
		var record ShortLink
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return fmt.Errorf("failed to parse storage line: %w", err)
		}
		if _, err := fs.MemoryStorage.Insert(context.Background(), record); err != nil {
			return fmt.Errorf("failed to restore record %s: %w", record.ShortID, err)
		}
	}
	return scanner.Err()
}

func (fs *FileStorage) Insert(ctx context.Context, record ShortLink) (*ShortLink, error) {
	inserted, err := fs.MemoryStorage.Insert(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := appendJSONLine(fs.links, inserted); err != nil {
		return nil, err
	}

	return inserted, nil
}

func (fs *FileStorage) InsertClick(ctx context.Context, click Click) error {
	if err := fs.MemoryStorage.InsertClick(ctx, click); err != nil {
		return err
	}
	return appendJSONLine(fs.clicks, click)
}

func (fs *FileStorage) Close() error {
	if err := fs.links.Close(); err != nil {
		fs.clicks.Close()
		return err
	}
	return fs.clicks.Close()
}

func appendJSONLine(f *os.File, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = f.Write(append(b, '\n'))
	return err
}
