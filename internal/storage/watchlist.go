// Package storage provides the read-only watch-list stores.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

// watchlistFile is the on-disk layout shared by the TOML and JSON formats
type watchlistFile struct {
	Items []models.WatchlistItem `json:"items" toml:"items"`
}

// FileStore reads the watch list from a TOML or JSON file.
// The file is re-read on every call so edits apply without a restart.
type FileStore struct {
	path   string
	logger *common.Logger
}

// NewFileStore creates a FileStore. The file does not need to exist yet.
func NewFileStore(logger *common.Logger, path string) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Items returns the watch-list entries in file order
func (fs *FileStore) Items(ctx context.Context) ([]models.WatchlistItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("watch list '%s' not found", fs.path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}

	items, err := parseWatchlist(fs.path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fs.path, err)
	}

	items = cleanItems(items)
	fs.logger.Debug().Str("path", fs.path).Int("items", len(items)).Msg("Watch list loaded")
	return items, nil
}

func parseWatchlist(path string, data []byte) ([]models.WatchlistItem, error) {
	var file watchlistFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		// a bare array is accepted as well as {"items": [...]}
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &file.Items); err != nil {
				return nil, err
			}
			return file.Items, nil
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	case ".toml", "":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported watch list format %q (supported: .toml, .json)", filepath.Ext(path))
	}
	return file.Items, nil
}

// cleanItems trims fields and drops entries without a ticker
func cleanItems(items []models.WatchlistItem) []models.WatchlistItem {
	out := make([]models.WatchlistItem, 0, len(items))
	for _, item := range items {
		item.Ticker = strings.TrimSpace(item.Ticker)
		item.Name = common.CollapseWhitespace(item.Name)
		if item.Ticker == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// StaticStore serves a fixed list, typically the inline items of the configuration
type StaticStore struct {
	items []models.WatchlistItem
}

// NewStaticStore creates a store over a copy of items
func NewStaticStore(items []models.WatchlistItem) *StaticStore {
	return &StaticStore{items: cleanItems(items)}
}

// Items returns a copy of the configured entries
func (s *StaticStore) Items(ctx context.Context) ([]models.WatchlistItem, error) {
	out := make([]models.WatchlistItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// NewWatchlistStore picks the store for the configuration: the file when a path is set,
// otherwise the inline items.
func NewWatchlistStore(logger *common.Logger, config common.WatchlistConfig) interfaces.WatchlistStore {
	if config.Path != "" {
		logger.Debug().Str("path", config.Path).Msg("Using watch list file")
		return NewFileStore(logger, config.Path)
	}

	items := make([]models.WatchlistItem, 0, len(config.Items))
	for _, it := range config.Items {
		items = append(items, models.WatchlistItem{Ticker: it.Ticker, Name: it.Name})
	}
	logger.Debug().Int("items", len(items)).Msg("Using inline watch list")
	return NewStaticStore(items)
}

// Ensure stores implement WatchlistStore
var (
	_ interfaces.WatchlistStore = (*FileStore)(nil)
	_ interfaces.WatchlistStore = (*StaticStore)(nil)
)
