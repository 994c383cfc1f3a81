package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/mindgrid/pkg/board"
	"github.com/matzehuels/mindgrid/pkg/errors"
)

// FileStore persists each map as one JSON document file under a data
// directory: <dir>/<mapID>.json. This is the local editing backend; the file
// format is the same board document the export command reads and writes, so
// files can be copied, versioned, and diffed.
//
// Mutations are read-modify-write on the whole document. That is fine for
// the intended use (one editor process per map); concurrent writers would
// need the server backend instead.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// If dir is empty, defaults to ~/.local/share/mindgrid/maps.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "mindgrid", "maps")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

// mapPath converts a map id to its document path. The id is validated first
// so ids can never escape the data directory.
func (s *FileStore) mapPath(mapID string) (string, error) {
	if err := errors.ValidateID(mapID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, mapID+".json"), nil
}

func (s *FileStore) readDoc(mapID string) (*board.Document, string, error) {
	path, err := s.mapPath(mapID)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.New(errors.ErrCodeMapNotFound, "map not found: "+mapID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read map file: %w", err)
	}
	doc, err := board.UnmarshalDocument(data)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "corrupt map file: "+path)
	}
	return &doc, path, nil
}

func (s *FileStore) writeDoc(doc *board.Document, path string) error {
	doc.Map.UpdatedAt = time.Now().UTC()
	data, err := board.MarshalDocument(*doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CreateMap persists a new map as an empty document file.
func (s *FileStore) CreateMap(ctx context.Context, m *board.Map) error {
	if err := errors.ValidateTitle(m.Title); err != nil {
		return err
	}
	path, err := s.mapPath(m.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeInvalidInput, "map already exists: "+m.ID)
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	doc := board.Document{Version: board.DocumentVersion, Map: *m}
	data, err := board.MarshalDocument(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetMap returns map metadata from the document file.
func (s *FileStore) GetMap(ctx context.Context, id string) (*board.Map, error) {
	doc, _, err := s.readDoc(id)
	if err != nil {
		return nil, err
	}
	m := doc.Map
	return &m, nil
}

// ListMaps scans the data directory for map documents.
func (s *FileStore) ListMaps(ctx context.Context) ([]board.Map, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var out []board.Map
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		doc, _, err := s.readDoc(id)
		if err != nil {
			// Skip files that are not map documents.
			continue
		}
		out = append(out, doc.Map)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// RenameMap updates a map's title.
func (s *FileStore) RenameMap(ctx context.Context, id, title string) error {
	if err := errors.ValidateTitle(title); err != nil {
		return err
	}
	doc, path, err := s.readDoc(id)
	if err != nil {
		return err
	}
	doc.Map.Title = title
	return s.writeDoc(doc, path)
}

// DeleteMap removes the map's document file.
func (s *FileStore) DeleteMap(ctx context.Context, id string) error {
	path, err := s.mapPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove map file: %w", err)
	}
	return nil
}

// LoadBoard reads and assembles the full board.
func (s *FileStore) LoadBoard(ctx context.Context, mapID string) (*board.Board, error) {
	doc, _, err := s.readDoc(mapID)
	if err != nil {
		return nil, err
	}
	return board.ToBoard(*doc)
}

// PutNode inserts or replaces a node in the document.
func (s *FileStore) PutNode(ctx context.Context, n *board.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	doc, path, err := s.readDoc(n.MapID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	idx := slices.IndexFunc(doc.Nodes, func(existing board.Node) bool {
		return existing.ID == n.ID
	})
	if idx >= 0 {
		doc.Nodes[idx] = *n
	} else {
		doc.Nodes = append(doc.Nodes, *n)
	}
	return s.writeDoc(doc, path)
}

// DeleteNode removes a node and its incident connections from the document.
func (s *FileStore) DeleteNode(ctx context.Context, mapID, nodeID string) error {
	doc, path, err := s.readDoc(mapID)
	if err != nil {
		return err
	}

	before := len(doc.Nodes)
	doc.Nodes = slices.DeleteFunc(doc.Nodes, func(n board.Node) bool {
		return n.ID == nodeID
	})
	if len(doc.Nodes) == before {
		return nil
	}
	doc.Connections = slices.DeleteFunc(doc.Connections, func(c board.Connection) bool {
		return c.From == nodeID || c.To == nodeID
	})
	return s.writeDoc(doc, path)
}

// PutConnection inserts or replaces a connection in the document.
func (s *FileStore) PutConnection(ctx context.Context, c *board.Connection) error {
	if err := errors.ValidateID(c.ID); err != nil {
		return err
	}
	doc, path, err := s.readDoc(c.MapID)
	if err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	idx := slices.IndexFunc(doc.Connections, func(existing board.Connection) bool {
		return existing.ID == c.ID
	})
	if idx >= 0 {
		doc.Connections[idx] = *c
	} else {
		doc.Connections = append(doc.Connections, *c)
	}
	return s.writeDoc(doc, path)
}

// DeleteConnection removes a connection from the document.
func (s *FileStore) DeleteConnection(ctx context.Context, mapID, connID string) error {
	doc, path, err := s.readDoc(mapID)
	if err != nil {
		return err
	}

	before := len(doc.Connections)
	doc.Connections = slices.DeleteFunc(doc.Connections, func(c board.Connection) bool {
		return c.ID == connID
	})
	if len(doc.Connections) == before {
		return nil
	}
	return s.writeDoc(doc, path)
}

// Close does nothing for the file store.
func (s *FileStore) Close(ctx context.Context) error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
