package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Board Serialization API
// =============================================================================

// DocumentVersion is the current on-disk format version.
const DocumentVersion = 1

// Document is the canonical serialization format for a map. Used for file
// storage, API payloads, and caching.
//
// Node and connection array order is meaningful: it is the insertion order
// the board was built with, and round trips must preserve it.
type Document struct {
	Version     int          `json:"version" bson:"version"`
	Map         Map          `json:"map" bson:"map"`
	Nodes       []Node       `json:"nodes" bson:"nodes"`
	Connections []Connection `json:"connections" bson:"connections"`
}

// FromBoard converts a board to its serialization format. Order is preserved
// as-is; nodes and connections are copied by value.
func FromBoard(b *Board) Document {
	doc := Document{
		Version: DocumentVersion,
		Map:     b.Meta(),
	}
	for _, n := range b.Nodes() {
		doc.Nodes = append(doc.Nodes, *n)
	}
	for _, c := range b.Connections() {
		doc.Connections = append(doc.Connections, *c)
	}
	return doc
}

// ToBoard converts a document back to a board. Nodes with unset visual
// attributes get the package defaults. Connections are restored without
// endpoint checks: serialized data may carry dangling connections, which are
// kept in the data and excluded from rendering.
func ToBoard(doc Document) (*Board, error) {
	b := New(doc.Map)
	for i := range doc.Nodes {
		n := doc.Nodes[i]
		n.ApplyDefaults()
		if err := b.AddNode(&n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for i := range doc.Connections {
		c := doc.Connections[i]
		b.restoreConnection(&c)
	}
	return b, nil
}

// Marshal converts a board to indented JSON bytes.
func Marshal(b *Board) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDocument converts a document to indented JSON bytes without going
// through a Board.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a document without converting to
// a board. Read-modify-write stores use this to preserve the raw document,
// dangling connections included.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

// Unmarshal decodes JSON bytes into a board.
func Unmarshal(data []byte) (*Board, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a board to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(b *Board, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(b, f)
}

// Write writes a board as JSON to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(b *Board, w io.Writer) error {
	return writeTo(b, w)
}

// ReadFile reads a JSON file and returns the decoded board.
func ReadFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON board from an io.Reader.
// Use ReadFile for files or pass bytes.NewReader for in-memory data.
func Read(r io.Reader) (*Board, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(b *Board, w io.Writer) error {
	doc := FromBoard(b)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Board, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToBoard(doc)
}
