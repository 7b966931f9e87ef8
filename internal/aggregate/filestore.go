package aggregate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists daily aggregate rows as CSV lines, newest row last.
// Rows are cached in memory; mutations touch only the bytes of the final
// line, so a crash mid-write leaves every closed day intact and the last
// complete line always holds the current totals.
type FileStore struct {
	mu   sync.Mutex
	path string
	file *os.File
	rows []Row

	// lastOffset is the byte offset where the open row's line begins.
	lastOffset int64
	size       int64
}

// NewFileStore opens or creates the store file at path and loads all rows.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("aggregate: empty store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	store := &FileStore{path: path, file: file}
	if err := store.load(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	s.rows = nil
	s.lastOffset = 0
	s.size = 0

	var offset int64
	for lineNo, line := range strings.Split(string(data), "\n") {
		lineStart := offset
		offset += int64(len(line)) + 1

		trimmed := strings.TrimRight(line, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		row, err := parseRow(trimmed)
		if err != nil {
			return fmt.Errorf("aggregate: line %d: %w", lineNo+1, err)
		}
		if len(s.rows) > 0 && row.Date < s.rows[len(s.rows)-1].Date {
			return fmt.Errorf("aggregate: line %d: %w", lineNo+1, ErrDateOrder)
		}
		s.rows = append(s.rows, row)
		s.lastOffset = lineStart
	}
	s.size = int64(len(data))

	// Normalize a hand-edited file missing its trailing newline so that
	// appended rows always start on a fresh line.
	if s.size > 0 && data[len(data)-1] != '\n' {
		if _, err := s.file.WriteAt([]byte("\n"), s.size); err != nil {
			return err
		}
		s.size++
	}
	return nil
}

// ReadLastRow returns the open row.
func (s *FileStore) ReadLastRow() (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return Row{}, ErrEmptyStore
	}
	return s.rows[len(s.rows)-1], nil
}

// AppendRow opens a new day by writing a fresh row after the current last.
func (s *FileStore) AppendRow(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) > 0 && row.Date <= s.rows[len(s.rows)-1].Date {
		return ErrDateOrder
	}
	line := row.marshal() + "\n"
	if _, err := s.file.WriteAt([]byte(line), s.size); err != nil {
		return fmt.Errorf("aggregate: append: %w", err)
	}
	s.lastOffset = s.size
	s.size += int64(len(line))
	s.rows = append(s.rows, row)
	return nil
}

// RewriteLastRow replaces the open row's totals in place. Only the final
// line of the file is rewritten.
func (s *FileStore) RewriteLastRow(row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) == 0 {
		return ErrEmptyStore
	}
	if row.Date != s.rows[len(s.rows)-1].Date {
		return ErrDateMismatch
	}
	line := row.marshal() + "\n"
	if err := s.file.Truncate(s.lastOffset); err != nil {
		return fmt.Errorf("aggregate: truncate: %w", err)
	}
	if _, err := s.file.WriteAt([]byte(line), s.lastOffset); err != nil {
		return fmt.Errorf("aggregate: rewrite: %w", err)
	}
	s.size = s.lastOffset + int64(len(line))
	s.rows[len(s.rows)-1] = row
	return nil
}

// Seed writes an initial row when the store is empty. It is a no-op on a
// store that already holds rows.
func (s *FileStore) Seed(row Row) error {
	s.mu.Lock()
	empty := len(s.rows) == 0
	s.mu.Unlock()
	if !empty {
		return nil
	}
	return s.AppendRow(row)
}

// LoadAll returns a copy of every row, oldest first.
func (s *FileStore) LoadAll() ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return nil, ErrEmptyStore
	}
	rows := make([]Row, len(s.rows))
	copy(rows, s.rows)
	return rows, nil
}

// Close releases the underlying file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
