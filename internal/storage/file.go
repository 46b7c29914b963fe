package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fitness-chatter/internal/history"
)

// FileStore is an append-only JSON-lines log with one turn per line.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure history dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init history file: %w", err)
	}
	_ = f.Close()
	return &FileStore{path: path}, nil
}

func (s *FileStore) History(ctx context.Context, userID string) ([]history.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]history.Turn, 0)
	for _, t := range all {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	// file order is insertion order
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *FileStore) Append(ctx context.Context, turns ...history.Turn) error {
	if err := history.Validate(turns); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.ID] = struct{}{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range turns {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode append: %w", err)
		}
	}
	if buf.Len() == 0 {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return history.Unavailable("open append", err)
	}
	defer f.Close()
	torn, err := endsMidLine(f)
	if err != nil {
		return history.Unavailable("inspect tail", err)
	}
	out := buf.Bytes()
	if torn {
		// a failed earlier write left a partial line; close it off so it
		// stays unparseable on its own instead of swallowing our first turn
		out = append([]byte{'\n'}, out...)
	}
	// one write call so both lines of an exchange land together
	if _, err := f.Write(out); err != nil {
		return history.Unavailable("write append", err)
	}
	return nil
}

// endsMidLine reports whether the log's last byte is not a newline.
func endsMidLine(f *os.File) (bool, error) {
	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	if st.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, st.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func (s *FileStore) load() ([]history.Turn, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, history.Unavailable("open read", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 10*1024*1024)
	var turns []history.Turn
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var t history.Turn
		if err := json.Unmarshal(line, &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	if err := sc.Err(); err != nil {
		return nil, history.Unavailable("scan", err)
	}
	return turns, nil
}
