package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FilePersister keeps the codes as a JSON array in a single file
type FilePersister struct {
	path string
	mu   sync.Mutex
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Load returns no codes when the file does not exist yet
func (f *FilePersister) Load(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return decodeCodes(data)
}

// Save replaces the file atomically
func (f *FilePersister) Save(_ context.Context, codes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := encodeCodes(codes)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".watchlist-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

// MemoryPersister keeps the codes in process
type MemoryPersister struct {
	mu    sync.Mutex
	codes []string
	saves int
}

func NewMemoryPersister(codes ...string) *MemoryPersister {
	return &MemoryPersister{codes: codes}
}

func (m *MemoryPersister) Load(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.codes), nil
}

func (m *MemoryPersister) Save(_ context.Context, codes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = slices.Clone(codes)
	m.saves++
	return nil
}

// Saves returns how many times Save was called
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func encodeCodes(codes []string) ([]byte, error) {
	if codes == nil {
		codes = []string{}
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("marshal codes: %w", err)
	}
	return data, nil
}

func decodeCodes(data []byte) ([]string, error) {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("unmarshal codes: %w", err)
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}
