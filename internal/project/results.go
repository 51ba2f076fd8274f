package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/piwi3910/PlateCut/internal/model"
)

var (
	// ErrResultNotFound is returned by Get and Delete for unknown ids.
	ErrResultNotFound = errors.New("result not found")
	// ErrInvalidResultID is returned for ids outside [A-Za-z0-9_-].
	ErrInvalidResultID = errors.New("invalid result id")
)

var resultIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ResultStore keeps calculation results as one JSON document per id in a directory.
type ResultStore struct {
	dir string
	mu  sync.RWMutex
}

// NewResultStore opens (and creates if needed) a store rooted at dir.
func NewResultStore(dir string) (*ResultStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create result store: %w", err)
	}
	return &ResultStore{dir: dir}, nil
}

// DefaultResultDir returns ~/.platecut/results.
func DefaultResultDir() string {
	return filepath.Join(DefaultConfigDir(), "results")
}

func (s *ResultStore) path(id string) (string, error) {
	if !resultIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidResultID, id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Put stores result under id, replacing any previous document.
func (s *ResultStore) Put(id string, result model.CalculationResult) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(p, result)
}

func (s *ResultStore) Get(id string) (model.CalculationResult, error) {
	p, err := s.path(id)
	if err != nil {
		return model.CalculationResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return model.CalculationResult{}, fmt.Errorf("%w: %s", ErrResultNotFound, id)
		}
		return model.CalculationResult{}, fmt.Errorf("failed to read result: %w", err)
	}
	var result model.CalculationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.CalculationResult{}, fmt.Errorf("failed to parse result %s: %w", id, err)
	}
	return result, nil
}

// List returns the stored ids in lexical order.
func (s *ResultStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if resultIDPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *ResultStore) Delete(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrResultNotFound, id)
		}
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}
