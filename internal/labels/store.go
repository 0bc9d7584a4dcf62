// Package labels persists human review labels as one JSON document per
// attempt and summarizes them into per-field distributions.
package labels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

const (
	filePrefix = "labels_"
	fileSuffix = ".json"
)

// Store keeps label records in Dir as labels_<attemptId>.json.
// It is safe for concurrent use.
type Store struct {
	Dir string

	// OnError, when set, is told about label files that could not be read.
	OnError func(name string, err error)

	mu sync.Mutex
}

var _ api.Labels = (*Store)(nil)

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// SaveLabels writes rec, replacing any earlier record for the same attempt.
func (s *Store) SaveLabels(rec api.LabelRecord) error {
	id := rec.AttemptID()
	if id == "" {
		return api.ValidationError{Message: "attemptId is required"}
	}
	if !api.ValidID(id) {
		return api.ValidationError{Message: fmt.Sprintf("invalid attemptId %q", id)}
	}

	// The stored id must match the file name.
	if raw, _ := rec[api.FieldAttemptID].(string); raw != id {
		normalized := make(api.LabelRecord, len(rec))
		for k, v := range rec {
			normalized[k] = v
		}
		normalized[api.FieldAttemptID] = id
		rec = normalized
	}

	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating labels directory: %w", err)
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("writing labels: %w", err)
	}
	return nil
}

// AllLabels returns every record keyed by the attempt id in its file name.
// A missing directory yields an empty map.
func (s *Store) AllLabels() (map[string]api.LabelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]api.LabelRecord{}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("reading labels directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		rec, err := readRecord(filepath.Join(s.Dir, name))
		if err != nil {
			s.reportError(name, err)
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		out[id] = rec
	}
	return out, nil
}

// GetLabels returns the record for one attempt.
func (s *Store) GetLabels(attemptID string) (api.LabelRecord, error) {
	if !api.ValidID(attemptID) {
		return nil, api.ValidationError{Message: fmt.Sprintf("invalid attemptId %q", attemptID)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := readRecord(s.path(attemptID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, api.NotFoundError{Message: fmt.Sprintf("No labels for attempt %s", attemptID)}
		}
		return nil, err
	}
	return rec, nil
}

// ClearLabels removes the labels directory and everything in it.
func (s *Store) ClearLabels() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("clearing labels: %w", err)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.Dir, filePrefix+id+fileSuffix)
}

func (s *Store) reportError(name string, err error) {
	if s.OnError != nil {
		s.OnError(name, err)
	}
}

func readRecord(path string) (api.LabelRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// decode parses a label document, keeping numbers as written.
func decode(data []byte) (api.LabelRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec api.LabelRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("label file is not a JSON object")
	}
	return rec, nil
}

func encode(rec api.LabelRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
