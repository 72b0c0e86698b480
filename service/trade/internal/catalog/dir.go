package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirSource legge cards.json, sets.json e rarity.json da una cartella locale (fixture, uso offline).
// sets.json e rarity.json sono opzionali.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(_ context.Context) (Snapshot, error) {
	cards, err := s.read("cards.json", true)
	if err != nil {
		return Snapshot{}, err
	}
	sets, err := s.read("sets.json", false)
	if err != nil {
		return Snapshot{}, err
	}
	rarity, err := s.read("rarity.json", false)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Cards: cards, Sets: sets, Rarity: rarity, FetchedAt: time.Now().UTC()}, nil
}

func (s *DirSource) read(name string, required bool) (json.RawMessage, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("read %s: invalid json", path)
	}
	return data, nil
}
