package review

import (
	"fmt"

	"horse.fit/threatwatch/internal/datafile"
)

// FileStore persists the Review Queue and Dedup Log as whole JSON
// documents.
type FileStore struct {
	QueuePath string
	LogPath   string
}

func NewFileStore(queuePath, logPath string) FileStore {
	return FileStore{QueuePath: queuePath, LogPath: logPath}
}

// Load reads both documents. Missing files load as empty.
func (s FileStore) Load() (*State, error) {
	state := &State{Queue: []Entry{}, Log: []Entry{}}
	if _, err := datafile.ReadJSONIfExists(s.QueuePath, &state.Queue); err != nil {
		return nil, fmt.Errorf("load review queue: %w", err)
	}
	if _, err := datafile.ReadJSONIfExists(s.LogPath, &state.Log); err != nil {
		return nil, fmt.Errorf("load dedup log: %w", err)
	}
	if state.Queue == nil {
		state.Queue = []Entry{}
	}
	if state.Log == nil {
		state.Log = []Entry{}
	}
	return state, nil
}

// Save rewrites both documents.
func (s FileStore) Save(state *State) error {
	queue := state.Queue
	if queue == nil {
		queue = []Entry{}
	}
	log := state.Log
	if log == nil {
		log = []Entry{}
	}
	if err := datafile.WriteJSON(s.QueuePath, queue); err != nil {
		return fmt.Errorf("save review queue: %w", err)
	}
	if err := datafile.WriteJSON(s.LogPath, log); err != nil {
		return fmt.Errorf("save dedup log: %w", err)
	}
	return nil
}

// Update loads the state, applies fn and saves the result. Nothing is
// written when fn fails.
func (s FileStore) Update(fn func(*State) error) error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.Save(state)
}
