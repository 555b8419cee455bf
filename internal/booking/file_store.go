package booking

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore is a JSON-lines append log on disk. One record per line; the
// slot conflict check and the append happen under a single mutex, which is
// the store's transactional boundary for a single process.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore creates a store backed by the file at path. The file is
// created lazily on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads all appointments from the log. Lines that fail to parse, or
// records with an unparsable datetime, are skipped rather than aborting
// the load. A missing file yields an empty list.
func (s *FileStore) Load(ctx context.Context) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save appends the appointment, failing with ErrSlotTaken if any readable
// record already occupies the same slot.
func (s *FileStore) Save(ctx context.Context, appt Appointment) error {
	key, err := appt.SlotKey()
	if err != nil {
		return fmt.Errorf("booking: save: bad datetime %q: %w", appt.DatetimeISO, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, e := range existing {
		ek, err := e.SlotKey()
		if err != nil {
			continue
		}
		if ek == key {
			return ErrSlotTaken
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("booking: open log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("booking: marshal appointment: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("booking: append appointment: %w", err)
	}
	return nil
}

func (s *FileStore) loadLocked() ([]Appointment, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Appointment{}, nil
		}
		return nil, fmt.Errorf("booking: open log: %w", err)
	}
	defer f.Close()

	var out []Appointment
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var appt Appointment
		if err := json.Unmarshal(line, &appt); err != nil {
			continue
		}
		if _, err := appt.Time(); err != nil {
			continue
		}
		out = append(out, appt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("booking: read log: %w", err)
	}
	return out, nil
}
