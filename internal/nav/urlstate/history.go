package urlstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoEntry is returned when back/forward runs off the end of history.
var ErrNoEntry = errors.New("urlstate: no history entry")

// MemoryHistory is an in-process session history with browser semantics:
// Push adds an entry and drops anything forward of the cursor, ReplaceState
// rewrites the current entry, Back/Forward move the cursor and notify the
// navigation listener.
type MemoryHistory struct {
	entries    []string
	cursor     int
	onNavigate func(query string)
}

// NewMemoryHistory creates a history holding one entry.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{entries: []string{normalizeQuery(initial)}}
}

// OnNavigate registers fn to run after Back or Forward.
func (h *MemoryHistory) OnNavigate(fn func(query string)) {
	h.onNavigate = fn
}

func (h *MemoryHistory) Query() string {
	return h.entries[h.cursor]
}

func (h *MemoryHistory) ReplaceState(query string) error {
	h.entries[h.cursor] = normalizeQuery(query)
	return nil
}

// Push adds a new entry after the current one.
func (h *MemoryHistory) Push(query string) {
	h.entries = append(h.entries[:h.cursor+1], normalizeQuery(query))
	h.cursor++
}

// Back moves to the previous entry.
func (h *MemoryHistory) Back() error {
	return h.step(-1)
}

// Forward moves to the next entry.
func (h *MemoryHistory) Forward() error {
	return h.step(1)
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int { return len(h.entries) }

func (h *MemoryHistory) step(delta int) error {
	next := h.cursor + delta
	if next < 0 || next >= len(h.entries) {
		return ErrNoEntry
	}
	h.cursor = next
	if h.onNavigate != nil {
		h.onNavigate(h.entries[h.cursor])
	}
	return nil
}

func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" || q == "?" {
		return ""
	}
	if !strings.HasPrefix(q, "?") {
		q = "?" + q
	}
	return q
}

// FileHistory is a MemoryHistory whose current entry is mirrored to a file,
// so a native viewer reopens where it was left.
type FileHistory struct {
	*MemoryHistory
	path string
}

// OpenFileHistory loads the saved location from path. A missing file starts
// an empty history.
func OpenFileHistory(path string) (*FileHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading location file: %w", err)
	}
	return &FileHistory{
		MemoryHistory: NewMemoryHistory(string(data)),
		path:          path,
	}, nil
}

func (h *FileHistory) ReplaceState(query string) error {
	if err := h.MemoryHistory.ReplaceState(query); err != nil {
		return err
	}
	return h.flush()
}

// Push adds an entry and saves it.
func (h *FileHistory) Push(query string) error {
	h.MemoryHistory.Push(query)
	return h.flush()
}

// Back moves to the previous entry and saves it as current.
func (h *FileHistory) Back() error {
	if err := h.MemoryHistory.Back(); err != nil {
		return err
	}
	return h.flush()
}

// Forward moves to the next entry and saves it as current.
func (h *FileHistory) Forward() error {
	if err := h.MemoryHistory.Forward(); err != nil {
		return err
	}
	return h.flush()
}

func (h *FileHistory) flush() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("creating location dir: %w", err)
	}
	if err := os.WriteFile(h.path, []byte(h.Query()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing location file: %w", err)
	}
	return nil
}
