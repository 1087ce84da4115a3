// Package storage persists cards and review logs to a JSON file on
// disk, writing atomically via a temp-file-plus-rename so a crash
// mid-write never corrupts the store.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flashcore/srscore/internal/domain"
)

// ErrCardNotFound is returned when a requested card id is absent.
var ErrCardNotFound = errors.New("storage: card not found")

// ErrReviewLogNotFound is returned by LastReviewLog and
// PopLastReviewLog when a card has no review log left.
var ErrReviewLogNotFound = errors.New("storage: no review log for card")

// CardStore is the persistence contract the scheduler and session
// packages depend on. A single implementation (FileStore) backs
// production use; tests use an in-memory fake satisfying the same
// interface.
type CardStore interface {
	GetCard(id string) (domain.Card, error)
	ListCards() ([]domain.Card, error)
	PutCard(card domain.Card) error

	AppendReviewLog(log domain.ReviewLog) error
	LastReviewLog(cardID string) (domain.ReviewLog, error)
	PopLastReviewLog(cardID string) (domain.ReviewLog, error)
	AllReviewLogs() ([]domain.ReviewLog, error)

	// ProcessAnswer atomically persists the updated card and the new
	// review log entry together, so a crash between the two writes
	// never leaves one without the other.
	ProcessAnswer(card domain.Card, log domain.ReviewLog) error
}

// document is the on-disk shape of the whole store.
type document struct {
	Cards       map[string]domain.Card   `json:"cards"`
	ReviewLogs  map[string][]domain.ReviewLog `json:"review_logs"`
	LastUpdated time.Time                `json:"last_updated"`
}

// FileStore implements CardStore against a single JSON file, guarded
// by an in-process mutex. All writes go through save, which always
// writes to a ".tmp" sibling and renames over the target so readers
// never observe a partial file.
type FileStore struct {
	path string
	doc  document
	mu   sync.RWMutex
	log  *zap.Logger
}

// NewFileStore creates a FileStore backed by path. Call Load before
// use to populate it from an existing file (or start fresh if absent).
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{
		path: path,
		log:  log,
		doc: document{
			Cards:      make(map[string]domain.Card),
			ReviewLogs: make(map[string][]domain.ReviewLog),
		},
	}
}

// Load reads the backing file into memory, initializing an empty
// store if the file does not yet exist.
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		fs.log.Debug("storage file absent, starting empty", zap.String("path", fs.path))
		return fs.save()
	}
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", fs.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("storage: unmarshal %s: %w", fs.path, err)
	}
	if doc.Cards == nil {
		doc.Cards = make(map[string]domain.Card)
	}
	if doc.ReviewLogs == nil {
		doc.ReviewLogs = make(map[string][]domain.ReviewLog)
	}
	fs.doc = doc
	fs.log.Debug("storage loaded", zap.String("path", fs.path), zap.Int("cards", len(doc.Cards)))
	return nil
}

// save marshals the document and writes it atomically. The caller
// must hold fs.mu for writing.
func (fs *FileStore) save() error {
	fs.doc.LastUpdated = time.Now()

	data, err := json.MarshalIndent(fs.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir %s: %w", dir, err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: rename temp file: %w", err)
	}
	return nil
}

// GetCard returns a deep copy of the stored card.
func (fs *FileStore) GetCard(id string) (domain.Card, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	c, ok := fs.doc.Cards[id]
	if !ok {
		return domain.Card{}, ErrCardNotFound
	}
	return c.Clone(), nil
}

// ListCards returns a deep copy of every stored card.
func (fs *FileStore) ListCards() ([]domain.Card, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]domain.Card, 0, len(fs.doc.Cards))
	for _, c := range fs.doc.Cards {
		out = append(out, c.Clone())
	}
	return out, nil
}

// PutCard inserts or replaces a card and persists the store.
func (fs *FileStore) PutCard(card domain.Card) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.doc.Cards[card.ID] = card.Clone()
	return fs.save()
}

// AppendReviewLog appends a review log entry and persists the store.
func (fs *FileStore) AppendReviewLog(entry domain.ReviewLog) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.doc.ReviewLogs[entry.CardID] = append(fs.doc.ReviewLogs[entry.CardID], entry)
	return fs.save()
}

// LastReviewLog returns (a copy of) the most recent review log entry
// for a card, without removing it.
func (fs *FileStore) LastReviewLog(cardID string) (domain.ReviewLog, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	logs := fs.doc.ReviewLogs[cardID]
	if len(logs) == 0 {
		return domain.ReviewLog{}, ErrReviewLogNotFound
	}
	return logs[len(logs)-1], nil
}

// PopLastReviewLog removes and returns the most recent review log
// entry for a card, persisting the truncated store.
func (fs *FileStore) PopLastReviewLog(cardID string) (domain.ReviewLog, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	logs := fs.doc.ReviewLogs[cardID]
	if len(logs) == 0 {
		return domain.ReviewLog{}, ErrReviewLogNotFound
	}
	last := logs[len(logs)-1]
	fs.doc.ReviewLogs[cardID] = logs[:len(logs)-1]
	if err := fs.save(); err != nil {
		return domain.ReviewLog{}, err
	}
	return last, nil
}

// AllReviewLogs returns a flat copy of every review log entry across
// every card, for offline analytics (§4.9/§4.10) which sweep the full
// history rather than a single card's log.
func (fs *FileStore) AllReviewLogs() ([]domain.ReviewLog, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	out := make([]domain.ReviewLog, 0)
	for _, logs := range fs.doc.ReviewLogs {
		out = append(out, logs...)
	}
	return out, nil
}

// ProcessAnswer writes the updated card and the new review log entry
// as a single save, so the two can never diverge on disk: a process
// that dies after this call returns either sees both changes or
// neither.
func (fs *FileStore) ProcessAnswer(card domain.Card, entry domain.ReviewLog) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.doc.Cards[card.ID] = card.Clone()
	fs.doc.ReviewLogs[entry.CardID] = append(fs.doc.ReviewLogs[entry.CardID], entry)
	if err := fs.save(); err != nil {
		fs.log.Error("failed to persist answer", zap.String("card_id", card.ID), zap.Error(err))
		return err
	}
	return nil
}
