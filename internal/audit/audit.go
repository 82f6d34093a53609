// Package audit keeps an append-only trail of admin mutations. Entries
// are JSON lines fsynced on write, so the trail survives a crash and can
// be inspected or pruned offline.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bitnshop/bitnshop/pkg/logger"
	"go.uber.org/zap"
)

// Actions recorded in the trail.
const (
	ActionUserCreated     = "user.created"
	ActionUserDeleted     = "user.deleted"
	ActionRolesChanged    = "user.roles_changed"
	ActionProductCreated  = "product.created"
	ActionProductUpdated  = "product.updated"
	ActionProductDeleted  = "product.deleted"
	ActionCategorySaved   = "category.saved"
	ActionCategoryDeleted = "category.deleted"
	ActionNavChanged      = "nav.changed"
)

// Entry is one recorded admin action.
type Entry struct {
	Action    string    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	Subject   string    `json:"subject"` // e.g. "user:12", "product:red-t-shirt"
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Trail manages the append-only audit file.
type Trail struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func Open(filePath string) (*Trail, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Trail{
		filePath: filePath,
		file:     file,
	}, nil
}

// Record appends an entry and syncs it to disk. The timestamp is filled
// in when the caller leaves it zero.
func (t *Trail) Record(entry Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Error("Audit: failed to marshal entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	if _, err = t.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("Audit: failed to write entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	if err := t.file.Sync(); err != nil {
		logger.Log.Error("Audit: failed to sync to disk",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// ReadAll reads every entry in the trail, oldest first. Lines that fail
// to parse are skipped.
func (t *Trail) ReadAll() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.readAllLocked()
}

// Prune rewrites the trail keeping only entries newer than the cutoff.
// The file is replaced atomically and reopened in append mode.
func (t *Trail) Prune(cutoff time.Time) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := t.readAllLocked()
	if err != nil {
		return 0, err
	}

	var kept []Entry
	for _, entry := range entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	pruned := len(entries) - len(kept)
	if pruned == 0 {
		return 0, nil
	}

	if err := t.file.Close(); err != nil {
		return 0, err
	}

	tempFile := t.filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return 0, err
	}
	for _, entry := range kept {
		data, _ := json.Marshal(entry)
		f.WriteString(string(data) + "\n")
	}
	f.Sync()
	f.Close()

	if err := os.Rename(tempFile, t.filePath); err != nil {
		return 0, err
	}

	newFile, err := os.OpenFile(t.filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return 0, err
	}
	t.file = newFile

	logger.Log.Info("Audit: trail pruned",
		zap.Int("pruned_count", pruned),
		zap.Int("remaining_count", len(kept)),
	)

	return pruned, nil
}

func (t *Trail) readAllLocked() ([]Entry, error) {
	file, err := os.Open(t.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
