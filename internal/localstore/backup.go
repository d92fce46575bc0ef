// Package localstore persists client-side cart state between sessions, the
// server-independent counterpart of the browser's local storage.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// DefaultStaleness is how old a backup may be before it is distrusted and
// deleted instead of restored.
const DefaultStaleness = 24 * time.Hour

type snapshot struct {
	Version   int               `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Cart      []domain.CartItem `json:"cart"`
}

// Backup is a versioned local copy of the cart, written after every
// successful reconciliation and consulted on startup.
type Backup struct {
	mu         sync.Mutex
	path       string
	staleAfter time.Duration
	version    int
}

func NewBackup(path string, staleAfter time.Duration) *Backup {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleness
	}
	return &Backup{path: path, staleAfter: staleAfter}
}

// Save persists the items under an incremented version counter.
func (b *Backup) Save(items []domain.CartItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	snap := snapshot{
		Version:   b.version,
		Timestamp: time.Now(),
		Cart:      items,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}

// Load returns the backed-up items, or ok=false when no trustworthy backup
// exists. Backups older than the staleness window are deleted, not restored.
func (b *Backup) Load() (items []domain.CartItem, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("failed to read cart backup: %v", err)
		}
		return nil, false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("discarding unreadable cart backup: %v", err)
		b.removeLocked()
		return nil, false
	}

	if time.Since(snap.Timestamp) > b.staleAfter {
		log.Printf("discarding stale cart backup (version %d from %s)", snap.Version, snap.Timestamp.Format(time.RFC3339))
		b.removeLocked()
		return nil, false
	}

	if snap.Version > b.version {
		b.version = snap.Version
	}
	return snap.Cart, true
}

// Clear deletes the backup, used when the cart is emptied.
func (b *Backup) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked()
}

func (b *Backup) removeLocked() {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to remove cart backup: %v", err)
	}
}
