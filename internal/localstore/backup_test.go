package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

func backupItems() []domain.CartItem {
	now := time.Now()
	return []domain.CartItem{{
		ID:         "item-1",
		ProductID:  "wreath-classic",
		Quantity:   2,
		UnitPrice:  1500,
		TotalPrice: 3000,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
}

func TestBackup_SaveAndLoadRoundtrip(t *testing.T) {
	b := NewBackup(filepath.Join(t.TempDir(), "backup.json"), 0)

	require.NoError(t, b.Save(backupItems()))

	items, ok := b.Load()
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, int64(3000), items[0].TotalPrice)
}

func TestBackup_LoadMissingFile(t *testing.T) {
	b := NewBackup(filepath.Join(t.TempDir(), "backup.json"), 0)

	items, ok := b.Load()
	assert.False(t, ok)
	assert.Nil(t, items)
}

func TestBackup_VersionIncrementsPerSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	b := NewBackup(path, 0)

	require.NoError(t, b.Save(backupItems()))
	require.NoError(t, b.Save(backupItems()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 2, snap.Version)
}

func TestBackup_StaleBackupIsDeletedNotRestored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	old := snapshot{
		Version:   3,
		Timestamp: time.Now().Add(-48 * time.Hour),
		Cart:      backupItems(),
	}
	data, err := json.Marshal(old)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	b := NewBackup(path, DefaultStaleness)
	items, ok := b.Load()
	assert.False(t, ok)
	assert.Nil(t, items)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBackup_CorruptBackupIsDeleted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	b := NewBackup(path, 0)
	_, ok := b.Load()
	assert.False(t, ok)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBackup_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	b := NewBackup(path, 0)
	require.NoError(t, b.Save(backupItems()))

	b.Clear()

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Clearing an already-empty backup is fine.
	b.Clear()
}

func TestBackup_LoadAdoptsPersistedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	persisted := snapshot{
		Version:   7,
		Timestamp: time.Now(),
		Cart:      backupItems(),
	}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	b := NewBackup(path, 0)
	_, ok := b.Load()
	require.True(t, ok)

	// The next save must continue the persisted counter, not restart at 1.
	require.NoError(t, b.Save(backupItems()))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var snap snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, 8, snap.Version)
}
