package statestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volGuardBot/internal/domain"
)

// mockLogger is a no-op logger for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), &mockLogger{})
	require.NoError(t, err)
	return store
}

func samplePosition() *domain.PositionState {
	return &domain.PositionState{
		Symbol:       "ETHUSDT",
		Side:         domain.Long,
		EntryPrice:   decimal.RequireFromString("102.5"),
		CurrentStop:  decimal.RequireFromString("96.35"),
		StopSource:   domain.StopSourceVolatility,
		StopVol:      decimal.RequireFromString("3.07"),
		Quantity:     16,
		ScaleInCount: 1,
		BreakevenSet: true,
		Protection:   domain.ProtectionActive,
		OpenedAt:     time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second),
		UpdatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	original := samplePosition()

	require.NoError(t, store.Save(ctx, original))

	loaded, err := store.Load(ctx, "ETHUSDT")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.Symbol, loaded.Symbol)
	assert.Equal(t, original.Side, loaded.Side)
	assert.True(t, original.EntryPrice.Equal(loaded.EntryPrice), "entry price mismatch: %s vs %s", original.EntryPrice, loaded.EntryPrice)
	assert.True(t, original.CurrentStop.Equal(loaded.CurrentStop))
	assert.True(t, original.StopVol.Equal(loaded.StopVol))
	assert.Equal(t, original.StopSource, loaded.StopSource)
	assert.Equal(t, original.Quantity, loaded.Quantity)
	assert.Equal(t, original.ScaleInCount, loaded.ScaleInCount)
	assert.Equal(t, original.BreakevenSet, loaded.BreakevenSet)
	assert.Equal(t, domain.ProtectionActive, loaded.Protection)
	assert.True(t, original.OpenedAt.Equal(loaded.OpenedAt))
}

func TestFileStore_LoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.Load(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing snapshot means no open position")
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	pos := samplePosition()

	require.NoError(t, store.Save(ctx, pos))

	pos.CurrentStop = decimal.RequireFromString("100.00")
	pos.ScaleInCount = 2
	require.NoError(t, store.Save(ctx, pos))

	loaded, err := store.Load(ctx, "ETHUSDT")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.CurrentStop.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, 2, loaded.ScaleInCount)
}

func TestFileStore_CorruptSnapshotFailsSafe(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, &mockLogger{})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `{"symbol": "ETHUSDT", "side":`},
		{name: "unparseable price", content: `{"symbol":"ETHUSDT","side":"LONG","entry_price":"not-a-number","current_stop":"96","stop_source":"volatility","stop_vol":"3","quantity":16}`},
		{name: "implausible quantity", content: `{"symbol":"ETHUSDT","side":"LONG","entry_price":"102.5","current_stop":"96","stop_source":"volatility","stop_vol":"3","quantity":0}`},
		{name: "unknown stop source", content: `{"symbol":"ETHUSDT","side":"LONG","entry_price":"102.5","current_stop":"96","stop_source":"astrology","stop_vol":"3","quantity":16}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "ETHUSDT.json"), []byte(tt.content), 0644))

			loaded, err := store.Load(ctx, "ETHUSDT")
			require.NoError(t, err, "corruption is not an error, it is a fail-safe state")
			require.NotNil(t, loaded, "position must never be silently lost")
			assert.Equal(t, domain.ProtectionUnknown, loaded.Protection)
			assert.Equal(t, "ETHUSDT", loaded.Symbol)
		})
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, samplePosition()))
	require.NoError(t, store.Delete(ctx, "ETHUSDT"))

	loaded, err := store.Load(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting an already absent snapshot is not an error.
	require.NoError(t, store.Delete(ctx, "ETHUSDT"))
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, &mockLogger{})
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), samplePosition()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ETHUSDT.json", entries[0].Name())
}
