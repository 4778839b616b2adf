package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

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

func setupTestStore(t *testing.T) *AuditStore {
	t.Helper()
	store, err := NewAuditStore(Config{
		DBPath: filepath.Join(t.TempDir(), "audit_test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(symbol, component string, ts time.Time) *domain.AuditRecord {
	return &domain.AuditRecord{
		Symbol:    symbol,
		Timestamp: ts,
		Component: component,
		Inputs:    "bars=15 asOf=" + ts.Format(time.RFC3339),
		Outputs:   "magnitude=3.07",
	}
}

func TestAuditStore_AppendAndQuery(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Append(ctx, sampleRecord("ETHUSDT", "volatility", base)))
	require.NoError(t, store.Append(ctx, sampleRecord("ETHUSDT", "rules", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, sampleRecord("BTCUSDT", "volatility", base)))

	records, err := store.RecentBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, records, 2, "records for other symbols must not leak in")

	// Newest first.
	assert.Equal(t, "rules", records[0].Component)
	assert.Equal(t, "volatility", records[1].Component)
	assert.Equal(t, "ETHUSDT", records[0].Symbol)
	assert.Equal(t, "magnitude=3.07", records[0].Outputs)
	assert.Empty(t, records[0].Err)
}

func TestAuditStore_QueryRespectsLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, sampleRecord("ETHUSDT", "adjuster", base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := store.RecentBySymbol(ctx, "ETHUSDT", 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAuditStore_ErrorRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("ETHUSDT", "volatility", time.Now().UTC())
	rec.Outputs = ""
	rec.Err = "data stale: newest bar closed 2h before evaluation time"
	require.NoError(t, store.Append(ctx, rec))

	records, err := store.RecentBySymbol(ctx, "ETHUSDT", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.Err, records[0].Err)
	assert.Empty(t, records[0].Outputs)
}

func TestAuditStore_EmptyQuery(t *testing.T) {
	store := setupTestStore(t)

	records, err := store.RecentBySymbol(context.Background(), "DOGEUSDT", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
