package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/domain"
	"volGuardBot/internal/ports"
)

// FileStore implements ports.StateStore with one JSON snapshot file per
// symbol. Writes are atomic (temp file + fsync + rename), so after a crash
// a snapshot is exactly the before or the after image, never a torn mix.
// A snapshot that cannot be parsed is surfaced as a PositionState tagged
// ProtectionUnknown: the position is never silently lost, and the caller
// is forced to re-apply a protective stop before trusting it.
type FileStore struct {
	dir    string
	logger ports.Logger
}

// NewFileStore creates a file-backed state store rooted at dir.
func NewFileStore(dir string, logger ports.Logger) (*FileStore, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for state store")
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: state directory is required", ports.ErrConfigurationError)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory '%s': %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// snapshot is the serialized form of a PositionState. Prices travel as
// decimal strings so no binary floating point touches the stored values.
type snapshot struct {
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	EntryPrice   string    `json:"entry_price"`
	CurrentStop  string    `json:"current_stop"`
	StopSource   string    `json:"stop_source"`
	StopVol      string    `json:"stop_vol"`
	Quantity     int64     `json:"quantity"`
	ScaleInCount int       `json:"scale_in_count"`
	BreakevenSet bool      `json:"breakeven_set"`
	OpenedAt     time.Time `json:"opened_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *FileStore) path(symbol string) string {
	return filepath.Join(s.dir, strings.ToUpper(symbol)+".json")
}

// Save persists the snapshot for the position's symbol atomically.
func (s *FileStore) Save(ctx context.Context, state *domain.PositionState) error {
	if state == nil || state.Symbol == "" {
		return fmt.Errorf("%w: position state with symbol is required", ports.ErrInvalidRequest)
	}
	snap := snapshot{
		Symbol:       state.Symbol,
		Side:         string(state.Side),
		EntryPrice:   state.EntryPrice.String(),
		CurrentStop:  state.CurrentStop.String(),
		StopSource:   string(state.StopSource),
		StopVol:      state.StopVol.String(),
		Quantity:     state.Quantity,
		ScaleInCount: state.ScaleInCount,
		BreakevenSet: state.BreakevenSet,
		OpenedAt:     state.OpenedAt,
		UpdatedAt:    state.UpdatedAt,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state for %s: %w", state.Symbol, err)
	}
	if err := writeFileAtomic(s.path(state.Symbol), data, 0644); err != nil {
		return fmt.Errorf("failed to persist state for %s: %w", state.Symbol, err)
	}
	s.logger.Debug(ctx, "Position state persisted", map[string]interface{}{"symbol": state.Symbol})
	return nil
}

// Load restores the snapshot for a symbol. A missing file means no open
// position and returns nil, nil. A file that exists but cannot be parsed
// returns a state tagged ProtectionUnknown rather than an error.
func (s *FileStore) Load(ctx context.Context, symbol string) (*domain.PositionState, error) {
	data, err := os.ReadFile(s.path(symbol))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return s.corrupt(ctx, symbol, err), nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s.corrupt(ctx, symbol, err), nil
	}

	state := &domain.PositionState{
		Symbol:       snap.Symbol,
		Side:         domain.Side(snap.Side),
		Quantity:     snap.Quantity,
		ScaleInCount: snap.ScaleInCount,
		BreakevenSet: snap.BreakevenSet,
		StopSource:   domain.StopSource(snap.StopSource),
		OpenedAt:     snap.OpenedAt,
		UpdatedAt:    snap.UpdatedAt,
		Protection:   domain.ProtectionActive,
	}
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&state.EntryPrice, snap.EntryPrice},
		{&state.CurrentStop, snap.CurrentStop},
		{&state.StopVol, snap.StopVol},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return s.corrupt(ctx, symbol, err), nil
		}
		*f.dst = v
	}
	if !state.EntryPrice.IsPositive() || state.Quantity < 1 || !state.StopSource.IsValid() {
		return s.corrupt(ctx, symbol, fmt.Errorf("%w: implausible snapshot values", ports.ErrStateCorrupt)), nil
	}
	return state, nil
}

// corrupt builds the fail-safe state for an unreadable snapshot.
func (s *FileStore) corrupt(ctx context.Context, symbol string, cause error) *domain.PositionState {
	s.logger.Warn(ctx, "Position snapshot unreadable, assuming worst case", map[string]interface{}{
		"symbol": symbol, "cause": cause.Error(),
	})
	return &domain.PositionState{
		Symbol:     symbol,
		Protection: domain.ProtectionUnknown,
	}
}

// Delete removes the snapshot once the position is closed.
func (s *FileStore) Delete(ctx context.Context, symbol string) error {
	if err := os.Remove(s.path(symbol)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state for %s: %w", symbol, err)
	}
	return nil
}

// writeFileAtomic writes data to path atomically (tmp file + fsync + rename),
// then fsyncs the parent directory to harden the rename durability.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
