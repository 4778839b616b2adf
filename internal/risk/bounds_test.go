package risk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"volGuardBot/internal/ports"
)

// nopLogger discards all output; used across the package tests.
type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testBounds() Bounds {
	return Bounds{
		MinDistance: dec("0.007"),
		MaxDistance: dec("0.10"),
		NoiseFloor:  decimal.Zero,
	}
}

func TestStopDistance(t *testing.T) {
	tests := []struct {
		entry, stop, expected string
	}{
		{"100", "94", "0.06"},
		{"100", "106", "0.06"},
		{"100", "100", "0"},
		{"200", "196", "0.02"},
	}
	for _, tt := range tests {
		got := StopDistance(dec(tt.entry), dec(tt.stop))
		if !got.Equal(dec(tt.expected)) {
			t.Errorf("StopDistance(%s, %s) = %s, expected %s", tt.entry, tt.stop, got, tt.expected)
		}
	}
}

func TestBounds_CheckStopDistance(t *testing.T) {
	b := testBounds()

	tests := []struct {
		name    string
		entry   string
		stop    string
		wantErr bool
	}{
		{name: "inside envelope", entry: "100", stop: "94", wantErr: false},
		{name: "exactly min distance", entry: "100", stop: "99.3", wantErr: false},
		{name: "exactly max distance", entry: "100", stop: "90", wantErr: false},
		{name: "below min distance", entry: "100", stop: "99.5", wantErr: true},
		{name: "above max distance", entry: "100", stop: "89", wantErr: true},
		{name: "exact noise floor match", entry: "100", stop: "100", wantErr: false},
		{name: "short side inside envelope", entry: "100", stop: "106", wantErr: false},
		{name: "non-positive stop", entry: "100", stop: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance, err := b.CheckStopDistance(dec(tt.entry), dec(tt.stop))
			if tt.wantErr {
				if !errors.Is(err, ports.ErrValueOutOfRange) {
					t.Fatalf("expected ErrValueOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := StopDistance(dec(tt.entry), dec(tt.stop))
			if !distance.Equal(want) {
				t.Errorf("returned distance %s, expected %s", distance, want)
			}
		})
	}
}

func TestBounds_CheckStopDistance_ErrorNamesValues(t *testing.T) {
	b := testBounds()
	_, err := b.CheckStopDistance(dec("100"), dec("99.9"))
	if err == nil {
		t.Fatal("expected rejection for 0.1% distance")
	}
	msg := err.Error()
	for _, fragment := range []string{"0.1%", "0.7%", "10%"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error %q does not name %q", msg, fragment)
		}
	}
}

func TestBounds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bounds  Bounds
		wantErr bool
	}{
		{name: "valid", bounds: testBounds(), wantErr: false},
		{name: "zero min", bounds: Bounds{MinDistance: decimal.Zero, MaxDistance: dec("0.1")}, wantErr: true},
		{name: "max at one", bounds: Bounds{MinDistance: dec("0.007"), MaxDistance: dec("1")}, wantErr: true},
		{name: "min above max", bounds: Bounds{MinDistance: dec("0.2"), MaxDistance: dec("0.1")}, wantErr: true},
		{name: "noise floor above min", bounds: Bounds{MinDistance: dec("0.007"), MaxDistance: dec("0.1"), NoiseFloor: dec("0.01")}, wantErr: true},
		{name: "negative noise floor", bounds: Bounds{MinDistance: dec("0.007"), MaxDistance: dec("0.1"), NoiseFloor: dec("-0.001")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.wantErr && !errors.Is(err, ports.ErrConfigurationError) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
