package domain

import "github.com/shopspring/decimal"

// StopSource identifies where a stop candidate came from. It is a closed
// enumeration: adding a new source is a compile-time decision, and
// consumers switch over it rather than matching strings.
type StopSource string

const (
	StopSourceVolatility StopSource = "volatility"
	StopSourceStructural StopSource = "structural-low"
	StopSourceFallback   StopSource = "percentage-fallback"
	StopSourceManual     StopSource = "manual"
)

// IsValid reports whether the source is one of the known kinds.
func (s StopSource) IsValid() bool {
	switch s {
	case StopSourceVolatility, StopSourceStructural, StopSourceFallback, StopSourceManual:
		return true
	}
	return false
}

// StopCandidate is a proposed protective stop plus its provenance.
// Several candidates may be compared for one position; exactly one is
// selected as the active stop.
type StopCandidate struct {
	Price       decimal.Decimal // Proposed stop price
	Source      StopSource      // Where the candidate came from
	Volatility  decimal.Decimal // Volatility magnitude used, zero if not volatility-based
	Multiplier  decimal.Decimal // Multiplier applied to the volatility, zero if not applicable
	DistancePct decimal.Decimal // |entry − price| / entry, as a fraction
}
