package domain

// Side represents the direction of a position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// ProtectionStatus tags whether a position is known to be covered by a
// protective stop. The zero value is deliberately Unknown so that a
// PositionState restored from a corrupted or missing snapshot lands on
// the worst-case branch: consumers must treat Unknown as "assume
// unprotected and re-apply a stop before anything else".
type ProtectionStatus int

const (
	ProtectionUnknown ProtectionStatus = iota
	ProtectionActive
)

// String returns the string representation of the ProtectionStatus.
func (p ProtectionStatus) String() string {
	switch p {
	case ProtectionActive:
		return "active"
	default:
		return "unknown"
	}
}
