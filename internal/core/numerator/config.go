// Package numerator renders human-readable document numbers.
//
// Numbers are derived from a row's database-assigned BIGSERIAL id, so
// uniqueness and ordering come from the sequence; this package only formats.
package numerator

// DefaultPadWidth is the minimum width of the numeric part.
const DefaultPadWidth = 6

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV")
	Prefix string

	// PadWidth is the minimum number width (default 6)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: DefaultPadWidth,
	}
}
