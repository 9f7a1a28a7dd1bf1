package numerator

import "fmt"

// Format renders id as PREFIX-000042. Ids wider than PadWidth are not truncated,
// so past 10^PadWidth the strings no longer sort like the ids. Order by id.
func Format(cfg Config, id int64) string {
	padWidth := cfg.PadWidth
	if padWidth <= 0 {
		padWidth = DefaultPadWidth
	}
	if cfg.Prefix == "" {
		return fmt.Sprintf("%0*d", padWidth, id)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, id)
}

// Sequencer binds a Config so callers can inject numbering as a dependency.
type Sequencer struct {
	cfg Config
}

// NewSequencer creates a sequencer for cfg.
func NewSequencer(cfg Config) *Sequencer {
	return &Sequencer{cfg: cfg}
}

// Number returns the formatted number for an internal id.
func (s *Sequencer) Number(id int64) string {
	return Format(s.cfg, id)
}
