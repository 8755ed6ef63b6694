package event

import "fmt"

// AncientMode selects the indicator used to classify events as ancient.
type AncientMode int

const (
	// GenerationThreshold classifies events by generation.
	GenerationThreshold AncientMode = iota

	// BirthRoundThreshold classifies events by birth round.
	BirthRoundThreshold
)

// String returns the configuration name of the mode.
func (m AncientMode) String() string {
	switch m {
	case GenerationThreshold:
		return "generation_threshold"
	case BirthRoundThreshold:
		return "birth_round_threshold"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseAncientMode converts a configuration string into an AncientMode.
func ParseAncientMode(s string) (AncientMode, error) {
	switch s {
	case "generation_threshold":
		return GenerationThreshold, nil
	case "birth_round_threshold":
		return BirthRoundThreshold, nil
	default:
		return 0, fmt.Errorf("unknown ancient mode %q", s)
	}
}

// Window is a snapshot of the ancient and expired boundaries, distributed
// to intake components whenever a round reaches consensus.
type Window struct {
	// LatestConsensusRound is the most recent round to reach consensus.
	LatestConsensusRound int64

	// AncientThreshold is the lowest ancient indicator that is not
	// ancient. Events below it are ancient.
	AncientThreshold int64

	// ExpiredThreshold is the lowest ancient indicator that is not
	// expired. Events below it may be garbage collected.
	ExpiredThreshold int64

	// Mode selects the indicator compared against the thresholds.
	Mode AncientMode
}

// Genesis returns the window in force before any round reaches consensus.
func Genesis(mode AncientMode) Window {
	return Window{
		LatestConsensusRound: 0,
		AncientThreshold:     FirstGeneration,
		ExpiredThreshold:     FirstGeneration,
		Mode:                 mode,
	}
}

// IsAncient reports whether the event is ancient under this window.
func (w Window) IsAncient(e *Event) bool {
	return e.AncientIndicator(w.Mode) < w.AncientThreshold
}

// IsDescriptorAncient reports whether a descriptor references an ancient
// event under this window.
func (w Window) IsDescriptorAncient(d Descriptor) bool {
	indicator := d.Generation
	if w.Mode == BirthRoundThreshold {
		indicator = d.BirthRound
	}
	return indicator < w.AncientThreshold
}
