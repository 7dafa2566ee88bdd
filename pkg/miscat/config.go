package miscat

// Config controls keyword selection during Fit. Values are used as given;
// there is no range checking. DefaultConfig returns the reference tuning.
type Config struct {
	// RelevantDominance is the minimum tfIn/tfOut ratio for a token to
	// qualify as a relevant keyword. Tokens absent from the complement
	// qualify on frequency alone.
	RelevantDominance float64

	// RelevantTF is the minimum in-label document frequency for a
	// relevant keyword.
	RelevantTF float64

	// ClashDominance is the minimum tfOut/tfIn ratio for a token to
	// qualify as a clash keyword. Tokens absent from the label qualify on
	// out-of-label frequency alone.
	ClashDominance float64

	// ClashTF is the minimum out-of-label document frequency for a clash
	// keyword.
	ClashTF float64

	// MaxClashInRelevant caps the in-label document frequency a clash
	// keyword may have. Tokens common inside the label never clash with
	// it, whatever their dominance ratio.
	MaxClashInRelevant float64

	// TopRelevant and TopClash cap the per-label keyword list lengths.
	TopRelevant int
	TopClash    int
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		RelevantDominance:  4.0,
		RelevantTF:         0.001,
		ClashDominance:     10.0,
		ClashTF:            0.005,
		MaxClashInRelevant: 0.05,
		TopRelevant:        50,
		TopClash:           30,
	}
}
