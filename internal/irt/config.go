package irt

// Config is the typed configuration record for the numerical core. Every
// tunable lives here instead of being scattered as per-call defaults.
type Config struct {
	Guessing             float64
	MaxNewtonIter        int
	NewtonTol            float64
	SigmaMin             float64
	SigmaMax             float64
	PriorK               float64
	TimeScale            float64
	AccuracyWeight       float64
	TimeWeight           float64
	DifficultyBias       float64
	CalibrationMinTimeS  float64
	CalibrationMaxTimeS  float64
	DefaultResponseTimeS float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Guessing:             0.25,
		MaxNewtonIter:        10,
		NewtonTol:            0.001,
		SigmaMin:             0.5,
		SigmaMax:             2.0,
		PriorK:               5.0,
		TimeScale:            20.0,
		AccuracyWeight:       0.6,
		TimeWeight:           0.4,
		DifficultyBias:       1.2,
		CalibrationMinTimeS:  5.0,
		CalibrationMaxTimeS:  70.0,
		DefaultResponseTimeS: 30.0,
	}
}

// epsilon is the numerical tolerance used throughout the core to treat a
// probability as pinned against its guessing floor or 1.0 ceiling, and to
// detect degenerate (near-zero) total information.
const epsilon = 1e-9
