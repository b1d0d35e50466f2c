package irt

// Calibrator derives an item's difficulty from its aggregated response
// log, combining accuracy and normalized response time onto the
// standard-normal scale.
type Calibrator struct {
	cfg Config
}

// NewCalibrator builds a calibrator from the engine configuration.
func NewCalibrator(cfg Config) Calibrator {
	return Calibrator{cfg: cfg}
}

// Calibrate computes the standard-normal difficulty for one item from its
// historical responses. globalMeanResponseTimeS is the fallback mean
// response time across all items, used only when avgTime cannot be
// computed from the item's own (possibly empty) response-time samples.
func (c Calibrator) Calibrate(responses []Response, globalMeanResponseTimeS float64) float64 {
	if len(responses) == 0 {
		return 0.0
	}

	correct := 0
	var timeSum float64
	var timeCount int
	for _, r := range responses {
		if r.Correct {
			correct++
		}
		if r.HasKnownResponseTime() {
			timeSum += r.ResponseTimeS
			timeCount++
		}
	}

	accuracy := float64(correct) / float64(len(responses))

	meanTime := globalMeanResponseTimeS
	if timeCount > 0 {
		meanTime = timeSum / float64(timeCount)
	}

	tMin, tMax := c.cfg.CalibrationMinTimeS, c.cfg.CalibrationMaxTimeS
	tNorm := clamp((meanTime-tMin)/(tMax-tMin), 0.0, 1.0)

	d := c.cfg.AccuracyWeight*(1.0-accuracy) + c.cfg.TimeWeight*tNorm

	b := clamp((d-0.5)*6.0+c.cfg.DifficultyBias, -3.0, 3.0)
	return b
}

// CalibrateAll computes a difficulty map for every item id present in
// responsesByItem. The global mean response time used as a per-item
// fallback is computed once across every response with a known response
// time, matching the original data-loader's avg_time_all_questions.
func (c Calibrator) CalibrateAll(responsesByItem map[string][]Response) map[string]float64 {
	var timeSum float64
	var timeCount int
	for _, responses := range responsesByItem {
		for _, r := range responses {
			if r.HasKnownResponseTime() {
				timeSum += r.ResponseTimeS
				timeCount++
			}
		}
	}

	globalMean := c.cfg.DefaultResponseTimeS
	if timeCount > 0 {
		globalMean = timeSum / float64(timeCount)
	}

	out := make(map[string]float64, len(responsesByItem))
	for itemID, responses := range responsesByItem {
		out[itemID] = c.Calibrate(responses, globalMean)
	}
	return out
}

// DifficultyScale converts between the [0,1] "proportion difficulty" scale
// and the standard-normal scale used everywhere else in the core.
type DifficultyScale struct{}

// ToStandardNormal maps a [0,1] difficulty onto the standard-normal scale,
// clamped to [-3,3].
func (DifficultyScale) ToStandardNormal(d01 float64) float64 {
	return clamp((d01-0.5)*6.0, -3.0, 3.0)
}

// FromStandardNormal maps a standard-normal difficulty back onto [0,1],
// clamped.
func (DifficultyScale) FromStandardNormal(bStd float64) float64 {
	return clamp(bStd/6.0+0.5, 0.0, 1.0)
}
