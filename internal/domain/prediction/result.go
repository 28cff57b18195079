package prediction

// Result holds the two predicted performance metrics of one design.
type Result struct {
	gainDB  float64
	noiseDB float64
}

// NewResult creates a Result.
func NewResult(gainDB, noiseDB float64) Result {
	return Result{gainDB: gainDB, noiseDB: noiseDB}
}

// GainDB returns the predicted gain in dB.
func (r Result) GainDB() float64 { return r.gainDB }

// NoiseDB returns the predicted noise figure in dB.
func (r Result) NoiseDB() float64 { return r.noiseDB }
