package design

import (
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lnaperf/internal/domain"
)

// Field names used in numeric validation errors.
const (
	FieldFrequency = "frequency_ghz"
	FieldBandwidth = "bandwidth_ghz"
)

// Parameters is the raw, untrusted LNA design input (immutable value object).
type Parameters struct {
	material     string
	frequencyGHz float64
	bandwidthGHz float64
	architecture string
}

// New creates Parameters without validation. Use Validate before feature building.
func New(material string, frequencyGHz, bandwidthGHz float64, architecture string) Parameters {
	return Parameters{
		material:     material,
		frequencyGHz: frequencyGHz,
		bandwidthGHz: bandwidthGHz,
		architecture: architecture,
	}
}

// Parse creates Parameters from form-style string input.
// Unparseable frequency or bandwidth yields an InvalidNumericInputError.
func Parse(material, frequency, bandwidth, architecture string) (Parameters, error) {
	freq, err := parseFloat(FieldFrequency, frequency)
	if err != nil {
		return Parameters{}, err
	}
	bw, err := parseFloat(FieldBandwidth, bandwidth)
	if err != nil {
		return Parameters{}, err
	}
	return New(material, freq, bw, architecture), nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, domain.NewInvalidNumericInput(field, raw)
	}
	return v, nil
}

// Material returns the material label as supplied.
func (p Parameters) Material() string { return p.material }

// FrequencyGHz returns the operating frequency in GHz.
func (p Parameters) FrequencyGHz() float64 { return p.frequencyGHz }

// BandwidthGHz returns the bandwidth in GHz.
func (p Parameters) BandwidthGHz() float64 { return p.bandwidthGHz }

// Architecture returns the architecture name as supplied.
func (p Parameters) Architecture() string { return p.architecture }

// Validate rejects NaN and infinite numeric fields. No range is enforced.
func (p Parameters) Validate() error {
	if !isFinite(p.frequencyGHz) {
		return domain.NewInvalidNumericInput(FieldFrequency, FormatFloat(p.frequencyGHz))
	}
	if !isFinite(p.bandwidthGHz) {
		return domain.NewInvalidNumericInput(FieldBandwidth, FormatFloat(p.bandwidthGHz))
	}
	return nil
}

// FormatFloat renders a float the way error messages report it.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
