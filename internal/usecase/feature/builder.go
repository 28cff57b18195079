// Package feature turns raw design parameters into the fixed-order vector the regressors expect.
package feature

import (
	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/design"
	domfeature "github.com/kailas-cloud/lnaperf/internal/domain/feature"
)

// GateLengthPlaceholder fills the gate length column, which users never supply.
// The scaler was fit with gate length present, so the slot still goes through the transform.
const GateLengthPlaceholder = 0.0

// Build produces the feature vector for params using the store's encoder and scaler.
// It returns either a fully populated vector or an error, never a partial vector.
// Numeric inputs are expected to be finite already; a scaled value may still
// overflow to ±Inf, which the regressors route deterministically.
func Build(params design.Parameters, store *artifact.Store) (domfeature.Vector, error) {
	enc := store.Encoder()
	code, ok := enc.Encode(params.Material())
	if !ok {
		return domfeature.Vector{}, domain.NewUnknownMaterial(params.Material(), enc.SortedClasses())
	}

	var v domfeature.Vector
	v[domfeature.MaterialIndex] = float64(code)

	archIdx, ok := domfeature.ArchitectureIndex(params.Architecture())
	if !ok {
		return domfeature.Vector{}, domain.NewUnknownArchitecture(params.Architecture())
	}
	v[archIdx] = 1

	// Scaled jointly: the coefficients were fit over all three columns together.
	scaled := store.Scaler().Transform([3]float64{
		GateLengthPlaceholder,
		params.FrequencyGHz(),
		params.BandwidthGHz(),
	})
	v[domfeature.GateLengthIndex] = scaled[0]
	v[domfeature.FrequencyIndex] = scaled[1]
	v[domfeature.BandwidthIndex] = scaled[2]

	return v, nil
}
