package model

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
)

// ScalerKind is the affine transform family of a fitted scaler.
type ScalerKind string

// Scaler kinds.
const (
	// ScalerStandard computes (x - mean) / scale.
	ScalerStandard ScalerKind = "standard"
	// ScalerMinMax computes x * scale + min.
	ScalerMinMax ScalerKind = "minmax"
)

// NumericScaler is a fitted affine transform over the three numeric feature columns.
// The columns are transformed jointly in feature.ScalerColumns order.
type NumericScaler struct {
	kind   ScalerKind
	offset [3]float64
	scale  [3]float64
}

// NewStandardScaler creates a mean/std scaler. A zero scale is treated as 1,
// the convention for constant columns at fit time.
func NewStandardScaler(columns [3]string, mean, scale [3]float64) (*NumericScaler, error) {
	if err := checkScalerColumns(columns); err != nil {
		return nil, err
	}
	if err := checkFinite("mean", mean); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", scale); err != nil {
		return nil, err
	}
	for i := range scale {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	return &NumericScaler{kind: ScalerStandard, offset: mean, scale: scale}, nil
}

// NewMinMaxScaler creates a min/max scaler from the fitted per-column scale and min terms.
func NewMinMaxScaler(columns [3]string, minTerm, scale [3]float64) (*NumericScaler, error) {
	if err := checkScalerColumns(columns); err != nil {
		return nil, err
	}
	if err := checkFinite("min", minTerm); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", scale); err != nil {
		return nil, err
	}
	return &NumericScaler{kind: ScalerMinMax, offset: minTerm, scale: scale}, nil
}

// Kind returns the transform family.
func (s *NumericScaler) Kind() ScalerKind { return s.kind }

// Transform scales one numeric row.
func (s *NumericScaler) Transform(row [3]float64) [3]float64 {
	var out [3]float64
	for i, x := range row {
		switch s.kind {
		case ScalerMinMax:
			out[i] = x*s.scale[i] + s.offset[i]
		default:
			out[i] = (x - s.offset[i]) / s.scale[i]
		}
	}
	return out
}

func checkScalerColumns(columns [3]string) error {
	if want := feature.ScalerColumns(); columns != want {
		return fmt.Errorf("scaler columns %v do not match schema %v", columns, want)
	}
	return nil
}

func checkFinite(name string, v [3]float64) error {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("scaler %s[%d] is not finite", name, i)
		}
	}
	return nil
}
