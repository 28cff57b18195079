package artifact

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
	"github.com/kailas-cloud/lnaperf/internal/domain/model"
)

// encoderDoc is the stored form of the material encoder.
type encoderDoc struct {
	Classes       []string `json:"classes"`
	Normalization string   `json:"normalization,omitempty"`
}

// scalerDoc is the stored form of the numeric scaler.
type scalerDoc struct {
	Kind    string    `json:"kind"`
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean,omitempty"`
	Min     []float64 `json:"min,omitempty"`
	Scale   []float64 `json:"scale"`
}

// regressorDoc is the stored form of a tree ensemble regressor.
type regressorDoc struct {
	Kind         string      `json:"kind"`
	FeatureNames []string    `json:"feature_names"`
	Init         float64     `json:"init"`
	LearningRate float64     `json:"learning_rate"`
	Trees        [][]nodeDoc `json:"trees"`
}

type nodeDoc struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// decodeEncoder parses an encoder blob. Missing normalization means upper case,
// matching how the training data labels were written.
func decodeEncoder(data []byte) (*model.CategoryEncoder, error) {
	var doc encoderDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal encoder: %w", err)
	}
	n := model.NormalizeUpper
	if doc.Normalization != "" {
		n = model.Normalization(doc.Normalization)
	}
	if !n.IsValid() {
		return nil, fmt.Errorf("unknown normalization %q", doc.Normalization)
	}
	return model.NewCategoryEncoder(doc.Classes, n)
}

func decodeScaler(data []byte) (*model.NumericScaler, error) {
	var doc scalerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal scaler: %w", err)
	}

	columns, err := triple("columns", doc.Columns)
	if err != nil {
		return nil, err
	}
	scale, err := triple("scale", doc.Scale)
	if err != nil {
		return nil, err
	}

	switch model.ScalerKind(doc.Kind) {
	case model.ScalerStandard:
		mean, err := triple("mean", doc.Mean)
		if err != nil {
			return nil, err
		}
		return model.NewStandardScaler(columns, mean, scale)
	case model.ScalerMinMax:
		minTerm, err := triple("min", doc.Min)
		if err != nil {
			return nil, err
		}
		return model.NewMinMaxScaler(columns, minTerm, scale)
	default:
		return nil, fmt.Errorf("unknown scaler kind %q", doc.Kind)
	}
}

func triple[T any](field string, s []T) ([3]T, error) {
	var out [3]T
	if len(s) != len(out) {
		return out, fmt.Errorf("scaler %s: expected %d values, got %d", field, len(out), len(s))
	}
	copy(out[:], s)
	return out, nil
}

// errSchemaMismatch marks a regressor trained on a different feature layout.
var errSchemaMismatch = errors.New("feature schema mismatch")

func decodeRegressor(data []byte) (*model.Ensemble, error) {
	var doc regressorDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal regressor: %w", err)
	}
	if err := feature.CheckColumns(doc.FeatureNames); err != nil {
		return nil, fmt.Errorf("%w: %w", errSchemaMismatch, err)
	}

	trees := make([][]model.Node, len(doc.Trees))
	for i, t := range doc.Trees {
		nodes := make([]model.Node, len(t))
		for j, n := range t {
			nodes[j] = model.Node{
				Feature:   n.Feature,
				Threshold: n.Threshold,
				Left:      n.Left,
				Right:     n.Right,
				Value:     n.Value,
				Leaf:      n.Leaf,
			}
		}
		trees[i] = nodes
	}
	return model.NewEnsemble(model.EnsembleKind(doc.Kind), doc.Init, doc.LearningRate, trees)
}
