// Package prediction runs both regressors over the feature vector of a design.
package prediction

import (
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/design"
	domprediction "github.com/kailas-cloud/lnaperf/internal/domain/prediction"
	"github.com/kailas-cloud/lnaperf/internal/usecase/feature"
)

// Predict validates params, builds the feature vector and runs the gain and noise
// regressors on it. It returns either both metrics or a typed failure.
// Feature building failures are returned unchanged.
func Predict(params design.Parameters, store *artifact.Store) (domprediction.Result, error) {
	if err := params.Validate(); err != nil {
		return domprediction.Result{}, err
	}

	v, err := feature.Build(params, store)
	if err != nil {
		return domprediction.Result{}, err
	}

	return domprediction.NewResult(store.Gain().Predict(v), store.Noise().Predict(v)), nil
}
