package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest           ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized         ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInvalidNumericInput  ErrorResponseCode = "invalid_numeric_input"
	ErrorResponseCodeUnknownMaterial      ErrorResponseCode = "unknown_material"
	ErrorResponseCodeUnknownArchitecture  ErrorResponseCode = "unknown_architecture"
	ErrorResponseCodeArtifactsUnavailable ErrorResponseCode = "artifacts_unavailable"
	ErrorResponseCodeBatchTooLarge        ErrorResponseCode = "batch_too_large"
	ErrorResponseCodeInternalError        ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Known   []string          `json:"known,omitempty"`
}

// NumericInput accepts a JSON number or a string and keeps the raw text,
// so parsing and its failure reporting happen in one place.
type NumericInput string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumericInput(s)
	default:
		*n = NumericInput(b)
	}
	return nil
}

// PredictionRequest is the body of POST /api/v1/predictions.
type PredictionRequest struct {
	Material     string       `json:"material"`
	FrequencyGHz NumericInput `json:"frequency_ghz"`
	BandwidthGHz NumericInput `json:"bandwidth_ghz"`
	Architecture string       `json:"architecture"`
}

// PredictQueryParams are the query parameters of GET /api/v1/predictions.
type PredictQueryParams struct {
	Material     string
	FrequencyGHz string
	BandwidthGHz string
	Architecture string
}

// PredictionResponse echoes the design and carries both predicted metrics.
type PredictionResponse struct {
	Material         string  `json:"material"`
	FrequencyGHz     float64 `json:"frequency_ghz"`
	BandwidthGHz     float64 `json:"bandwidth_ghz"`
	Architecture     string  `json:"architecture"`
	PredictedGainDB  float64 `json:"predicted_gain_db"`
	PredictedNoiseDB float64 `json:"predicted_noise_db"`
}

// BatchPredictionRequest is the body of POST /api/v1/predictions/batch.
type BatchPredictionRequest struct {
	Items []PredictionRequest `json:"items"`
}

// BatchPredictionItem is the outcome of one batch entry.
type BatchPredictionItem struct {
	Index  int                 `json:"index"`
	Status string              `json:"status"`
	Result *PredictionResponse `json:"result,omitempty"`
	Error  *ErrorResponse      `json:"error,omitempty"`
}

// BatchPredictionResponse is the reply of POST /api/v1/predictions/batch.
type BatchPredictionResponse struct {
	Items     []BatchPredictionItem `json:"items"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
}

// SchemaResponse lists every accepted categorical value and the feature layout.
type SchemaResponse struct {
	Materials      []string `json:"materials"`
	Architectures  []string `json:"architectures"`
	FeatureColumns []string `json:"feature_columns"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Version     string            `json:"version"`
	Fingerprint string            `json:"artifacts_fingerprint,omitempty"`
}

// ServerInterface is implemented by Server.
type ServerInterface interface {
	// (POST /api/v1/predictions)
	Predict(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/predictions)
	PredictQuery(w http.ResponseWriter, r *http.Request, params PredictQueryParams)
	// (POST /api/v1/predictions/batch)
	PredictBatch(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/schema)
	GetSchema(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.ParamName, e.Err)
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on a chi router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	errorHandler := options.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	r.Post(options.BaseURL+"/api/v1/predictions", si.Predict)
	r.Get(options.BaseURL+"/api/v1/predictions", func(w http.ResponseWriter, r *http.Request) {
		params, err := bindPredictQueryParams(r)
		if err != nil {
			errorHandler(w, r, err)
			return
		}
		si.PredictQuery(w, r, params)
	})
	r.Post(options.BaseURL+"/api/v1/predictions/batch", si.PredictBatch)
	r.Get(options.BaseURL+"/api/v1/schema", si.GetSchema)
	r.Get(options.BaseURL+"/health", si.HealthCheck)
	r.Get(options.BaseURL+"/metrics", si.Metrics)

	return r
}

func bindPredictQueryParams(r *http.Request) (PredictQueryParams, error) {
	var params PredictQueryParams
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest *string
	}{
		{"material", &params.Material},
		{"frequency_ghz", &params.FrequencyGHz},
		{"bandwidth_ghz", &params.BandwidthGHz},
		{"architecture", &params.Architecture},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, true, b.name, query, b.dest); err != nil {
			return PredictQueryParams{}, &InvalidParamFormatError{ParamName: b.name, Err: err}
		}
	}
	return params, nil
}
