package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lnaperf/internal/domain/design"
	domprediction "github.com/kailas-cloud/lnaperf/internal/domain/prediction"
	healthuc "github.com/kailas-cloud/lnaperf/internal/usecase/health"
	predictionuc "github.com/kailas-cloud/lnaperf/internal/usecase/prediction"
	"github.com/kailas-cloud/lnaperf/internal/version"
)

// maxBodyBytes bounds request bodies; a full batch of designs fits well below it.
const maxBodyBytes = 1 << 20

// Server implements ServerInterface.
type Server struct {
	predictions   *predictionuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	predictions *predictionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		predictions:   predictions,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Predict handles POST /api/v1/predictions.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.predict(w, r, req.Material, string(req.FrequencyGHz), string(req.BandwidthGHz), req.Architecture)
}

// PredictQuery handles GET /api/v1/predictions.
func (s *Server) PredictQuery(w http.ResponseWriter, r *http.Request, params PredictQueryParams) {
	s.predict(w, r, params.Material, params.FrequencyGHz, params.BandwidthGHz, params.Architecture)
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request, material, freq, bw, arch string) {
	params, err := design.Parse(material, freq, bw, arch)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.predictions.Predict(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionToResponse(params, res))
}

// PredictBatch handles POST /api/v1/predictions/batch.
func (s *Server) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchPredictionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "items must not be empty")
		return
	}
	if limit := s.predictions.MaxBatchSize(); len(req.Items) > limit {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBatchTooLarge,
			fmt.Sprintf("items count must be between 1 and %d", limit))
		return
	}

	// Items that fail to parse never reach the service; the rest keep their request index.
	items := make([]BatchPredictionItem, len(req.Items))
	parsed := make([]design.Parameters, 0, len(req.Items))
	positions := make([]int, 0, len(req.Items))
	for i, it := range req.Items {
		p, err := design.Parse(it.Material, string(it.FrequencyGHz), string(it.BandwidthGHz), it.Architecture)
		if err != nil {
			items[i] = s.batchError(i, err)
			continue
		}
		parsed = append(parsed, p)
		positions = append(positions, i)
	}

	results, err := s.predictions.PredictBatch(r.Context(), parsed)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	for j, res := range results {
		i := positions[j]
		if res.Status() == domprediction.StatusOK {
			resp := predictionToResponse(parsed[j], res.Result())
			items[i] = BatchPredictionItem{Index: i, Status: string(domprediction.StatusOK), Result: &resp}
			continue
		}
		items[i] = s.batchError(i, res.Err())
	}

	succeeded, failed := 0, 0
	for _, it := range items {
		if it.Status == string(domprediction.StatusOK) {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, BatchPredictionResponse{
		Items:     items,
		Succeeded: succeeded,
		Failed:    failed,
	})
}

func (s *Server) batchError(i int, err error) BatchPredictionItem {
	_, body := s.classify(err)
	return BatchPredictionItem{Index: i, Status: string(domprediction.StatusError), Error: &body}
}

// GetSchema handles GET /api/v1/schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	materials, err := s.predictions.KnownMaterials(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SchemaResponse{
		Materials:      materials,
		Architectures:  s.predictions.KnownArchitectures(),
		FeatureColumns: s.predictions.FeatureColumns(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		Version:     version.Version,
		Fingerprint: report.Fingerprint,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func predictionToResponse(p design.Parameters, res domprediction.Result) PredictionResponse {
	return PredictionResponse{
		Material:         p.Material(),
		FrequencyGHz:     p.FrequencyGHz(),
		BandwidthGHz:     p.BandwidthGHz(),
		Architecture:     p.Architecture(),
		PredictedGainDB:  res.GainDB(),
		PredictedNoiseDB: res.NoiseDB(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// BadRequestHandler renders parameter binding failures.
func BadRequestHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, fmt.Sprintf("invalid request: %v", err))
}
