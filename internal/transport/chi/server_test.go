package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact/artifacttest"
	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
	artifactrepo "github.com/kailas-cloud/lnaperf/internal/repository/artifact"
	healthuc "github.com/kailas-cloud/lnaperf/internal/usecase/health"
	predictionuc "github.com/kailas-cloud/lnaperf/internal/usecase/prediction"
)

type artifactProvider interface {
	Artifacts(ctx context.Context) (*artifact.Store, error)
}

type unavailableProvider struct{}

func (unavailableProvider) Artifacts(_ context.Context) (*artifact.Store, error) {
	return nil, domain.NewArtifactMissing(string(artifact.Scaler), errors.New("open /srv/artifacts/scaler.json"))
}

type brokenProvider struct{}

func (brokenProvider) Artifacts(_ context.Context) (*artifact.Store, error) {
	return nil, errors.New("connection reset")
}

func newTestHandler(t *testing.T, provider artifactProvider) http.Handler {
	t.Helper()
	svc := predictionuc.New(provider, zap.NewNop()).WithBatchLimits(3, 2)
	srv := NewServer(svc, healthuc.New(provider, nil), zap.NewNop())
	return HandlerWithOptions(srv, ChiServerOptions{ErrorHandlerFunc: BadRequestHandler})
}

func newReadyHandler(t *testing.T) http.Handler {
	t.Helper()
	return newTestHandler(t, artifactrepo.NewStatic(artifacttest.NewStore(t)))
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestPredict_OK(t *testing.T) {
	h := newReadyHandler(t)

	bodies := []string{
		`{"material":"GaN","frequency_ghz":94,"bandwidth_ghz":8,"architecture":"4stage"}`,
		`{"material":"GaN","frequency_ghz":"94","bandwidth_ghz":" 8 ","architecture":"4stage"}`,
	}
	for _, body := range bodies {
		rr := do(t, h, http.MethodPost, "/api/v1/predictions", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
		}
		resp := decode[PredictionResponse](t, rr)
		if resp.PredictedGainDB != 27.5 || resp.PredictedNoiseDB != 4 {
			t.Errorf("result = (%v, %v), want (27.5, 4)", resp.PredictedGainDB, resp.PredictedNoiseDB)
		}
		if resp.Material != "GaN" || resp.FrequencyGHz != 94 || resp.Architecture != "4stage" {
			t.Errorf("design not echoed: %+v", resp)
		}
	}
}

func TestPredict_Failures(t *testing.T) {
	h := newReadyHandler(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   ErrorResponseCode
		check      func(t *testing.T, e ErrorResponse)
	}{
		{
			name:       "unknown material",
			body:       `{"material":"Silicon","frequency_ghz":5.8,"bandwidth_ghz":1,"architecture":"3stage"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrorResponseCodeUnknownMaterial,
			check: func(t *testing.T, e ErrorResponse) {
				if !slices.Equal(e.Known, []string{"GAAS", "GAN"}) {
					t.Errorf("known = %v", e.Known)
				}
				if !strings.Contains(e.Message, "Silicon") {
					t.Errorf("message = %q", e.Message)
				}
			},
		},
		{
			name:       "unknown architecture",
			body:       `{"material":"GaAs","frequency_ghz":5.8,"bandwidth_ghz":1,"architecture":"7stage"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrorResponseCodeUnknownArchitecture,
			check: func(t *testing.T, e ErrorResponse) {
				if !slices.Equal(e.Known, feature.Architectures()) {
					t.Errorf("known = %v", e.Known)
				}
			},
		},
		{
			name:       "nan frequency",
			body:       `{"material":"GaN","frequency_ghz":"NaN","bandwidth_ghz":4,"architecture":"Unknown"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorResponseCodeInvalidNumericInput,
			check: func(t *testing.T, e ErrorResponse) {
				if e.Field != "frequency_ghz" {
					t.Errorf("field = %q", e.Field)
				}
			},
		},
		{
			name:       "non-numeric bandwidth",
			body:       `{"material":"GaN","frequency_ghz":10,"bandwidth_ghz":"wide","architecture":"Unknown"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorResponseCodeInvalidNumericInput,
			check: func(t *testing.T, e ErrorResponse) {
				if e.Field != "bandwidth_ghz" {
					t.Errorf("field = %q", e.Field)
				}
			},
		},
		{
			name:       "missing frequency",
			body:       `{"material":"GaN","bandwidth_ghz":4,"architecture":"Unknown"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorResponseCodeInvalidNumericInput,
		},
		{
			name:       "malformed body",
			body:       `{"material":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorResponseCodeBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/api/v1/predictions", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			e := decode[ErrorResponse](t, rr)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if tt.check != nil {
				tt.check(t, e)
			}
		})
	}
}

func TestPredictQuery(t *testing.T) {
	h := newReadyHandler(t)

	rr := do(t, h, http.MethodGet,
		"/api/v1/predictions?material=gaas&frequency_ghz=5.8&bandwidth_ghz=1&architecture=Cascode", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decode[PredictionResponse](t, rr)
	if resp.PredictedGainDB != 23 || resp.PredictedNoiseDB != 2.75 {
		t.Errorf("result = (%v, %v), want (23, 2.75)", resp.PredictedGainDB, resp.PredictedNoiseDB)
	}
}

func TestPredictQuery_MissingParam(t *testing.T) {
	h := newReadyHandler(t)

	rr := do(t, h, http.MethodGet, "/api/v1/predictions?material=GaN&frequency_ghz=5.8&bandwidth_ghz=1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	e := decode[ErrorResponse](t, rr)
	if e.Code != ErrorResponseCodeBadRequest || !strings.Contains(e.Message, "architecture") {
		t.Errorf("unexpected error: %+v", e)
	}
}

func TestPredictQuery_InvalidNumber(t *testing.T) {
	h := newReadyHandler(t)

	rr := do(t, h, http.MethodGet,
		"/api/v1/predictions?material=GaN&frequency_ghz=fast&bandwidth_ghz=1&architecture=UWB", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if e := decode[ErrorResponse](t, rr); e.Code != ErrorResponseCodeInvalidNumericInput {
		t.Errorf("code = %q", e.Code)
	}
}

func TestPredictBatch(t *testing.T) {
	h := newReadyHandler(t)

	body := `{"items":[
		{"material":"GaN","frequency_ghz":94,"bandwidth_ghz":8,"architecture":"4stage"},
		{"material":"GaN","frequency_ghz":"x","bandwidth_ghz":8,"architecture":"4stage"},
		{"material":"Silicon","frequency_ghz":5.8,"bandwidth_ghz":1,"architecture":"3stage"}
	]}`
	rr := do(t, h, http.MethodPost, "/api/v1/predictions/batch", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decode[BatchPredictionResponse](t, rr)
	if resp.Succeeded != 1 || resp.Failed != 2 {
		t.Errorf("succeeded/failed = %d/%d, want 1/2", resp.Succeeded, resp.Failed)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("got %d items", len(resp.Items))
	}
	for i, it := range resp.Items {
		if it.Index != i {
			t.Errorf("item %d: index = %d", i, it.Index)
		}
	}
	if resp.Items[0].Result == nil || resp.Items[0].Result.PredictedGainDB != 27.5 {
		t.Errorf("item 0: %+v", resp.Items[0])
	}
	if resp.Items[1].Error == nil || resp.Items[1].Error.Code != ErrorResponseCodeInvalidNumericInput {
		t.Errorf("item 1: %+v", resp.Items[1])
	}
	if resp.Items[2].Error == nil || resp.Items[2].Error.Code != ErrorResponseCodeUnknownMaterial {
		t.Errorf("item 2: %+v", resp.Items[2])
	}
}

func TestPredictBatch_Limits(t *testing.T) {
	h := newReadyHandler(t)

	rr := do(t, h, http.MethodPost, "/api/v1/predictions/batch", `{"items":[]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty batch: status = %d, want 400", rr.Code)
	}

	item := `{"material":"GaN","frequency_ghz":10,"bandwidth_ghz":1,"architecture":"UWB"}`
	body := `{"items":[` + strings.Repeat(item+",", 3) + item + `]}`
	rr = do(t, h, http.MethodPost, "/api/v1/predictions/batch", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("oversized batch: status = %d, want 400", rr.Code)
	}
	if e := decode[ErrorResponse](t, rr); e.Code != ErrorResponseCodeBatchTooLarge {
		t.Errorf("code = %q", e.Code)
	}
}

func TestGetSchema(t *testing.T) {
	h := newReadyHandler(t)

	rr := do(t, h, http.MethodGet, "/api/v1/schema", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[SchemaResponse](t, rr)
	if !slices.Equal(resp.Materials, []string{"GAAS", "GAN"}) {
		t.Errorf("materials = %v", resp.Materials)
	}
	if len(resp.Architectures) != 12 {
		t.Errorf("got %d architectures", len(resp.Architectures))
	}
	if !slices.Equal(resp.FeatureColumns, feature.Columns()) {
		t.Errorf("feature columns = %v", resp.FeatureColumns)
	}
}

func TestHealthCheck(t *testing.T) {
	rr := do(t, newReadyHandler(t), http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != string(healthuc.Healthy) || resp.Checks[healthuc.ComponentArtifacts] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}
	if resp.Fingerprint != artifacttest.Fingerprint {
		t.Errorf("fingerprint = %q", resp.Fingerprint)
	}
}

func TestArtifactsUnavailable(t *testing.T) {
	h := newTestHandler(t, unavailableProvider{})

	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/v1/predictions",
		`{"material":"GaN","frequency_ghz":94,"bandwidth_ghz":8,"architecture":"4stage"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("predict status = %d, want 503", rr.Code)
	}
	e := decode[ErrorResponse](t, rr)
	if e.Code != ErrorResponseCodeArtifactsUnavailable {
		t.Errorf("code = %q", e.Code)
	}
	if strings.Contains(e.Message, "/srv") {
		t.Errorf("message leaks cause: %q", e.Message)
	}

	rr = do(t, h, http.MethodGet, "/api/v1/schema", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("schema status = %d, want 503", rr.Code)
	}
}

func TestInternalError_NilLogger(t *testing.T) {
	svc := predictionuc.New(brokenProvider{}, nil)
	srv := NewServer(svc, healthuc.New(brokenProvider{}, nil), nil)
	h := HandlerWithOptions(srv, ChiServerOptions{ErrorHandlerFunc: BadRequestHandler})

	rr := do(t, h, http.MethodPost, "/api/v1/predictions",
		`{"material":"GaN","frequency_ghz":94,"bandwidth_ghz":8,"architecture":"4stage"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := decode[ErrorResponse](t, rr)
	if body.Code != ErrorResponseCodeInternalError {
		t.Errorf("code = %q, want %q", body.Code, ErrorResponseCodeInternalError)
	}
	if strings.Contains(body.Message, "connection reset") {
		t.Errorf("message leaks cause: %q", body.Message)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := do(t, newReadyHandler(t), http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestNumericInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want NumericInput
	}{
		{`94`, "94"},
		{`-1.5e3`, "-1.5e3"},
		{`"5.8"`, "5.8"},
		{`null`, ""},
		{`true`, "true"},
	}
	for _, tt := range tests {
		var n NumericInput
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if n != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, n, tt.want)
		}
	}
}
