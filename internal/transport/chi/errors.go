package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
)

// errorHandler maps a domain error to a status and body. ok is false when err is not its kind.
type errorHandler func(err error) (status int, body ErrorResponse, ok bool)

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		invalidNumericInputHandler,
		unknownMaterialHandler,
		unknownArchitectureHandler,
		artifactMissingHandler,
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, ErrorResponseCodeBatchTooLarge),
	}
}

func invalidNumericInputHandler(err error) (int, ErrorResponse, bool) {
	var e *domain.InvalidNumericInputError
	if !errors.As(err, &e) {
		return 0, ErrorResponse{}, false
	}
	return http.StatusBadRequest, ErrorResponse{
		Code:    ErrorResponseCodeInvalidNumericInput,
		Message: e.Error(),
		Field:   e.Field,
	}, true
}

func unknownMaterialHandler(err error) (int, ErrorResponse, bool) {
	var e *domain.UnknownMaterialError
	if !errors.As(err, &e) {
		return 0, ErrorResponse{}, false
	}
	return http.StatusUnprocessableEntity, ErrorResponse{
		Code:    ErrorResponseCodeUnknownMaterial,
		Message: e.Error(),
		Known:   e.Known,
	}, true
}

func unknownArchitectureHandler(err error) (int, ErrorResponse, bool) {
	var e *domain.UnknownArchitectureError
	if !errors.As(err, &e) {
		return 0, ErrorResponse{}, false
	}
	return http.StatusUnprocessableEntity, ErrorResponse{
		Code:    ErrorResponseCodeUnknownArchitecture,
		Message: e.Error(),
		Known:   feature.Architectures(),
	}, true
}

// artifactMissingHandler names the artifact but never exposes the underlying cause (paths, keys).
func artifactMissingHandler(err error) (int, ErrorResponse, bool) {
	var e *domain.ArtifactMissingError
	if !errors.As(err, &e) {
		return 0, ErrorResponse{}, false
	}
	return http.StatusServiceUnavailable, ErrorResponse{
		Code:    ErrorResponseCodeArtifactsUnavailable,
		Message: domain.ErrArtifactMissing.Error() + ": " + e.Name,
	}, true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(err error) (int, ErrorResponse, bool) {
		if !errors.Is(err, sentinel) {
			return 0, ErrorResponse{}, false
		}
		return status, ErrorResponse{Code: code, Message: sentinel.Error()}, true
	}
}

func (s *Server) classify(err error) (int, ErrorResponse) {
	for _, h := range s.errorHandlers {
		if status, body, ok := h(err); ok {
			return status, body
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	return http.StatusInternalServerError, ErrorResponse{
		Code:    ErrorResponseCodeInternalError,
		Message: "internal error",
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	status, body := s.classify(err)
	writeJSON(w, status, body)
}
