// Package artifact holds the four trained artifacts needed for inference.
package artifact

import (
	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/model"
)

// Name is the logical name of a trained artifact.
type Name string

// Artifact names, in load order.
const (
	GainModel  Name = "gain_model"
	NoiseModel Name = "noise_model"
	Scaler     Name = "scaler"
	Encoder    Name = "encoder"
)

// Names returns every artifact name in load order.
func Names() []Name {
	return []Name{GainModel, NoiseModel, Scaler, Encoder}
}

// Store is the read-only set of loaded artifacts. Safe for concurrent use.
type Store struct {
	gain        model.Regressor
	noise       model.Regressor
	scaler      *model.NumericScaler
	encoder     *model.CategoryEncoder
	fingerprint string
}

// New creates a Store. A nil artifact yields an ArtifactMissingError naming it.
// fingerprint identifies the artifact contents (used for cache keys).
func New(
	gain, noise model.Regressor,
	scaler *model.NumericScaler, encoder *model.CategoryEncoder,
	fingerprint string,
) (*Store, error) {
	switch {
	case gain == nil:
		return nil, domain.NewArtifactMissing(string(GainModel), nil)
	case noise == nil:
		return nil, domain.NewArtifactMissing(string(NoiseModel), nil)
	case scaler == nil:
		return nil, domain.NewArtifactMissing(string(Scaler), nil)
	case encoder == nil:
		return nil, domain.NewArtifactMissing(string(Encoder), nil)
	}
	return &Store{
		gain:        gain,
		noise:       noise,
		scaler:      scaler,
		encoder:     encoder,
		fingerprint: fingerprint,
	}, nil
}

// Gain returns the gain regressor.
func (s *Store) Gain() model.Regressor { return s.gain }

// Noise returns the noise figure regressor.
func (s *Store) Noise() model.Regressor { return s.noise }

// Scaler returns the numeric scaler.
func (s *Store) Scaler() *model.NumericScaler { return s.scaler }

// Encoder returns the material encoder.
func (s *Store) Encoder() *model.CategoryEncoder { return s.encoder }

// Fingerprint identifies the loaded artifact contents.
func (s *Store) Fingerprint() string { return s.fingerprint }
