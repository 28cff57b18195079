// Package artifacttest builds small in-memory artifact stores for tests.
package artifacttest

import (
	"testing"

	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
	"github.com/kailas-cloud/lnaperf/internal/domain/model"
)

// Fingerprint is the fingerprint of the store returned by NewStore.
const Fingerprint = "artifacttest"

// Materials are the encoder classes of the store returned by NewStore, in code order.
var Materials = []string{"GAAS", "GAN"}

// Scaler coefficients of the store returned by NewStore.
var (
	ScalerMean  = [3]float64{0.1, 40, 5}
	ScalerScale = [3]float64{0.05, 20, 2.5}
)

func stump(f int, threshold, left, right float64) []model.Node {
	return []model.Node{
		{Feature: f, Threshold: threshold, Left: 1, Right: 2},
		{Leaf: true, Value: left},
		{Leaf: true, Value: right},
	}
}

func archSlot(name string) int {
	idx, ok := feature.ArchitectureIndex(name)
	if !ok {
		panic("artifacttest: unknown architecture " + name)
	}
	return idx
}

// GainTrees returns the trees of the fixture gain model.
func GainTrees() [][]model.Node {
	return [][]model.Node{
		stump(feature.MaterialIndex, 0.5, -5, 8),
		stump(feature.FrequencyIndex, 0, 6, -4),
		stump(archSlot("4stage"), 0.5, 0, 12),
		stump(archSlot("Cascode"), 0.5, 0, 3),
		{
			{Feature: feature.BandwidthIndex, Threshold: 0.5, Left: 1, Right: 4},
			{Feature: feature.FrequencyIndex, Threshold: -1, Left: 2, Right: 3},
			{Leaf: true, Value: 2},
			{Leaf: true, Value: 1},
			{Leaf: true, Value: -1},
		},
	}
}

// NoiseTrees returns the trees of the fixture noise figure model.
func NoiseTrees() [][]model.Node {
	return [][]model.Node{
		stump(feature.MaterialIndex, 0.5, 1, -1),
		stump(feature.FrequencyIndex, 1, -2, 5),
		stump(archSlot("Distributed"), 0.5, 0, 2),
	}
}

// NewStore returns a store with deterministic gradient boosting regressors,
// a standard scaler and a GAAS/GAN encoder with upper-case normalization.
func NewStore(t testing.TB) *artifact.Store {
	t.Helper()

	gain, err := model.NewEnsemble(model.GradientBoosting, 20, 0.5, GainTrees())
	if err != nil {
		t.Fatalf("artifacttest: gain model: %v", err)
	}
	noise, err := model.NewEnsemble(model.GradientBoosting, 3, 0.25, NoiseTrees())
	if err != nil {
		t.Fatalf("artifacttest: noise model: %v", err)
	}
	sc, err := model.NewStandardScaler(feature.ScalerColumns(), ScalerMean, ScalerScale)
	if err != nil {
		t.Fatalf("artifacttest: scaler: %v", err)
	}
	enc, err := model.NewCategoryEncoder(Materials, model.NormalizeUpper)
	if err != nil {
		t.Fatalf("artifacttest: encoder: %v", err)
	}

	s, err := artifact.New(gain, noise, sc, enc, Fingerprint)
	if err != nil {
		t.Fatalf("artifacttest: store: %v", err)
	}
	return s
}
