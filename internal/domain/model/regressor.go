package model

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/lnaperf/internal/domain/feature"
)

// Regressor maps a feature vector to a single scalar. Implementations are immutable.
type Regressor interface {
	Predict(v feature.Vector) float64
}

// EnsembleKind selects how tree outputs are combined.
type EnsembleKind string

// Ensemble kinds.
const (
	// GradientBoosting sums tree outputs scaled by the learning rate onto the initial estimate.
	GradientBoosting EnsembleKind = "gradient_boosting"
	// RandomForest averages tree outputs.
	RandomForest EnsembleKind = "random_forest"
)

// IsValid checks if the kind is one of the supported values.
func (k EnsembleKind) IsValid() bool {
	return k == GradientBoosting || k == RandomForest
}

// Node is one node of a regression tree stored as a flat array. Root is index 0.
// Samples with v[Feature] <= Threshold go Left.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// Ensemble is a fitted tree ensemble regressor.
type Ensemble struct {
	kind         EnsembleKind
	init         float64
	learningRate float64
	trees        [][]Node
}

var _ Regressor = (*Ensemble)(nil)

// NewEnsemble validates every tree and creates an Ensemble.
// Child indexes must point forward, so walking a validated tree always terminates.
func NewEnsemble(kind EnsembleKind, init, learningRate float64, trees [][]Node) (*Ensemble, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unsupported ensemble kind %q", kind)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("ensemble has no trees")
	}
	if kind == GradientBoosting {
		if !finite(init) || !finite(learningRate) {
			return nil, fmt.Errorf("init and learning_rate must be finite")
		}
	}

	copied := make([][]Node, len(trees))
	for t, nodes := range trees {
		if err := validateTree(nodes); err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		copied[t] = append([]Node(nil), nodes...)
	}

	return &Ensemble{kind: kind, init: init, learningRate: learningRate, trees: copied}, nil
}

// Kind returns how tree outputs are combined.
func (e *Ensemble) Kind() EnsembleKind { return e.kind }

// NumTrees returns the number of trees.
func (e *Ensemble) NumTrees() int { return len(e.trees) }

// Predict evaluates the ensemble on v.
func (e *Ensemble) Predict(v feature.Vector) float64 {
	var sum float64
	for _, nodes := range e.trees {
		sum += walk(nodes, &v)
	}
	if e.kind == RandomForest {
		return sum / float64(len(e.trees))
	}
	return e.init + e.learningRate*sum
}

func walk(nodes []Node, v *feature.Vector) float64 {
	idx := 0
	for {
		n := &nodes[idx]
		if n.Leaf {
			return n.Value
		}
		if v[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

func validateTree(nodes []Node) error {
	if len(nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range nodes {
		if n.Leaf {
			if !finite(n.Value) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= feature.Size {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if math.IsNaN(n.Threshold) {
			return fmt.Errorf("node %d: threshold is NaN", i)
		}
		for _, child := range [2]int{n.Left, n.Right} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: child index %d invalid", i, child)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
