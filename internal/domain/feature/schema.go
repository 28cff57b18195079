// Package feature defines the fixed column layout shared by the feature builder,
// the regressor loader and anything else that must agree on training-time column order.
package feature

import "fmt"

// Size is the number of slots in a feature vector.
const Size = 16

// Slot indexes of the non-architecture columns.
const (
	MaterialIndex   = 0
	GateLengthIndex = 1
	FrequencyIndex  = 2
	BandwidthIndex  = 3

	// architectureOffset is the slot of the first one-hot architecture column.
	architectureOffset = 4
)

// ArchitecturePrefix is prepended to an architecture name to form its column name.
const ArchitecturePrefix = "lna_arch_"

// Column names of the numeric slots.
const (
	MaterialColumn   = "material"
	GateLengthColumn = "gLen_µm"
	FrequencyColumn  = "freq_Ghz"
	BandwidthColumn  = "bandwidth_GHz"
)

var architectures = [Size - architectureOffset]string{
	"3stage",
	"3stageCS",
	"4stage",
	"5stage",
	"6stage",
	"Cascode",
	"Distributed",
	"Foldedcascode",
	"PowerAmplifier",
	"Singlestage",
	"UWB",
	"Unknown",
}

var columns = buildColumns()

func buildColumns() [Size]string {
	var c [Size]string
	c[MaterialIndex] = MaterialColumn
	c[GateLengthIndex] = GateLengthColumn
	c[FrequencyIndex] = FrequencyColumn
	c[BandwidthIndex] = BandwidthColumn
	for i, a := range architectures {
		c[architectureOffset+i] = ArchitecturePrefix + a
	}
	return c
}

// Vector is a feature row in training-time column order.
type Vector [Size]float64

// Columns returns the column names in vector order.
func Columns() []string {
	out := make([]string, Size)
	copy(out, columns[:])
	return out
}

// Architectures returns the known architecture names in one-hot column order.
func Architectures() []string {
	out := make([]string, len(architectures))
	copy(out, architectures[:])
	return out
}

// ScalerColumns returns the numeric columns, in the order the scaler was fit on.
func ScalerColumns() [3]string {
	return [3]string{GateLengthColumn, FrequencyColumn, BandwidthColumn}
}

// ArchitectureIndex returns the slot of the one-hot column for name.
// Matching is exact and case-sensitive.
func ArchitectureIndex(name string) (int, bool) {
	for i, a := range architectures {
		if a == name {
			return architectureOffset + i, true
		}
	}
	return 0, false
}

// CheckColumns verifies that names is exactly the schema column order.
func CheckColumns(names []string) error {
	if len(names) != Size {
		return fmt.Errorf("expected %d feature columns, got %d", Size, len(names))
	}
	for i, n := range names {
		if n != columns[i] {
			return fmt.Errorf("feature column %d: expected %q, got %q", i, columns[i], n)
		}
	}
	return nil
}
