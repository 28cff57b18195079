package model

import (
	"fmt"
	"sort"
	"strings"
)

// Normalization is the case folding applied to a label before encoder lookup.
type Normalization string

// Normalization values.
const (
	NormalizeUpper Normalization = "upper"
	NormalizeLower Normalization = "lower"
	NormalizeNone  Normalization = "none"
)

// IsValid checks if the normalization is one of the supported values.
func (n Normalization) IsValid() bool {
	return n == NormalizeUpper || n == NormalizeLower || n == NormalizeNone
}

// Apply folds label according to n.
func (n Normalization) Apply(label string) string {
	switch n {
	case NormalizeUpper:
		return strings.ToUpper(label)
	case NormalizeLower:
		return strings.ToLower(label)
	default:
		return label
	}
}

// CategoryEncoder maps a closed set of category labels to integer codes.
// The code of a class is its position in the fitted class list.
type CategoryEncoder struct {
	classes       []string
	codes         map[string]int
	normalization Normalization
}

// NewCategoryEncoder validates and creates an encoder.
// Every class must be non-empty, unique and already in normalized form.
func NewCategoryEncoder(classes []string, normalization Normalization) (*CategoryEncoder, error) {
	if !normalization.IsValid() {
		return nil, fmt.Errorf("unsupported normalization %q", normalization)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder has no classes")
	}

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if c == "" {
			return nil, fmt.Errorf("class %d is empty", i)
		}
		if normalization.Apply(c) != c {
			return nil, fmt.Errorf("class %q is not %s-normalized", c, normalization)
		}
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		codes[c] = i
	}

	return &CategoryEncoder{
		classes:       append([]string(nil), classes...),
		codes:         codes,
		normalization: normalization,
	}, nil
}

// Normalize folds label into the form the encoder was fit on.
func (e *CategoryEncoder) Normalize(label string) string {
	return e.normalization.Apply(label)
}

// Encode normalizes label and returns its code.
func (e *CategoryEncoder) Encode(label string) (int, bool) {
	code, ok := e.codes[e.Normalize(label)]
	return code, ok
}

// Classes returns the known classes in code order.
func (e *CategoryEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// SortedClasses returns the known classes in lexical order.
func (e *CategoryEncoder) SortedClasses() []string {
	out := e.Classes()
	sort.Strings(out)
	return out
}

// Normalization returns the case folding applied before lookup.
func (e *CategoryEncoder) Normalization() Normalization { return e.normalization }
