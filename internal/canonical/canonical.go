// Package canonical projects a descriptor set into the deterministic,
// order-normalized form used for hashing. Canonicalization is total: any
// finite or non-finite float input maps to a finite rounded value, mapping
// keys are emitted in ascending lexical order and sequences keep their
// generation order. The projection is idempotent, so re-canonicalizing an
// already-canonical value is a no-op.
package canonical

import (
	"math"
	"sort"

	"cloth-auth-go/pkg/models"
)

// Field is one key/value pair of a mapping-typed descriptor, held in a slice
// so that emission order is explicit rather than dependent on map iteration.
type Field struct {
	Key   string
	Value float64
}

// Value is the canonical projection of a DescriptorSet. It is freshly
// constructed on every call and never mutated; capture time and algorithm
// version are excluded entirely.
type Value struct {
	ColorHistogram  []float64
	Dimensions      []Field
	EdgeFeatures    []float64
	FabricTexture   []Field
	PatternFeatures []Field
	Precision       int
}

// Round applies the uniform canonicalization rule for a single real number:
// NaN becomes 0.0, +Inf becomes 1.0, -Inf becomes 0.0, and finite values are
// rounded half-up at the given decimal precision. Rounding an already-rounded
// value at the same precision is a no-op.
func Round(v float64, precision int) float64 {
	if math.IsNaN(v) {
		return 0.0
	}
	if math.IsInf(v, 1) {
		return 1.0
	}
	if math.IsInf(v, -1) {
		return 0.0
	}
	scale := math.Pow(10, float64(precision))
	r := math.Floor(v*scale+0.5) / scale
	if r == 0 {
		return 0 // normalize -0
	}
	return r
}

// Canonicalize builds the canonical value of a descriptor set at the given
// precision. The input is borrowed read-only and never mutated.
func Canonicalize(d *models.DescriptorSet, precision int) *Value {
	return &Value{
		ColorHistogram:  roundSequence(d.ColorHistogram, precision),
		Dimensions:      sortedFields(d.Dimensions, precision),
		EdgeFeatures:    roundSequence(d.EdgeFeatures, precision),
		FabricTexture:   sortedFields(d.FabricTexture, precision),
		PatternFeatures: sortedFields(d.PatternFeatures, precision),
		Precision:       precision,
	}
}

// RoundDescriptors returns a copy of d with every real value passed through
// Round. Extraction applies this before descriptors are stored so that the
// persisted form and the canonical form agree byte-for-byte.
func RoundDescriptors(d *models.DescriptorSet, precision int) *models.DescriptorSet {
	out := d.Clone()
	for k, v := range out.FabricTexture {
		out.FabricTexture[k] = Round(v, precision)
	}
	for i, v := range out.ColorHistogram {
		out.ColorHistogram[i] = Round(v, precision)
	}
	for k, v := range out.Dimensions {
		out.Dimensions[k] = Round(v, precision)
	}
	for i, v := range out.EdgeFeatures {
		out.EdgeFeatures[i] = Round(v, precision)
	}
	for k, v := range out.PatternFeatures {
		out.PatternFeatures[k] = Round(v, precision)
	}
	return out
}

func roundSequence(seq []float64, precision int) []float64 {
	out := make([]float64, len(seq))
	for i, v := range seq {
		out[i] = Round(v, precision)
	}
	return out
}

func sortedFields(m map[string]float64, precision int) []Field {
	fields := make([]Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, Field{Key: k, Value: Round(v, precision)})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return fields
}
