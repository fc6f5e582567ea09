// Package hashing derives hex digests from canonical descriptor values. The
// serialization is one fixed deterministic encoding: top-level keys and all
// mapping keys in ascending order, no incidental whitespace, UTF-8 text and
// shortest round-trip float formatting. Because inputs are already rounded by
// the canonicalizer, equal canonical values always serialize to equal bytes.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"cloth-auth-go/internal/canonical"
	apperrors "cloth-auth-go/internal/errors"
)

// Generator computes digests with a fixed algorithm selected at startup.
type Generator struct {
	algorithm string
}

// NewGenerator validates the algorithm name once at startup. An unsupported
// name fails the whole process rather than individual calls.
func NewGenerator(algorithm string) (*Generator, error) {
	switch strings.ToLower(algorithm) {
	case "sha-256", "sha256":
		return &Generator{algorithm: "sha-256"}, nil
	default:
		return nil, apperrors.NewHashUnavailableError(
			fmt.Sprintf("hash algorithm not available: %s", algorithm), nil)
	}
}

// Algorithm returns the digest algorithm name in use.
func (g *Generator) Algorithm() string {
	return g.algorithm
}

// Hash serializes the canonical value and returns its digest as 64 lowercase
// hex characters.
func (g *Generator) Hash(v *canonical.Value) string {
	return g.HashBytes(Encode(v))
}

// HashString digests an arbitrary string, used for the registration
// timestamp hash.
func (g *Generator) HashString(s string) string {
	return g.HashBytes([]byte(s))
}

// HashBytes digests a byte string.
func (g *Generator) HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// CombinedHash binds a features hash to a registration-time hash without
// leaking the timestamp into the feature hash itself.
func (g *Generator) CombinedHash(hashA, hashB string) string {
	return g.HashString(hashA + ":" + hashB)
}

// Encode renders a canonical value as its fixed byte encoding. Top-level
// sections appear in ascending key order: color_histogram, dimensions,
// edge_features, fabric_texture, pattern_features.
func Encode(v *canonical.Value) []byte {
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(`"color_histogram":`)
	writeSequence(&b, v.ColorHistogram)
	b.WriteString(`,"dimensions":`)
	writeFields(&b, v.Dimensions)
	b.WriteString(`,"edge_features":`)
	writeSequence(&b, v.EdgeFeatures)
	b.WriteString(`,"fabric_texture":`)
	writeFields(&b, v.FabricTexture)
	b.WriteString(`,"pattern_features":`)
	writeFields(&b, v.PatternFeatures)
	b.WriteByte('}')
	return []byte(b.String())
}

func writeSequence(b *strings.Builder, seq []float64) {
	b.WriteByte('[')
	for i, v := range seq {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatFloat(v))
	}
	b.WriteByte(']')
}

func writeFields(b *strings.Builder, fields []canonical.Field) {
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f.Key)
		b.WriteString(`":`)
		b.WriteString(formatFloat(f.Value))
	}
	b.WriteByte('}')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
