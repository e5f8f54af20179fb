package domain

import (
	"math"

	dErrors "votegate/pkg/domain-errors"
)

// FaceDescriptor is the fixed-length feature vector an external capture step
// extracts from a face image. The gateway never sees raw images; descriptors
// are compared by Euclidean distance only.
type FaceDescriptor []float64

// DescriptorLen is the only accepted descriptor length.
const DescriptorLen = 128

// Degenerate-capture thresholds. A frame from a covered or black camera
// produces a near-constant, near-zero vector; either signal rejects it.
const (
	degenerateSpread = 0.02
	degenerateMean   = 0.005
)

// DistanceNoMatch is returned when two descriptors cannot be compared
// (missing or wrong length). It is far above any match threshold, so
// malformed stored data fails open to "no match" instead of erroring.
const DistanceNoMatch = math.MaxFloat64

// Validate checks the descriptor is exactly DescriptorLen finite values.
// Errors: CodeInvalidFaceData.
func (d FaceDescriptor) Validate() error {
	if len(d) != DescriptorLen {
		return dErrors.Newf(dErrors.CodeInvalidFaceData, "face descriptor must have %d values", DescriptorLen)
	}
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dErrors.New(dErrors.CodeInvalidFaceData, "face descriptor contains non-finite values")
		}
	}
	return nil
}

// Degenerate reports whether the descriptor looks like a dead capture:
// value spread below degenerateSpread or mean magnitude below degenerateMean.
// Callers must Validate first.
func (d FaceDescriptor) Degenerate() bool {
	if len(d) == 0 {
		return true
	}
	minV, maxV := d[0], d[0]
	var sum float64
	for _, v := range d {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
	}
	mean := sum / float64(len(d))
	return maxV-minV < degenerateSpread || math.Abs(mean) < degenerateMean
}

// Distance computes the Euclidean distance between two descriptors.
// Incomparable pairs return DistanceNoMatch rather than an error; a stored
// record with a malformed descriptor should be skipped, not break matching.
func (d FaceDescriptor) Distance(other FaceDescriptor) float64 {
	if len(d) != DescriptorLen || len(other) != DescriptorLen {
		return DistanceNoMatch
	}
	var sum float64
	for i := range d {
		diff := d[i] - other[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
