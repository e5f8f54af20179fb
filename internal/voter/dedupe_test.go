package voter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "votegate/pkg/domain"
)

// descriptorAt builds a well-formed descriptor whose distance from
// descriptorAt(0) is exactly |offset| * sqrt(128).
func descriptorAt(offset float64) id.FaceDescriptor {
	d := make(id.FaceDescriptor, id.DescriptorLen)
	for i := range d {
		d[i] = 0.5 + offset + 0.01*float64(i%7)
	}
	return d
}

func existingVoter(name, dob string, phone id.Phone, face id.FaceDescriptor) Voter {
	return Voter{
		No:    "VTR-EX1STS",
		Name:  name,
		DOB:   dob,
		Phone: phone,
		Face:  face,
	}
}

func TestDetectCollision_Priority(t *testing.T) {
	existing := []Voter{existingVoter("Asha Rao", "1990-05-12", "9876543210", descriptorAt(0))}

	t.Run("phone match wins over everything", func(t *testing.T) {
		c := DetectCollision(Candidate{
			Name:  "Asha Rao", // would also match name+dob
			DOB:   "1990-05-12",
			Phone: "9876543210",
			Face:  descriptorAt(0), // would also match face
		}, existing)
		require.NotNil(t, c)
		assert.Equal(t, CollisionPhone, c.Kind)
		assert.Equal(t, id.VoterNo("VTR-EX1STS"), c.ExistingNo)
	})

	t.Run("name and dob match is case-insensitive and trimmed", func(t *testing.T) {
		c := DetectCollision(Candidate{
			Name:  "  ASHA rao ",
			DOB:   "1990-05-12",
			Phone: "5550001111",
			Face:  descriptorAt(10),
		}, existing)
		require.NotNil(t, c)
		assert.Equal(t, CollisionNameDOB, c.Kind)
	})

	t.Run("same name different dob is no collision", func(t *testing.T) {
		c := DetectCollision(Candidate{
			Name:  "Asha Rao",
			DOB:   "1991-05-12",
			Phone: "5550001111",
			Face:  descriptorAt(10),
		}, existing)
		assert.Nil(t, c)
	})
}

func TestDetectCollision_Face(t *testing.T) {
	base := descriptorAt(0)

	t.Run("close descriptor collides", func(t *testing.T) {
		near := make(id.FaceDescriptor, id.DescriptorLen)
		copy(near, base)
		near[0] += 0.1 // distance 0.1 < 0.45
		c := DetectCollision(Candidate{
			Name: "Someone Else", DOB: "1980-01-01", Phone: "5550001111", Face: near,
		}, []Voter{existingVoter("Asha Rao", "1990-05-12", "9876543210", base)})
		require.NotNil(t, c)
		assert.Equal(t, CollisionFace, c.Kind)
	})

	t.Run("distance exactly at the threshold does not collide", func(t *testing.T) {
		// Spread the threshold distance evenly over all components.
		at := make(id.FaceDescriptor, id.DescriptorLen)
		delta := FaceMatchThreshold / math.Sqrt(float64(id.DescriptorLen))
		for i := range at {
			at[i] = base[i] + delta
		}
		d := base.Distance(at)
		require.InDelta(t, FaceMatchThreshold, d, 1e-9)

		c := DetectCollision(Candidate{
			Name: "Someone Else", DOB: "1980-01-01", Phone: "5550001111", Face: at,
		}, []Voter{existingVoter("Asha Rao", "1990-05-12", "9876543210", base)})
		assert.Nil(t, c)
	})

	t.Run("collision names the nearest neighbor, not the first match", func(t *testing.T) {
		farButMatching := make(id.FaceDescriptor, id.DescriptorLen)
		copy(farButMatching, base)
		farButMatching[0] += 0.4
		nearest := make(id.FaceDescriptor, id.DescriptorLen)
		copy(nearest, base)
		nearest[0] += 0.05

		first := existingVoter("First Registered", "1970-01-01", "5551110000", farButMatching)
		second := existingVoter("Closest Match", "1975-01-01", "5552220000", nearest)
		second.No = "VTR-NEAR01"

		c := DetectCollision(Candidate{
			Name: "Someone Else", DOB: "1980-01-01", Phone: "5553330000", Face: base,
		}, []Voter{first, second})
		require.NotNil(t, c)
		assert.Equal(t, CollisionFace, c.Kind)
		assert.Equal(t, id.VoterNo("VTR-NEAR01"), c.ExistingNo)
	})

	t.Run("malformed stored descriptor is skipped, not matched", func(t *testing.T) {
		broken := existingVoter("Broken Record", "1960-01-01", "5559990000", id.FaceDescriptor{0.1, 0.2})
		c := DetectCollision(Candidate{
			Name: "Someone Else", DOB: "1980-01-01", Phone: "5553330000", Face: base,
		}, []Voter{broken})
		assert.Nil(t, c)
	})

	t.Run("no existing voters is no collision", func(t *testing.T) {
		c := DetectCollision(Candidate{
			Name: "Anyone", DOB: "1980-01-01", Phone: "5553330000", Face: base,
		}, nil)
		assert.Nil(t, c)
	})
}
